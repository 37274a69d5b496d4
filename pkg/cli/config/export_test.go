package config

// NewResearchForTest creates a Research config with only a file path set
func NewResearchForTest(configPath string) *Research {
	return &Research{configPath: configPath, minScore: -1}
}

// SetResearchOverridesForTest sets the flag overrides of a Research config
func SetResearchOverridesForTest(x *Research, channelID string, minScore float64, concurrency, rpm int) {
	x.channelID = channelID
	x.minScore = minScore
	x.concurrency = concurrency
	x.rpm = rpm
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, geminiProject, openaiAPIKey, claudeAPIKey string) *LLM {
	return &LLM{
		provider:      provider,
		geminiProject: geminiProject,
		openaiAPIKey:  openaiAPIKey,
		claudeAPIKey:  claudeAPIKey,
	}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{botToken: botToken, channelID: channelID}
}

// NewNotionForTest creates a Notion config for testing purposes
func NewNotionForTest(token, databaseID string) *Notion {
	return &Notion{token: token, databaseID: databaseID}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, path string) *Repository {
	return &Repository{backend: backend, path: path}
}

// NewFeedForTest creates a Feed config for testing purposes
func NewFeedForTest(urls ...string) *Feed {
	return &Feed{urls: urls}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}
