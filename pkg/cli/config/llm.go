package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/topicscout/topicscout/pkg/service/llm"
	"github.com/urfave/cli/v3"
)

// LLM provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

// LLM holds configuration for the AI completion provider
type LLM struct {
	provider       string
	model          string
	geminiProject  string
	geminiLocation string
	openaiAPIKey   string
	claudeAPIKey   string
}

func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "AI provider [gemini|openai|claude]",
			Category:    "LLM",
			Value:       ProviderGemini,
			Sources:     cli.EnvVars("TOPICSCOUT_LLM_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Model name, empty for the provider default",
			Category:    "LLM",
			Sources:     cli.EnvVars("TOPICSCOUT_LLM_MODEL"),
			Destination: &x.model,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("TOPICSCOUT_GEMINI_PROJECT"),
			Destination: &x.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("TOPICSCOUT_GEMINI_LOCATION"),
			Destination: &x.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("TOPICSCOUT_OPENAI_API_KEY"),
			Destination: &x.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "claude-api-key",
			Usage:       "Anthropic API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("TOPICSCOUT_CLAUDE_API_KEY"),
			Destination: &x.claudeAPIKey,
		},
	}
}

func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", x.provider),
		slog.String("model", x.model),
		slog.String("gemini_project", x.geminiProject),
		slog.String("gemini_location", x.geminiLocation),
		slog.Int("openai_api_key.len", len(x.openaiAPIKey)),
		slog.Int("claude_api_key.len", len(x.claudeAPIKey)),
	)
}

// Configure builds the completion client for the selected provider
func (x *LLM) Configure(ctx context.Context) (*llm.Client, error) {
	client, err := x.newClient(ctx)
	if err != nil {
		return nil, err
	}
	return llm.New(client), nil
}

func (x *LLM) newClient(ctx context.Context) (gollem.LLMClient, error) {
	switch x.provider {
	case ProviderGemini:
		if x.geminiProject == "" {
			return nil, goerr.Wrap(ErrMissingCredentials, "gemini-project is required",
				goerr.V(ProviderKey, x.provider))
		}
		var opts []gemini.Option
		if x.model != "" {
			opts = append(opts, gemini.WithModel(x.model))
		}
		client, err := gemini.New(ctx, x.geminiProject, x.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case ProviderOpenAI:
		if x.openaiAPIKey == "" {
			return nil, goerr.Wrap(ErrMissingCredentials, "openai-api-key is required",
				goerr.V(ProviderKey, x.provider))
		}
		var opts []openai.Option
		if x.model != "" {
			opts = append(opts, openai.WithModel(x.model))
		}
		client, err := openai.New(ctx, x.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	case ProviderClaude:
		if x.claudeAPIKey == "" {
			return nil, goerr.Wrap(ErrMissingCredentials, "claude-api-key is required",
				goerr.V(ProviderKey, x.provider))
		}
		var opts []claude.Option
		if x.model != "" {
			opts = append(opts, claude.WithModel(x.model))
		}
		client, err := claude.New(ctx, x.claudeAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Claude client")
		}
		return client, nil

	default:
		return nil, goerr.New("unknown LLM provider", goerr.V(ProviderKey, x.provider))
	}
}
