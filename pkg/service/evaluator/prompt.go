package evaluator

import (
	"bytes"
	"embed"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var templateFuncs = template.FuncMap{
	"join":     strings.Join,
	"truncate": truncate,
}

type prompts struct {
	evaluate *template.Template
	retry    *template.Template
	generate *template.Template
}

type evaluateData struct {
	Candidate   model.Candidate
	Channel     model.ChannelContext
	Trends      []string
	Competitors []string
	Categories  []string
}

type retryData struct {
	Prompt   string
	Previous string
	Problems []string
}

type generateData struct {
	Channel model.ChannelContext
	Count   int
	Trends  []string
}

func loadPrompts(cfg config.Evaluation) (*prompts, error) {
	evaluate, err := parsePrompt("evaluate", cfg.EvaluatePrompt)
	if err != nil {
		return nil, err
	}
	retry, err := parsePrompt("retry", cfg.RetryPrompt)
	if err != nil {
		return nil, err
	}
	generate, err := parsePrompt("generate", cfg.GeneratePrompt)
	if err != nil {
		return nil, err
	}
	return &prompts{evaluate: evaluate, retry: retry, generate: generate}, nil
}

// parsePrompt parses override, falling back to the embedded template.
func parsePrompt(name, override string) (*template.Template, error) {
	text := override
	if text == "" {
		raw, err := promptFS.ReadFile("prompts/" + name + ".tmpl")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read embedded prompt", goerr.V("name", name))
		}
		text = string(raw)
	}

	tmpl, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse prompt template", goerr.V("name", name))
	}
	return tmpl, nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("name", tmpl.Name()))
	}
	return buf.String(), nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
