package usecase

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/system.md
var systemPromptTmpl string

var systemPrompt = template.Must(template.New("system").Parse(systemPromptTmpl))

const passageSeparator = "\n\n"

type systemPromptData struct {
	Name        string
	Subject     string
	Description string
	Context     string
}

// joinPassages concatenates passage contents in rank order
func joinPassages(passages []Passage) string {
	contents := make([]string, 0, len(passages))
	for _, p := range passages {
		contents = append(contents, p.Content)
	}
	return strings.Join(contents, passageSeparator)
}

func buildSystemPrompt(agent *model.Agent, passages []Passage) (string, error) {
	data := systemPromptData{
		Name:        agent.Name,
		Subject:     agent.Subject,
		Description: strings.TrimSpace(agent.Description),
		Context:     joinPassages(passages),
	}

	var buf bytes.Buffer
	if err := systemPrompt.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render system prompt", goerr.V(AgentIDKey, agent.ID))
	}
	return buf.String(), nil
}
