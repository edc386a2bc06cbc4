package adapter

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"google.golang.org/genai"

	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-pro"

// ErrEmptyResponse is returned when the model answers without content.
var ErrEmptyResponse = errors.New("model returned no content")

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// jsonModel asks a model for a JSON document.
type jsonModel interface {
	GenerateJSON(ctx context.Context, model, prompt string) (string, error)
}

// genaiModel is the jsonModel backed by the Gemini API.
type genaiModel struct {
	cli *genai.Client
}

// GenerateJSON sends prompt and returns the text of the first candidate.
func (g *genaiModel) GenerateJSON(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// GeminiGenerator implements SpecGenerator and LemmaGenerator with Gemini.
type GeminiGenerator struct {
	model      jsonModel
	specModel  string
	lemmaModel string
}

// NewGeminiGenerator creates a generator. The API key is read from the
// environment (GEMINI_API_KEY or GOOGLE_API_KEY) by the genai client.
func NewGeminiGenerator(ctx context.Context, specModel, lemmaModel string) (*GeminiGenerator, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newGeminiGenerator(&genaiModel{cli: cli}, specModel, lemmaModel), nil
}

func newGeminiGenerator(model jsonModel, specModel, lemmaModel string) *GeminiGenerator {
	if specModel == "" {
		specModel = DefaultGeminiModel
	}

	if lemmaModel == "" {
		lemmaModel = specModel
	}

	return &GeminiGenerator{model: model, specModel: specModel, lemmaModel: lemmaModel}
}

// specAnnotation accepts either a bare string or an object with a hint.
type specAnnotation m.AnnotationRequest

func (a *specAnnotation) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*a = specAnnotation{Text: text}
		return nil
	}

	var req m.AnnotationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}

	*a = specAnnotation(req)

	return nil
}

type specResponse struct {
	Annotations []specAnnotation `json:"annotations"`
	Explanation string           `json:"explanation"`
}

type lemmaResponse struct {
	Lemmas  []m.HelperLemma `json:"lemmas"`
	Imports []string        `json:"imports"`
}

// GenerateSpec asks the spec model for an annotation set.
func (g *GeminiGenerator) GenerateSpec(ctx context.Context, req SpecRequest) (SpecResult, error) {
	var resp specResponse
	if err := g.ask(ctx, g.specModel, "spec.tmpl", req, &resp); err != nil {
		return SpecResult{}, err
	}

	result := SpecResult{
		Annotations: make([]m.AnnotationRequest, 0, len(resp.Annotations)),
		Explanation: resp.Explanation,
	}

	for _, a := range resp.Annotations {
		if strings.TrimSpace(a.Text) == "" {
			continue
		}

		result.Annotations = append(result.Annotations, m.AnnotationRequest(a))
	}

	return result, nil
}

// GenerateLemma asks the lemma model for helper lemmas.
func (g *GeminiGenerator) GenerateLemma(ctx context.Context, req LemmaRequest) (LemmaResult, error) {
	var resp lemmaResponse
	if err := g.ask(ctx, g.lemmaModel, "lemma.tmpl", req, &resp); err != nil {
		return LemmaResult{}, err
	}

	result := LemmaResult{Imports: resp.Imports}

	for _, l := range resp.Lemmas {
		l.Name = strings.TrimSpace(l.Name)
		if l.Name == "" {
			continue
		}

		l.Statement = strings.TrimSuffix(strings.TrimSpace(l.Statement), ".")
		result.Lemmas = append(result.Lemmas, l)
	}

	return result, nil
}

func (g *GeminiGenerator) ask(ctx context.Context, model, tmpl string, data any, out any) error {
	var prompt bytes.Buffer
	if err := prompts.ExecuteTemplate(&prompt, tmpl, data); err != nil {
		return fmt.Errorf("failed to render prompt %s: %w", tmpl, err)
	}

	slog.Debug("requesting generation", "model", model, "template", tmpl, "prompt_bytes", prompt.Len())

	raw, err := g.model.GenerateJSON(ctx, model, prompt.String())
	if err != nil {
		slog.Error("generation failed", "model", model, "template", tmpl, "error", err)
		return fmt.Errorf("generation with %s failed: %w", model, err)
	}

	if err := json.Unmarshal([]byte(stripFence(raw)), out); err != nil {
		slog.Error("failed to decode model response", "model", model, "error", err)
		return fmt.Errorf("failed to decode %s response: %w", model, err)
	}

	return nil
}

// stripFence removes a ```json fence some models wrap around JSON output.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}

	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
