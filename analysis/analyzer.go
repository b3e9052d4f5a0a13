// ABOUTME: File analysis with Gemini and a deterministic simulated fallback
// ABOUTME: The fallback never fails, so callers always get text to show
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// DefaultModel is the Gemini model used for analysis.
	DefaultModel = "gemini-1.5-flash"

	// MaxPromptChars bounds how much file content goes into the prompt.
	MaxPromptChars = 20000

	// PreviewChars bounds the content echoed back by the simulated analysis.
	PreviewChars = 2000
)

// ErrMissingAPIKey is returned when no Gemini key is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY não definido no .env")

// Analyzer turns file content into free-text analysis.
type Analyzer interface {
	Analyze(ctx context.Context, fileName, content string) (string, error)
}

// Prompt builds the instruction sent to the model.
func Prompt(fileName, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analise o conteúdo abaixo (arquivo: %s). Gere:\n", fileName)
	b.WriteString("- Principais pontos\n")
	b.WriteString("- Oportunidades comerciais\n")
	b.WriteString("- Riscos/dúvidas\n")
	b.WriteString("- 3 ações práticas para a equipe\n")
	b.WriteString("Conteúdo:\n")
	b.WriteString(truncate(content, MaxPromptChars))
	return b.String()
}

// Simulated renders the text shown when the model cannot be reached.
func Simulated(cause error, content string) string {
	msg := "indisponível"
	if cause != nil {
		msg = cause.Error()
	}
	return "ANÁLISE SIMULADA (Gemini indisponível):\nErro ao usar Gemini: " + msg +
		"\n\nConteúdo recebido (preview):\n" + truncate(content, PreviewChars)
}

// GeminiAnalyzer calls the Gemini API.
type GeminiAnalyzer struct {
	apiKey string
	model  string
	logger *log.Logger
}

// NewGemini creates an analyzer for apiKey. An empty key is accepted; every
// call then fails with ErrMissingAPIKey.
func NewGemini(apiKey string, logger *log.Logger) *GeminiAnalyzer {
	if logger == nil {
		logger = log.Default()
	}
	return &GeminiAnalyzer{apiKey: apiKey, model: DefaultModel, logger: logger}
}

// Analyze sends the prompt and joins the text parts of the first candidate.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, fileName, content string) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer func() { _ = client.Close() }()

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(Prompt(fileName, content)))
	if err != nil {
		g.logger.Error("gemini request failed", "file", fileName, "err", err)
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

// Fallback wraps an analyzer so that failures become the simulated text.
type Fallback struct {
	Primary Analyzer
	Logger  *log.Logger
}

// NewFallback wraps primary.
func NewFallback(primary Analyzer, logger *log.Logger) *Fallback {
	if logger == nil {
		logger = log.Default()
	}
	return &Fallback{Primary: primary, Logger: logger}
}

// Analyze never returns an error.
func (f *Fallback) Analyze(ctx context.Context, fileName, content string) (string, error) {
	if f.Primary == nil {
		return Simulated(errors.New("analyzer not configured"), content), nil
	}
	text, err := f.Primary.Analyze(ctx, fileName, content)
	if err != nil {
		f.Logger.Warn("analysis fell back to preview", "file", fileName, "err", err)
		return Simulated(err, content), nil
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
