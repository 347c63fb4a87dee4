// Package assistant suggests a root-cause category for claim observations
// using Gemini structured output.
//
// Every failure mode collapses to a nil suggestion for the caller. The
// unexported classify keeps the causes apart for logging and tests.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"rmaintake/internal/claim"
	"rmaintake/internal/logging"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 30 * time.Second

	// slowCallThreshold is the call duration above which a warning is logged.
	slowCallThreshold = 10 * time.Second
)

// ErrNotConfigured is returned by classify when no API key is set.
var ErrNotConfigured = errors.New("assistant: API key not configured")

// ErrBadResponse wraps any answer that cannot be turned into a suggestion.
var ErrBadResponse = errors.New("assistant: unusable response")

// Config holds the assistant settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // overrides the Gemini endpoint; tests and proxies
	Timeout time.Duration
}

// contentGenerator is the slice of genai.Models the assistant calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Assistant classifies observation text. The zero value is not usable; use New.
type Assistant struct {
	cfg   Config
	gen   contentGenerator
	audit *logging.AuditLogger
}

// New builds an assistant. A missing API key is not an error: the result is
// an assistant that never suggests anything and never touches the network.
func New(ctx context.Context, cfg Config) (*Assistant, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	a := &Assistant{cfg: cfg, audit: logging.NewAuditLogger("")}
	if cfg.APIKey == "" {
		logging.AssistantWarn("Gemini API key missing; suggestions disabled")
		return a, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	a.gen = client.Models
	logging.Assistant("assistant ready (model=%s timeout=%v)", cfg.Model, cfg.Timeout)
	return a, nil
}

// WithAudit returns a copy of a that records calls to the given audit trail.
func (a *Assistant) WithAudit(al *logging.AuditLogger) *Assistant {
	if al == nil {
		return a
	}
	cp := *a
	cp.audit = al
	return &cp
}

// Enabled reports whether the assistant can reach the model.
func (a *Assistant) Enabled() bool { return a != nil && a.gen != nil }

// Model returns the configured model name.
func (a *Assistant) Model() string { return a.cfg.Model }

// Classify returns a suggestion for text, or nil when none is available for
// any reason.
func (a *Assistant) Classify(ctx context.Context, text string) *claim.Suggestion {
	s, err := a.classify(ctx, text)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			logging.AssistantWarn("classification skipped: %v", err)
		}
		return nil
	}
	return s
}

func (a *Assistant) classify(ctx context.Context, text string) (*claim.Suggestion, error) {
	if !a.Enabled() {
		return nil, ErrNotConfigured
	}

	log := logging.WithRequestID(logging.CategoryAssistant, uuid.NewString()).WithField("model", a.cfg.Model)
	reqID := log.RequestID()
	a.audit.ClassifyRequest(reqID, a.cfg.Model, len([]rune(text)))
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryAssistant, "GenerateContent "+reqID)
	resp, err := a.gen.GenerateContent(ctx, a.cfg.Model, genai.Text(buildPrompt(text)), generateConfig())
	elapsed := timer.StopWithThreshold(slowCallThreshold)
	if err != nil {
		err = fmt.Errorf("generate content: %w", err)
		logging.AssistantError("request %s failed after %v: %v", reqID, elapsed, err)
		a.audit.ClassifyError(reqID, err, elapsed)
		return nil, err
	}

	var body string
	if resp != nil {
		body = resp.Text()
	}
	s, err := parseResponse(body)
	if err != nil {
		log.Warn("discarding response: %v", err)
		a.audit.ClassifyError(reqID, err, time.Since(start))
		return nil, err
	}

	log.Info("suggested %s in %v", s.Category, time.Since(start))
	a.audit.ClassifyResponse(reqID, string(s.Category), time.Since(start))
	return s, nil
}

func buildPrompt(observation string) string {
	return fmt.Sprintf(`Analiza la siguiente descripción de un reclamo de cliente sobre productos de empaque: %q.

Clasifica el problema en una de las siguientes categorías basándote en la causa raíz más probable:
1. ERROR DE DESPACHO / BODEGA (Producto cruzado, faltante, sobrante)
2. CALIDAD DEL PRODUCTO (Defecto de fábrica, medidas incorrectas, falla sellado, apariencia, olor/contaminación)
3. TRANSPORTE / ENTREGA (Daño físico, pedido incompleto por ruta)
4. ERROR COMERCIAL (Ventas, error de captura)

Responde en JSON.`, observation)
}

func generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category": {
					Type: genai.TypeString,
					Enum: claim.CategoryLabels(),
				},
				"reasoning": {
					Type:        genai.TypeString,
					Description: "Breve explicación de por qué se eligió esa categoría.",
				},
			},
			Required: []string{"category", "reasoning"},
		},
	}
}

type classification struct {
	Category  string `json:"category"`
	Reasoning string `json:"reasoning"`
}

// parseResponse turns the model's JSON answer into a suggestion. The
// category must be one of the known labels or codes.
func parseResponse(text string) (*claim.Suggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrBadResponse)
	}
	var c classification
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	cat, ok := claim.ParseCategory(c.Category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrBadResponse, c.Category)
	}
	return &claim.Suggestion{Category: cat, Reasoning: strings.TrimSpace(c.Reasoning)}, nil
}
