package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/models"
)

const systemInstruction = "You are a speed-optimized strategist. Provide a dense, high-impact JSON business blueprint. Be telegraphic. No conversational filler. Focus on high-signal market gaps. Output strictly JSON."

type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL and HTTPClient are for tests and proxies.
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini generates plans with the Gemini API in JSON mode.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = constants.DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Model() string { return g.model }

func prompt(req Request) string {
	role := strings.TrimSpace(req.FounderRole)
	if role == "" {
		role = constants.DefaultRole
	}
	return fmt.Sprintf("Analyze: %q. Founder: %s (%s).", strings.TrimSpace(req.Idea), strings.TrimSpace(req.FounderName), role)
}

func (g *Gemini) config() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
		MaxOutputTokens:   constants.MaxOutputTokens,
		Temperature:       genai.Ptr[float32](0),
		TopP:              genai.Ptr[float32](0.1),
		ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	}
}

// Generate makes one call with no retry. Every failure is a *Error.
func (g *Gemini) Generate(ctx context.Context, req Request) (models.StartupPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.GenerationTimeout)
	defer cancel()

	log := logger.With("model", g.model)
	log.Debug("Requesting plan", "idea_len", len(req.Idea))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt(req)), g.config())
	if err != nil {
		log.Warn("Plan generation failed", "error", err)
		return models.StartupPlan{}, fail(classify(ctx, err), err)
	}
	if resp == nil {
		return models.StartupPlan{}, fail("empty response", nil)
	}

	plan, err := DecodePlan([]byte(resp.Text()))
	if err != nil {
		log.Warn("Discarding invalid plan", "error", err)
		return models.StartupPlan{}, err
	}
	log.Info("Plan generated", "competitors", len(plan.Competitors))
	return plan, nil
}

func classify(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	code, ok := apiErrorCode(err)
	if !ok {
		return "network error"
	}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return "API key rejected"
	case code == http.StatusTooManyRequests:
		return "quota exceeded"
	case code >= 500:
		return "service unavailable"
	}
	return fmt.Sprintf("API error %d", code)
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
