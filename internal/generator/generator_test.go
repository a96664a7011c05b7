package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/genie/internal/models"
)

func fallbackJSON(t *testing.T, mutate func(map[string]any)) []byte {
	t.Helper()
	raw, err := json.Marshal(Fallback())
	if err != nil {
		t.Fatal(err)
	}
	if mutate == nil {
		return raw
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	mutate(doc)
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestFallbackIsComplete(t *testing.T) {
	plan := Fallback()
	if plan.RefinedIdea == "" || plan.PitchSummary == "" || plan.FounderNote == "" {
		t.Error("fallback has empty text fields")
	}
	if len(plan.TargetUsers) == 0 || len(plan.MVPFeatures.MustHave) == 0 || len(plan.MVPFeatures.Optional) == 0 ||
		len(plan.Monetization) == 0 || len(plan.Competitors) == 0 ||
		len(plan.SWOT.Strengths) == 0 || len(plan.SWOT.Weaknesses) == 0 ||
		len(plan.SWOT.Opportunities) == 0 || len(plan.SWOT.Threats) == 0 {
		t.Errorf("fallback has empty lists: %+v", plan)
	}

	got, err := DecodePlan(fallbackJSON(t, nil))
	if err != nil {
		t.Fatalf("fallback does not pass validation: %v", err)
	}
	if diff := cmp.Diff(plan, got); diff != "" {
		t.Errorf("fallback round trip (-want +got):\n%s", diff)
	}
}

func TestFallbackReturnsFreshCopy(t *testing.T) {
	a := Fallback()
	a.SWOT.Threats[0] = "mutated"
	if Fallback().SWOT.Threats[0] == "mutated" {
		t.Error("Fallback() shares state between calls")
	}
}

func TestDecodePlan(t *testing.T) {
	tests := []struct {
		name    string
		body    []byte
		wantErr bool
	}{
		{"valid", fallbackJSON(t, nil), false},
		{"founder note is optional", fallbackJSON(t, func(d map[string]any) { delete(d, "founderNote") }), false},
		{"empty body", []byte("  "), true},
		{"not json", []byte("Sure! Here is your plan:"), true},
		{"missing top-level field", fallbackJSON(t, func(d map[string]any) { delete(d, "competitors") }), true},
		{"missing nested swot key", fallbackJSON(t, func(d map[string]any) {
			delete(d["swot"].(map[string]any), "threats")
		}), true},
		{"missing nested mvp key", fallbackJSON(t, func(d map[string]any) {
			delete(d["mvpFeatures"].(map[string]any), "optional")
		}), true},
		{"wrong type", fallbackJSON(t, func(d map[string]any) { d["targetUsers"] = "everyone" }), true},
		{"competitor missing gap", fallbackJSON(t, func(d map[string]any) {
			delete(d["competitors"].([]any)[0].(map[string]any), "strategicGap")
		}), true},
		{"array instead of object", []byte("[]"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePlan(tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodePlan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrGenerationFailed) {
				t.Errorf("error %v does not match ErrGenerationFailed", err)
			}
			var genErr *Error
			if !errors.As(err, &genErr) || genErr.Reason == "" {
				t.Errorf("error %v has no reason", err)
			}
		})
	}
}

func TestDecodePlanNormalizesEmptyLists(t *testing.T) {
	body := fallbackJSON(t, func(d map[string]any) { d["targetUsers"] = []any{} })
	plan, err := DecodePlan(body)
	if err != nil {
		t.Fatal(err)
	}
	if plan.TargetUsers == nil || len(plan.TargetUsers) != 0 {
		t.Errorf("TargetUsers = %#v, want empty non-nil", plan.TargetUsers)
	}
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Generate(context.Background(), Request{Idea: "anything at all"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("Unavailable error = %v, want ErrGenerationFailed", err)
	}
	if !strings.Contains(err.Error(), "no API key") {
		t.Errorf("error = %q", err)
	}
}

func TestPrompt(t *testing.T) {
	got := prompt(Request{Idea: " Dog walking app ", FounderName: "Dana", FounderRole: ""})
	want := `Analyze: "Dog walking app". Founder: Dana (Aspiring Entrepreneur).`
	if got != want {
		t.Errorf("prompt() = %q, want %q", got, want)
	}
}

func geminiServer(t *testing.T, status int, text string, seen *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			*seen = string(body)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": status, "message": "upstream says no", "status": "UNAVAILABLE"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGemini(t *testing.T, srv *httptest.Server) *Gemini {
	t.Helper()
	g, err := NewGemini(context.Background(), GeminiConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	return g
}

func TestGeminiGenerate(t *testing.T) {
	want := Fallback()
	want.RefinedIdea = "Dog walking marketplace for busy owners."
	want.FounderNote = ""
	raw, _ := json.Marshal(want)

	var body string
	srv := geminiServer(t, http.StatusOK, string(raw), &body)
	g := newTestGemini(t, srv)

	got, err := g.Generate(context.Background(), Request{Idea: "Dog walking app for busy owners", FounderName: "Dana", FounderRole: "Student"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want.Normalize()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Generate() plan (-want +got):\n%s", diff)
	}

	for _, s := range []string{"application/json", "responseSchema", "Dog walking app for busy owners", "speed-optimized strategist"} {
		if !strings.Contains(body, s) {
			t.Errorf("request body missing %q", s)
		}
	}
}

func TestGeminiFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		text   string
	}{
		{"server error", http.StatusServiceUnavailable, ""},
		{"malformed plan", http.StatusOK, `{"refinedIdea": "only this"}`},
		{"empty text", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := geminiServer(t, tt.status, tt.text, nil)
			g := newTestGemini(t, srv)
			plan, err := g.Generate(context.Background(), Request{Idea: "A valid idea text", FounderName: "Dana"})
			if !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("Generate() error = %v, want ErrGenerationFailed", err)
			}
			if diff := cmp.Diff(models.StartupPlan{}, plan); diff != "" {
				t.Errorf("failed Generate() returned a plan:\n%s", diff)
			}
		})
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), GeminiConfig{}); err == nil {
		t.Error("NewGemini() without key should fail")
	}
}
