package models

import "strings"

type TargetUser struct {
	UserType  string `json:"userType"`
	PainPoint string `json:"painPoint"`
}

type MVPFeatures struct {
	MustHave []string `json:"mustHave"`
	Optional []string `json:"optional"`
}

type MonetizationModel struct {
	ModelName   string `json:"modelName"`
	Description string `json:"description"`
}

type SWOTAnalysis struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

type Competitor struct {
	Name              string `json:"name"`
	MarketPosition    string `json:"marketPosition"`
	KeyDifferentiator string `json:"keyDifferentiator"`
	StrategicGap      string `json:"strategicGap"`
}

// StartupPlan is the strategy document produced for a founder's idea.
// A plan is replaced as a whole, never patched field by field.
type StartupPlan struct {
	RefinedIdea  string              `json:"refinedIdea"`
	TargetUsers  []TargetUser        `json:"targetUsers"`
	MVPFeatures  MVPFeatures         `json:"mvpFeatures"`
	Monetization []MonetizationModel `json:"monetization"`
	PitchSummary string              `json:"pitchSummary"`
	SWOT         SWOTAnalysis        `json:"swot"`
	Competitors  []Competitor        `json:"competitors"`
	FounderNote  string              `json:"founderNote,omitempty"`
}

// Normalize replaces nil lists with empty ones so every list field is present.
func (p *StartupPlan) Normalize() {
	if p.TargetUsers == nil {
		p.TargetUsers = []TargetUser{}
	}
	if p.MVPFeatures.MustHave == nil {
		p.MVPFeatures.MustHave = []string{}
	}
	if p.MVPFeatures.Optional == nil {
		p.MVPFeatures.Optional = []string{}
	}
	if p.Monetization == nil {
		p.Monetization = []MonetizationModel{}
	}
	if p.SWOT.Strengths == nil {
		p.SWOT.Strengths = []string{}
	}
	if p.SWOT.Weaknesses == nil {
		p.SWOT.Weaknesses = []string{}
	}
	if p.SWOT.Opportunities == nil {
		p.SWOT.Opportunities = []string{}
	}
	if p.SWOT.Threats == nil {
		p.SWOT.Threats = []string{}
	}
	if p.Competitors == nil {
		p.Competitors = []Competitor{}
	}
}

// Clone returns a deep copy of the plan.
func (p StartupPlan) Clone() StartupPlan {
	out := p
	out.TargetUsers = append([]TargetUser{}, p.TargetUsers...)
	out.MVPFeatures = MVPFeatures{
		MustHave: append([]string{}, p.MVPFeatures.MustHave...),
		Optional: append([]string{}, p.MVPFeatures.Optional...),
	}
	out.Monetization = append([]MonetizationModel{}, p.Monetization...)
	out.SWOT = SWOTAnalysis{
		Strengths:     append([]string{}, p.SWOT.Strengths...),
		Weaknesses:    append([]string{}, p.SWOT.Weaknesses...),
		Opportunities: append([]string{}, p.SWOT.Opportunities...),
		Threats:       append([]string{}, p.SWOT.Threats...),
	}
	out.Competitors = append([]Competitor{}, p.Competitors...)
	return out
}

// Title derives a short display title from the refined idea.
func (p StartupPlan) Title() string {
	title := strings.TrimSpace(p.RefinedIdea)
	if i := strings.IndexAny(title, ".!?"); i > 0 {
		title = title[:i]
	}
	const maxTitle = 60
	if r := []rune(title); len(r) > maxTitle {
		title = strings.TrimSpace(string(r[:maxTitle-1])) + "…"
	}
	if title == "" {
		return "Untitled Blueprint"
	}
	return title
}
