package models

import "time"

// Blueprint is a saved plan together with the idea that produced it.
type Blueprint struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Title     string      `json:"title"`
	Idea      string      `json:"idea"`
	Plan      StartupPlan `json:"plan"`
	CreatedAt time.Time   `json:"created_at"`
}

type BlueprintSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Idea         string    `json:"idea"`
	PitchSummary string    `json:"pitch_summary"`
	CreatedAt    time.Time `json:"created_at"`
}

func (b Blueprint) Summary() BlueprintSummary {
	return BlueprintSummary{
		ID:           b.ID,
		Title:        b.Title,
		Idea:         b.Idea,
		PitchSummary: b.Plan.PitchSummary,
		CreatedAt:    b.CreatedAt,
	}
}
