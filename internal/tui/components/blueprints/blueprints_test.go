package blueprints

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/genie/internal/models"
)

func sample() []models.BlueprintSummary {
	return []models.BlueprintSummary{
		{ID: "bp-2", Title: "Fleet telemetry", PitchSummary: "Trucks, but smarter.", CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "bp-1", Title: "Tutor marketplace", PitchSummary: "Tutors on demand.", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestKeysEmitMessages(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want tea.Msg
	}{
		{"open", tea.KeyMsg{Type: tea.KeyEnter}, OpenMsg{ID: "bp-2"}},
		{"delete", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")}, DeleteMsg{ID: "bp-2", Title: "Fleet telemetry"}},
		{"refresh", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, RefreshMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(sample(), 80, 20)
			_, cmd := m.Update(tt.key)
			if cmd == nil {
				t.Fatal("Update() returned nil cmd")
			}
			if got := cmd(); got != tt.want {
				t.Errorf("cmd() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEmptyList(t *testing.T) {
	m := New(nil, 80, 20)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("open on empty list returned a cmd")
	}
	if !strings.Contains(m.View(), "No blueprints yet") {
		t.Errorf("View() = %q, want empty-state copy", m.View())
	}

	m.SetBlueprints(sample())
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}
