package loading

import (
	"testing"

	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/tui/theme"
)

func TestTicksRotateCopy(t *testing.T) {
	m := New(theme.New(models.ThemeLight))
	if cmd := m.Start(); cmd == nil {
		t.Fatal("Start() returned nil cmd")
	}

	m, cmd := m.Update(messageTickMsg{gen: m.gen})
	if cmd == nil {
		t.Error("message tick did not reschedule")
	}
	if got, want := m.Message(), constants.LoadingMessages[1]; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}

	m, _ = m.Update(insightTickMsg{gen: m.gen})
	if got, want := m.Insight(), constants.LoadingInsights[1]; got != want {
		t.Errorf("Insight() = %q, want %q", got, want)
	}
}

func TestMessageWraps(t *testing.T) {
	m := New(theme.New(models.ThemeLight))
	m.Start()
	for range constants.LoadingMessages {
		m, _ = m.Update(messageTickMsg{gen: m.gen})
	}
	if got, want := m.Message(), constants.LoadingMessages[0]; got != want {
		t.Errorf("Message() after full cycle = %q, want %q", got, want)
	}
}

func TestProgressIsAsymptotic(t *testing.T) {
	m := New(theme.New(models.ThemeDark))
	m.Start()

	last := m.Percent()
	for i := 0; i < 100; i++ {
		m, _ = m.Update(progressTickMsg{gen: m.gen})
		if m.Percent() <= last {
			t.Fatalf("tick %d: percent did not grow (%f -> %f)", i, last, m.Percent())
		}
		if m.Percent() >= ceiling {
			t.Fatalf("tick %d: percent reached ceiling (%f)", i, m.Percent())
		}
		last = m.Percent()
	}
}

func TestStaleTicksIgnored(t *testing.T) {
	m := New(theme.New(models.ThemeLight))
	m.Start()
	old := m.gen
	m.Stop()

	m, cmd := m.Update(messageTickMsg{gen: old})
	if cmd != nil {
		t.Error("stale tick rescheduled")
	}
	if m.Message() != constants.LoadingMessages[0] {
		t.Errorf("stale tick changed message to %q", m.Message())
	}

	m.Start()
	m, _ = m.Update(progressTickMsg{gen: old})
	if m.Percent() != 0 {
		t.Errorf("stale progress tick moved bar to %f", m.Percent())
	}
}
