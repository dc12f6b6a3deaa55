package tracker

import (
	"time"

	"golang.org/x/exp/slices"
)

type (
	// Alert is a message shown to the user for a while, e.g. when an edit
	// could not be done. Alerts with a Name replace any earlier alert with the
	// same name, so repeated problems do not pile up.
	Alert struct {
		Name      string
		Priority  AlertPriority
		Message   string
		Duration  time.Duration
		FadeLevel float64
	}

	AlertPriority int

	Alerts Model
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

// Alerts returns the Alerts view of the model.
func (m *Model) Alerts() *Alerts { return (*Alerts)(m) }

// Iterate yields the current alerts, the highest priority first.
func (m *Alerts) Iterate(yield func(index int, alert Alert) bool) {
	for i := len(m.alerts) - 1; i >= 0; i-- {
		if !yield(len(m.alerts)-1-i, m.alerts[i]) {
			return
		}
	}
}

// Update advances the time of the alerts by d, removing the expired ones.
// Returns true if any alert is still animating.
func (m *Alerts) Update(d time.Duration) (animating bool) {
	for i := len(m.alerts) - 1; i >= 0; i-- {
		if m.alerts[i].Duration >= d {
			m.alerts[i].Duration -= d
			if m.alerts[i].FadeLevel < 1 {
				animating = true
				m.alerts[i].FadeLevel = min(1, m.alerts[i].FadeLevel+float64(d)/float64(300*time.Millisecond))
			}
		} else {
			m.alerts[i].Duration = 0
			m.alerts[i].FadeLevel = max(0, m.alerts[i].FadeLevel-float64(d)/float64(300*time.Millisecond))
			if m.alerts[i].FadeLevel > 0 {
				animating = true
			} else {
				m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			}
		}
	}
	return
}

func (m *Alerts) Add(message string, priority AlertPriority) {
	m.AddAlert(Alert{Priority: priority, Message: message, Duration: defaultAlertDuration})
}

func (m *Alerts) AddNamed(name, message string, priority AlertPriority) {
	m.AddAlert(Alert{Name: name, Priority: priority, Message: message, Duration: defaultAlertDuration})
}

// ClearNamed removes the alert with the given name, if any.
func (m *Alerts) ClearNamed(name string) {
	for i := range m.alerts {
		if m.alerts[i].Name == name {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return
		}
	}
}

func (m *Alerts) AddAlert(a Alert) {
	if a.Duration == 0 {
		a.Duration = defaultAlertDuration
	}
	if a.Name != "" {
		for i := range m.alerts {
			if n := m.alerts[i]; n.Name == a.Name {
				a.FadeLevel = n.FadeLevel
				m.alerts[i] = a
				m.sort()
				return
			}
		}
	}
	m.alerts = append(m.alerts, a)
	m.sort()
}

// sort keeps the alerts in ascending priority, newer alerts of the same
// priority after older ones.
func (m *Alerts) sort() {
	slices.SortStableFunc(m.alerts, func(a, b Alert) int {
		return int(a.Priority) - int(b.Priority)
	})
}
