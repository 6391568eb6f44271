// Package privacy holds the privacy-first routing flag sent with every
// analysis request.
package privacy

import "sync/atomic"

// Labels shown to the user for each mode.
const (
	LabelPrivacyFirst = "Privacy-First"
	LabelEfficiency   = "Efficiency"
)

// Mode is a process-wide privacy flag. It is safe for concurrent use; the
// last write wins.
type Mode struct {
	enabled atomic.Bool
}

// NewMode returns a Mode starting at enabled.
func NewMode(enabled bool) *Mode {
	m := &Mode{}
	m.enabled.Store(enabled)
	return m
}

// Enabled reports whether privacy-first routing is on.
func (m *Mode) Enabled() bool {
	return m.enabled.Load()
}

// Set stores v.
func (m *Mode) Set(v bool) {
	m.enabled.Store(v)
}

// Toggle inverts the flag and returns the new value.
func (m *Mode) Toggle() bool {
	for {
		old := m.enabled.Load()
		if m.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Description is what the user sees after the mode changes.
type Description struct {
	Label   string
	Routing string
}

// String renders the description as a two-part notice.
func (d Description) String() string {
	return "Switched to " + d.Label + " mode\n\n" + d.Routing
}

// Describe explains how the service routes code in the given mode.
func Describe(enabled bool) Description {
	if enabled {
		return Description{
			Label:   LabelPrivacyFirst,
			Routing: "Sensitive code → Local LLM\nNormal code → Cloud LLM",
		}
	}
	return Description{
		Label:   LabelEfficiency,
		Routing: "Using efficiency-based routing",
	}
}
