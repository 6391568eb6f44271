package privacy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMode_Toggle(t *testing.T) {
	m := NewMode(true)
	assert.True(t, m.Enabled())

	assert.False(t, m.Toggle())
	assert.False(t, m.Enabled())

	assert.True(t, m.Toggle())
	assert.True(t, m.Enabled())
}

func TestMode_ZeroValueIsDisabled(t *testing.T) {
	var m Mode
	assert.False(t, m.Enabled())
	m.Set(true)
	assert.True(t, m.Enabled())
}

func TestMode_ConcurrentTogglesAreNotLost(t *testing.T) {
	m := NewMode(true)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Toggle()
		}()
	}
	wg.Wait()
	// An even number of toggles restores the starting value.
	assert.True(t, m.Enabled())
}

func TestDescribe(t *testing.T) {
	on := Describe(true)
	assert.Equal(t, LabelPrivacyFirst, on.Label)
	assert.Contains(t, on.Routing, "Local LLM")
	assert.Contains(t, on.String(), "Switched to Privacy-First mode")

	off := Describe(false)
	assert.Equal(t, LabelEfficiency, off.Label)
	assert.Equal(t, "Using efficiency-based routing", off.Routing)
}
