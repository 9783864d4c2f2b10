package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerEnabled(t *testing.T) {
	m := NewManager("welcome_email=on, bot_autolink=off ,rollout=50%,bad,also=")

	assert.True(t, m.Enabled("welcome_email", 1))
	assert.True(t, m.Enabled("WELCOME_EMAIL", 1), "flag names are case-insensitive")
	assert.False(t, m.Enabled("bot_autolink", 1))
	assert.False(t, m.Enabled("unknown_flag", 1))
	assert.False(t, m.Enabled("bad", 1), "malformed pairs are ignored")
	assert.False(t, m.Enabled("also", 1), "empty values are ignored")
}

func TestManagerPercentageRollout(t *testing.T) {
	m := NewManager("rollout=50%")

	// Deterministic per user: the same user always gets the same answer.
	for userID := uint(1); userID <= 20; userID++ {
		first := m.Enabled("rollout", userID)
		assert.Equal(t, first, m.Enabled("rollout", userID))
	}

	// Anonymous users are excluded from partial rollouts.
	assert.False(t, m.Enabled("rollout", 0))

	assert.True(t, NewManager("full=100%").Enabled("full", 0))
	assert.False(t, NewManager("none=0%").Enabled("none", 7))
	assert.False(t, NewManager("junk=x%").Enabled("junk", 7))
}

func TestManagerRaw(t *testing.T) {
	m := NewManager("a=on,b=off")
	raw := m.Raw()
	assert.Equal(t, map[string]string{"a": "on", "b": "off"}, raw)

	// Mutating the copy must not affect the manager.
	raw["a"] = "off"
	assert.True(t, m.Enabled("a", 1))
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled("anything", 1))
}
