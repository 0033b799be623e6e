package debounce_test

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/kbsearch/internal/debounce"
)

func fire(t *testing.T, cmd tea.Cmd) debounce.FireMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(debounce.FireMsg)
	require.True(t, ok)
	return msg
}

func TestDebouncer_BurstSettlesOnce(t *testing.T) {
	d := debounce.New("search", time.Millisecond)

	var cmds []tea.Cmd
	text := ""
	for _, r := range "hello" {
		text += string(r)
		cmds = append(cmds, d.Trigger(text))
	}

	var settled []string
	for _, cmd := range cmds {
		if v, ok := d.Settle(fire(t, cmd)); ok {
			settled = append(settled, v)
		}
	}

	assert.Equal(t, []string{"hello"}, settled)
	assert.Equal(t, "hello", d.Value())
	assert.False(t, d.Pending("hello"))
	assert.True(t, d.Pending("hell"))
}

func TestDebouncer_IgnoresOtherID(t *testing.T) {
	d := debounce.New("search", 0)
	msg := fire(t, d.Trigger("x"))
	msg.ID = "other"

	_, ok := d.Settle(msg)
	assert.False(t, ok)
}

func TestDebouncer_SeedSupersedesPending(t *testing.T) {
	d := debounce.New("search", 0)
	cmd := d.Trigger("typed")
	d.Seed("restored")

	_, ok := d.Settle(fire(t, cmd))
	assert.False(t, ok)
	assert.Equal(t, "restored", d.Value())
}

func TestDebouncer_ZeroDelayFiresImmediately(t *testing.T) {
	d := debounce.New("search", 0)
	msg := fire(t, d.Trigger("now"))

	v, ok := d.Settle(msg)
	require.True(t, ok)
	assert.Equal(t, "now", v)
}
