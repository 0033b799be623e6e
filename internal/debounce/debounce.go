// Package debounce turns a burst of input changes into one settled value.
package debounce

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FireMsg is delivered when the delay after a Trigger elapses.
type FireMsg struct {
	ID    string
	Seq   uint64
	Value string
}

// Debouncer resets its timer on every Trigger. Only the message of the last
// Trigger settles; earlier ones are ignored when they arrive.
type Debouncer struct {
	ID    string
	Delay time.Duration

	seq     uint64
	settled string
}

// New returns a debouncer identified by id.
func New(id string, delay time.Duration) *Debouncer {
	return &Debouncer{ID: id, Delay: delay}
}

// Trigger records value as the latest input and schedules its FireMsg.
func (d *Debouncer) Trigger(value string) tea.Cmd {
	d.seq++
	msg := FireMsg{ID: d.ID, Seq: d.seq, Value: value}
	if d.Delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(d.Delay, func(time.Time) tea.Msg { return msg })
}

// Settle accepts msg if it belongs to this debouncer and no Trigger happened
// after it. It returns the settled value and true, or "" and false for a
// superseded message.
func (d *Debouncer) Settle(msg FireMsg) (string, bool) {
	if msg.ID != d.ID || msg.Seq != d.seq {
		return "", false
	}
	d.settled = msg.Value
	return msg.Value, true
}

// Value returns the last settled value.
func (d *Debouncer) Value() string {
	return d.settled
}

// Seed sets the settled value without scheduling anything.
func (d *Debouncer) Seed(value string) {
	d.seq++
	d.settled = value
}

// Pending reports whether current differs from the last settled value.
func (d *Debouncer) Pending(current string) bool {
	return current != d.settled
}
