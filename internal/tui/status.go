package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// toastTTL is how long a transient status line stays visible.
const toastTTL = 4 * time.Second

type clearStatusMsg struct {
	seq int
}

// setStatus shows text in the status bar. A positive ttl schedules its
// removal; a newer status cancels the pending one.
func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.statusSeq++
	a.status = strings.TrimSpace(text)
	a.statusKind = kind
	if ttl <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (a *App) clearStatus(msg clearStatusMsg) {
	if msg.seq == a.statusSeq {
		a.status = ""
		a.statusKind = StatusInfo
	}
}

// toastError reports a reference-data failure once per distinct message
// for the given source.
func (a *App) toastError(source, key string, err error) tea.Cmd {
	text := describeError(err)
	if a.lastErr[source] == text {
		return nil
	}
	a.lastErr[source] = text
	return a.setStatus(a.i18n.Tf(key, text), StatusError, a.toastTTL)
}
