package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/trainr/internal/service"
	"github.com/sadopc/trainr/internal/session"
)

// sessionFeed turns the service's session snapshots and recorded sessions into
// Bubble Tea messages. It is shared by pointer so model copies read the same channels.
type sessionFeed struct {
	updates  <-chan session.Snapshot
	cancel   func()
	recorded chan sessionRecordedMsg
}

func newSessionFeed(svc *service.Service) *sessionFeed {
	updates, cancel := svc.SessionUpdates()
	f := &sessionFeed{
		updates:  updates,
		cancel:   cancel,
		recorded: make(chan sessionRecordedMsg, 4),
	}
	svc.OnSessionRecorded(func(rec session.Record, err error) {
		select {
		case f.recorded <- sessionRecordedMsg{rec: rec, err: err}:
		default:
		}
	})
	return f
}

// next waits for the following snapshot. Re-issue it after every sessionMsg.
func (f *sessionFeed) next() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-f.updates
		return sessionMsg{snap: snap, open: ok}
	}
}

func (f *sessionFeed) nextRecorded() tea.Cmd {
	return func() tea.Msg {
		return <-f.recorded
	}
}

func (f *sessionFeed) close() {
	f.cancel()
}
