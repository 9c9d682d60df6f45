package tui

import "sync"

// StatusBuffer implements notify.Notifier for the TUI. Services run inside
// tea.Cmd goroutines, so notifications land here and the update loop drains
// them into the status line when the corresponding message arrives.
type StatusBuffer struct {
	mu   sync.Mutex
	msg  string
	fail bool
	set  bool
}

func NewStatusBuffer() *StatusBuffer {
	return &StatusBuffer{}
}

func (b *StatusBuffer) Success(msg string) {
	b.mu.Lock()
	b.msg, b.fail, b.set = msg, false, true
	b.mu.Unlock()
}

func (b *StatusBuffer) Error(msg string) {
	b.mu.Lock()
	b.msg, b.fail, b.set = msg, true, true
	b.mu.Unlock()
}

// Take returns and clears the pending notification, if any.
func (b *StatusBuffer) Take() (msg string, failed, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.set {
		return "", false, false
	}
	msg, failed = b.msg, b.fail
	b.msg, b.fail, b.set = "", false, false
	return msg, failed, true
}
