package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/notifier"
)

// eventsMsg carries everything that happened outside the event loop since
// the previous delivery.
type eventsMsg struct {
	changed bool
	notes   []notifier.Message
}

// mailbox collects store, session and notifier callbacks, which arrive on
// other goroutines, and hands them to the program one batch at a time.
// Callbacks never block; repeated changes collapse into one delivery.
type mailbox struct {
	mu      sync.Mutex
	changed bool
	notes   []notifier.Message
	signal  chan struct{}
	done    chan struct{}
	once    sync.Once
	cleanup []func()
}

func newMailbox() *mailbox {
	return &mailbox{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (b *mailbox) poke() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// markChanged records that the store or session has a new state.
func (b *mailbox) markChanged() {
	b.mu.Lock()
	b.changed = true
	b.mu.Unlock()
	b.poke()
}

// Notify queues a notification for the status bar.
func (b *mailbox) Notify(level notifier.Level, text string) {
	b.mu.Lock()
	b.notes = append(b.notes, notifier.Message{Level: level, Text: text})
	b.mu.Unlock()
	b.poke()
}

// drain returns and resets the pending batch.
func (b *mailbox) drain() eventsMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := eventsMsg{changed: b.changed, notes: b.notes}
	b.changed, b.notes = false, nil
	return msg
}

// listen waits for the next batch. It returns nil once the mailbox is closed.
func (b *mailbox) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.signal:
			return b.drain()
		case <-b.done:
			return nil
		}
	}
}

func (b *mailbox) close() {
	b.once.Do(func() {
		for _, fn := range b.cleanup {
			fn()
		}
		close(b.done)
	})
}
