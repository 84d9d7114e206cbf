package notifier

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level classifies a notification
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notifier surfaces transient, user-visible messages (the terminal
// equivalent of a toast).
type Notifier interface {
	Notify(level Level, text string)
}

// Success and Error are shorthands that tolerate a nil notifier.
func Success(n Notifier, text string) {
	if n != nil {
		n.Notify(LevelSuccess, text)
	}
}

func Error(n Notifier, text string) {
	if n != nil {
		n.Notify(LevelError, text)
	}
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Console writes notifications as single styled lines.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(level Level, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if level == LevelError {
		fmt.Fprintln(c.w, errorStyle.Render("✗ "+text))
		return
	}
	fmt.Fprintln(c.w, successStyle.Render("✓ "+text))
}

// Message is one recorded notification
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Notify(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: text})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Errors returns the texts of recorded error notifications.
func (r *Recorder) Errors() []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Level == LevelError {
			out = append(out, m.Text)
		}
	}
	return out
}

// Func adapts a function to the Notifier interface.
type Func func(level Level, text string)

func (f Func) Notify(level Level, text string) { f(level, text) }

// Relay forwards notifications to a target that can be swapped at runtime.
// The TUI installs itself as the target while it owns the screen.
type Relay struct {
	mu     sync.RWMutex
	target Notifier
}

func NewRelay(target Notifier) *Relay {
	return &Relay{target: target}
}

// Set installs target and returns the previous one.
func (r *Relay) Set(target Notifier) Notifier {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.target
	r.target = target
	return prev
}

func (r *Relay) Notify(level Level, text string) {
	r.mu.RLock()
	target := r.target
	r.mu.RUnlock()
	if target != nil {
		target.Notify(level, text)
	}
}
