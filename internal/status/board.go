package status

import (
	"sync"
	"time"
)

// DefaultTTL is how long a message stays visible.
const DefaultTTL = 2 * time.Second

type Level string

const (
	Info  Level = "info"
	Error Level = "error"
)

// Token identifies one posted message.
type Token uint64

type Message struct {
	Level    Level     `json:"level"`
	Text     string    `json:"text"`
	PostedAt time.Time `json:"posted_at"`
	Token    Token     `json:"-"`
}

// Board holds at most one transient message. A newer message replaces the
// current one; each message's clear timer only clears its own message.
type Board struct {
	ttl time.Duration

	mu      sync.Mutex
	current *Message
	next    Token
	timers  map[Token]*time.Timer
	closed  bool
}

// NewBoard creates a board. A non-positive ttl uses DefaultTTL.
func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Board{ttl: ttl, timers: make(map[Token]*time.Timer)}
}

// Post shows text and schedules it to clear after the board's TTL.
func (b *Board) Post(level Level, text string) Token {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	tok := b.next
	b.current = &Message{Level: level, Text: text, PostedAt: time.Now(), Token: tok}
	if !b.closed {
		b.timers[tok] = time.AfterFunc(b.ttl, func() { b.expire(tok) })
	}
	return tok
}

// Info and Error are shorthands for Post.
func (b *Board) Info(text string) Token  { return b.Post(Info, text) }
func (b *Board) Error(text string) Token { return b.Post(Error, text) }

func (b *Board) expire(tok Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.timers, tok)
	if b.current != nil && b.current.Token == tok {
		b.current = nil
	}
}

// Current returns the visible message, if any.
func (b *Board) Current() (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Message{}, false
	}
	return *b.current, true
}

// Clear removes the visible message immediately.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}

// Close stops pending timers. Messages posted afterwards never expire.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for tok, t := range b.timers {
		t.Stop()
		delete(b.timers, tok)
	}
}
