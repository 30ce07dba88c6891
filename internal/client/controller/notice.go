package controller

import (
	"sync"
	"time"
)

type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

// Banner is a transient user-visible message.
type Banner struct {
	Kind Kind
	Text string
}

// Notices holds at most one banner and clears it when its lifetime ends.
// A newer banner replaces the older one and its timer.
type Notices struct {
	mu     sync.Mutex
	banner *Banner
	timer  *time.Timer
	gen    uint64
	closed bool
}

// Show displays text for ttl. A ttl <= 0 keeps it until replaced or cleared.
func (n *Notices) Show(kind Kind, text string, ttl time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	n.stopLocked()
	n.gen++
	n.banner = &Banner{Kind: kind, Text: text}

	if ttl > 0 {
		gen := n.gen
		n.timer = time.AfterFunc(ttl, func() { n.expire(gen) })
	}
}

func (n *Notices) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.gen == gen {
		n.banner = nil
		n.timer = nil
	}
}

func (n *Notices) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// Current returns the banner on display, if any.
func (n *Notices) Current() (Banner, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.banner == nil {
		return Banner{}, false
	}
	return *n.banner, true
}

func (n *Notices) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	n.gen++
	n.banner = nil
}

// Close clears the banner, stops its timer and ignores later Show calls.
func (n *Notices) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	n.gen++
	n.banner = nil
	n.closed = true
}
