// Package progress carries human readable status lines from a running batch
// to whoever displays them.
package progress

import (
	"strings"
	"sync"

	"movie-recap/pkg/util"
)

const (
	DefaultCapacity = 300
	DefaultLineMax  = 600
)

// Sink receives status lines.
type Sink interface {
	Push(line string)
}

// Discard drops every line.
var Discard Sink = discard{}

type discard struct{}

func (discard) Push(string) {}

// Ring keeps the most recent lines. Each pushed line gets a sequence number
// so readers can ask only for what they have not seen yet.
type Ring struct {
	mu      sync.Mutex
	lines   []string
	next    int
	full    bool
	seq     uint64
	lineMax int
	notify  chan struct{}
}

func NewRing(capacity, lineMax int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if lineMax <= 0 {
		lineMax = DefaultLineMax
	}
	return &Ring{
		lines:   make([]string, capacity),
		lineMax: lineMax,
		notify:  make(chan struct{}),
	}
}

// Push appends a line, splitting on newlines and truncating each part to the
// line limit on a rune boundary.
func (r *Ring) Push(line string) {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), "\n")

	r.mu.Lock()
	for _, p := range parts {
		r.lines[r.next] = util.TruncateUTF8(strings.TrimRight(p, "\r"), r.lineMax)
		r.next = (r.next + 1) % len(r.lines)
		if r.next == 0 {
			r.full = true
		}
		r.seq++
	}
	ch := r.notify
	r.notify = make(chan struct{})
	r.mu.Unlock()

	close(ch)
}

// Write lets the ring sit behind an io.Writer.
func (r *Ring) Write(p []byte) (int, error) {
	r.Push(string(p))
	return len(p), nil
}

// Lines returns the buffered lines, oldest first.
func (r *Ring) Lines() []string {
	lines, _ := r.Since(0)
	return lines
}

// Since returns the buffered lines pushed after sequence number after, oldest
// first, and the sequence number of the newest line. Lines that already fell
// out of the ring are skipped. A cursor ahead of the ring, as held by a
// reader across a restart, reads from the oldest buffered line.
func (r *Ring) Since(after uint64) ([]string, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.next
	if r.full {
		count = len(r.lines)
	}
	oldest := r.seq - uint64(count)
	if after < oldest || after > r.seq {
		after = oldest
	}
	n := int(r.seq - after)
	if n <= 0 {
		return nil, r.seq
	}

	out := make([]string, 0, n)
	start := (r.next - n + len(r.lines)) % len(r.lines)
	for i := 0; i < n; i++ {
		out = append(out, r.lines[(start+i)%len(r.lines)])
	}
	return out, r.seq
}

// Changed returns a channel closed at the next Push.
func (r *Ring) Changed() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notify
}
