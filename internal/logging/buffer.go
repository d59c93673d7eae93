package logging

import (
	"bytes"
	"strings"
	"sync"
)

const DefaultBufferLines = 500

// Buffer is an io.Writer that keeps the last N complete lines written to it.
// It is safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	max     int
	lines   []string
	partial bytes.Buffer
	total   int
}

func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultBufferLines
	}
	return &Buffer{max: max}
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.partial.Write(p)
	for {
		data := b.partial.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		b.push(strings.TrimRight(string(data[:i]), "\r"))
		b.partial.Next(i + 1)
	}
	return len(p), nil
}

func (b *Buffer) push(line string) {
	b.total++
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = append(b.lines[:0:0], b.lines[len(b.lines)-b.max:]...)
	}
}

// Lines returns a copy of the retained lines, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Tail returns up to the last n retained lines.
func (b *Buffer) Tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > len(b.lines) {
		n = len(b.lines)
	}
	out := make([]string, n)
	copy(out, b.lines[len(b.lines)-n:])
	return out
}

// Total counts every line ever written, including evicted ones.
func (b *Buffer) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}
