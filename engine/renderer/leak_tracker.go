package renderer

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// leakTracker keeps the set of live GPU handles per kind.
type leakTracker struct {
	mu   *sync.Mutex
	live map[HandleKind]map[uint32]string
}

func newLeakTracker() *leakTracker {
	return &leakTracker{
		mu:   &sync.Mutex{},
		live: make(map[HandleKind]map[uint32]string),
	}
}

func (t *leakTracker) acquire(kind HandleKind, handle uint32, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.live[kind] == nil {
		t.live[kind] = make(map[uint32]string)
	}
	t.live[kind][handle] = label
}

// release reports false if the handle was not live.
func (t *leakTracker) release(kind HandleKind, handle uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.live[kind][handle]; !ok {
		return false
	}
	delete(t.live[kind], handle)
	return true
}

func (t *leakTracker) counts() map[HandleKind]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[HandleKind]int, len(t.live))
	for kind, handles := range t.live {
		if len(handles) > 0 {
			out[kind] = len(handles)
		}
	}
	return out
}

func (t *leakTracker) total() int {
	n := 0
	for _, c := range t.counts() {
		n += c
	}
	return n
}

// report describes every live handle, sorted by kind then handle.
func (t *leakTracker) report() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var lines []string
	for kind, handles := range t.live {
		for h, label := range handles {
			lines = append(lines, fmt.Sprintf("%s %d (%s)", kind, h, label))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, ", ")
}
