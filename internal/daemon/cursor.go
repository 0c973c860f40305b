/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package daemon

import (
	"sync"

	"github.com/nabbar/sectora/internal/wire"
)

// entryKind names one of the three enumerable record families.
type entryKind int

const (
	pwEntry entryKind = iota
	spEntry
	grEntry
)

type cursorKey struct {
	pid  int
	kind entryKind
}

// cursorTable holds the daemon's per-caller enumeration state: an ordered
// queue of pre-rendered replies per (pid, kind), per spec.md §3's
// "Enumeration cursor". It is mutated only from the single-threaded dispatch
// loop, but the mutex lets tests drive it concurrently without races.
type cursorTable struct {
	mu      sync.Mutex
	cursors map[cursorKey][]wire.Reply
}

func newCursorTable() *cursorTable {
	return &cursorTable{cursors: make(map[cursorKey][]wire.Reply)}
}

// set installs records as pid's cursor for kind, replacing any prior cursor
// of that kind for that pid.
func (t *cursorTable) set(pid int, kind entryKind, records []wire.Reply) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursors[cursorKey{pid, kind}] = records
}

// next pops the front record off pid's cursor for kind. ok is false if the
// cursor is absent or exhausted.
func (t *cursorTable) next(pid int, kind entryKind) (wire.Reply, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := cursorKey{pid, kind}
	queue, ok := t.cursors[key]
	if !ok || len(queue) == 0 {
		return nil, false
	}
	t.cursors[key] = queue[1:]
	return queue[0], true
}

// end drops pid's cursor for kind, if any.
func (t *cursorTable) end(pid int, kind entryKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cursors, cursorKey{pid, kind})
}
