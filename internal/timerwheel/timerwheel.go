/*
 * sngisdn - Scheduled, cancellable per-span timers.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package timerwheel schedules cancellable, delayed callbacks that fire by
// posting a Timer event back to the owning span's queue rather than by
// running the callback in the wheel's own goroutine: one scheduler
// goroutine, a min-heap of deadlines, and a wakeup on every Schedule so
// the scheduler re-reads the nearest deadline.
package timerwheel

import (
	"container/heap"
	"sync"
	"time"

	"github.com/rcornwell/sngisdn/internal/sigtypes"
)

// PostFunc delivers a fired timer to its owning span's event queue.
// Firing never runs on the wheel goroutine directly: expiry runs on the
// span loop.
type PostFunc func(kind sigtypes.TimerKind, slot int)

// Handle identifies a scheduled timer for cancellation.
type Handle uint64

type entry struct {
	deadline time.Time
	kind     sigtypes.TimerKind
	slot     int
	post     PostFunc
	handle   Handle
	index    int // heap.Interface bookkeeping
	canceled bool
}

type entryHeap []*entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *entryHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// TimerWheel is a single scheduler goroutine driving a min-heap of
// deadlines, shared process-wide by every span.
type TimerWheel struct {
	mu      sync.Mutex
	heap    entryHeap
	byID    map[Handle]*entry
	nextID  Handle
	wake    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates and starts a TimerWheel.
func New() *TimerWheel {
	w := &TimerWheel{
		byID: make(map[Handle]*entry),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Schedule arranges for post(kind, slot) to be invoked after delay.
func (w *TimerWheel) Schedule(kind sigtypes.TimerKind, slot int, delay time.Duration, post PostFunc) Handle {
	w.mu.Lock()
	w.nextID++
	e := &entry{
		deadline: time.Now().Add(delay),
		kind:     kind,
		slot:     slot,
		post:     post,
		handle:   w.nextID,
	}
	w.byID[e.handle] = e
	heap.Push(&w.heap, e)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return e.handle
}

// Cancel reports whether the timer was still pending (true) when canceled.
// Once Cancel returns true the fire callback for that handle will never
// run.
func (w *TimerWheel) Cancel(h Handle) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.byID[h]
	if !ok || e.canceled {
		return false
	}
	e.canceled = true
	delete(w.byID, h)
	return true
}

// Shutdown stops the scheduler goroutine.
func (w *TimerWheel) Shutdown() {
	close(w.done)
	w.wg.Wait()
}

func (w *TimerWheel) run() {
	defer w.wg.Done()
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		w.mu.Lock()
		var wait time.Duration
		if len(w.heap) == 0 {
			wait = time.Hour
		} else {
			wait = time.Until(w.heap[0].deadline)
			if wait < 0 {
				wait = 0
			}
		}
		w.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-w.done:
			return
		case <-w.wake:
			continue
		case <-timer.C:
			w.fireDue()
		}
	}
}

func (w *TimerWheel) fireDue() {
	now := time.Now()
	var fired []*entry
	w.mu.Lock()
	for len(w.heap) > 0 && !w.heap[0].deadline.After(now) {
		e := heap.Pop(&w.heap).(*entry)
		if e.canceled {
			continue
		}
		delete(w.byID, e.handle)
		fired = append(fired, e)
	}
	w.mu.Unlock()

	for _, e := range fired {
		e.post(e.kind, e.slot)
	}
}
