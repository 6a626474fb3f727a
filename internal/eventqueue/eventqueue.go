/*
 * sngisdn - Bounded per-span event FIFO.
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

// Package eventqueue is the bounded FIFO feeding a SpanEngine: stack
// indications, application commands and fired timers all funnel through
// one of these per span.
package eventqueue

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rcornwell/sngisdn/internal/sigtypes"
)

// Capacity is the fixed bound named in the component design: 100 events
// per span.
const Capacity = 100

// Queue is a bounded, non-blocking-to-post FIFO of sigtypes.CallEvent.
type Queue struct {
	mu       sync.Mutex
	notEmpty chan struct{}
	buf      []sigtypes.CallEvent
	head     int
	count    int
	dropped  atomic.Uint64
}

// New creates an empty queue of fixed capacity.
func New() *Queue {
	return &Queue{
		buf:      make([]sigtypes.CallEvent, Capacity),
		notEmpty: make(chan struct{}, 1),
	}
}

// Post enqueues ev. It never blocks: on overflow it returns ErrQueueFull
// and the caller must drop the event and log. Protocol liveness is
// protected by stack-side retransmission, not by the queue.
func (q *Queue) Post(ev sigtypes.CallEvent) error {
	q.mu.Lock()
	if q.count == len(q.buf) {
		q.mu.Unlock()
		q.dropped.Add(1)
		return sigtypes.ErrQueueFull
	}
	tail := (q.head + q.count) % len(q.buf)
	q.buf[tail] = ev
	q.count++
	q.mu.Unlock()

	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
	return nil
}

// tryPop removes and returns the oldest event, if any.
func (q *Queue) tryPop() (sigtypes.CallEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return sigtypes.CallEvent{}, false
	}
	ev := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return ev, true
}

// DrainPoll is the span loop's fetch primitive: it returns every event
// currently queued, waiting up to interval if the queue is empty when
// called.
func (q *Queue) DrainPoll(interval time.Duration) []sigtypes.CallEvent {
	if ev, ok := q.tryPop(); ok {
		out := []sigtypes.CallEvent{ev}
		for {
			next, ok := q.tryPop()
			if !ok {
				return out
			}
			out = append(out, next)
		}
	}

	select {
	case <-q.notEmpty:
	case <-time.After(interval):
		return nil
	}

	var out []sigtypes.CallEvent
	for {
		ev, ok := q.tryPop()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

// Dropped returns the cumulative overflow counter, so dropped events are
// always observable.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Len returns the number of events currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
