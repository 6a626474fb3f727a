/*
 * sngisdn - EventQueue property tests.
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

package eventqueue

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/rcornwell/sngisdn/internal/sigtypes"
)

// TestQueueNeverExceedsCapacityProperty: whatever sequence of posts
// arrives, the queue never holds more than Capacity events, and every
// rejection is reflected in the dropped counter.
func TestQueueNeverExceedsCapacityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := New()
		posts := rapid.IntRange(0, Capacity*3).Draw(t, "posts")
		wantDropped := 0
		for i := 0; i < posts; i++ {
			err := q.Post(sigtypes.CallEvent{Kind: sigtypes.EvTimer, TimerSlot: i})
			if err != nil {
				wantDropped++
			}
			if q.Len() > Capacity {
				t.Fatalf("queue length %d exceeds capacity %d", q.Len(), Capacity)
			}
		}
		if int(q.Dropped()) != wantDropped {
			t.Fatalf("dropped = %d, want %d", q.Dropped(), wantDropped)
		}
	})
}
