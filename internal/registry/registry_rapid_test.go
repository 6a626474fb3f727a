/*
 * sngisdn - CallInstanceRegistry property tests.
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

package registry

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/rcornwell/sngisdn/internal/channelslot"
)

// TestRegistryCrossMapConsistent: every live local id is claimed by at
// most one slot, and the local/peer cross map stays symmetric through an
// arbitrary sequence of alloc/bind/release.
func TestRegistryCrossMapConsistent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := New()
		var live []*channelslot.Slot

		steps := rapid.IntRange(1, 200).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0: // alloc
				s := channelslot.New(1, i, 1, i)
				if _, err := v.AllocLocal(s); err == nil {
					live = append(live, s)
				}
			case 1: // bind peer on a random live slot
				if len(live) == 0 {
					continue
				}
				idx := rapid.IntRange(0, len(live)-1).Draw(t, "idx")
				peer := rapid.Uint32Range(1, MaxInstID).Draw(t, "peer")
				_ = v.BindPeer(live[idx], peer) // collisions are an expected outcome, not a failure
			case 2: // release a random live slot
				if len(live) == 0 {
					continue
				}
				idx := rapid.IntRange(0, len(live)-1).Draw(t, "idx")
				v.Release(live[idx])
				live = append(live[:idx], live[idx+1:]...)
			}
		}

		for _, s := range live {
			if s.LocalInst != 0 {
				got, ok := v.FindByLocal(s.LocalInst)
				if !ok || got != s {
					t.Fatalf("FindByLocal(%d) = %v, %v; want %v, true", s.LocalInst, got, ok, s)
				}
			}
			if s.PeerInst != 0 {
				got, ok := v.FindByPeer(s.PeerInst)
				if !ok || got != s {
					t.Fatalf("FindByPeer(%d) = %v, %v; want %v, true", s.PeerInst, got, ok, s)
				}
			}
		}
	})
}
