/*
 * sngisdn - ChannelSlot tests.
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

package channelslot

import (
	"testing"

	"github.com/rcornwell/sngisdn/internal/sigtypes"
)

func TestFlagsRoundTrip(t *testing.T) {
	s := New(1, 1, 1, 1)
	s.SetFlag(sigtypes.Glare | sigtypes.SentProceed)
	if !s.TestFlag(sigtypes.Glare) {
		t.Fatal("GLARE not set")
	}
	if !s.TestFlag(sigtypes.SentProceed) {
		t.Fatal("SENT_PROCEED not set")
	}
	s.ClearFlag(sigtypes.Glare)
	if s.TestFlag(sigtypes.Glare) {
		t.Fatal("GLARE still set after clear")
	}
	if !s.TestFlag(sigtypes.SentProceed) {
		t.Fatal("ClearFlag disturbed an unrelated bit")
	}
}

func TestSetStateMarksDirty(t *testing.T) {
	s := New(1, 1, 1, 1)
	if s.Dirty() {
		t.Fatal("fresh slot should not be dirty")
	}
	s.SetState(sigtypes.Dialing)
	if s.State != sigtypes.Dialing {
		t.Fatalf("State = %v, want Dialing", s.State)
	}
	if !s.Dirty() {
		t.Fatal("SetState should mark the slot dirty")
	}
	s.ClearDirty()
	if s.Dirty() {
		t.Fatal("ClearDirty should clear the dirty flag")
	}
}

func TestClearCallDataPreservesIdentity(t *testing.T) {
	s := New(2, 5, 2, 5)
	s.LocalInst = 9
	s.PeerInst = 3
	s.SetFlag(sigtypes.Glare)
	s.ClearCallData()

	if s.SpanID != 2 || s.ChanIndex != 5 || s.PhysSpan != 2 || s.PhysChan != 5 {
		t.Fatal("ClearCallData must preserve identity fields")
	}
	if s.LocalInst != 0 || s.PeerInst != 0 || s.Flags != 0 {
		t.Fatal("ClearCallData must zero per-call fields")
	}
}

func TestDoneIsIdempotent(t *testing.T) {
	s := New(1, 1, 1, 1)
	s.Open()
	s.Done()
	s.Done()
	if s.IsOpen() {
		t.Fatal("slot still reports open after Done")
	}
}

func TestFree(t *testing.T) {
	s := New(1, 1, 1, 1)
	if !s.Free() {
		t.Fatal("fresh slot should be free")
	}
	s.LocalInst = 1
	if s.Free() {
		t.Fatal("slot with a bound local_inst should not be free")
	}
}
