/*
 * sngisdn - One B-channel: identity, flags, timers.
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

// Package channelslot holds ChannelSlot, the arena-style per-B-channel
// record. A slot never owns its span or registry by pointer; callers
// address it by (span_id, index), so a ChannelSlot carries only its own
// identity and call-local state.
package channelslot

import (
	"fmt"

	"github.com/rcornwell/sngisdn/internal/sigtypes"
	"github.com/rcornwell/sngisdn/internal/timerwheel"
)

// NumCancellable is the number of cancellable timer slots a ChannelSlot
// carries. The facility timer is the only one currently cancellable.
const NumCancellable = 1

// Slot is one B-channel.
type Slot struct {
	SpanID    int
	ChanIndex int
	PhysSpan  int
	PhysChan  int

	Flags sigtypes.Flags
	State sigtypes.State

	// dirty is set whenever State changes and cleared once the span loop
	// has run state_advance for it.
	dirty bool

	LocalInst uint32
	PeerInst  uint32

	CES     int
	DChanID int

	// IsBRI marks a slot belonging to a 2-B-channel BRI span, for the
	// ACTIVATING-flag behavior that only applies there.
	IsBRI bool

	// Glare holds a buffered inbound ConInd that collided with our own
	// outbound SETUP; populated iff Flags.Test(sigtypes.Glare).
	Glare *sigtypes.CallEvent

	// FacilityPending holds a facility IE payload buffered ahead of ConCfm.
	FacilityPending   []byte
	FacilityTimedOut  bool
	FacilityDelivered bool

	Timers [NumCancellable]timerwheel.Handle

	// opened tracks whether the media path is acquired; done() must be
	// idempotent with respect to it.
	opened bool

	Caller sigtypes.CallerData

	// pendingSigs/PendingIncomplete are entry-action outputs set by
	// StateMachine.Step and delivered by StateMachine.StateAdvance once
	// the span loop's dirty-slot scan reaches this slot. Signals queue
	// in order: one drained event batch may ripple a slot through
	// several states before the scan runs, and every signal along the
	// way is owed to the application.
	pendingSigs       []sigtypes.AppSignal
	PendingIncomplete bool
	PendingCause      string
}

// New creates an idle slot for the given identity.
func New(spanID, chanIndex, physSpan, physChan int) *Slot {
	return &Slot{
		SpanID:    spanID,
		ChanIndex: chanIndex,
		PhysSpan:  physSpan,
		PhysChan:  physChan,
		State:     sigtypes.Down,
	}
}

func (s *Slot) String() string {
	return fmt.Sprintf("(span=%d,chan=%d)", s.SpanID, s.ChanIndex)
}

// TestFlag reports whether every bit of mask is set. Callers must hold the
// owning SpanData's lock.
func (s *Slot) TestFlag(mask sigtypes.Flags) bool {
	return s.Flags.Test(mask)
}

// SetFlag ORs mask into the slot's flags. Callers must hold the owning
// SpanData's lock.
func (s *Slot) SetFlag(mask sigtypes.Flags) {
	s.Flags = s.Flags.Set(mask)
}

// ClearFlag ANDs mask out of the slot's flags. Callers must hold the
// owning SpanData's lock.
func (s *Slot) ClearFlag(mask sigtypes.Flags) {
	s.Flags = s.Flags.Clear(mask)
}

// SetState enqueues a state-change intent: it records the new state and
// marks the slot dirty so the span loop's state_advance scan picks it up.
// The actual transition entry action runs on the span loop, never here.
func (s *Slot) SetState(next sigtypes.State) {
	s.State = next
	s.dirty = true
}

// QueueSignal arranges for sig to be delivered to the application the
// next time the span loop runs state_advance for this slot.
func (s *Slot) QueueSignal(sig sigtypes.AppSignal) {
	s.pendingSigs = append(s.pendingSigs, sig)
	s.dirty = true
}

// TakeSignal consumes the oldest pending signal, if any.
func (s *Slot) TakeSignal() (sigtypes.AppSignal, bool) {
	if len(s.pendingSigs) == 0 {
		return 0, false
	}
	sig := s.pendingSigs[0]
	s.pendingSigs = s.pendingSigs[1:]
	return sig, true
}

// Dirty reports whether the slot has a pending state_advance to run.
func (s *Slot) Dirty() bool {
	return s.dirty
}

// ClearDirty is called by the span loop once state_advance has run.
func (s *Slot) ClearDirty() {
	s.dirty = false
}

// Open acquires the slot's media path.
func (s *Slot) Open() {
	s.opened = true
}

// Done releases the slot's media path. Done must be idempotent.
func (s *Slot) Done() {
	s.opened = false
}

// IsOpen reports whether the media path is currently acquired.
func (s *Slot) IsOpen() bool {
	return s.opened
}

// ClearCallData zeroes every per-call field, preserving identity
// (SpanID, ChanIndex, PhysSpan, PhysChan).
func (s *Slot) ClearCallData() {
	s.Flags = 0
	s.LocalInst = 0
	s.PeerInst = 0
	s.CES = 0
	s.Glare = nil
	s.FacilityPending = nil
	s.FacilityTimedOut = false
	s.FacilityDelivered = false
	s.Timers = [NumCancellable]timerwheel.Handle{}
	s.Caller = sigtypes.CallerData{}
	s.pendingSigs = nil
	s.PendingIncomplete = false
	s.PendingCause = ""
	s.opened = false
}

// Free reports whether the slot has no active call: DOWN state and no
// instance ids bound, the precondition for AppCmd::Dial and for inbound
// ConInd acceptance.
func (s *Slot) Free() bool {
	return s.State == sigtypes.Down && s.LocalInst == 0 && s.PeerInst == 0
}
