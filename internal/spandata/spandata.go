/*
 * sngisdn - Per-span state: slot array, NFAS grouping, alarm bookkeeping.
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

// Package spandata holds SpanData, the identity and slot arena for one
// logical span, and DChannelGroup, the NFAS grouping of
// 1..MaxSpansPerNFASLink spans sharing a single D-channel. Per the cyclic-reference design note,
// SpanData owns its slots outright; every other component addresses a
// slot by (span_id, index), never by a stored pointer that would create a
// cycle back to the span.
package spandata

import (
	"sync"
	"time"

	"github.com/rcornwell/sngisdn/internal/channelslot"
	"github.com/rcornwell/sngisdn/internal/dchanport"
	"github.com/rcornwell/sngisdn/internal/engineconfig"
	"github.com/rcornwell/sngisdn/internal/eventqueue"
	"github.com/rcornwell/sngisdn/internal/statemachine"
)

// MaxSpansPerNFASLink bounds the spans sharing one physical D-channel.
const MaxSpansPerNFASLink = 16

// AlarmState tracks the span-level ALARM_TRAP/ALARM_CLEAR bookkeeping:
// a trap is raised on link loss and cleared on the first successful port
// I/O afterward.
type AlarmState struct {
	Trapped bool
	TrapAt  time.Time
	ClearAt time.Time
}

// SpanData is the arena for one logical span: its channel slots, event
// queue, D-channel port and policy. Span and link identifiers and the
// channel-slot array are fixed at construction; Policy/TraceQ921/
// TraceQ931 may be adjusted by the operator between calls.
type SpanData struct {
	SpanID int
	LinkID int
	Config engineconfig.SpanConfig

	Slots []*channelslot.Slot
	Queue *eventqueue.Queue
	Port  dchanport.Port

	Policy statemachine.Policy

	TraceQ921 bool
	TraceQ931 bool

	Alarm AlarmState

	// Lock is SpanData.lock from the concurrency model: slot flags,
	// state transitions and application callback dispatch all run
	// under it. The registry and port mutexes are leaves: they are
	// taken and released inside single calls while this lock is held,
	// and neither ever acquires a span lock back.
	Lock sync.Mutex
}

// New builds a SpanData from a validated SpanConfig and a concrete
// DChannelPort, allocating cfg.ChanCount channel slots. BRI spans
// (ChanCount == 2) mark every slot IsBRI so the FSM's ACTIVATING-flag
// guard applies.
func New(cfg engineconfig.SpanConfig, port dchanport.Port) *SpanData {
	isBRI := cfg.ChanCount == 2
	slots := make([]*channelslot.Slot, cfg.ChanCount)
	for i := range slots {
		slots[i] = channelslot.New(cfg.SpanID, i, cfg.PhysSpan, i)
		slots[i].IsBRI = isBRI
		slots[i].DChanID = cfg.DChanIndex
	}

	return &SpanData{
		SpanID: cfg.SpanID,
		LinkID: cfg.DChanIndex,
		Config: cfg,
		Slots:  slots,
		Queue:  eventqueue.New(),
		Port:   port,
		Policy: statemachine.Policy{
			Role:             cfg.Signalling,
			SetupArbitration: cfg.SetupArbitration,
			FacilityIEDecode: cfg.FacilityIEDecode,
			FacilityTimeout:  time.Duration(cfg.FacilityTimeoutS) * time.Second,
		},
		TraceQ921: cfg.TraceQ921,
		TraceQ931: cfg.TraceQ931,
	}
}

// SlotByIndex returns the slot at index, or nil if out of range.
func (s *SpanData) SlotByIndex(index int) *channelslot.Slot {
	if index < 0 || index >= len(s.Slots) {
		return nil
	}
	return s.Slots[index]
}

// FreeSlot returns the first idle slot whose physical D-channel id
// matches dchanID, the channel-selection rule for a fresh inbound call
// that does not yet name a specific physical channel. A CES-addressed
// BRI lookup narrows further by ces when ces != 0.
func (s *SpanData) FreeSlot(dchanID, ces int) *channelslot.Slot {
	for _, slot := range s.Slots {
		if slot.DChanID != dchanID {
			continue
		}
		if ces != 0 && slot.CES != 0 && slot.CES != ces {
			continue
		}
		if slot.Free() {
			return slot
		}
	}
	return nil
}

// ActiveCount reports the number of slots not currently DOWN. At any
// idle instant, DOWN-count plus active-count equals the channel count.
func (s *SpanData) ActiveCount() int {
	n := 0
	for _, slot := range s.Slots {
		if slot.State != 0 { // sigtypes.Down == 0
			n++
		}
	}
	return n
}

// RaiseAlarm marks the span's alarm as trapped at t, if not already.
func (s *SpanData) RaiseAlarm(t time.Time) bool {
	if s.Alarm.Trapped {
		return false
	}
	s.Alarm.Trapped = true
	s.Alarm.TrapAt = t
	return true
}

// ClearAlarm clears a previously-raised trap at t, reporting whether a
// clear signal is newly due.
func (s *SpanData) ClearAlarm(t time.Time) bool {
	if !s.Alarm.Trapped {
		return false
	}
	s.Alarm.Trapped = false
	s.Alarm.ClearAt = t
	return true
}

// DChannelGroup is an NFAS grouping: 1..MaxSpansPerNFASLink spans sharing
// one physical D-channel, addressed by physical index. Writes through the
// shared Port are serialized by the Port's own lock, so the group itself
// holds no additional lock beyond ordering which SpanData a given frame
// belongs to.
type DChannelGroup struct {
	Port  dchanport.Port
	Spans []*SpanData
}

// NewDChannelGroup groups spans (already constructed, normally sharing the
// same Port) under one NFAS link. Members beyond the first
// MaxSpansPerNFASLink are dropped.
func NewDChannelGroup(port dchanport.Port, spans ...*SpanData) *DChannelGroup {
	if len(spans) > MaxSpansPerNFASLink {
		spans = spans[:MaxSpansPerNFASLink]
	}
	return &DChannelGroup{Port: port, Spans: spans}
}

// SpanByID returns the member span with the given SpanID, or nil.
func (g *DChannelGroup) SpanByID(spanID int) *SpanData {
	for _, sp := range g.Spans {
		if sp.SpanID == spanID {
			return sp
		}
	}
	return nil
}
