/*
 * sngisdn - Stack callback -> StackEvent translation.
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

// Package stackadapter is the thin translator between the ISDN protocol
// stack library and a span: inbound stack callbacks become typed
// sigtypes.CallEvent values posted to the span's EventQueue, with no
// business logic and no lock beyond the queue's.
//
// The Q.921/Q.931 codec itself lives in the external protocol-stack
// library; Adapter also supplies a concrete, minimal Sender (the outbound
// half of that same boundary) so the engine is runnable end-to-end
// against dchanport.Port without a real stack attached.
package stackadapter

import (
	"encoding/binary"
	"fmt"

	"github.com/rcornwell/sngisdn/internal/channelslot"
	"github.com/rcornwell/sngisdn/internal/dchanport"
	"github.com/rcornwell/sngisdn/internal/logging"
	"github.com/rcornwell/sngisdn/internal/sigtypes"
	"github.com/rcornwell/sngisdn/internal/spandata"
)

// Adapter binds one span to its D-channel port: stack callbacks passed to
// Deliver become CallEvents on the span queue, and the outbound Snd*
// primitives become frame writes through the port. The Adapter does not
// read frames from the port itself.
type Adapter struct {
	Span *spandata.SpanData
	Log  *logging.Logger
}

// New creates an Adapter for span.
func New(span *spandata.SpanData, log *logging.Logger) *Adapter {
	if log == nil {
		log = logging.Discard()
	}
	return &Adapter{Span: span, Log: log}
}

// suUnknown reports an unrecognized suId; such callbacks are dropped
// with a WARN.
func (a *Adapter) suUnknown(suID int) bool {
	return suID != a.Span.SpanID
}

// Deliver translates one stack callback into a CallEvent and posts it.
// suID identifies which span's D-channel the callback belongs to;
// suInstID/spInstID are the upper/lower stack's call instance ids (0 if
// not yet known); dChan/ces address a fresh inbound call that carries no
// instance id yet; payload carries facility/data-indication bytes.
func (a *Adapter) Deliver(suID int, kind sigtypes.EventKind, construct sigtypes.ConstructKind, suInstID, spInstID uint32, dChan, ces int, payload []byte) error {
	if a.suUnknown(suID) {
		a.Log.Warning().Int("su_id", suID).Log("stack callback for unknown suId, dropped")
		return nil
	}
	ev := sigtypes.CallEvent{
		Kind:      kind,
		Construct: construct,
		LocalInst: suInstID,
		PeerInst:  spInstID,
		DChanID:   dChan,
		CES:       ces,
		Payload:   payload,
	}
	if err := a.Span.Queue.Post(ev); err != nil {
		a.Log.Err().Int("span", suID).Str("event", kind.String()).Err(err).Log("event queue full, dropping stack callback")
		return err
	}
	return nil
}

// frame tags used by the reference outbound encoding. The real Q.931
// encoding lives in the out-of-scope protocol-stack library; this is a
// minimal, self-consistent wire shape sufficient to drive dchanport.Port
// end-to-end in tests and the reference deployment.
const (
	tagSetup byte = iota + 1
	tagProceed
	tagProgress
	tagAlert
	tagConnect
	tagDisconnect
	tagRelease
	tagReset
	tagConComplete
	tagFacility
	tagInfo
	tagStatusEnq
	tagData
	tagEvent
)

func (a *Adapter) send(slot *channelslot.Slot, tag byte, cause string, payload []byte) error {
	buf := make([]byte, 0, 8+len(cause)+len(payload))
	buf = append(buf, tag)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(slot.ChanIndex))
	buf = append(buf, idx[:]...)
	buf = append(buf, byte(len(cause)))
	buf = append(buf, cause...)
	buf = append(buf, payload...)

	if a.Span.TraceQ931 {
		a.Span.Port.Trace(dchanport.DirTx, buf)
	}
	if err := a.Span.Port.SendFrame(buf); err != nil {
		return fmt.Errorf("stackadapter: send tag=%d: %w", tag, err)
	}
	return nil
}

func (a *Adapter) SndSetup(slot *channelslot.Slot) error        { return a.send(slot, tagSetup, "", nil) }
func (a *Adapter) SndProceed(slot *channelslot.Slot) error       { return a.send(slot, tagProceed, "", nil) }
func (a *Adapter) SndProgress(slot *channelslot.Slot) error      { return a.send(slot, tagProgress, "", nil) }
func (a *Adapter) SndAlert(slot *channelslot.Slot) error         { return a.send(slot, tagAlert, "", nil) }
func (a *Adapter) SndConnect(slot *channelslot.Slot) error       { return a.send(slot, tagConnect, "", nil) }
func (a *Adapter) SndConComplete(slot *channelslot.Slot) error   { return a.send(slot, tagConComplete, "", nil) }
func (a *Adapter) SndInfoReq(slot *channelslot.Slot) error       { return a.send(slot, tagInfo, "", nil) }
func (a *Adapter) SndStatusEnq(slot *channelslot.Slot) error     { return a.send(slot, tagStatusEnq, "", nil) }

func (a *Adapter) SndDisconnect(slot *channelslot.Slot, cause string) error {
	return a.send(slot, tagDisconnect, cause, nil)
}

func (a *Adapter) SndRelease(slot *channelslot.Slot, cause string) error {
	return a.send(slot, tagRelease, cause, nil)
}

func (a *Adapter) SndReset(slot *channelslot.Slot) error {
	return a.send(slot, tagReset, "", nil)
}

func (a *Adapter) SndFacReq(slot *channelslot.Slot, payload []byte) error {
	return a.send(slot, tagFacility, "", payload)
}

func (a *Adapter) SndData(slot *channelslot.Slot, payload []byte) error {
	return a.send(slot, tagData, "", payload)
}

func (a *Adapter) SndEvent(slot *channelslot.Slot, payload []byte) error {
	return a.send(slot, tagEvent, "", payload)
}
