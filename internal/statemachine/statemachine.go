/*
 * sngisdn - Per-channel Q.931-derived call-control state machine.
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

// Package statemachine implements the per-ChannelSlot call-control FSM:
// states, guards, actions and the glare-arbitration and facility-timeout
// policies layered on top of them. Step applies one event and records any
// state change and any signal to deliver; StateAdvance runs the entry
// action for whatever state the slot ended up in, including delivering
// that signal, once the span loop reaches the slot in its dirty scan.
package statemachine

import (
	"fmt"
	"time"

	"github.com/rcornwell/sngisdn/internal/channelslot"
	"github.com/rcornwell/sngisdn/internal/registry"
	"github.com/rcornwell/sngisdn/internal/sigtypes"
	"github.com/rcornwell/sngisdn/internal/timerwheel"
)

// Sender is the downstream, stack-facing set of outbound primitives. A
// real implementation wraps the ISDN protocol stack library.
type Sender interface {
	SndSetup(slot *channelslot.Slot) error
	SndProceed(slot *channelslot.Slot) error
	SndProgress(slot *channelslot.Slot) error
	SndAlert(slot *channelslot.Slot) error
	SndConnect(slot *channelslot.Slot) error
	SndDisconnect(slot *channelslot.Slot, cause string) error
	SndRelease(slot *channelslot.Slot, cause string) error
	SndReset(slot *channelslot.Slot) error
	SndConComplete(slot *channelslot.Slot) error
	SndFacReq(slot *channelslot.Slot, payload []byte) error
	SndInfoReq(slot *channelslot.Slot) error
	SndStatusEnq(slot *channelslot.Slot) error
	SndData(slot *channelslot.Slot, payload []byte) error
	SndEvent(slot *channelslot.Slot, payload []byte) error
}

// Policy is the slice of a span's configuration the FSM consults.
type Policy struct {
	Role             sigtypes.Role
	SetupArbitration bool
	FacilityIEDecode bool
	FacilityTimeout  time.Duration // 0 = disabled
}

// Deps bundles everything Step/StateAdvance need beyond the slot and the
// event itself.
type Deps struct {
	Registry  *registry.VariantCC
	Timers    *timerwheel.TimerWheel
	Sender    Sender
	Policy    Policy
	PostTimer timerwheel.PostFunc
}

// localWinsGlare decides glare arbitration: by default the CPE side's
// outbound attempt wins, and setup_arb inverts the tie-break. Both ends
// of one Q.931 link share the same channel numbering, so the tie-break
// must come from role and policy, not from the channel tuple.
func localWinsGlare(p Policy) bool {
	return (p.Role == sigtypes.RoleCPE) != p.SetupArbitration
}

// Step applies ev to slot, running its guard and action. Any state change
// is recorded via slot.SetState (which marks the slot dirty for the span
// loop's scan); any application signal due alongside the new state is
// recorded via slot.QueueSignal. Step never blocks and never signals the
// application directly — that is StateAdvance's job, run later under the
// same span lock by the span loop.
func Step(slot *channelslot.Slot, ev sigtypes.CallEvent, d Deps) error {
	switch ev.Kind {
	case sigtypes.EvAppCommand:
		return stepAppCommand(slot, ev, d)
	case sigtypes.EvConInd:
		return stepConInd(slot, ev, d)
	case sigtypes.EvConCfm:
		return stepConCfm(slot, ev, d)
	case sigtypes.EvCnstInd:
		return stepCnstInd(slot, ev, d)
	case sigtypes.EvDiscInd:
		return stepDiscInd(slot, d)
	case sigtypes.EvRelInd:
		return stepRelInd(slot, d)
	case sigtypes.EvFacInd:
		return stepFacInd(slot, ev, d)
	case sigtypes.EvRstInd:
		return stepRstInd(slot, d)
	case sigtypes.EvTimer:
		return stepTimer(slot, ev, d)
	default:
		return protocolViolation(slot, d)
	}
}

func protocolViolation(slot *channelslot.Slot, d Deps) error {
	if d.Sender != nil {
		_ = d.Sender.SndStatusEnq(slot)
	}
	return fmt.Errorf("%w: state=%s", sigtypes.ErrProtocolViolation, slot.State)
}

func stepAppCommand(slot *channelslot.Slot, ev sigtypes.CallEvent, d Deps) error {
	switch ev.App.Kind {
	case sigtypes.CmdDial:
		if slot.State != sigtypes.Down || !slot.Free() {
			return protocolViolation(slot, d)
		}
		if _, err := d.Registry.AllocLocal(slot); err != nil {
			slot.QueueSignal(sigtypes.SigStop)
			slot.PendingCause = "circuit_congestion"
			return sigtypes.ErrCircuitCongestion
		}
		slot.Caller = ev.App.Caller
		if err := d.Sender.SndSetup(slot); err != nil {
			return err
		}
		if isBRI(slot) {
			slot.SetFlag(sigtypes.Activating)
		}
		slot.SetState(sigtypes.Dialing)
		return nil

	case sigtypes.CmdProceed:
		if slot.State != sigtypes.Ring {
			return protocolViolation(slot, d)
		}
		if err := d.Sender.SndProceed(slot); err != nil {
			return err
		}
		slot.SetFlag(sigtypes.SentProceed)
		slot.SetState(sigtypes.Ring)
		return nil

	case sigtypes.CmdAnswer:
		if slot.State != sigtypes.Ring {
			return protocolViolation(slot, d)
		}
		return d.Sender.SndConnect(slot)

	case sigtypes.CmdHangup:
		if slot.State == sigtypes.Down {
			return protocolViolation(slot, d)
		}
		slot.SetFlag(sigtypes.LocalRel)
		if err := d.Sender.SndDisconnect(slot, ev.App.Cause); err != nil {
			return err
		}
		slot.SetState(sigtypes.Hangup)
		return nil

	default:
		return protocolViolation(slot, d)
	}
}

// isBRI reports whether slot belongs to a BRI span (2 B-channels).
// spandata.New stamps this at slot construction time.
func isBRI(slot *channelslot.Slot) bool {
	return slot.IsBRI
}

func stepConInd(slot *channelslot.Slot, ev sigtypes.CallEvent, d Deps) error {
	if slot.State == sigtypes.Dialing {
		// Glare: an inbound SETUP collided with our own outbound one.
		slot.SetFlag(sigtypes.Glare)
		buffered := ev
		slot.Glare = &buffered

		if localWinsGlare(d.Policy) {
			if err := d.Sender.SndRelease(slot, "identified channel in use"); err != nil {
				return err
			}
			slot.ClearFlag(sigtypes.Glare)
			slot.Glare = nil
			slot.SetState(sigtypes.Dialing) // outbound attempt continues unaffected
			return nil
		}

		// We lose: abandon our outbound attempt and accept the buffered
		// inbound call fresh.
		if err := d.Sender.SndRelease(slot, "glare"); err != nil {
			return err
		}
		d.Registry.Release(slot)
		slot.ClearFlag(sigtypes.Glare)
		glareEv := *slot.Glare
		slot.Glare = nil
		slot.LocalInst = 0
		if err := d.Registry.BindPeer(slot, glareEv.PeerInst); err != nil {
			return err
		}
		slot.QueueSignal(sigtypes.SigStart)
		slot.SetState(sigtypes.Ring)
		return nil
	}

	if !slot.Free() {
		if err := d.Sender.SndRelease(slot, "no circuit available"); err != nil {
			return err
		}
		return nil
	}

	if err := d.Registry.BindPeer(slot, ev.PeerInst); err != nil {
		_ = d.Sender.SndRelease(slot, "temporary failure")
		slot.SetState(sigtypes.Hangup)
		return err
	}
	slot.DChanID = ev.DChanID
	slot.CES = ev.CES
	armFacilityTimer(slot, d)
	slot.QueueSignal(sigtypes.SigStart)
	slot.SetState(sigtypes.Ring)
	return nil
}

// armFacilityTimer bounds the wait for a FacInd following call setup, per
// the facility-IE handling design. The handle lands in the slot's single
// cancellable timer entry so delivery can cancel it.
func armFacilityTimer(slot *channelslot.Slot, d Deps) {
	if !d.Policy.FacilityIEDecode || d.Policy.FacilityTimeout <= 0 {
		return
	}
	if d.Timers == nil || d.PostTimer == nil {
		return
	}
	slot.Timers[0] = d.Timers.Schedule(sigtypes.FacilityTimeout, slot.ChanIndex, d.Policy.FacilityTimeout, d.PostTimer)
}

// cancelFacilityTimer cancels a still-pending facility timer, if any.
func cancelFacilityTimer(slot *channelslot.Slot, d Deps) {
	if d.Timers == nil || slot.Timers[0] == 0 {
		return
	}
	d.Timers.Cancel(slot.Timers[0])
	slot.Timers[0] = 0
}

func stepConCfm(slot *channelslot.Slot, ev sigtypes.CallEvent, d Deps) error {
	if err := d.Registry.BindPeer(slot, ev.PeerInst); err != nil {
		_ = d.Sender.SndRelease(slot, "temporary failure")
		slot.SetState(sigtypes.Hangup)
		return err
	}
	switch slot.State {
	case sigtypes.Dialing:
		slot.QueueSignal(sigtypes.SigProgress)
		if slot.FacilityPending != nil || slot.FacilityTimedOut {
			cancelFacilityTimer(slot, d)
			deliverPendingFacility(slot)
		}
		slot.SetState(sigtypes.Progress)
		return nil
	case sigtypes.Ring:
		slot.QueueSignal(sigtypes.SigUp)
		slot.SetState(sigtypes.Up)
		return nil
	default:
		return protocolViolation(slot, d)
	}
}

func stepCnstInd(slot *channelslot.Slot, ev sigtypes.CallEvent, d Deps) error {
	switch ev.Construct {
	case sigtypes.CnstAlert:
		if slot.State != sigtypes.Progress {
			return protocolViolation(slot, d)
		}
		slot.QueueSignal(sigtypes.SigProgressMedia)
		slot.SetState(sigtypes.ProgressMedia)
		return nil
	case sigtypes.CnstConnect:
		if slot.State != sigtypes.Progress && slot.State != sigtypes.ProgressMedia {
			return protocolViolation(slot, d)
		}
		slot.QueueSignal(sigtypes.SigUp)
		slot.SetState(sigtypes.Up)
		return nil
	default:
		return nil
	}
}

func stepDiscInd(slot *channelslot.Slot, d Deps) error {
	if slot.State == sigtypes.Down {
		return protocolViolation(slot, d)
	}
	slot.SetFlag(sigtypes.RemoteRel)
	if err := d.Sender.SndRelease(slot, "normal"); err != nil {
		return err
	}
	slot.SetState(sigtypes.Hangup)
	return nil
}

func stepRelInd(slot *channelslot.Slot, d Deps) error {
	if slot.State != sigtypes.Hangup {
		return protocolViolation(slot, d)
	}
	d.Registry.Release(slot)
	slot.QueueSignal(sigtypes.SigStop)
	slot.SetState(sigtypes.Terminating)
	return nil
}

func stepRstInd(slot *channelslot.Slot, d Deps) error {
	d.Registry.Release(slot)
	slot.QueueSignal(sigtypes.SigStop)
	slot.SetState(sigtypes.Restart)
	return nil
}

func stepFacInd(slot *channelslot.Slot, ev sigtypes.CallEvent, d Deps) error {
	if !d.Policy.FacilityIEDecode {
		return nil
	}
	if slot.State == sigtypes.Up {
		return protocolViolation(slot, d)
	}
	slot.FacilityPending = ev.Payload
	if slot.Timers[0] == 0 {
		armFacilityTimer(slot, d)
	}
	return nil
}

func stepTimer(slot *channelslot.Slot, ev sigtypes.CallEvent, d Deps) error {
	switch ev.Timer {
	case sigtypes.FacilityTimeout:
		slot.Timers[0] = 0
		if slot.State == sigtypes.Down || slot.FacilityDelivered {
			return nil
		}
		// The bounded facility wait expired: deliver what we have (possibly
		// nothing) with the incomplete flag on a PROGRESS signal.
		slot.FacilityTimedOut = true
		deliverPendingFacility(slot)
		slot.QueueSignal(sigtypes.SigProgress)
		return nil
	default:
		return nil
	}
}

// deliverPendingFacility attaches the buffered facility payload (and the
// incomplete flag if its timer expired first) to the next progress
// signal, per the facility-IE handling design.
func deliverPendingFacility(slot *channelslot.Slot) {
	if slot.FacilityPending == nil && !slot.FacilityTimedOut {
		return
	}
	slot.PendingIncomplete = slot.FacilityTimedOut
	slot.FacilityPending = nil
	slot.FacilityTimedOut = false
	slot.FacilityDelivered = true
}

// StateAdvance runs the entry action for the slot's current state,
// including delivering any queued application signal. It runs after
// Step, under the same span lock, for every slot the dirty scan finds.
func StateAdvance(slot *channelslot.Slot, d Deps, deliver func(slot *channelslot.Slot, sig sigtypes.AppSignal, incomplete bool, cause string)) {
	defer slot.ClearDirty()

	switch slot.State {
	case sigtypes.Terminating, sigtypes.Restart:
		drainSignals(slot, deliver)
		slot.ClearCallData()
		slot.Done()
		slot.SetState(sigtypes.Down)
		slot.ClearDirty()
		return

	default:
		drainSignals(slot, deliver)
	}
}

// drainSignals delivers every queued signal in order. The incomplete and
// cause annotations ride on the first delivery and are reset with it.
func drainSignals(slot *channelslot.Slot, deliver func(slot *channelslot.Slot, sig sigtypes.AppSignal, incomplete bool, cause string)) {
	for {
		sig, ok := slot.TakeSignal()
		if !ok {
			return
		}
		deliver(slot, sig, slot.PendingIncomplete, slot.PendingCause)
		slot.PendingIncomplete = false
		slot.PendingCause = ""
	}
}

// ForceLinkDown applies the D-channel-write-failure / LinkDown failure
// semantics: a non-DOWN slot has its registry entries released, STOP
// queued and is put in RESTART, which StateAdvance clears straight to
// DOWN. The slot does not pass through HANGUP on this path.
func ForceLinkDown(slot *channelslot.Slot, d Deps) {
	if slot.State == sigtypes.Down {
		return
	}
	d.Registry.Release(slot)
	slot.QueueSignal(sigtypes.SigStop)
	slot.SetState(sigtypes.Restart)
}
