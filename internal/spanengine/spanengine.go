/*
 * sngisdn - Per-span event loop.
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

// Package spanengine implements the per-span event loop: a
// single-threaded cooperative loop that dequeues a span's events, drives
// them through the state machine and runs entry actions for whatever
// slots end up dirty.
package spanengine

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rcornwell/sngisdn/internal/channelslot"
	"github.com/rcornwell/sngisdn/internal/enginectx"
	"github.com/rcornwell/sngisdn/internal/sigtypes"
	"github.com/rcornwell/sngisdn/internal/spandata"
	"github.com/rcornwell/sngisdn/internal/statemachine"
)

// PollInterval is the EventQueue.DrainPoll timeout the loop blocks on
// between iterations.
const PollInterval = 100 * time.Millisecond

// SignalFunc delivers an application-facing lifecycle signal for slot.
// incomplete flags a facility delivered after its timeout; cause carries
// release-cause detail.
type SignalFunc func(span *spandata.SpanData, slot *channelslot.Slot, sig sigtypes.AppSignal, incomplete bool, cause string)

// Engine is one span's event loop.
type Engine struct {
	Span   *spandata.SpanData
	Ctx    *enginectx.EngineContext
	Sender statemachine.Sender
	Signal SignalFunc

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New builds an Engine for span, not yet started.
func New(span *spandata.SpanData, ctx *enginectx.EngineContext, sender statemachine.Sender, signal SignalFunc) *Engine {
	return &Engine{
		Span:   span,
		Ctx:    ctx,
		Sender: sender,
		Signal: signal,
		done:   make(chan struct{}),
	}
}

// Start launches the loop goroutine.
func (e *Engine) Start() {
	e.running.Store(true)
	e.wg.Add(1)
	go e.run()
}

// Stop sets RUNNING=false and waits (up to one poll interval plus margin)
// for the loop to exit, per the cancellation design: cooperative, no
// forcible termination.
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	close(e.done)

	finished := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * PollInterval):
	}
}

func (e *Engine) run() {
	defer e.wg.Done()

	for e.running.Load() {
		events := e.Span.Queue.DrainPoll(PollInterval)

		select {
		case <-e.done:
			return
		default:
		}

		if len(events) == 0 {
			continue
		}

		e.Span.Lock.Lock()
		deps := e.deps()
		linkLost := false
		for _, ev := range events {
			if e.dispatch(ev, deps) {
				linkLost = true
			}
		}
		for _, slot := range e.Span.Slots {
			if slot.Dirty() {
				statemachine.StateAdvance(slot, deps, e.deliver)
			}
		}
		e.Span.Lock.Unlock()

		if linkLost {
			e.ForceRestart(time.Now())
		}
	}
}

func (e *Engine) deps() statemachine.Deps {
	variant := e.Ctx.Registry(e.Span.Config.SwitchType)
	return statemachine.Deps{
		Registry:  variant,
		Timers:    e.Ctx.Timers,
		Sender:    e.Sender,
		Policy:    e.Span.Policy,
		PostTimer: e.postTimer,
	}
}

// postTimer adapts a fired TimerWheel callback into an EventQueue post,
// so timer expiry runs entirely on the span loop.
func (e *Engine) postTimer(kind sigtypes.TimerKind, slot int) {
	_ = e.Span.Queue.Post(sigtypes.CallEvent{
		Kind:         sigtypes.EvTimer,
		Timer:        kind,
		TimerSlot:    slot,
		ChanIndex:    slot,
		HasChanIndex: true,
	})
}

// dispatch resolves ev's target ChannelSlot and steps the FSM, reporting
// whether the signaling link was observed down. An event that cannot be
// resolved to a slot is dropped and logged at WARN, per the StackAdapter
// "unknown suId" rule generalized to every event source — except a fresh
// inbound ConInd with every circuit busy, which is answered with a
// RELEASE carrying cause "no circuit available" and no START signal.
func (e *Engine) dispatch(ev sigtypes.CallEvent, deps statemachine.Deps) bool {
	slot := e.resolve(ev, deps)
	if slot == nil {
		if ev.Kind == sigtypes.EvConInd {
			return errors.Is(e.rejectInbound(ev, deps), sigtypes.ErrLinkDown)
		}
		e.Ctx.Log.Warning().Int("span", e.Span.SpanID).Str("event", ev.Kind.String()).Log("event dropped: unresolved target")
		return false
	}
	if err := statemachine.Step(slot, ev, deps); err != nil {
		e.Ctx.Log.Warning().Int("span", e.Span.SpanID).Int("chan", slot.ChanIndex).Str("event", ev.Kind.String()).Err(err).Log("state machine step")
		return errors.Is(err, sigtypes.ErrLinkDown)
	}
	return false
}

// rejectInbound releases an inbound SETUP that no free slot can take. The
// release is addressed by the peer's call reference on a transient slot;
// no channel state changes and the application never sees START.
func (e *Engine) rejectInbound(ev sigtypes.CallEvent, deps statemachine.Deps) error {
	e.Ctx.Log.Warning().Int("span", e.Span.SpanID).Log("inbound call rejected: no circuit available")
	if deps.Sender == nil {
		return nil
	}
	reject := channelslot.New(e.Span.SpanID, -1, e.Span.Config.PhysSpan, -1)
	reject.PeerInst = ev.PeerInst
	reject.DChanID = ev.DChanID
	reject.CES = ev.CES
	return deps.Sender.SndRelease(reject, "no circuit available")
}

func (e *Engine) resolve(ev sigtypes.CallEvent, deps statemachine.Deps) *channelslot.Slot {
	if ev.HasChanIndex {
		return e.Span.SlotByIndex(ev.ChanIndex)
	}
	if ev.LocalInst != 0 {
		if s, ok := deps.Registry.FindByLocal(ev.LocalInst); ok {
			return s
		}
	}
	if ev.PeerInst != 0 {
		if s, ok := deps.Registry.FindByPeer(ev.PeerInst); ok {
			return s
		}
	}
	if ev.Kind == sigtypes.EvConInd {
		return e.Span.FreeSlot(ev.DChanID, ev.CES)
	}
	return nil
}

func (e *Engine) deliver(slot *channelslot.Slot, sig sigtypes.AppSignal, incomplete bool, cause string) {
	if e.Signal != nil {
		e.Signal(e.Span, slot, sig, incomplete, cause)
	}
}

// ForceRestart drives every non-DOWN slot through RESTART->DOWN (HANGUP
// is not entered), the link-loss failure semantics: each affected slot
// delivers STOP, and the span-level ALARM_TRAP signal is raised once.
func (e *Engine) ForceRestart(now time.Time) {
	e.Span.Lock.Lock()
	defer e.Span.Lock.Unlock()

	deps := e.deps()
	anyForced := false
	for _, slot := range e.Span.Slots {
		if slot.State == sigtypes.Down {
			continue
		}
		statemachine.ForceLinkDown(slot, deps)
		anyForced = true
	}
	for _, slot := range e.Span.Slots {
		if slot.Dirty() {
			statemachine.StateAdvance(slot, deps, e.deliver)
		}
	}
	if anyForced && e.Span.RaiseAlarm(now) && e.Signal != nil {
		e.Signal(e.Span, nil, sigtypes.SigAlarmTrap, false, "")
	}
}

// NotifyPortRecovered clears a previously-raised alarm and signals
// ALARM_CLEAR; callers invoke it on the first successful DChannelPort
// I/O after a trap.
func (e *Engine) NotifyPortRecovered(now time.Time) {
	e.Span.Lock.Lock()
	cleared := e.Span.ClearAlarm(now)
	e.Span.Lock.Unlock()
	if cleared && e.Signal != nil {
		e.Signal(e.Span, nil, sigtypes.SigAlarmClear, false, "")
	}
}
