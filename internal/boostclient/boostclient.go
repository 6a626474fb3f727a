/*
 * sngisdn - SS7-boost twin-socket wire driver.
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

// Package boostclient implements the SS7-boost wire driver: a twin-socket
// TCP client that speaks the external signaling gateway's fixed-frame
// protocol, carrying sequence numbers and heartbeats, and drives the same
// span engine the native ISDN stack path does.
package boostclient

import (
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rcornwell/sngisdn/internal/boostwire"
	"github.com/rcornwell/sngisdn/internal/channelslot"
	"github.com/rcornwell/sngisdn/internal/enginectx"
	"github.com/rcornwell/sngisdn/internal/logging"
	"github.com/rcornwell/sngisdn/internal/sigtypes"
	"github.com/rcornwell/sngisdn/internal/spandata"
	"github.com/rcornwell/sngisdn/internal/spanengine"
)

// HeartbeatPeriod is the expected interval between peer heartbeats; the
// link is declared dead after more than three silent periods.
const HeartbeatPeriod = 1 * time.Second

// PollInterval is the socket select-with-timeout period.
const PollInterval = 100 * time.Millisecond

// DialSanityBound caps how long an outbound dial may wait for the peer
// to acknowledge the CALL_START.
const DialSanityBound = 60 * time.Second

// RequestState is one OUTBOUND_REQUESTS[call_setup_id] slot's lifecycle.
type RequestState int

const (
	ReqFree RequestState = iota
	ReqWaiting
	ReqReady
	ReqFail
)

type outboundRequest struct {
	state RequestState
	slot  *channelslot.Slot
	err   error
}

// Client is one span's SS7-boost transport: a control socket (mcon) and
// a priority socket (pcon), one port apart, both carrying the same
// ss7bc_event_t taxonomy.
type Client struct {
	Span   *spandata.SpanData
	Ctx    *enginectx.EngineContext
	Engine *spanengine.Engine
	Log    *logging.Logger

	mcon net.Conn
	pcon net.Conn

	mu            sync.Mutex
	seq           uint32
	lastRequestID int
	requests      []outboundRequest

	rxseqReset    bool
	lastHeartbeat time.Time

	restartAckCh chan struct{}

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// Dial opens the control socket at addr and the priority socket one port
// higher.
func Dial(addr string, span *spandata.SpanData, ctx *enginectx.EngineContext, engine *spanengine.Engine, log *logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.Discard()
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	mcon, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	pconAddr := net.JoinHostPort(host, bumpPort(port))
	pcon, err := net.Dial("tcp", pconAddr)
	if err != nil {
		_ = mcon.Close()
		return nil, err
	}
	return newClient(mcon, pcon, span, ctx, engine, log), nil
}

// newClient wires an already-connected pair of sockets; New exposes it so
// tests can drive the client over net.Pipe() without a real listener.
func newClient(mcon, pcon net.Conn, span *spandata.SpanData, ctx *enginectx.EngineContext, engine *spanengine.Engine, log *logging.Logger) *Client {
	return &Client{
		Span:         span,
		Ctx:          ctx,
		Engine:       engine,
		Log:          log,
		mcon:         mcon,
		pcon:         pcon,
		requests:     make([]outboundRequest, len(span.Slots)),
		restartAckCh: make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

// New wires an already-connected pair of sockets for use outside tests
// (e.g. a consumer supplying its own Dialer).
func New(mcon, pcon net.Conn, span *spandata.SpanData, ctx *enginectx.EngineContext, engine *spanengine.Engine, log *logging.Logger) *Client {
	return newClient(mcon, pcon, span, ctx, engine, log)
}

// bumpPort returns port+1, as a string, the priority socket's fixed
// offset from the control socket.
func bumpPort(port string) string {
	n, err := strconv.Atoi(port)
	if err != nil {
		return port
	}
	return strconv.Itoa(n + 1)
}

// Start performs the startup handshake (send SYSTEM_RESTART, wait for
// SYSTEM_RESTART_ACK) and launches the receive/heartbeat loops.
func (c *Client) Start() error {
	c.running.Store(true)

	frames := make(chan boostwire.Event, 64)
	c.wg.Add(3)
	go c.readLoop(c.mcon, frames)
	go c.readLoop(c.pcon, frames)
	go c.mainLoop(frames)

	return c.handshake(frames)
}

// handshake sends SYSTEM_RESTART and blocks (cooperatively, respecting
// Stop) until SYSTEM_RESTART_ACK arrives on mainLoop, at which point the
// receive sequence state is reset. The wait is open-ended: a gateway may
// stay silent for many seconds before it answers.
func (c *Client) handshake(frames chan boostwire.Event) error {
	_ = c.exec(c.mcon, boostwire.Event{EventID: boostwire.EvSystemRestart})

	select {
	case <-c.restartAckCh:
		c.mu.Lock()
		c.rxseqReset = true
		c.mu.Unlock()
		return nil
	case <-c.done:
		return sigtypes.ErrLinkDown
	}
}

func (c *Client) notifyRestartAck(ev boostwire.Event) {
	select {
	case c.restartAckCh <- struct{}{}:
	default:
	}
}

// Stop halts the client cooperatively, closing both sockets.
func (c *Client) Stop() {
	c.running.Store(false)
	close(c.done)
	_ = c.mcon.Close()
	_ = c.pcon.Close()
	c.wg.Wait()
}

func (c *Client) readLoop(conn net.Conn, out chan<- boostwire.Event) {
	defer c.wg.Done()
	buf := make([]byte, boostwire.FrameLen)
	for {
		select {
		case <-c.done:
			return
		default:
		}
		_ = conn.SetReadDeadline(time.Now().Add(PollInterval))
		if _, err := io.ReadFull(conn, buf); err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-c.done:
			default:
				c.onLinkDown()
			}
			return
		}
		ev, err := boostwire.Decode(buf)
		if err != nil {
			continue
		}
		select {
		case out <- ev:
		case <-c.done:
			return
		}
	}
}

func (c *Client) mainLoop(frames chan boostwire.Event) {
	defer c.wg.Done()
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case ev := <-frames:
			c.handleEvent(ev)
		case <-ticker.C:
			c.checkHeartbeat()
		}
	}
}

func (c *Client) handleEvent(ev boostwire.Event) {
	switch ev.EventID {
	case boostwire.EvHeartbeat:
		c.mu.Lock()
		c.lastHeartbeat = time.Now()
		c.mu.Unlock()
		// The peer's heartbeat is echoed back unvalidated; exec rewrites
		// only its sequence number.
		_ = c.exec(c.mcon, ev)

	case boostwire.EvSystemRestartAck:
		c.notifyRestartAck(ev)

	case boostwire.EvCallStartAck:
		c.resolveOutbound(int(ev.CallSetupID), ReqReady, nil)

	case boostwire.EvCallStartNack, boostwire.EvCallStartNackAck:
		c.resolveOutbound(int(ev.CallSetupID), ReqFail, sigtypes.ErrCircuitCongestion)

	case boostwire.EvCallStart:
		c.postInbound(ev)

	case boostwire.EvCallStopped:
		c.postRelease(ev)
		_ = c.exec(c.mcon, boostwire.Event{EventID: boostwire.EvCallStoppedAck, CallSetupID: ev.CallSetupID, Span: ev.Span, Chan: ev.Chan})

	case boostwire.EvCallAnswered:
		c.postAnswered(ev)

	case boostwire.EvInsertCheckLoop, boostwire.EvRemoveCheckLoop, boostwire.EvAutoCallGapAbate:
		// Administrative events with no call-state effect on this
		// driver; acknowledged implicitly by accepting the frame.
	}
}

// checkHeartbeat counts missed periods from the elapsed silence itself,
// not from poll ticks: the poll interval is much shorter than a
// heartbeat period, so a per-tick counter would cross the >3 threshold
// long before three periods of real silence have passed. On firing, the
// silence window restarts so one outage forces one restart.
func (c *Client) checkHeartbeat() {
	c.mu.Lock()
	if c.lastHeartbeat.IsZero() {
		c.lastHeartbeat = time.Now()
	}
	missed := int(time.Since(c.lastHeartbeat) / HeartbeatPeriod)
	if missed > 3 {
		c.lastHeartbeat = time.Now()
	}
	c.mu.Unlock()

	if missed > 3 {
		c.onLinkDown()
	}
}

func (c *Client) onLinkDown() {
	if c.Engine != nil {
		c.Engine.ForceRestart(time.Now())
	}
}

// exec sends ev carrying the link's next monotonic sequence number over
// conn.
func (c *Client) exec(conn net.Conn, ev boostwire.Event) error {
	c.mu.Lock()
	c.seq++
	ev.Fseqno = c.seq
	c.mu.Unlock()
	_, err := conn.Write(boostwire.Encode(ev))
	return err
}

// DialCall posts a CALL_START for the given digits and spins on the
// outbound-request state until READY/FAIL or the 60s sanity bound
// elapses, resolving with the ChannelSlot the peer assigned.
func (c *Client) DialCall(called, calling string) (*channelslot.Slot, error) {
	id, slot, err := c.allocRequest()
	if err != nil {
		return nil, err
	}

	ev := boostwire.Event{
		EventID:       boostwire.EvCallStart,
		CallSetupID:   uint16(id),
		Span:          uint8(slot.PhysSpan),
		Chan:          uint8(slot.PhysChan),
		CalledDigits:  called,
		CallingDigits: calling,
	}
	if err := c.exec(c.mcon, ev); err != nil {
		c.resolveOutbound(id, ReqFail, err)
		return nil, err
	}

	deadline := time.After(DialSanityBound)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-deadline:
			c.resolveOutbound(id, ReqFail, sigtypes.ErrTransportTimeout)
			return nil, sigtypes.ErrTransportTimeout
		case <-ticker.C:
			c.mu.Lock()
			st := c.requests[id].state
			reqErr := c.requests[id].err
			c.mu.Unlock()
			switch st {
			case ReqReady:
				return slot, nil
			case ReqFail:
				return nil, reqErr
			}
		}
	}
}

// allocRequest finds the next FREE call_setup_id with the same
// skip-occupied monotonic scan the registry uses for local instance
// ids.
func (c *Client) allocRequest() (int, *channelslot.Slot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.requests)
	start := c.lastRequestID
	for i := 0; i < n; i++ {
		id := (start + i) % n
		if c.requests[id].state == ReqFree {
			slot := c.Span.Slots[id]
			c.requests[id] = outboundRequest{state: ReqWaiting, slot: slot}
			c.lastRequestID = (id + 1) % n
			return id, slot, nil
		}
	}
	return 0, nil, sigtypes.ErrIdsExhausted
}

func (c *Client) resolveOutbound(id int, state RequestState, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id < 0 || id >= len(c.requests) {
		return
	}
	c.requests[id].state = state
	c.requests[id].err = err
}

func (c *Client) freeRequest(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id >= 0 && id < len(c.requests) {
		c.requests[id] = outboundRequest{}
	}
}

func (c *Client) postInbound(ev boostwire.Event) {
	if c.Span.Queue == nil {
		return
	}
	_ = c.Span.Queue.Post(sigtypes.CallEvent{
		Kind:         sigtypes.EvConInd,
		PeerInst:     uint32(ev.CallSetupID),
		DChanID:      c.Span.Config.DChanIndex,
		HasChanIndex: true,
		ChanIndex:    int(ev.Chan),
	})
}

// postRelease maps CALL_STOPPED onto the remote-release event pair: the
// disconnect drives the slot into HANGUP, the release completes the
// teardown. Per-slot FIFO keeps the pair ordered.
func (c *Client) postRelease(ev boostwire.Event) {
	c.freeRequest(int(ev.CallSetupID))
	if c.Span.Queue == nil {
		return
	}
	_ = c.Span.Queue.Post(sigtypes.CallEvent{
		Kind:         sigtypes.EvDiscInd,
		HasChanIndex: true,
		ChanIndex:    int(ev.Chan),
		Cause:        strconv.Itoa(int(ev.ReleaseCause)),
	})
	_ = c.Span.Queue.Post(sigtypes.CallEvent{
		Kind:         sigtypes.EvRelInd,
		HasChanIndex: true,
		ChanIndex:    int(ev.Chan),
		Cause:        strconv.Itoa(int(ev.ReleaseCause)),
	})
}

func (c *Client) postAnswered(ev boostwire.Event) {
	if c.Span.Queue == nil {
		return
	}
	_ = c.Span.Queue.Post(sigtypes.CallEvent{
		Kind:         sigtypes.EvConCfm,
		PeerInst:     uint32(ev.CallSetupID),
		HasChanIndex: true,
		ChanIndex:    int(ev.Chan),
	})
}
