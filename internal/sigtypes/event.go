/*
 * sngisdn - Event taxonomy carried through the span event queue.
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

package sigtypes

// EventKind tags the union carried by CallEvent.
type EventKind int

const (
	EvConInd EventKind = iota
	EvConCfm
	EvCnstInd
	EvDiscInd
	EvRelInd
	EvDatInd
	EvSshlInd
	EvSshlCfm
	EvRmRtInd
	EvRmRtCfm
	EvFlcInd
	EvFacInd
	EvStaCfm
	EvSrvInd
	EvSrvCfm
	EvRstInd
	EvRstCfm
	EvTimer
	EvAppCommand
)

func (k EventKind) String() string {
	switch k {
	case EvConInd:
		return "ConInd"
	case EvConCfm:
		return "ConCfm"
	case EvCnstInd:
		return "CnstInd"
	case EvDiscInd:
		return "DiscInd"
	case EvRelInd:
		return "RelInd"
	case EvDatInd:
		return "DatInd"
	case EvSshlInd:
		return "SshlInd"
	case EvSshlCfm:
		return "SshlCfm"
	case EvRmRtInd:
		return "RmRtInd"
	case EvRmRtCfm:
		return "RmRtCfm"
	case EvFlcInd:
		return "FlcInd"
	case EvFacInd:
		return "FacInd"
	case EvStaCfm:
		return "StaCfm"
	case EvSrvInd:
		return "SrvInd"
	case EvSrvCfm:
		return "SrvCfm"
	case EvRstInd:
		return "RstInd"
	case EvRstCfm:
		return "RstCfm"
	case EvTimer:
		return "Timer"
	case EvAppCommand:
		return "AppCommand"
	default:
		return "UNKNOWN"
	}
}

// ConstructKind distinguishes the sub-cases of a CnstInd event.
type ConstructKind int

const (
	CnstAlert ConstructKind = iota
	CnstProceed
	CnstProgress
	CnstSetupAck
	CnstConnect
)

// TimerKind enumerates the timer kinds schedulable on a TimerWheel.
// FacilityTimeout is the only kind current policy ever cancels; the rest
// are delayed actions, kept cancellable uniformly anyway.
type TimerKind int

const (
	FacilityTimeout TimerKind = iota
	DelayedSetup
	DelayedRelease
	DelayedConnect
	DelayedDisconnect
	T3Timeout
)

func (k TimerKind) String() string {
	switch k {
	case FacilityTimeout:
		return "FacilityTimeout"
	case DelayedSetup:
		return "DelayedSetup"
	case DelayedRelease:
		return "DelayedRelease"
	case DelayedConnect:
		return "DelayedConnect"
	case DelayedDisconnect:
		return "DelayedDisconnect"
	case T3Timeout:
		return "T3Timeout"
	default:
		return "UNKNOWN"
	}
}

// AppCommandKind enumerates the commands an application may issue against
// a slot.
type AppCommandKind int

const (
	CmdDial AppCommandKind = iota
	CmdProceed
	CmdAnswer
	CmdHangup
)

// CallerData is the caller-supplied data accompanying an outbound dial.
type CallerData struct {
	CidNum       string
	ANI          string
	DNIS         string
	BearerCap    string
	UserLayer1   string
	Screening    string
	Presentation string
}

// AppCommand is the application->engine command payload.
type AppCommand struct {
	Kind   AppCommandKind
	Caller CallerData
	Cause  string
}

// CallEvent is the tagged union carried through the EventQueue.
type CallEvent struct {
	Kind EventKind

	// Target resolution: by local/peer instance id, or by (dchan, ces)
	// when neither instance id is yet known (a fresh inbound ConInd).
	// ChanIndex addresses a slot directly by its position in the span's
	// slot array; the stack adapter and boost client both know which
	// physical channel an event belongs to before any instance id
	// exists, so they fill it in and the span loop prefers it over the
	// id-based lookups.
	LocalInst    uint32
	PeerInst     uint32
	DChanID      int
	CES          int
	ChanIndex    int
	HasChanIndex bool

	Construct ConstructKind
	Cause     string
	Payload   []byte

	Timer     TimerKind
	TimerSlot int
	App       AppCommand
}
