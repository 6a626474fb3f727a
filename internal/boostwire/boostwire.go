/*
 * sngisdn - SS7-boost wire codec.
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

// Package boostwire encodes/decodes ss7bc_event_t, the fixed-layout
// message the SS7-boost gateway speaks. Field endianness is network
// (big-endian) order, matching the deployed gateway.
package boostwire

import (
	"encoding/binary"
	"fmt"
)

// EventID enumerates the SS7-boost message types.
type EventID uint8

const (
	EvCallStart EventID = 1 + iota
	EvCallStartAck
	EvCallStartNack
	EvCallStartNackAck
	EvCallStopped
	EvCallStoppedAck
	EvCallAnswered
	EvHeartbeat
	EvSystemRestart
	EvSystemRestartAck
	EvInsertCheckLoop
	EvRemoveCheckLoop
	EvAutoCallGapAbate
)

func (id EventID) String() string {
	switch id {
	case EvCallStart:
		return "CALL_START"
	case EvCallStartAck:
		return "CALL_START_ACK"
	case EvCallStartNack:
		return "CALL_START_NACK"
	case EvCallStartNackAck:
		return "CALL_START_NACK_ACK"
	case EvCallStopped:
		return "CALL_STOPPED"
	case EvCallStoppedAck:
		return "CALL_STOPPED_ACK"
	case EvCallAnswered:
		return "CALL_ANSWERED"
	case EvHeartbeat:
		return "HEARTBEAT"
	case EvSystemRestart:
		return "SYSTEM_RESTART"
	case EvSystemRestartAck:
		return "SYSTEM_RESTART_ACK"
	case EvInsertCheckLoop:
		return "INSERT_CHECK_LOOP"
	case EvRemoveCheckLoop:
		return "REMOVE_CHECK_LOOP"
	case EvAutoCallGapAbate:
		return "AUTO_CALL_GAP_ABATE"
	default:
		return "UNKNOWN"
	}
}

// digitFieldLen is the fixed width of the called/calling digit fields.
const digitFieldLen = 32

// FrameLen is the exact byte length of one encoded ss7bc_event_t.
const FrameLen = 1 + 4 + 2 + 1 + 1 + 1 + 1 + digitFieldLen + digitFieldLen

// Event mirrors ss7bc_event_t field for field.
type Event struct {
	EventID       EventID
	Fseqno        uint32
	CallSetupID   uint16
	Span          uint8
	Chan          uint8
	ReleaseCause  uint8
	Flags         uint8
	CalledDigits  string
	CallingDigits string
}

// Encode renders ev as FrameLen bytes in the documented layout.
func Encode(ev Event) []byte {
	buf := make([]byte, FrameLen)
	buf[0] = byte(ev.EventID)
	binary.BigEndian.PutUint32(buf[1:5], ev.Fseqno)
	binary.BigEndian.PutUint16(buf[5:7], ev.CallSetupID)
	buf[7] = ev.Span
	buf[8] = ev.Chan
	buf[9] = ev.ReleaseCause
	buf[10] = ev.Flags
	putDigits(buf[11:11+digitFieldLen], ev.CalledDigits)
	putDigits(buf[11+digitFieldLen:11+2*digitFieldLen], ev.CallingDigits)
	return buf
}

func putDigits(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func getDigits(src []byte) string {
	n := 0
	for n < len(src) && src[n] != 0 {
		n++
	}
	return string(src[:n])
}

// Decode parses exactly FrameLen bytes into an Event.
func Decode(buf []byte) (Event, error) {
	if len(buf) != FrameLen {
		return Event{}, fmt.Errorf("boostwire: short frame: got %d want %d", len(buf), FrameLen)
	}
	return Event{
		EventID:       EventID(buf[0]),
		Fseqno:        binary.BigEndian.Uint32(buf[1:5]),
		CallSetupID:   binary.BigEndian.Uint16(buf[5:7]),
		Span:          buf[7],
		Chan:          buf[8],
		ReleaseCause:  buf[9],
		Flags:         buf[10],
		CalledDigits:  getDigits(buf[11 : 11+digitFieldLen]),
		CallingDigits: getDigits(buf[11+digitFieldLen : 11+2*digitFieldLen]),
	}, nil
}
