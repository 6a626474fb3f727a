/*
 * sngisdn - Serialized D-channel transport contract.
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

// Package dchanport defines the DChannelPort contract and its
// implementations: memport, an in-memory loopback test double, and
// hwport, a Linux tty-backed implementation (see hwport_linux.go).
package dchanport

import "time"

// OOBEvent is an out-of-band control signal: activate, deactivate or
// alarm.
type OOBEvent int

const (
	OOBActivate OOBEvent = iota
	OOBDeactivate
	OOBAlarm
)

// Direction tags a trace() call as a transmit or receive.
type Direction int

const (
	DirTx Direction = iota
	DirRx
)

// Port is serialized full-duplex access to one D-channel. The port
// enforces at most one in-flight write; NFAS groups share one port across
// spans, so every Port implementation must itself be concurrency-safe.
type Port interface {
	// SendFrame transmits bytes, blocking until accepted or failing with
	// ErrLinkDown or ErrTransportTimeout.
	SendFrame(b []byte) error
	// RecvFrame blocks for up to the port's configured read timeout and
	// returns the next received frame, or ErrLinkDown / ErrTransportTimeout.
	RecvFrame() ([]byte, error)
	// SendOOB issues an out-of-band control event.
	SendOOB(ev OOBEvent) error
	// Trace optionally records bytes moving in direction dir; callers
	// gate this on span trace flags, not the port.
	Trace(dir Direction, b []byte)
	// Close releases the underlying transport.
	Close() error
}

// ReadTimeout is the default blocking-read timeout used by Port
// implementations absent an explicit override.
const ReadTimeout = 5 * time.Second
