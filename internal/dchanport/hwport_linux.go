/*
 * sngisdn - Linux tty-backed DChannelPort.
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

//go:build linux

package dchanport

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/daedaluz/fdev/poll"
	serial "github.com/daedaluz/goserial"

	"github.com/rcornwell/sngisdn/internal/sigtypes"
)

// HWPort is a D-channel port backed by a real Linux tty device (e.g. a
// HDLC-mode WANPIPE or similar B-channel-adjacent signaling tty), opened
// and configured through goserial's ioctl wrappers. Frames are length-
// prefixed on the wire (a 2-byte big-endian length followed by payload)
// since a raw tty has no frame boundaries of its own; the signaling stack
// above never sees this framing.
type HWPort struct {
	mu   sync.Mutex // serializes writes: at most one in-flight write.
	port *serial.Port
}

// OpenHW opens device (e.g. "/dev/ttyWP0") with the default ReadTimeout
// and puts it in raw mode for signaling traffic; the line speed is left
// as the device already has it.
func OpenHW(device string) (*HWPort, error) {
	opts := serial.NewOptions().SetReadTimeout(ReadTimeout)
	p, err := serial.Open(device, opts)
	if err != nil {
		return nil, fmt.Errorf("dchanport: open %s: %w", device, err)
	}
	if err := p.MakeRaw(); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("dchanport: configure %s: %w", device, err)
	}
	return &HWPort{port: p}, nil
}

func (h *HWPort) SendFrame(b []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	hdr := make([]byte, 2)
	binary.BigEndian.PutUint16(hdr, uint16(len(b)))
	if _, err := h.port.Write(hdr); err != nil {
		return translateErr(err)
	}
	if _, err := h.port.Write(b); err != nil {
		return translateErr(err)
	}
	return nil
}

func (h *HWPort) RecvFrame() ([]byte, error) {
	// Wait for readiness first so an idle link surfaces as a timeout
	// instead of a blocked read.
	if err := poll.WaitInput(h.port.Fd(), ReadTimeout); err != nil {
		return nil, sigtypes.ErrTransportTimeout
	}
	hdr := make([]byte, 2)
	if _, err := io.ReadFull(readerFunc(h.port.Read), hdr); err != nil {
		return nil, translateErr(err)
	}
	n := binary.BigEndian.Uint16(hdr)
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(readerFunc(h.port.Read), buf); err != nil {
			return nil, translateErr(err)
		}
	}
	return buf, nil
}

func (h *HWPort) SendOOB(ev OOBEvent) error {
	switch ev {
	case OOBActivate:
		return h.port.EnableModemLines(serial.TIOCM_DTR | serial.TIOCM_RTS)
	case OOBDeactivate:
		return h.port.DisableModemLines(serial.TIOCM_DTR | serial.TIOCM_RTS)
	default:
		return nil
	}
}

func (h *HWPort) Trace(_ Direction, _ []byte) {
	// No tracing sink is wired for the hardware port; span trace flags
	// gate calls to Trace at the caller, not here.
}

func (h *HWPort) Close() error {
	return h.port.Close()
}

// readerFunc adapts a Read method value to io.Reader for io.ReadFull.
type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if tErr, ok := err.(interface{ Timeout() bool }); ok && tErr.Timeout() {
		return sigtypes.ErrTransportTimeout
	}
	return sigtypes.ErrLinkDown
}
