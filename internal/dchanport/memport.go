/*
 * sngisdn - In-memory loopback DChannelPort test double.
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

package dchanport

import (
	"sync"
	"time"

	"github.com/rcornwell/sngisdn/internal/sigtypes"
)

// MemPort is an in-memory, loopback-capable DChannelPort, used in tests
// and by the reference daemon in place of real hardware.
type MemPort struct {
	mu      sync.Mutex
	rx      chan []byte
	linkUp  bool
	traced  []tracedFrame
	writeFn func([]byte)
}

type tracedFrame struct {
	dir Direction
	b   []byte
}

// NewMemPort creates a MemPort with the link initially up.
func NewMemPort() *MemPort {
	return &MemPort{
		rx:     make(chan []byte, 64),
		linkUp: true,
	}
}

// Deliver injects a frame as if received from the wire, for tests to drive
// the port's RecvFrame path.
func (p *MemPort) Deliver(b []byte) {
	p.rx <- b
}

// SetLinkDown simulates a link failure; subsequent SendFrame/RecvFrame
// calls fail with ErrLinkDown until SetLinkUp is called.
func (p *MemPort) SetLinkDown() {
	p.mu.Lock()
	p.linkUp = false
	p.mu.Unlock()
}

func (p *MemPort) SetLinkUp() {
	p.mu.Lock()
	p.linkUp = true
	p.mu.Unlock()
}

// OnWrite installs a hook invoked synchronously for every SendFrame, for
// tests asserting on what was transmitted.
func (p *MemPort) OnWrite(fn func([]byte)) {
	p.mu.Lock()
	p.writeFn = fn
	p.mu.Unlock()
}

func (p *MemPort) SendFrame(b []byte) error {
	p.mu.Lock()
	up := p.linkUp
	fn := p.writeFn
	p.mu.Unlock()
	if !up {
		return sigtypes.ErrLinkDown
	}
	if fn != nil {
		fn(b)
	}
	return nil
}

func (p *MemPort) RecvFrame() ([]byte, error) {
	p.mu.Lock()
	up := p.linkUp
	p.mu.Unlock()
	if !up {
		return nil, sigtypes.ErrLinkDown
	}
	select {
	case b := <-p.rx:
		return b, nil
	case <-time.After(ReadTimeout):
		return nil, sigtypes.ErrTransportTimeout
	}
}

func (p *MemPort) SendOOB(ev OOBEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.linkUp {
		return sigtypes.ErrLinkDown
	}
	return nil
}

func (p *MemPort) Trace(dir Direction, b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]byte, len(b))
	copy(cp, b)
	p.traced = append(p.traced, tracedFrame{dir: dir, b: cp})
}

func (p *MemPort) Close() error {
	return nil
}
