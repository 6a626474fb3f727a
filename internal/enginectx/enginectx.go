/*
 * sngisdn - Process-scoped engine context.
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

// Package enginectx holds EngineContext: one TimerWheel and one
// CallInstanceRegistry per signaling variant, shared by every
// SpanEngine/BoostClient constructed against it. There is deliberately no
// package-level instance; tests substitute a fresh EngineContext instead
// of resetting process globals.
package enginectx

import (
	"sync"

	"github.com/rcornwell/sngisdn/internal/logging"
	"github.com/rcornwell/sngisdn/internal/registry"
	"github.com/rcornwell/sngisdn/internal/sigtypes"
	"github.com/rcornwell/sngisdn/internal/timerwheel"
)

// EngineContext is the process-scoped (but not process-global) state
// shared by every span attached to it.
type EngineContext struct {
	Timers *timerwheel.TimerWheel
	Log    *logging.Logger

	mu       sync.Mutex
	variants map[sigtypes.SwitchVariant]*registry.VariantCC
}

// New creates an EngineContext with its own TimerWheel, ready to have
// spans attached to it. logger may be nil, in which case a discard logger
// is used.
func New(logger *logging.Logger) *EngineContext {
	if logger == nil {
		logger = logging.Discard()
	}
	return &EngineContext{
		Timers:   timerwheel.New(),
		Log:      logger,
		variants: make(map[sigtypes.SwitchVariant]*registry.VariantCC),
	}
}

// Registry returns the CallInstanceRegistry for variant, creating it on
// first use. One VariantCC is shared by every span of the same
// switchtype, per the data model.
func (c *EngineContext) Registry(variant sigtypes.SwitchVariant) *registry.VariantCC {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.variants[variant]
	if !ok {
		v = registry.New()
		c.variants[variant] = v
	}
	return v
}

// Shutdown stops the shared TimerWheel. Callers must first stop every
// SpanEngine/BoostClient attached to this context.
func (c *EngineContext) Shutdown() {
	c.Timers.Shutdown()
}
