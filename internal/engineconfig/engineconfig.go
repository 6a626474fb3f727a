/*
 * sngisdn - Span configuration and validation.
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

// Package engineconfig carries SpanConfig, the validated configuration a
// consumer supplies per span. Parsing a config file into a SpanConfig is
// an external collaborator's job and out of scope here; this package only
// validates the already-parsed struct.
package engineconfig

import (
	"fmt"

	"github.com/rcornwell/sngisdn/internal/sigtypes"
)

// MaxLocalNumbers is the bound on the span's local-numbers table.
const MaxLocalNumbers = 8

// SpanConfig is the per-span configuration named in the external
// interfaces design, field for field.
type SpanConfig struct {
	SwitchType        sigtypes.SwitchVariant
	Signalling        sigtypes.Role
	TEI               int
	MinDigits         int
	OverlapDial       bool
	SetupArbitration  bool
	FacilityIEDecode  bool
	Facility          bool
	FacilityTimeoutS  int8 // signed seconds; 0 = disabled
	LocalNumbers      []string
	TimerT3           bool
	TraceQ921         bool
	TraceQ931         bool

	SpanID     int
	PhysSpan   int
	ChanCount  int // 24 for T1, 32 for E1 (D on 16), 2 for BRI
	DChanIndex int // physical index of the D-channel within the span
}

// Validate rejects a SpanConfig at span-attach time: per the error
// taxonomy, a ConfigInvalid error here means the engine never starts for
// this span.
func (c SpanConfig) Validate() error {
	if c.ChanCount <= 0 {
		return fmt.Errorf("%w: chan_count must be positive, got %d", sigtypes.ErrConfigInvalid, c.ChanCount)
	}
	if c.MinDigits < 0 {
		return fmt.Errorf("%w: min_digits must be non-negative", sigtypes.ErrConfigInvalid)
	}
	if c.FacilityTimeoutS < 0 {
		return fmt.Errorf("%w: facility_timeout must be >= 0", sigtypes.ErrConfigInvalid)
	}
	if len(c.LocalNumbers) > MaxLocalNumbers {
		return fmt.Errorf("%w: local_numbers has %d entries, max %d", sigtypes.ErrConfigInvalid, len(c.LocalNumbers), MaxLocalNumbers)
	}
	if c.DChanIndex < 0 || c.DChanIndex >= c.ChanCount+1 {
		return fmt.Errorf("%w: dchan_index %d out of range for chan_count %d", sigtypes.ErrConfigInvalid, c.DChanIndex, c.ChanCount)
	}
	return nil
}
