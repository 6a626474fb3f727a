/*
 * sngisdn - Channel flag bitset.
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

// Package sigtypes holds the data shared by every component of the span
// signaling engine: channel flags, call states, the event taxonomy and the
// error kinds. It exists on its own so that channelslot, registry,
// statemachine, spanengine, stackadapter and boostclient can all refer to
// the same vocabulary without importing each other.
package sigtypes

// Flags is the per-slot call-control bitset.
type Flags uint32

const (
	ResetRx Flags = 1 << iota
	ResetTx
	RemoteRel
	LocalRel
	RemoteAbort
	LocalAbort
	Glare
	DelayedRel
	SentProceed
	SendDisc
	Activating
)

var flagNames = [...]struct {
	bit  Flags
	name string
}{
	{ResetRx, "RESET_RX"},
	{ResetTx, "RESET_TX"},
	{RemoteRel, "REMOTE_REL"},
	{LocalRel, "LOCAL_REL"},
	{RemoteAbort, "REMOTE_ABORT"},
	{LocalAbort, "LOCAL_ABORT"},
	{Glare, "GLARE"},
	{DelayedRel, "DELAYED_REL"},
	{SentProceed, "SENT_PROCEED"},
	{SendDisc, "SEND_DISC"},
	{Activating, "ACTIVATING"},
}

// Test reports whether every bit in mask is set.
func (f Flags) Test(mask Flags) bool {
	return f&mask == mask
}

// Set returns f with mask set.
func (f Flags) Set(mask Flags) Flags {
	return f | mask
}

// Clear returns f with mask cleared.
func (f Flags) Clear(mask Flags) Flags {
	return f &^ mask
}

// String renders the set bits as a "|"-joined list of their names, for logging.
func (f Flags) String() string {
	if f == 0 {
		return "NONE"
	}
	out := ""
	for _, fn := range flagNames {
		if f.Test(fn.bit) {
			if out != "" {
				out += "|"
			}
			out += fn.name
		}
	}
	if out == "" {
		return "NONE"
	}
	return out
}
