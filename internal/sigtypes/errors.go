/*
 * sngisdn - Error taxonomy.
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

import "errors"

// Sentinel errors matching the kinds named in the error-handling design.
// These never unwind across the event loop; the loop converts them into
// state transitions and application signals. Only ConfigInvalid propagates
// synchronously, at span-attach time.
var (
	ErrConfigInvalid     = errors.New("sngisdn: configuration rejected")
	ErrIdsExhausted      = errors.New("sngisdn: call instance ids exhausted")
	ErrProtocolViolation = errors.New("sngisdn: unexpected event for current state")
	ErrGlareDetected     = errors.New("sngisdn: glare detected")
	ErrLinkDown          = errors.New("sngisdn: signaling link down")
	ErrTransportTimeout  = errors.New("sngisdn: transport write timed out")
	ErrQueueFull         = errors.New("sngisdn: event queue full")
	ErrPeerIdCollision   = errors.New("sngisdn: peer instance id collision")
	ErrCircuitCongestion = errors.New("sngisdn: no free circuit")
	ErrGlare             = errors.New("sngisdn: outbound dial lost glare arbitration")
)
