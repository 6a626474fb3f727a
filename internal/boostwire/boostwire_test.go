/*
 * sngisdn - ss7bc_event_t codec tests.
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

package boostwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ev := Event{
		EventID:       EvCallStart,
		Fseqno:        42,
		CallSetupID:   7,
		Span:          1,
		Chan:          3,
		ReleaseCause:  0,
		Flags:         0x01,
		CalledDigits:  "5553000",
		CallingDigits: "5551000",
	}
	buf := Encode(ev)
	assert.Len(t, buf, FrameLen)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, ev, got)
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTripProperty(t *testing.T) {
	digits := rapid.StringMatching(`[0-9]{0,20}`)
	rapid.Check(t, func(t *rapid.T) {
		ev := Event{
			EventID:       EventID(rapid.IntRange(1, 13).Draw(t, "eventID")),
			Fseqno:        uint32(rapid.Uint32().Draw(t, "fseqno")),
			CallSetupID:   uint16(rapid.Uint16().Draw(t, "csid")),
			Span:          uint8(rapid.Uint8().Draw(t, "span")),
			Chan:          uint8(rapid.Uint8().Draw(t, "chan")),
			ReleaseCause:  uint8(rapid.Uint8().Draw(t, "cause")),
			Flags:         uint8(rapid.Uint8().Draw(t, "flags")),
			CalledDigits:  digits.Draw(t, "called"),
			CallingDigits: digits.Draw(t, "calling"),
		}
		got, err := Decode(Encode(ev))
		require.NoError(t, err)
		assert.Equal(t, ev, got)
	})
}
