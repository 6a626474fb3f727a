/*
 * sngisdn - SpanData tests.
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

package spandata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcornwell/sngisdn/internal/sigtypes"

	"github.com/rcornwell/sngisdn/internal/engineconfig"
)

func e1Config() engineconfig.SpanConfig {
	return engineconfig.SpanConfig{
		SwitchType: sigtypes.VariantETSI,
		Signalling: sigtypes.RoleNET,
		SpanID:     3,
		PhysSpan:   3,
		ChanCount:  32,
		DChanIndex: 16,
	}
}

func TestNewAllocatesSlots(t *testing.T) {
	sp := New(e1Config(), nil)
	require.Len(t, sp.Slots, 32)
	for i, slot := range sp.Slots {
		assert.Equal(t, i, slot.ChanIndex)
		assert.Equal(t, 3, slot.SpanID)
		assert.Equal(t, sigtypes.Down, slot.State)
		assert.False(t, slot.IsBRI)
		assert.Equal(t, 16, slot.DChanID)
	}
}

func TestBRISpanMarksSlots(t *testing.T) {
	cfg := e1Config()
	cfg.ChanCount = 2
	cfg.DChanIndex = 2
	sp := New(cfg, nil)
	require.Len(t, sp.Slots, 2)
	assert.True(t, sp.Slots[0].IsBRI)
	assert.True(t, sp.Slots[1].IsBRI)
}

func TestFreeSlotSkipsBusy(t *testing.T) {
	sp := New(e1Config(), nil)

	first := sp.FreeSlot(16, 0)
	require.NotNil(t, first)
	assert.Equal(t, 0, first.ChanIndex)

	first.SetState(sigtypes.Up)
	second := sp.FreeSlot(16, 0)
	require.NotNil(t, second)
	assert.Equal(t, 1, second.ChanIndex)

	// No slot on a different D-channel qualifies.
	assert.Nil(t, sp.FreeSlot(5, 0))
}

func TestActiveCount(t *testing.T) {
	sp := New(e1Config(), nil)
	assert.Equal(t, 0, sp.ActiveCount())
	sp.Slots[1].SetState(sigtypes.Dialing)
	sp.Slots[2].SetState(sigtypes.Up)
	assert.Equal(t, 2, sp.ActiveCount())
}

func TestAlarmRaiseClearEdges(t *testing.T) {
	sp := New(e1Config(), nil)
	now := time.Now()

	assert.False(t, sp.ClearAlarm(now), "clear with no trap raised")
	assert.True(t, sp.RaiseAlarm(now))
	assert.False(t, sp.RaiseAlarm(now), "second raise is not a new trap")
	assert.True(t, sp.ClearAlarm(now))
	assert.False(t, sp.ClearAlarm(now))
}

func TestNFASGroupBounded(t *testing.T) {
	spans := make([]*SpanData, MaxSpansPerNFASLink+2)
	for i := range spans {
		cfg := e1Config()
		cfg.SpanID = i
		spans[i] = New(cfg, nil)
	}
	g := NewDChannelGroup(nil, spans...)
	assert.Len(t, g.Spans, MaxSpansPerNFASLink)

	assert.Same(t, spans[2], g.SpanByID(2))
	assert.Nil(t, g.SpanByID(99))
}
