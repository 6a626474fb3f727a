/*
 * sngisdn - SpanConfig validation tests.
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

package engineconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcornwell/sngisdn/internal/sigtypes"
)

func validPRI() SpanConfig {
	return SpanConfig{
		SwitchType: sigtypes.VariantNI2,
		Signalling: sigtypes.RoleCPE,
		ChanCount:  24,
		DChanIndex: 23,
		MinDigits:  7,
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	assert.NoError(t, validPRI().Validate())
}

func TestValidateRejectsBadChanCount(t *testing.T) {
	c := validPRI()
	c.ChanCount = 0
	assert.ErrorIs(t, c.Validate(), sigtypes.ErrConfigInvalid)
}

func TestValidateRejectsTooManyLocalNumbers(t *testing.T) {
	c := validPRI()
	for i := 0; i < MaxLocalNumbers+1; i++ {
		c.LocalNumbers = append(c.LocalNumbers, "555")
	}
	assert.ErrorIs(t, c.Validate(), sigtypes.ErrConfigInvalid)
}

func TestValidateRejectsOutOfRangeDChan(t *testing.T) {
	c := validPRI()
	c.DChanIndex = 99
	assert.ErrorIs(t, c.Validate(), sigtypes.ErrConfigInvalid)
}
