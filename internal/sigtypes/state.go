/*
 * sngisdn - Call-control state and switch/role enums.
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

// State is a per-channel call-control state, Q.931-derived.
type State int

const (
	Down State = iota
	Dialing
	Ring
	Progress
	ProgressMedia
	Up
	Hangup
	Terminating
	Restart
	Hold
	Suspended
)

func (s State) String() string {
	switch s {
	case Down:
		return "DOWN"
	case Dialing:
		return "DIALING"
	case Ring:
		return "RING"
	case Progress:
		return "PROGRESS"
	case ProgressMedia:
		return "PROGRESS_MEDIA"
	case Up:
		return "UP"
	case Hangup:
		return "HANGUP"
	case Terminating:
		return "TERMINATING"
	case Restart:
		return "RESTART"
	case Hold:
		return "HOLD"
	case Suspended:
		return "SUSPENDED"
	default:
		return "UNKNOWN"
	}
}

// SwitchVariant is the signaling switchtype of a span.
type SwitchVariant int

const (
	VariantNI2 SwitchVariant = iota
	Variant5ESS
	Variant4ESS
	VariantDMS100
	VariantETSI
	VariantQSIG
	VariantINSNET
)

func (v SwitchVariant) String() string {
	switch v {
	case VariantNI2:
		return "NI2"
	case Variant5ESS:
		return "5ESS"
	case Variant4ESS:
		return "4ESS"
	case VariantDMS100:
		return "DMS100"
	case VariantETSI:
		return "ETSI"
	case VariantQSIG:
		return "QSIG"
	case VariantINSNET:
		return "INSNET"
	default:
		return "UNKNOWN"
	}
}

// Role is the signaling role a span plays: customer premise or network side.
type Role int

const (
	RoleCPE Role = iota
	RoleNET
)

func (r Role) String() string {
	if r == RoleNET {
		return "NET"
	}
	return "CPE"
}

// AppSignal is the set of upstream, application-facing lifecycle callbacks.
type AppSignal int

const (
	SigStart AppSignal = iota
	SigProgress
	SigProgressMedia
	SigUp
	SigStop
	SigAlarmTrap
	SigAlarmClear
)

func (s AppSignal) String() string {
	switch s {
	case SigStart:
		return "START"
	case SigProgress:
		return "PROGRESS"
	case SigProgressMedia:
		return "PROGRESS_MEDIA"
	case SigUp:
		return "UP"
	case SigStop:
		return "STOP"
	case SigAlarmTrap:
		return "ALARM_TRAP"
	case SigAlarmClear:
		return "ALARM_CLEAR"
	default:
		return "UNKNOWN"
	}
}
