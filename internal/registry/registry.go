/*
 * sngisdn - Call instance registry: local/peer id <-> slot mapping.
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

// Package registry implements the call instance registry: one VariantCC
// per signaling switchtype, mapping locally- and peer-allocated call
// instance ids to channel slots via flat, O(1)-lookup arrays.
package registry

import (
	"sync"

	"github.com/rcornwell/sngisdn/internal/channelslot"
	"github.com/rcornwell/sngisdn/internal/sigtypes"
)

// MaxInstID is the inclusive upper bound of allocatable local call
// instance ids; ids are allocated from [1, MaxInstID].
const MaxInstID = 65535

// VariantCC is the registry for one signaling switchtype active in the
// process.
type VariantCC struct {
	mu            sync.Mutex
	lastLocalInst uint32
	byLocal       [MaxInstID + 1]*channelslot.Slot
	byPeer        [MaxInstID + 1]*channelslot.Slot
	inUse         int
	highWater     int
}

// New creates an empty registry for one switchtype.
func New() *VariantCC {
	return &VariantCC{}
}

// AllocLocal returns a fresh local instance id for slot, searching from
// last_local_inst+1 modulo the range and skipping occupied entries. It
// fails with ErrIdsExhausted if every id in [1, MaxInstID] is occupied.
func (v *VariantCC) AllocLocal(slot *channelslot.Slot) (uint32, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	start := v.lastLocalInst
	for i := 0; i < MaxInstID; i++ {
		candidate := (start+uint32(i))%MaxInstID + 1
		if v.byLocal[candidate] == nil {
			v.byLocal[candidate] = slot
			v.lastLocalInst = candidate
			slot.LocalInst = candidate
			v.inUse++
			if v.inUse > v.highWater {
				v.highWater = v.inUse
			}
			return candidate, nil
		}
	}
	return 0, sigtypes.ErrIdsExhausted
}

// BindPeer records peer_id as the remote instance id for slot. If peer_id
// is already bound to a different live slot, BindPeer returns
// ErrPeerIdCollision and makes no change: the caller must treat this as a
// protocol error (SIGBOOST_CALL_STOPPED / Q.931 release).
func (v *VariantCC) BindPeer(slot *channelslot.Slot, peerID uint32) error {
	if peerID == 0 {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	if existing := v.byPeer[peerID]; existing != nil && existing != slot {
		return sigtypes.ErrPeerIdCollision
	}
	v.byPeer[peerID] = slot
	slot.PeerInst = peerID
	return nil
}

// FindByLocal looks up the slot currently holding local instance id id.
func (v *VariantCC) FindByLocal(id uint32) (*channelslot.Slot, bool) {
	if id == 0 || id > MaxInstID {
		return nil, false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.byLocal[id]
	return s, s != nil
}

// FindByPeer looks up the slot currently holding peer instance id id.
func (v *VariantCC) FindByPeer(id uint32) (*channelslot.Slot, bool) {
	if id == 0 || id > MaxInstID {
		return nil, false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.byPeer[id]
	return s, s != nil
}

// Release clears both mappings for slot. Release is idempotent.
func (v *VariantCC) Release(slot *channelslot.Slot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if slot.LocalInst != 0 && slot.LocalInst <= MaxInstID && v.byLocal[slot.LocalInst] == slot {
		v.byLocal[slot.LocalInst] = nil
		v.inUse--
	}
	if slot.PeerInst != 0 && slot.PeerInst <= MaxInstID && v.byPeer[slot.PeerInst] == slot {
		v.byPeer[slot.PeerInst] = nil
	}
}

// Stats reports current in-use count and historical high-water mark,
// useful for the IdsExhausted boundary test and as an operator-facing
// gauge (no metrics sink is wired, but the counters are exposed).
type Stats struct {
	InUse     int
	HighWater int
}

func (v *VariantCC) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Stats{InUse: v.inUse, HighWater: v.highWater}
}
