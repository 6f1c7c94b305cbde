// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"github.com/ethereum/go-ethereum/event"

	"github.com/rotorchain/rotor/rotor"
)

// EventType tags registry events.
type EventType string

const (
	// Registered a sequencer entered the active roster.
	Registered EventType = "registered"
	// Unregistered a sequencer was removed from the roster with its remaining
	// stake refunded (capacity rejection, displacement or slash eviction).
	Unregistered EventType = "unregistered"
	// StakeIncreased an active sequencer added collateral.
	StakeIncreased EventType = "stake-increased"
	// StakeWithdrawn a sequencer left voluntarily, withdrawing its full stake.
	StakeWithdrawn EventType = "stake-withdrawn"
	// Slashed part of a sequencer's collateral was seized.
	Slashed EventType = "slashed"
	// MissedBlock a privileged caller recorded a missed block.
	MissedBlock EventType = "missed-block"
)

// Event is emitted for every state mutation. The sequence number is strictly
// increasing with no gaps, and TotalStaked reflects the engine after the
// mutation, so an observer can reconstruct roster history from the event
// stream alone.
type Event struct {
	Seq         uint64         `json:"seq"`
	Type        EventType      `json:"type"`
	Identity    rotor.Identity `json:"identity"`
	Amount      uint64         `json:"amount"`
	BlockRef    *rotor.Bytes32 `json:"blockRef,omitempty"`
	Time        uint64         `json:"time"`
	TotalStaked uint64         `json:"totalStaked"`
}

// SubscribeEvents registers a channel to receive future registry events.
// The subscription is released by calling Unsubscribe, or collectively when
// the registry is closed.
func (r *Registry) SubscribeEvents(ch chan *Event) event.Subscription {
	return r.scope.Track(r.feed.Subscribe(ch))
}

// Events returns retained events with sequence number >= fromSeq, oldest
// first. Events older than the retention window are gone; the first returned
// event tells the caller where the window starts.
func (r *Registry) Events(fromSeq uint64) []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Event, 0, len(r.journal))
	for _, ev := range r.journal {
		if ev.Seq >= fromSeq {
			out = append(out, ev)
		}
	}
	return out
}

// emit appends the event to the journal and notifies subscribers.
// Caller must hold r.mu.
func (r *Registry) emit(ev *Event) {
	r.seq++
	ev.Seq = r.seq
	ev.Time = r.now()
	ev.TotalStaked = r.totalStaked

	if len(r.journal) >= journalLimit {
		r.journal = append(r.journal[:0], r.journal[1:]...)
	}
	r.journal = append(r.journal, ev)

	r.feed.Send(ev)
}

// journalLimit bounds the number of retained events.
const journalLimit = 1024
