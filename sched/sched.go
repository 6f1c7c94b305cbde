// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sched

import (
	"errors"

	"github.com/rotorchain/rotor/rotor"
)

// ErrInvalidTimestamp is returned when a leader is queried for a time
// preceding the engine start time.
var ErrInvalidTimestamp = errors.New("timestamp precedes start time")

// NoLeader is the sentinel returned when the roster is empty.
var NoLeader = rotor.Identity{}

// SlotIndex maps a timestamp to a roster position. rosterLen must be > 0.
//
// Time is divided into slots of rotor.SlotDuration starting at startTime.
// The cycle is rotor.MaxActive slots long; a shorter roster shrinks the cycle
// to its own length instead of leaving empty slots.
func SlotIndex(now, startTime uint64, rosterLen int) (int, error) {
	if now < startTime {
		return 0, ErrInvalidTimestamp
	}

	slot := (now - startTime) / rotor.SlotDuration % rotor.MaxActive
	if uint64(rosterLen) < rotor.MaxActive {
		slot %= uint64(rosterLen)
	}
	return int(slot), nil
}

// Leader returns the roster member whose slot covers `now`.
//
// It is a pure function of its inputs: identical (now, startTime, roster)
// always yield the identical leader, so any consumer can verify after the
// fact who led at a past timestamp.
func Leader(now, startTime uint64, roster []rotor.Identity) (rotor.Identity, error) {
	if len(roster) == 0 {
		return NoLeader, nil
	}

	slot, err := SlotIndex(now, startTime, len(roster))
	if err != nil {
		return NoLeader, err
	}
	return roster[slot], nil
}
