// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

// participant is the stake record of a single sequencer identity.
//
// Invariant: active == false implies stake == 0; the collateral is always
// fully refunded or burned before a record is deactivated.
type participant struct {
	stake       uint64
	joinedAt    uint64
	missedCount uint64
	active      bool
}

// Status is a read-only snapshot of one participant.
// The zero value is returned for unknown identities.
type Status struct {
	Stake       uint64 `json:"stake"`
	JoinedAt    uint64 `json:"joinedAt"`
	MissedCount uint64 `json:"missedCount"`
	Active      bool   `json:"active"`
}
