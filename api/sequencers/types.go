// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sequencers

import (
	"github.com/rotorchain/rotor/registry"
	"github.com/rotorchain/rotor/rotor"
)

// JoinRequest registers a new sequencer with its collateral.
type JoinRequest struct {
	Signer rotor.Identity `json:"signer"`
	Amount uint64         `json:"amount"`
}

// JoinResponse reports the join outcome. A join can succeed without the
// signer entering the roster: at capacity the deposit is returned in full
// and Accepted is false.
type JoinResponse struct {
	Accepted bool `json:"accepted"`
}

// StakeRequest adds collateral to an active sequencer.
type StakeRequest struct {
	Amount uint64 `json:"amount"`
}

// MissedRequest records a missed block against a sequencer.
type MissedRequest struct {
	BlockRef rotor.Bytes32 `json:"blockRef"`
}

// Sequencer is one roster entry with its participant snapshot.
type Sequencer struct {
	Identity rotor.Identity `json:"identity"`
	registry.Status
}
