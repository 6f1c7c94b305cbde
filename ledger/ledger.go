// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"errors"

	"github.com/rotorchain/rotor/rotor"
)

// ErrInsufficientBalance is returned when a transfer exceeds the source balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger is the value-transfer primitive backing the registry. Collateral
// deposited by sequencers is held on a single engine account; every transfer
// either fully happens or fails without effect.
type Ledger interface {
	// Deposit moves amount from the account of `from` onto the engine account.
	Deposit(from rotor.Identity, amount uint64) error
	// Payout moves amount from the engine account to the account of `to`.
	// It fails with ErrInsufficientBalance if the engine holds less than amount.
	Payout(to rotor.Identity, amount uint64) error
	// Burn removes amount from the engine account for good.
	Burn(amount uint64) error

	// BalanceOf returns the free balance of an account.
	BalanceOf(id rotor.Identity) uint64
	// EngineBalance returns the collateral currently held by the engine.
	EngineBalance() uint64
	// TotalBurned returns the cumulative amount removed via Burn.
	TotalBurned() uint64
}
