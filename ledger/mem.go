// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"sync"

	"github.com/rotorchain/rotor/rotor"
)

// MemLedger is an in-memory Ledger, used by the standalone node and tests.
type MemLedger struct {
	mu       sync.Mutex
	accounts map[rotor.Identity]uint64
	engine   uint64
	burned   uint64
}

var _ Ledger = (*MemLedger)(nil)

// NewMemLedger creates an empty in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{
		accounts: make(map[rotor.Identity]uint64),
	}
}

// Mint credits an account out of thin air. Genesis allocation only.
func (l *MemLedger) Mint(id rotor.Identity, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[id] += amount
}

func (l *MemLedger) Deposit(from rotor.Identity, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.accounts[from] < amount {
		return ErrInsufficientBalance
	}
	l.accounts[from] -= amount
	l.engine += amount
	return nil
}

func (l *MemLedger) Payout(to rotor.Identity, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.engine < amount {
		return ErrInsufficientBalance
	}
	l.engine -= amount
	l.accounts[to] += amount
	return nil
}

func (l *MemLedger) Burn(amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.engine < amount {
		return ErrInsufficientBalance
	}
	l.engine -= amount
	l.burned += amount
	return nil
}

func (l *MemLedger) BalanceOf(id rotor.Identity) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[id]
}

func (l *MemLedger) EngineBalance() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine
}

func (l *MemLedger) TotalBurned() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.burned
}
