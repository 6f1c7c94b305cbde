// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import "errors"

// Errors returned by registry operations. Every failed operation leaves
// the engine state untouched.
var (
	// ErrInsufficientStake join amount below rotor.MinimumStake.
	ErrInsufficientStake = errors.New("stake below minimum")
	// ErrAlreadyActive duplicate join of an active sequencer.
	ErrAlreadyActive = errors.New("already active")
	// ErrNotActive operation on a sequencer that is not active.
	ErrNotActive = errors.New("not active")
	// ErrNoValue zero-amount stake increase.
	ErrNoValue = errors.New("no value")
	// ErrUnauthorized privileged operation attempted by a non-privileged caller.
	ErrUnauthorized = errors.New("unauthorized")
)
