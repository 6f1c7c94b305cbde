// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rotor

// Constants of the sequencer registry.
const (
	MinimumStake uint64 = 10 // least stake required to register as a sequencer.
	SlotDuration uint64 = 12 // time interval a single leader slot lasts.
	MaxActive    uint64 = 5  // capacity of the active roster.

	// SlashPercentage portion of stake seized per slash, in percent.
	SlashPercentage uint64 = 30
)

// SlashAmount returns the portion of stake seized when slashing the given stake.
func SlashAmount(stake uint64) uint64 {
	return stake * SlashPercentage / 100
}
