// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/rotorchain/rotor/ledger"
	"github.com/rotorchain/rotor/log"
	"github.com/rotorchain/rotor/metrics"
	"github.com/rotorchain/rotor/rotor"
	"github.com/rotorchain/rotor/sched"
)

var logger = log.WithContext("pkg", "registry")

var (
	metricJoins       = metrics.LazyLoadCounterVec("registry_join_count", []string{"outcome"})
	metricSlashes     = metrics.LazyLoadCounter("registry_slash_count")
	metricMissed      = metrics.LazyLoadCounter("registry_missed_block_count")
	metricTotalStaked = metrics.LazyLoadGauge("registry_total_staked")
	metricActive      = metrics.LazyLoadGauge("registry_active_count")
)

// Options to configure the registry.
type Options struct {
	// StartTime is the epoch origin for leader rotation. Zero means "now".
	StartTime uint64
	// Now supplies the ambient timestamp. Defaults to wall clock seconds.
	Now func() uint64
}

// Registry is the sequencer registry and rotation engine.
//
// It is a strictly sequential state machine: every operation is one atomic
// transaction against the engine state, serialized on a single mutex, and
// ledger transfers are coupled all-or-nothing with the state mutation that
// triggers them.
type Registry struct {
	mu  sync.Mutex
	led ledger.Ledger

	auth      Authorizer
	startTime uint64
	now       func() uint64

	participants map[rotor.Identity]*participant
	// order is the backing sequence of active identities. It is re-sorted in
	// place by stake after every stake change, so its prefix is the roster;
	// stable sorting keeps equal stakes in their prior relative order.
	order       []rotor.Identity
	totalStaked uint64

	seq     uint64
	journal []*Event
	feed    event.Feed
	scope   event.SubscriptionScope
}

// New creates a registry. The start time is fixed here and never changes.
func New(led ledger.Ledger, auth Authorizer, opts Options) *Registry {
	now := opts.Now
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	startTime := opts.StartTime
	if startTime == 0 {
		startTime = now()
	}

	return &Registry{
		led:          led,
		auth:         auth,
		startTime:    startTime,
		now:          now,
		participants: make(map[rotor.Identity]*participant),
	}
}

// Close releases all event subscriptions.
func (r *Registry) Close() {
	r.scope.Close()
}

// StartTime returns the rotation epoch origin.
func (r *Registry) StartTime() uint64 {
	return r.startTime
}

// Now returns the ambient timestamp the engine operates on.
func (r *Registry) Now() uint64 {
	return r.now()
}

// TotalStaked returns the sum of stake over all active sequencers.
func (r *Registry) TotalStaked() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalStaked
}

// Info returns the snapshot of one identity. Unknown identities yield the
// zero Status, no error.
func (r *Registry) Info(id rotor.Identity) Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok {
		return Status{}
	}
	return Status{
		Stake:       p.stake,
		JoinedAt:    p.joinedAt,
		MissedCount: p.missedCount,
		Active:      p.active,
	}
}

// TopActive returns the roster: up to rotor.MaxActive identities in strictly
// descending stake order, equal stakes keeping their prior relative order.
func (r *Registry) TopActive() []rotor.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// CurrentLeader returns the leader for the ambient timestamp.
func (r *Registry) CurrentLeader() (rotor.Identity, error) {
	return r.LeaderAt(r.now())
}

// LeaderAt returns the leader for the given timestamp using the current
// roster. Replayable: identical inputs always yield the identical leader.
func (r *Registry) LeaderAt(ts uint64) (rotor.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sched.Leader(ts, r.startTime, r.order)
}

// Join registers an identity with the given collateral.
//
// The deposit is taken first; if the newcomer does not rank within the top
// rotor.MaxActive it is refunded in full and left inactive — the operation
// still succeeds, with accepted == false. A newcomer that displaces an
// incumbent causes that incumbent to be refunded in full and deactivated.
func (r *Registry) Join(id rotor.Identity, amount uint64) (accepted bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if amount < rotor.MinimumStake {
		return false, ErrInsufficientStake
	}
	if p, ok := r.participants[id]; ok && p.active {
		return false, ErrAlreadyActive
	}

	accepted, evictions := r.planJoin(id, amount)

	// funds phase, all-or-nothing
	if err := r.led.Deposit(id, amount); err != nil {
		return false, errors.Wrap(err, "deposit stake")
	}
	for i, ev := range evictions {
		if err := r.led.Payout(ev.id, ev.refund); err != nil {
			// unwind: claw back completed refunds, then return the deposit
			for _, done := range evictions[:i] {
				r.led.Deposit(done.id, done.refund) //nolint:errcheck
			}
			r.led.Payout(id, amount) //nolint:errcheck
			return false, errors.Wrap(err, "refund stake")
		}
	}

	// state phase, infallible
	nowTs := r.now()
	r.participants[id] = &participant{stake: amount, joinedAt: nowTs, active: true}
	r.order = append(r.order, id)
	r.totalStaked += amount
	r.rerank()
	r.emit(&Event{Type: Registered, Identity: id, Amount: amount})

	for uint64(len(r.order)) > rotor.MaxActive {
		victim := r.order[len(r.order)-1]
		refund := r.deactivate(victim)
		r.emit(&Event{Type: Unregistered, Identity: victim, Amount: refund})
		if victim != id {
			logger.Info("sequencer displaced", "id", victim, "refund", refund, "by", id)
		}
	}

	outcome := "accepted"
	if !accepted {
		outcome = "rejected"
		logger.Info("join rejected at capacity", "id", id, "stake", amount)
	} else {
		logger.Info("sequencer registered", "id", id, "stake", amount)
	}
	metricJoins().AddWithLabel(1, map[string]string{"outcome": outcome})
	r.updateGauges()
	return accepted, nil
}

// IncreaseStake adds collateral to an active sequencer.
func (r *Registry) IncreaseStake(id rotor.Identity, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok || !p.active {
		return ErrNotActive
	}
	if amount == 0 {
		return ErrNoValue
	}

	if err := r.led.Deposit(id, amount); err != nil {
		return errors.Wrap(err, "deposit stake")
	}

	p.stake += amount
	r.totalStaked += amount
	r.rerank()
	r.emit(&Event{Type: StakeIncreased, Identity: id, Amount: amount})

	logger.Info("stake increased", "id", id, "amount", amount, "stake", p.stake)
	r.updateGauges()
	return nil
}

// Leave deactivates an active sequencer, refunding its full stake.
func (r *Registry) Leave(id rotor.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok || !p.active {
		return ErrNotActive
	}

	refund := p.stake
	if err := r.led.Payout(id, refund); err != nil {
		return errors.Wrap(err, "refund stake")
	}

	r.deactivate(id)
	r.emit(&Event{Type: StakeWithdrawn, Identity: id, Amount: refund})

	logger.Info("sequencer left", "id", id, "refund", refund)
	r.updateGauges()
	return nil
}

// Slash seizes rotor.SlashPercentage of the sequencer's stake. The seized
// amount is burned. If the remaining stake falls below the minimum, the
// sequencer is removed as in Leave and the remainder refunded.
func (r *Registry) Slash(caller, id rotor.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.auth.Authorized(caller, OpSlash) {
		return ErrUnauthorized
	}
	p, ok := r.participants[id]
	if !ok || !p.active {
		return ErrNotActive
	}

	seized := rotor.SlashAmount(p.stake)
	remaining := p.stake - seized
	evict := remaining < rotor.MinimumStake

	if evict {
		if err := r.led.Payout(id, remaining); err != nil {
			return errors.Wrap(err, "refund stake")
		}
		if err := r.led.Burn(seized); err != nil {
			r.led.Deposit(id, remaining) //nolint:errcheck
			return errors.Wrap(err, "burn seized stake")
		}
	} else if err := r.led.Burn(seized); err != nil {
		return errors.Wrap(err, "burn seized stake")
	}

	p.stake = remaining
	r.totalStaked -= seized
	r.emit(&Event{Type: Slashed, Identity: id, Amount: seized})

	if evict {
		r.deactivate(id)
		r.emit(&Event{Type: Unregistered, Identity: id, Amount: remaining})
		logger.Warn("sequencer slashed out", "id", id, "seized", seized, "refund", remaining)
	} else {
		r.rerank()
		logger.Warn("sequencer slashed", "id", id, "seized", seized, "stake", remaining)
	}

	metricSlashes().Add(1)
	r.updateGauges()
	return nil
}

// RecordMissedBlock increments the miss counter of an active sequencer.
// Pure bookkeeping; any consequence is up to the policy layer.
func (r *Registry) RecordMissedBlock(caller, id rotor.Identity, blockRef rotor.Bytes32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.auth.Authorized(caller, OpRecordMissedBlock) {
		return ErrUnauthorized
	}
	p, ok := r.participants[id]
	if !ok || !p.active {
		return ErrNotActive
	}

	p.missedCount++
	r.emit(&Event{Type: MissedBlock, Identity: id, BlockRef: &blockRef})

	logger.Info("missed block recorded", "id", id, "ref", blockRef.AbbrevString(), "count", p.missedCount)
	metricMissed().Add(1)
	return nil
}

type eviction struct {
	id     rotor.Identity
	refund uint64
}

// planJoin computes, without mutating state, whether a newcomer with the
// given stake ranks within capacity and which members get refunded.
// Equal stakes keep their prior relative order, so a newcomer never evicts
// an incumbent on a tie: it needs strictly more stake.
func (r *Registry) planJoin(id rotor.Identity, amount uint64) (accepted bool, evictions []eviction) {
	ranked := append(slices.Clone(r.order), id)
	stakeOf := func(x rotor.Identity) uint64 {
		if x == id {
			return amount
		}
		return r.participants[x].stake
	}
	slices.SortStableFunc(ranked, func(a, b rotor.Identity) int {
		sa, sb := stakeOf(a), stakeOf(b)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})

	accepted = true
	for i := len(ranked) - 1; uint64(i) >= rotor.MaxActive; i-- {
		over := ranked[i]
		evictions = append(evictions, eviction{over, stakeOf(over)})
		if over == id {
			accepted = false
		}
	}
	return accepted, evictions
}

// rerank restores descending-stake order over the backing sequence.
// The sort is stable: equal stakes never swap, preserving their prior
// relative order. The roster is bounded tiny, sorting cost is irrelevant.
func (r *Registry) rerank() {
	slices.SortStableFunc(r.order, func(a, b rotor.Identity) int {
		sa, sb := r.participants[a].stake, r.participants[b].stake
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})
}

// deactivate removes id from the backing sequence (swap with last, truncate),
// zeroes its stake and marks it inactive. Returns the prior stake.
// Caller must hold r.mu; caller is responsible for the matching refund.
func (r *Registry) deactivate(id rotor.Identity) uint64 {
	p := r.participants[id]
	prior := p.stake

	for i, x := range r.order {
		if x == id {
			r.order[i] = r.order[len(r.order)-1]
			r.order = r.order[:len(r.order)-1]
			break
		}
	}
	r.totalStaked -= prior
	p.stake = 0
	p.active = false
	r.rerank()
	return prior
}

func (r *Registry) updateGauges() {
	metricTotalStaked().Set(int64(r.totalStaked))
	metricActive().Set(int64(len(r.order)))
}
