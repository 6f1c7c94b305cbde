// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotorchain/rotor/ledger"
	"github.com/rotorchain/rotor/registry"
	"github.com/rotorchain/rotor/rotor"
)

var owner = rotor.BytesToIdentity([]byte("owner"))

type env struct {
	reg *registry.Registry
	led *ledger.MemLedger
	now uint64
}

func newEnv() *env {
	e := &env{now: 1000}
	e.led = ledger.NewMemLedger()
	e.reg = registry.New(e.led, registry.NewSingleOwner(owner), registry.Options{
		StartTime: 1000,
		Now:       func() uint64 { return e.now },
	})
	return e
}

func id(name string) rotor.Identity {
	return rotor.BytesToIdentity([]byte(name))
}

// join funds the identity with exactly amount and joins.
func (e *env) join(t *testing.T, name string, amount uint64) bool {
	t.Helper()
	e.led.Mint(id(name), amount)
	accepted, err := e.reg.Join(id(name), amount)
	require.NoError(t, err)
	return accepted
}

// checkInvariants verifies totalStaked against the participant table and the
// ledger after every scenario step.
func (e *env) checkInvariants(t *testing.T, names ...string) {
	t.Helper()
	var sum uint64
	for _, n := range names {
		st := e.reg.Info(id(n))
		if st.Active {
			sum += st.Stake
		} else {
			assert.Zero(t, st.Stake, "inactive %s must hold no stake", n)
		}
	}
	assert.Equal(t, sum, e.reg.TotalStaked())
	assert.Equal(t, e.reg.TotalStaked(), e.led.EngineBalance())
}

func TestJoinBelowMinimum(t *testing.T) {
	e := newEnv()
	e.led.Mint(id("s1"), rotor.MinimumStake)

	_, err := e.reg.Join(id("s1"), rotor.MinimumStake-1)
	assert.Equal(t, registry.ErrInsufficientStake, err)
	assert.Zero(t, e.reg.TotalStaked())
	assert.Empty(t, e.reg.TopActive())
}

func TestJoinDuplicate(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 20)

	e.led.Mint(id("s1"), 20)
	_, err := e.reg.Join(id("s1"), 20)
	assert.Equal(t, registry.ErrAlreadyActive, err)
	assert.Equal(t, uint64(20), e.reg.TotalStaked())
}

func TestJoinRanking(t *testing.T) {
	e := newEnv()
	assert.True(t, e.join(t, "s1", 10))
	assert.True(t, e.join(t, "s2", 11))
	assert.True(t, e.join(t, "s3", 12))

	assert.Equal(t, []rotor.Identity{id("s3"), id("s2"), id("s1")}, e.reg.TopActive())

	leader, err := e.reg.LeaderAt(1000)
	require.NoError(t, err)
	assert.Equal(t, id("s3"), leader)

	e.checkInvariants(t, "s1", "s2", "s3")
}

func TestJoinCapacityDisplacement(t *testing.T) {
	e := newEnv()
	for i, stake := range []uint64{10, 11, 12, 13, 14, 15} {
		name := string(rune('a' + i))
		assert.True(t, e.join(t, name, stake))
	}

	// the 10-stake member was displaced and fully refunded
	st := e.reg.Info(id("a"))
	assert.False(t, st.Active)
	assert.Zero(t, st.Stake)
	assert.Equal(t, uint64(10), e.led.BalanceOf(id("a")))

	roster := e.reg.TopActive()
	require.Len(t, roster, int(rotor.MaxActive))
	assert.Equal(t, []rotor.Identity{id("f"), id("e"), id("d"), id("c"), id("b")}, roster)
	assert.Equal(t, uint64(11+12+13+14+15), e.reg.TotalStaked())

	e.checkInvariants(t, "a", "b", "c", "d", "e", "f")
}

func TestJoinSoftRejection(t *testing.T) {
	e := newEnv()
	for i := 0; i < 5; i++ {
		e.join(t, string(rune('a'+i)), 100)
	}
	before := e.reg.TotalStaked()

	accepted := e.join(t, "late", 50)
	assert.False(t, accepted)

	st := e.reg.Info(id("late"))
	assert.False(t, st.Active)
	assert.Zero(t, st.Stake)
	// funds fully returned
	assert.Equal(t, uint64(50), e.led.BalanceOf(id("late")))
	assert.Equal(t, before, e.reg.TotalStaked())
	assert.Len(t, e.reg.TopActive(), int(rotor.MaxActive))

	e.checkInvariants(t, "a", "b", "c", "d", "e", "late")
}

func TestJoinTieFavorsIncumbent(t *testing.T) {
	e := newEnv()
	for i := 0; i < 5; i++ {
		e.join(t, string(rune('a'+i)), 100)
	}

	// equal stake is not enough to displace anyone
	accepted := e.join(t, "late", 100)
	assert.False(t, accepted)
	for i := 0; i < 5; i++ {
		assert.True(t, e.reg.Info(id(string(rune('a'+i)))).Active)
	}
}

func TestJoinInsufficientFunds(t *testing.T) {
	e := newEnv()
	e.led.Mint(id("s1"), 5)

	_, err := e.reg.Join(id("s1"), 20)
	require.Error(t, err)
	assert.Zero(t, e.reg.TotalStaked())
	assert.False(t, e.reg.Info(id("s1")).Active)
	assert.Equal(t, uint64(5), e.led.BalanceOf(id("s1")))
}

func TestIncreaseStake(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 30)
	e.join(t, "s2", 20)
	assert.Equal(t, []rotor.Identity{id("s1"), id("s2")}, e.reg.TopActive())

	e.led.Mint(id("s2"), 15)
	require.NoError(t, e.reg.IncreaseStake(id("s2"), 15))

	assert.Equal(t, []rotor.Identity{id("s2"), id("s1")}, e.reg.TopActive())
	assert.Equal(t, uint64(35), e.reg.Info(id("s2")).Stake)
	assert.Equal(t, uint64(65), e.reg.TotalStaked())

	e.checkInvariants(t, "s1", "s2")
}

func TestIncreaseStakeErrors(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 20)

	assert.Equal(t, registry.ErrNoValue, e.reg.IncreaseStake(id("s1"), 0))
	assert.Equal(t, registry.ErrNotActive, e.reg.IncreaseStake(id("ghost"), 5))
}

func TestIncreaseStakeTieKeepsOrder(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 20)
	e.join(t, "s2", 10)

	// equal stakes preserve prior relative order
	e.led.Mint(id("s2"), 10)
	require.NoError(t, e.reg.IncreaseStake(id("s2"), 10))
	assert.Equal(t, []rotor.Identity{id("s1"), id("s2")}, e.reg.TopActive())
}

func TestLeave(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 25)
	e.join(t, "s2", 35)

	require.NoError(t, e.reg.Leave(id("s1")))

	st := e.reg.Info(id("s1"))
	assert.False(t, st.Active)
	assert.Zero(t, st.Stake)
	assert.Equal(t, uint64(25), e.led.BalanceOf(id("s1")))
	assert.Equal(t, uint64(35), e.reg.TotalStaked())
	assert.Equal(t, []rotor.Identity{id("s2")}, e.reg.TopActive())

	assert.Equal(t, registry.ErrNotActive, e.reg.Leave(id("s1")))
	e.checkInvariants(t, "s1", "s2")
}

func TestRejoinAfterLeave(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 25)
	require.NoError(t, e.reg.Leave(id("s1")))

	assert.True(t, e.join(t, "s1", 40))
	st := e.reg.Info(id("s1"))
	assert.True(t, st.Active)
	assert.Equal(t, uint64(40), st.Stake)
	assert.Zero(t, st.MissedCount)
}

func TestSlashKeepsActive(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 100)
	e.join(t, "s2", 80)

	require.NoError(t, e.reg.Slash(owner, id("s1")))

	st := e.reg.Info(id("s1"))
	assert.True(t, st.Active)
	assert.Equal(t, uint64(70), st.Stake) // exactly 30% seized, floored
	assert.Equal(t, uint64(150), e.reg.TotalStaked())
	assert.Equal(t, uint64(30), e.led.TotalBurned())

	// re-ranked below s2
	assert.Equal(t, []rotor.Identity{id("s2"), id("s1")}, e.reg.TopActive())
	e.checkInvariants(t, "s1", "s2")
}

func TestSlashEvicts(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", rotor.MinimumStake)

	require.NoError(t, e.reg.Slash(owner, id("s1")))

	st := e.reg.Info(id("s1"))
	assert.False(t, st.Active)
	assert.Zero(t, st.Stake)
	// 0.7 * minimum refunded, 0.3 burned
	assert.Equal(t, uint64(7), e.led.BalanceOf(id("s1")))
	assert.Equal(t, uint64(3), e.led.TotalBurned())
	assert.Zero(t, e.reg.TotalStaked())
	assert.Empty(t, e.reg.TopActive())

	e.checkInvariants(t, "s1")
}

func TestSlashFloorDivision(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 33)

	require.NoError(t, e.reg.Slash(owner, id("s1")))
	// floor(33*30/100) = 9
	assert.Equal(t, uint64(24), e.reg.Info(id("s1")).Stake)
	assert.Equal(t, uint64(9), e.led.TotalBurned())
}

func TestSlashUnauthorized(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 100)

	err := e.reg.Slash(id("mallory"), id("s1"))
	assert.Equal(t, registry.ErrUnauthorized, err)
	assert.Equal(t, uint64(100), e.reg.Info(id("s1")).Stake)
}

func TestSlashNotActive(t *testing.T) {
	e := newEnv()
	assert.Equal(t, registry.ErrNotActive, e.reg.Slash(owner, id("ghost")))
}

func TestRecordMissedBlock(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 50)
	ref := rotor.BytesToBytes32([]byte("block-1"))

	require.NoError(t, e.reg.RecordMissedBlock(owner, id("s1"), ref))
	require.NoError(t, e.reg.RecordMissedBlock(owner, id("s1"), ref))
	assert.Equal(t, uint64(2), e.reg.Info(id("s1")).MissedCount)

	// no automatic consequence
	assert.True(t, e.reg.Info(id("s1")).Active)
	assert.Equal(t, uint64(50), e.reg.TotalStaked())

	assert.Equal(t, registry.ErrUnauthorized, e.reg.RecordMissedBlock(id("mallory"), id("s1"), ref))
	assert.Equal(t, registry.ErrNotActive, e.reg.RecordMissedBlock(owner, id("ghost"), ref))
}

func TestInfoUnknown(t *testing.T) {
	e := newEnv()
	assert.Equal(t, registry.Status{}, e.reg.Info(id("nobody")))
}

func TestRosterNeverExceedsCapacity(t *testing.T) {
	e := newEnv()
	for i := 0; i < 20; i++ {
		e.join(t, string(rune('a'+i)), uint64(10+i))
		roster := e.reg.TopActive()
		assert.LessOrEqual(t, len(roster), int(rotor.MaxActive))
		// non-increasing stake
		for j := 1; j < len(roster); j++ {
			assert.GreaterOrEqual(t,
				e.reg.Info(roster[j-1]).Stake,
				e.reg.Info(roster[j]).Stake)
		}
	}
}

func TestLeaderRotation(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 10)
	e.join(t, "s2", 11)
	e.join(t, "s3", 12)

	roster := e.reg.TopActive()

	// determinism
	for i := 0; i < 10; i++ {
		ts := uint64(1000 + i*5)
		a, errA := e.reg.LeaderAt(ts)
		b, errB := e.reg.LeaderAt(ts)
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, a, b)
	}

	leader, err := e.reg.LeaderAt(1000)
	require.NoError(t, err)
	assert.Equal(t, roster[0], leader)

	// ambient clock path
	e.now = 1000 + rotor.SlotDuration
	leader, err = e.reg.CurrentLeader()
	require.NoError(t, err)
	assert.Equal(t, roster[1], leader)
}

func TestLeaderInvalidTimestamp(t *testing.T) {
	e := newEnv()
	e.join(t, "s1", 10)
	_, err := e.reg.LeaderAt(999)
	require.Error(t, err)
}
