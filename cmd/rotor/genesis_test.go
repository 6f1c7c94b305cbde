// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	content := `
owner: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
startTime: 1700000000
accounts:
  - identity: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
    balance: 500
  - identity: "0xd3ae78222beadb038203be21ed5ce7c9b1bff602"
    balance: 42
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	gene, err := loadGenesis(path)
	require.NoError(t, err)

	owner, err := gene.OwnerIdentity()
	require.NoError(t, err)
	assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", owner.String())
	assert.Equal(t, uint64(1700000000), gene.StartTime)
	require.Len(t, gene.Accounts, 2)
	assert.Equal(t, uint64(500), gene.Accounts[0].Balance)
	assert.Equal(t, uint64(42), gene.Accounts[1].Balance)
}

func TestLoadGenesisRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	content := `
owner: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
bogus: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := loadGenesis(path)
	assert.Error(t, err)
}

func TestLoadGenesisMissingFile(t *testing.T) {
	_, err := loadGenesis(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDevGenesis(t *testing.T) {
	gene := devGenesis()

	owner, err := gene.OwnerIdentity()
	require.NoError(t, err)
	assert.False(t, owner.IsZero())
	assert.NotEmpty(t, gene.Accounts)
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, verbosityToLevel(0))
	assert.Equal(t, slog.LevelWarn, verbosityToLevel(1))
	assert.Equal(t, slog.LevelInfo, verbosityToLevel(3))
	assert.Equal(t, slog.LevelDebug, verbosityToLevel(9))
}
