// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rotorchain/rotor/rotor"
)

// Genesis describes the initial ledger and engine parameters.
type Genesis struct {
	// Owner is authorized for slashing and missed-block reports.
	Owner string `yaml:"owner"`
	// StartTime is the rotation epoch origin in unix seconds. Zero means
	// "when the process starts".
	StartTime uint64 `yaml:"startTime"`
	// Accounts are pre-funded ledger balances.
	Accounts []GenesisAccount `yaml:"accounts"`
}

// GenesisAccount is a pre-funded ledger account.
type GenesisAccount struct {
	Identity string `yaml:"identity"`
	Balance  uint64 `yaml:"balance"`
}

// OwnerIdentity parses the owner field.
func (g *Genesis) OwnerIdentity() (rotor.Identity, error) {
	if g.Owner == "" {
		return rotor.Identity{}, errors.New("genesis: owner not set")
	}
	id, err := rotor.ParseIdentity(g.Owner)
	if err != nil {
		return rotor.Identity{}, errors.Wrap(err, "genesis: parse owner")
	}
	return *id, nil
}

func loadGenesis(path string) (*Genesis, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open genesis file [%v]", path)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var gene Genesis
	if err := decoder.Decode(&gene); err != nil {
		return nil, errors.Wrapf(err, "decode genesis file [%v]", path)
	}
	return &gene, nil
}

// devGenesis returns a throwaway genesis for local development. The owner and
// accounts are well-known addresses, never use them with real value.
func devGenesis() *Genesis {
	accounts := []string{
		"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed",
		"0xd3ae78222beadb038203be21ed5ce7c9b1bff602",
		"0x733b7269443c70de16bbf9b0615307884bcc5636",
		"0x115eabb4f62973d0dba138ab7df5c0375ec87256",
		"0xea2e8c9d6dcad9e4be4f1c88a3befb8ea742832e",
	}
	gene := &Genesis{Owner: accounts[0]}
	for _, acc := range accounts {
		gene.Accounts = append(gene.Accounts, GenesisAccount{
			Identity: acc,
			Balance:  1000,
		})
	}
	return gene
}
