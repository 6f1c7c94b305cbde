// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rotor

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// IdentityLength length of identity in bytes.
	IdentityLength = common.AddressLength
)

// Identity identifies a sequencer.
type Identity common.Address

var (
	_ json.Marshaler   = (*Identity)(nil)
	_ json.Unmarshaler = (*Identity)(nil)
)

// String implements the stringer interface
func (id Identity) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// Bytes returns byte slice form of identity.
func (id Identity) Bytes() []byte {
	return id[:]
}

// IsZero returns if identity has all zero bytes.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalJSON implements json.Marshaler.
func (id *Identity) MarshalJSON() ([]byte, error) {
	if id == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(id.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *Identity) UnmarshalJSON(data []byte) error {
	var hex string
	if err := json.Unmarshal(data, &hex); err != nil {
		return err
	}
	parsed, err := ParseIdentity(hex)
	if err != nil {
		return err
	}
	*id = *parsed
	return nil
}

// ParseIdentity convert string presented identity into Identity type.
func ParseIdentity(s string) (*Identity, error) {
	if len(s) == IdentityLength*2 {
	} else if len(s) == IdentityLength*2+2 {
		if strings.ToLower(s[:2]) != "0x" {
			return nil, errors.New("invalid prefix")
		}
		s = s[2:]
	} else {
		return nil, errors.New("invalid length")
	}

	var id Identity
	_, err := hex.Decode(id[:], []byte(s))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// MustParseIdentity convert string presented identity into Identity type, panic on error.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return *id
}

// BytesToIdentity converts bytes slice into identity.
// If b is larger than identity length, b will be cropped (from the left).
// If b is smaller than identity length, b will be extended (from the left).
func BytesToIdentity(b []byte) Identity {
	return Identity(common.BytesToAddress(b))
}
