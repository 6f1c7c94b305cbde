// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import "github.com/rotorchain/rotor/rotor"

// Op names a privileged registry operation.
type Op string

const (
	OpSlash             Op = "slash"
	OpRecordMissedBlock Op = "record_missed_block"
)

// Authorizer decides whether a caller may invoke a privileged operation.
type Authorizer interface {
	Authorized(caller rotor.Identity, op Op) bool
}

// AuthorizerFunc adapts a plain function to the Authorizer interface.
type AuthorizerFunc func(caller rotor.Identity, op Op) bool

func (f AuthorizerFunc) Authorized(caller rotor.Identity, op Op) bool {
	return f(caller, op)
}

// SingleOwner authorizes every privileged operation for exactly one identity.
type SingleOwner struct {
	owner rotor.Identity
}

var _ Authorizer = (*SingleOwner)(nil)

// NewSingleOwner creates an Authorizer gated on the given owner identity.
func NewSingleOwner(owner rotor.Identity) *SingleOwner {
	return &SingleOwner{owner}
}

func (s *SingleOwner) Authorized(caller rotor.Identity, _ Op) bool {
	return caller == s.owner
}
