// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rotation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	pkgerrors "github.com/pkg/errors"

	"github.com/rotorchain/rotor/api/restutil"
	"github.com/rotorchain/rotor/registry"
	"github.com/rotorchain/rotor/rotor"
	"github.com/rotorchain/rotor/sched"
)

type Rotation struct {
	reg *registry.Registry
}

func New(reg *registry.Registry) *Rotation {
	return &Rotation{reg}
}

// Leader names the block producer for a timestamp. Null when the roster
// is empty.
type Leader struct {
	Leader *rotor.Identity `json:"leader"`
	At     uint64          `json:"at"`
}

// State is the engine-level rotation state and its contract constants.
type State struct {
	StartTime       uint64 `json:"startTime"`
	TotalStaked     uint64 `json:"totalStaked"`
	ActiveCount     int    `json:"activeCount"`
	SlotDuration    uint64 `json:"slotDuration"`
	MaxActive       uint64 `json:"maxActive"`
	MinimumStake    uint64 `json:"minimumStake"`
	SlashPercentage uint64 `json:"slashPercentage"`
}

func (r *Rotation) handleGetLeader(w http.ResponseWriter, req *http.Request) error {
	var (
		leader rotor.Identity
		at     uint64
		err    error
	)
	if atParam := req.URL.Query().Get("at"); atParam != "" {
		at, err = strconv.ParseUint(atParam, 10, 64)
		if err != nil {
			return restutil.BadRequest(pkgerrors.WithMessage(err, "at"))
		}
	} else {
		at = r.reg.Now()
	}
	leader, err = r.reg.LeaderAt(at)
	if err != nil {
		if errors.Is(err, sched.ErrInvalidTimestamp) {
			return restutil.BadRequest(err)
		}
		return err
	}

	resp := &Leader{At: at}
	if !leader.IsZero() {
		resp.Leader = &leader
	}
	return restutil.WriteJSON(w, resp)
}

func (r *Rotation) handleGetState(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, &State{
		StartTime:       r.reg.StartTime(),
		TotalStaked:     r.reg.TotalStaked(),
		ActiveCount:     len(r.reg.TopActive()),
		SlotDuration:    rotor.SlotDuration,
		MaxActive:       rotor.MaxActive,
		MinimumStake:    rotor.MinimumStake,
		SlashPercentage: rotor.SlashPercentage,
	})
}

func (r *Rotation) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/leader").
		Methods(http.MethodGet).
		Name("rotation_leader").
		HandlerFunc(restutil.WrapHandlerFunc(r.handleGetLeader))
	sub.Path("/state").
		Methods(http.MethodGet).
		Name("rotation_state").
		HandlerFunc(restutil.WrapHandlerFunc(r.handleGetState))
}
