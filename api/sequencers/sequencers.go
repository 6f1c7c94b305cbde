// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sequencers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	pkgerrors "github.com/pkg/errors"

	"github.com/rotorchain/rotor/api/restutil"
	"github.com/rotorchain/rotor/ledger"
	"github.com/rotorchain/rotor/registry"
	"github.com/rotorchain/rotor/rotor"
)

// CallerHeader carries the identity invoking a privileged operation.
const CallerHeader = "x-caller"

type Sequencers struct {
	reg *registry.Registry
}

func New(reg *registry.Registry) *Sequencers {
	return &Sequencers{reg}
}

func (s *Sequencers) handleJoin(w http.ResponseWriter, req *http.Request) error {
	var body JoinRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if body.Signer.IsZero() {
		return restutil.BadRequest(errors.New("signer: zero identity"))
	}

	accepted, err := s.reg.Join(body.Signer, body.Amount)
	if err != nil {
		return convertRegistryError(err)
	}
	return restutil.WriteJSON(w, &JoinResponse{Accepted: accepted})
}

func (s *Sequencers) handleTopActive(w http.ResponseWriter, _ *http.Request) error {
	roster := s.reg.TopActive()
	out := make([]*Sequencer, 0, len(roster))
	for _, id := range roster {
		out = append(out, &Sequencer{Identity: id, Status: s.reg.Info(id)})
	}
	return restutil.WriteJSON(w, out)
}

func (s *Sequencers) handleInfo(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Sequencer{Identity: id, Status: s.reg.Info(id)})
}

func (s *Sequencers) handleLeave(_ http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	if err := s.reg.Leave(id); err != nil {
		return convertRegistryError(err)
	}
	return nil
}

func (s *Sequencers) handleIncreaseStake(_ http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body StakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if err := s.reg.IncreaseStake(id, body.Amount); err != nil {
		return convertRegistryError(err)
	}
	return nil
}

func (s *Sequencers) handleSlash(_ http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	caller, err := parseCaller(req)
	if err != nil {
		return err
	}
	if err := s.reg.Slash(caller, id); err != nil {
		return convertRegistryError(err)
	}
	return nil
}

func (s *Sequencers) handleRecordMissed(_ http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	caller, err := parseCaller(req)
	if err != nil {
		return err
	}
	var body MissedRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if err := s.reg.RecordMissedBlock(caller, id, body.BlockRef); err != nil {
		return convertRegistryError(err)
	}
	return nil
}

func parseID(req *http.Request) (rotor.Identity, error) {
	id, err := rotor.ParseIdentity(mux.Vars(req)["id"])
	if err != nil {
		return rotor.Identity{}, restutil.BadRequest(pkgerrors.WithMessage(err, "id"))
	}
	return *id, nil
}

func parseCaller(req *http.Request) (rotor.Identity, error) {
	caller, err := rotor.ParseIdentity(req.Header.Get(CallerHeader))
	if err != nil {
		return rotor.Identity{}, restutil.BadRequest(pkgerrors.WithMessage(err, CallerHeader))
	}
	return *caller, nil
}

// convertRegistryError maps engine errors onto http statuses. Precondition
// violations are the caller's fault; only unknown failures map to 500.
func convertRegistryError(err error) error {
	switch {
	case errors.Is(err, registry.ErrUnauthorized):
		return restutil.Forbidden(err)
	case errors.Is(err, registry.ErrInsufficientStake),
		errors.Is(err, registry.ErrAlreadyActive),
		errors.Is(err, registry.ErrNotActive),
		errors.Is(err, registry.ErrNoValue),
		errors.Is(err, ledger.ErrInsufficientBalance):
		return restutil.BadRequest(err)
	default:
		return err
	}
}

func (s *Sequencers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("sequencers_join").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleJoin))
	sub.Path("").
		Methods(http.MethodGet).
		Name("sequencers_top_active").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleTopActive))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("sequencers_info").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleInfo))
	sub.Path("/{id}").
		Methods(http.MethodDelete).
		Name("sequencers_leave").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleLeave))
	sub.Path("/{id}/stake").
		Methods(http.MethodPost).
		Name("sequencers_increase_stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleIncreaseStake))
	sub.Path("/{id}/slash").
		Methods(http.MethodPost).
		Name("sequencers_slash").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSlash))
	sub.Path("/{id}/missed").
		Methods(http.MethodPost).
		Name("sequencers_record_missed").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleRecordMissed))
}
