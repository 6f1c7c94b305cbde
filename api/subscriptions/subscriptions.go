// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	pkgerrors "github.com/pkg/errors"

	"github.com/rotorchain/rotor/api/restutil"
	"github.com/rotorchain/rotor/log"
	"github.com/rotorchain/rotor/registry"
)

var logger = log.WithContext("pkg", "subscriptions")

// Subscriptions streams registry events over websocket so observers can
// follow roster history live, optionally replaying the retained backlog.
type Subscriptions struct {
	reg      *registry.Registry
	upgrader websocket.Upgrader
	cache    *messageCache
}

func New(reg *registry.Registry) *Subscriptions {
	return &Subscriptions{
		reg: reg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		cache: newMessageCache(256),
	}
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	var from uint64
	if p := req.URL.Query().Get("from"); p != "" {
		parsed, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return restutil.BadRequest(pkgerrors.WithMessage(err, "from"))
		}
		from = parsed
	}

	ch := make(chan *registry.Event, 64)
	sub := s.reg.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already responded
		return nil
	}
	defer conn.Close()

	// replay the retained backlog first
	for _, ev := range s.reg.Events(from) {
		if err := s.write(conn, ev); err != nil {
			return nil
		}
		from = ev.Seq + 1
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-req.Context().Done():
			return nil
		case <-closed:
			return nil
		case err := <-sub.Err():
			return err
		case ev := <-ch:
			if ev.Seq < from {
				// already replayed from the journal
				continue
			}
			if err := s.write(conn, ev); err != nil {
				return nil
			}
		}
	}
}

func (s *Subscriptions) write(conn *websocket.Conn, ev *registry.Event) error {
	msg, err := s.cache.GetOrAdd(ev)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		logger.Debug("subscriber write failed", "err", err)
		return err
	}
	return nil
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("subscriptions_events").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
