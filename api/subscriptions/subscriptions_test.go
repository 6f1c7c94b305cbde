// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotorchain/rotor/api/subscriptions"
	"github.com/rotorchain/rotor/ledger"
	"github.com/rotorchain/rotor/registry"
	"github.com/rotorchain/rotor/rotor"
)

func newTestEnv(t *testing.T) (*httptest.Server, *registry.Registry, *ledger.MemLedger) {
	led := ledger.NewMemLedger()
	reg := registry.New(led, registry.NewSingleOwner(rotor.BytesToIdentity([]byte("owner"))), registry.Options{
		StartTime: 1000,
		Now:       func() uint64 { return 1000 },
	})
	t.Cleanup(reg.Close)

	router := mux.NewRouter()
	subscriptions.New(reg).Mount(router, "/subscriptions")
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, reg, led
}

func join(t *testing.T, reg *registry.Registry, led *ledger.MemLedger, name string, amount uint64) {
	t.Helper()
	id := rotor.BytesToIdentity([]byte(name))
	led.Mint(id, amount)
	_, err := reg.Join(id, amount)
	require.NoError(t, err)
}

func readEvent(t *testing.T, conn *websocket.Conn) *registry.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev registry.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	return &ev
}

func TestSubscribeEventsReplayAndLive(t *testing.T) {
	srv, reg, led := newTestEnv(t)

	// backlog before the subscriber connects
	join(t, reg, led, "s1", 40)
	join(t, reg, led, "s2", 60)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/subscriptions/events?from=1"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	ev := readEvent(t, conn)
	assert.Equal(t, uint64(1), ev.Seq)
	assert.Equal(t, registry.Registered, ev.Type)
	assert.Equal(t, rotor.BytesToIdentity([]byte("s1")), ev.Identity)

	ev = readEvent(t, conn)
	assert.Equal(t, uint64(2), ev.Seq)
	assert.Equal(t, rotor.BytesToIdentity([]byte("s2")), ev.Identity)

	// live event after the replay
	join(t, reg, led, "s3", 80)
	ev = readEvent(t, conn)
	assert.Equal(t, uint64(3), ev.Seq)
	assert.Equal(t, registry.Registered, ev.Type)
	assert.Equal(t, rotor.BytesToIdentity([]byte("s3")), ev.Identity)
}

func TestSubscribeEventsBadFrom(t *testing.T) {
	srv, _, _ := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/subscriptions/events?from=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if resp != nil {
		resp.Body.Close()
		assert.Equal(t, 400, resp.StatusCode)
	}
}
