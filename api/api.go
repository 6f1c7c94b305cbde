// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/rotorchain/rotor/api/rotation"
	"github.com/rotorchain/rotor/api/sequencers"
	"github.com/rotorchain/rotor/api/subscriptions"
	"github.com/rotorchain/rotor/registry"
)

type Options struct {
	AllowedOrigins string
	EnableMetrics  bool
}

// New assembles the http handler exposing the registry.
func New(reg *registry.Registry, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()
	sequencers.New(reg).Mount(router, "/sequencers")
	rotation.New(reg).Mount(router, "/rotation")
	subscriptions.New(reg).Mount(router, "/subscriptions")

	handler := http.Handler(router)
	if opts.EnableMetrics {
		handler = metricsHandler(handler)
	}
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"content-type", sequencers.CallerHeader}),
	)(handler)

	return handler.ServeHTTP
}
