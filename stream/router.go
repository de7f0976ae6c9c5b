// go-inventory
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-inventory.
//
// go-inventory is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-inventory is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-inventory; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package stream

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Stats is the body of GET /stats
type Stats struct {
	Clients int   `json:"clients"`
	Sent    int64 `json:"sent"`
	Dropped int64 `json:"dropped"`
}

// NewRouter serves b at wsPath, the current snapshot at GET /snapshot and
// the broadcaster counters at GET /stats. Cross-origin reads are allowed
// from allowedOrigins; none are allowed when it is empty.
func NewRouter(b *Broadcaster, wsPath string, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Handle(wsPath, b)
	r.Get("/snapshot", b.serveSnapshot)
	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, Stats{Clients: b.ClientCount(), Sent: b.Sent(), Dropped: b.Dropped()})
	})
	return r
}

func (b *Broadcaster) serveSnapshot(w http.ResponseWriter, _ *http.Request) {
	if b.snapshot == nil {
		http.Error(w, "no snapshot available", http.StatusNotFound)
		return
	}
	writeJSON(w, b.snapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
