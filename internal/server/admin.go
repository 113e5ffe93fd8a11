package server

import (
	"net/http"
)

// RegisterAdminRoutes exposes the route registry for tooling and debugging.
func RegisterAdminRoutes(mux *http.ServeMux, rr *RouteRegistry) {
	mux.HandleFunc("GET /_/admin/routes.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, rr.List())
	})
}
