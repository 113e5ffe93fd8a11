package serverapp

import (
	"errors"
	"log"
	"net/http"

	"guildhall/internal/httpmw"
	"guildhall/internal/server"
)

type Options struct {
	App    *server.App
	Logger *log.Logger
}

// NewHandler assembles the HTTP surface: API routes, the admin route list,
// and the standard middleware chain.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.App == nil {
		return nil, errors.New("app is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	mux := http.NewServeMux()
	rr := &server.RouteRegistry{}

	server.RegisterAPIRoutes(mux, rr, opts.App)
	server.RegisterAdminRoutes(mux, rr)

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}
