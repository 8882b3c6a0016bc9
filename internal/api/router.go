package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ItsNotGoodName/x-overlay/internal/build"
	"github.com/ItsNotGoodName/x-overlay/internal/core"
	"github.com/ItsNotGoodName/x-overlay/pkg/chiext"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiext.Logger())
	r.Use(middleware.Recoverer)

	api := humachi.New(r, huma.DefaultConfig("x-overlay", build.Current.Version))
	h.Register(api)

	return r
}

// Server is the HTTP server as a supervised service.
type Server struct {
	Addr    string
	Handler http.Handler
}

func NewServer(host string, port int, handler http.Handler) Server {
	return Server{
		Addr:    core.Address(host, port),
		Handler: handler,
	}
}

func (s Server) String() string {
	return fmt.Sprintf("api.Server(%s)", s.Addr)
}

func (s Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() { errC <- server.ListenAndServe() }()
	slog.Info("Listening", "addr", s.Addr)

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errC; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
