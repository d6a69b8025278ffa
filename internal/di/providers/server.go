package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/chaptermatic/chaptermatic-server/internal/api"
	"github.com/chaptermatic/chaptermatic-server/internal/config"
	"github.com/chaptermatic/chaptermatic-server/internal/logger"
	"github.com/chaptermatic/chaptermatic-server/internal/service"
)

// ServerVersion is reported in the OpenAPI document.
const ServerVersion = "0.1.0"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	API *api.Server

	listener        net.Listener
	shutdownTimeout time.Duration
}

// Addr returns the address the server is listening on.
func (h *HTTPServerHandle) Addr() string {
	return h.listener.Addr().String()
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	err := h.Server.Shutdown(ctx)
	h.API.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts serving in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Chapter: do.MustInvoke[*service.ChapterService](i),
		Search:  do.MustInvoke[*service.SearchService](i),
	}

	opts := api.DefaultOptions()
	opts.Version = ServerVersion
	opts.CORSOrigins = cfg.Server.CORSOrigins
	opts.TrustProxyHeaders = cfg.Server.TrustProxyHeaders
	opts.GenerateRate = cfg.RateLimit.GeneratePerMinute
	opts.GenerateInterval = time.Minute
	opts.GenerateBurst = cfg.RateLimit.GenerateBurst

	handler := api.NewServer(storeHandle.Store, services, opts, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Listen up front so a busy port fails the bootstrap instead of a background goroutine.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		handler.Close()
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", ln.Addr().String())

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &HTTPServerHandle{
		Server:          srv,
		API:             handler,
		listener:        ln,
		shutdownTimeout: shutdownTimeout,
	}, nil
}
