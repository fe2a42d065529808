// Package api exposes the submission relay over HTTP.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goatkit/plugincreator/internal/apierrors"
	"github.com/goatkit/plugincreator/internal/config"
	"github.com/goatkit/plugincreator/internal/middleware"
	"github.com/goatkit/plugincreator/internal/relay"
)

// Relayer forwards one submission to the review team.
type Relayer interface {
	Relay(ctx context.Context, sub relay.Submission) (*relay.Result, error)
}

// NewRouter builds the relay's gin engine. ctx bounds background work such as
// rate-limit bucket cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, relayer Relayer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/health", handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter *middleware.RateLimiter
	if cfg.Relay.RateLimitPerHour > 0 {
		limiter = middleware.NewRateLimiter(ctx)
	}
	h := NewSubmissionHandler(relayer, cfg.Relay.MaxUploadBytes)
	r.POST(cfg.Relay.Path, middleware.RateLimitByIP(limiter, cfg.Relay.RateLimitPerHour), h.Handle)

	r.NoRoute(func(c *gin.Context) {
		apierrors.Error(c, apierrors.CodeNotFound)
	})
	return r
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "plugin-creator-relay",
		"timestamp": time.Now().UTC(),
	})
}

// Serve runs handler on addr until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("relay listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Printf("relay shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
