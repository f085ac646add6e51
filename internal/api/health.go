// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/respond"
)

// healthCheckTimeout bounds each dependency probe.
const healthCheckTimeout = 2 * time.Second

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthDependencies holds the dependency checkers for the /ready endpoint.
// A nil check is skipped.
type HealthDependencies struct {
	// Database pings the PostgreSQL pool.
	Database Check

	// Cache pings the Redis client.
	Cache Check

	// Assets probes the cover store.
	Assets Check
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health.
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.Data(writer, http.StatusOK, map[string]string{constants.FieldStatus: "ok"})
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// readiness handles GET /ready. Probes run concurrently, each under its own
// timeout. Any failure answers 503 so the instance leaves rotation.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	probes := []struct {
		name  string
		check Check
	}{
		{"postgres", handler.dependencies.Database},
		{"redis", handler.dependencies.Cache},
		{"assets", handler.dependencies.Assets},
	}

	results := make([]checkResult, len(probes))
	group, ctx := errgroup.WithContext(request.Context())

	for i, probe := range probes {
		results[i] = checkResult{Name: probe.name, IsOK: true}
		if probe.check == nil {
			continue
		}
		group.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			defer cancel()

			if err := probe.check(probeCtx); err != nil {
				results[i].IsOK, results[i].Error = false, err.Error()
				handler.logger.Error("readiness_check_failed", slog.String("dependency", probe.name), slog.Any("error", err))
			}
			return nil
		})
	}
	_ = group.Wait()

	status, code := "ready", http.StatusOK
	reported := make([]checkResult, 0, len(results))
	for i, result := range results {
		if probes[i].check == nil {
			continue
		}
		if !result.IsOK {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		reported = append(reported, result)
	}

	respond.Data(writer, code, map[string]any{
		constants.FieldStatus: status,
		constants.FieldChecks: reported,
	})
}
