package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
	"github.com/aussiebroadwan/breakroom/pkg/httpx"
	"github.com/aussiebroadwan/breakroom/pkg/lobbysdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe that pings the invitation ledger store.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	lobbysdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	lobbysdk.HealthResponse	"ledger unreachable"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &lobbysdk.HealthChecks{Ledger: "ok"}
		status, code := "ok", http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Ledger = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, lobbysdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
