package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/orderhub/orderhub-backend/api/responses"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is any dependency that can report connectivity.
type Pinger interface {
	Ping(context.Context) error
}

// ReadinessDeps lists the backing services the API needs before it can take
// traffic. Nil entries are skipped so workers can reuse the probe.
type ReadinessDeps struct {
	DB     Pinger
	Redis  Pinger
	PubSub Pinger
}

func HealthLive(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

func HealthReady(deps ReadinessDeps, logg *logger.Logger) http.HandlerFunc {
	checks := []struct {
		name   string
		pinger Pinger
	}{
		{name: "database", pinger: deps.DB},
		{name: "redis", pinger: deps.Redis},
		{name: "pubsub", pinger: deps.PubSub},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var failing []string
		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				logg.Error(ctx, "readiness check failed: "+check.name, err)
				failing = append(failing, check.name)
			}
		}

		if len(failing) > 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "not ready: "+strings.Join(failing, ", ")))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
