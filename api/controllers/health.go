package controllers

import (
	"net/http"

	"github.com/labelspy/labelspy-backend/pkg/config"
)

// Health is the plain-text liveness probe.
func Health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-LabelSpy-Env", cfg.App.Env)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("LabelSpy backend is running"))
	}
}
