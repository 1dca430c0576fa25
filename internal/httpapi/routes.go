package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func SetupRoutes(src StateSource, now func() time.Time, log *zap.Logger) http.Handler {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/state", GetState(src, now))
	r.Post("/commands", PostCommand(src, log))
	return r
}
