package router

import (
	"net/http"

	_ "medication-dose-tracker/docs" // registro del spec swagger
	"medication-dose-tracker/internal/domain/doses"
	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/middleware"
	"medication-dose-tracker/internal/platform/logger"
	"medication-dose-tracker/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Medications *medications.Service
	Doses       *doses.Service

	Logger  logger.Logger
	Metrics *metrics.Metrics
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Rutas por módulo
	medications.RegisterRoutes(r, opts.Medications)
	doses.RegisterRoutes(r, opts.Doses)

	return r
}
