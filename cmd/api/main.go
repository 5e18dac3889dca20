package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"medication-dose-tracker/internal/adapters/queue/sqs"
	"medication-dose-tracker/internal/adapters/storage/dynamo"
	mem "medication-dose-tracker/internal/adapters/storage/memory"
	pg "medication-dose-tracker/internal/adapters/storage/postgres"
	"medication-dose-tracker/internal/consumer"
	"medication-dose-tracker/internal/domain/doses"
	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/logger"
	"medication-dose-tracker/internal/platform/metrics"
	"medication-dose-tracker/internal/router"
)

// @title Medication Dose Tracker API
// @version 1.0
// @description Tracking de medicamentos recurrentes y sus dosis para care recipients.
// @BasePath /

// Env principal:
//   PORT (default 8080)
//   STORAGE_DRIVER=memory|postgres|dynamo (default memory)
//   DB_DSN (driver postgres)
//   MEDICATIONS_TABLE_NAME / AWS_REGION / DYNAMO_ENDPOINT (driver dynamo)
//   DOSE_GENERATION_QUEUE_URL / SQS_ENDPOINT (cola de fallback, opcional)
//   ENABLE_GENERATION_CONSUMER=true para consumir la cola en este proceso
//   SCHEDULE_TIMEZONE (default zona local del proceso)
func main() {
	appLog := logger.NewFromEnv()
	met := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Zona horaria de scheduling explícita: la expansión de recurrencias
	// no depende de estado ambiente.
	loc := time.Local
	if tz := os.Getenv("SCHEDULE_TIMEZONE"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("invalid SCHEDULE_TIMEZONE %q: %v", tz, err)
		}
		loc = l
	}

	// Storage: clientes construidos una sola vez e inyectados.
	var (
		medsRepo  medications.Repository
		dosesRepo doses.Repository
	)

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER")))
	switch driver {
	case "dynamo":
		client, err := dynamo.OpenFromEnv(ctx)
		if err != nil {
			log.Fatalf("dynamo client: %v", err)
		}
		medsRepo = dynamo.NewMedicationsRepo(client)
		dosesRepo = dynamo.NewDosesRepo(client)

	case "postgres":
		db, err := pg.Open(os.Getenv("DB_DSN"))
		if err != nil {
			log.Fatalf("postgres open: %v", err)
		}
		defer db.Close()

		if err := pg.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("postgres schema: %v", err)
		}
		medsRepo = pg.NewMedicationsRepo(db)
		dosesRepo = pg.NewDosesRepo(db)

	case "", "memory":
		// modo dev: todo en memoria
		medsRepo = mem.NewMedicationsRepo()
		dosesRepo = mem.NewDosesRepo()

	default:
		log.Fatalf("unknown STORAGE_DRIVER %q", driver)
	}

	// Cola de fallback (opcional).
	var queueClient *sqs.Client
	if os.Getenv("DOSE_GENERATION_QUEUE_URL") != "" {
		c, err := sqs.OpenFromEnv(ctx)
		if err != nil {
			log.Fatalf("sqs client: %v", err)
		}
		queueClient = c
	}

	generator := doses.NewGenerator(dosesRepo, appLog, met, loc)

	var publisher medications.GenerationPublisher
	if queueClient != nil {
		publisher = queueClient
	}
	medsSvc := medications.NewService(medsRepo, generator, publisher, appLog, met)
	dosesSvc := doses.NewService(dosesRepo, medsRepo, appLog, met)

	// Consumer de la cola en este mismo proceso (opcional).
	if queueClient != nil && strings.EqualFold(os.Getenv("ENABLE_GENERATION_CONSUMER"), "true") {
		gc := consumer.NewGenerationConsumer(queueClient, generator, appLog)
		go func() {
			if err := gc.Start(ctx); err != nil {
				appLog.Error("generation consumer exited", map[string]any{"error": err.Error()})
			}
		}()
	}

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	srv := &http.Server{
		Addr: addr,
		Handler: router.NewRouter(router.Options{
			Medications: medsSvc,
			Doses:       dosesSvc,
			Logger:      appLog,
			Metrics:     met,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("starting server", map[string]any{"addr": addr, "driver": driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server shutdown", map[string]any{"error": err.Error()})
	}

	// drena los publishes de fallback en vuelo
	medsSvc.Wait()

	appLog.Info("server stopped", nil)
}
