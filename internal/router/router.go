package router

import (
	"database/sql"
	"net/http"

	mem "farm-husbandry/internal/adapters/storage/memory"
	pg "farm-husbandry/internal/adapters/storage/postgres"
	"farm-husbandry/internal/domain/alerts"
	"farm-husbandry/internal/domain/alerts/rules"
	"farm-husbandry/internal/domain/animals"
	"farm-husbandry/internal/domain/events"
	"farm-husbandry/internal/middleware"
	"farm-husbandry/internal/platform/logger"
	"farm-husbandry/internal/ports/auth"
	"farm-husbandry/internal/ports/storage"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger // puede ser nil (logger por defecto)
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var (
		animalRepo animals.Repository
		deadRepo   animals.DeadOffspringRepository
		eventRepo  events.Repository
		alertRepo  alerts.Repository
		tx         storage.TxRunner
	)

	if opts.DB != nil {
		animalRepo = pg.NewAnimalsRepo(opts.DB)
		deadRepo = pg.NewDeadOffspringRepo(opts.DB)
		eventRepo = pg.NewEventsRepo(opts.DB)
		alertRepo = pg.NewAlertsRepo(opts.DB)
		tx = pg.NewTxManager(opts.DB)
	} else {
		animalRepo = mem.NewAnimalRepo()
		deadRepo = mem.NewDeadOffspringRepo()
		eventRepo = mem.NewEventRepo()
		alertRepo = mem.NewAlertRepo()
		tx = mem.NewTxRunner()
	}

	// Generadores de reglas: puerto compartido entre animals y events.
	planner := rules.NewPlanner(alertRepo, animalRepo, eventRepo)

	// Services por módulo
	animalsSvc := animals.NewService(animalRepo, deadRepo, planner, tx)
	eventsSvc := events.NewService(eventRepo, planner, tx)
	alertsSvc := alerts.NewService(alertRepo, animalRepo, eventRepo, tx, log)

	// Rutas por módulo
	animals.RegisterRoutes(r, animalsSvc)
	events.RegisterRoutes(r, eventsSvc)
	alerts.RegisterRoutes(r, alertsSvc)

	return r
}
