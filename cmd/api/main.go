package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	"farm-husbandry/internal/adapters/storage/postgres"
	"farm-husbandry/internal/config"
	"farm-husbandry/internal/platform/logger"
	"farm-husbandry/internal/router"
)

// @title Farm Husbandry API
// @version 1.0
// @description Registro de eventos de manejo y motor de alertas de cuidado para una granja (conejos, vacas, ovejas, gallinas).
// @BasePath /
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		// Sin config válida no hay nada que servir.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})

	var db *sql.DB
	if cfg.DB.DSN != "" {
		db, err = postgres.Open(cfg.DB.DSN)
		if err != nil {
			log.Error("db connection failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
		log.Info("using postgres store", nil)
	} else {
		log.Info("using in-memory store", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: nil, // sin verifier para modo dev
		DB:           db,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": cfg.Addr()})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
