// The shortener server turns long URLs into short codes and serves the
// redirects back. It persists links in PostgreSQL when a database DSN is
// configured and falls back to a JSON-lines journal file otherwise.
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caioac96/shortener-api-challenge/internal/api/cert"
	"github.com/caioac96/shortener-api-challenge/internal/api/gzip"
	"github.com/caioac96/shortener-api-challenge/internal/api/handlers"
	"github.com/caioac96/shortener-api-challenge/internal/app"
	"github.com/caioac96/shortener-api-challenge/internal/auth"
	"github.com/caioac96/shortener-api-challenge/internal/config"
	"github.com/caioac96/shortener-api-challenge/internal/logging"
	"github.com/caioac96/shortener-api-challenge/internal/storage"
	"github.com/caioac96/shortener-api-challenge/internal/storage/journal"
	"github.com/caioac96/shortener-api-challenge/internal/storage/postgres"
	"github.com/caioac96/shortener-api-challenge/internal/user"
)

func main() {
	if err := logging.Initialize(); err != nil {
		panic(err)
	}

	cfg := config.NewConfig()
	auth.SetSecret(cfg.JWTSecret)

	var (
		linkStore storage.LinkStore
		userStore storage.UserStore
		db        *pgxpool.Pool
	)

	ctx := context.Background()

	if cfg.DBPath != "" {
		var err error
		db, err = pgxpool.New(ctx, cfg.DBPath)
		if err != nil {
			logging.Sugar.Fatalw("Unable to connect to database", "error", err)
		}
		defer db.Close()

		if err := postgres.Bootstrap(ctx, db); err != nil {
			logging.Sugar.Fatalw("Failed to create tables", "error", err)
		}

		linkStore = postgres.NewLinkStore(db)
		userStore = postgres.NewUserStore(db)
	} else {
		store, err := journal.NewStore(cfg.JournalPath)
		if err != nil {
			logging.Sugar.Fatalw("Failed to open link journal", "error", err)
		}

		linkStore = store
		userStore = journal.NewUserStore()
	}

	svc := &app.ShortenerService{
		Store: linkStore,
		Users: userStore,
		Cfg:   cfg,
	}
	accounts := &user.Service{
		Store: userStore,
	}

	r := chi.NewRouter()

	r.Use(logging.Middleware())
	r.Use(gzip.Middleware)

	r.Post("/", handlers.PostHandler(svc))
	r.Get("/{code}", handlers.GetHandler(svc))
	r.Post("/api/shorten", handlers.APIShortenHandler(svc))
	r.Post("/api/user/register", handlers.RegisterHandler(accounts))
	r.Post("/api/user/login", handlers.LoginHandler(accounts))
	r.Get("/api/user/urls", handlers.GetUserURLsHandler(svc))
	r.Put("/api/user/urls/{code}", handlers.UpdateLinkHandler(svc))
	r.Delete("/api/user/urls/{code}", handlers.DeleteLinkHandler(svc))
	r.Delete("/api/user/urls", handlers.BatchDeleteHandler(svc))
	r.Get("/api/internal/stats", handlers.GetStatsHandler(svc))

	if db != nil {
		r.Get("/ping", handlers.PingDBHandler(db))
	}

	logging.Sugar.Infow(
		"Starting server at",
		"addr", cfg.Address,
	)

	var err error
	if cfg.EnableHTTPS {
		if _, statErr := os.Stat(cert.CertificateFilePath); os.IsNotExist(statErr) {
			if certErr := cert.CreateCertificate(cert.CertificateFilePath, cert.KeyFilePath); certErr != nil {
				logging.Sugar.Fatalw("Failed to create certificate", "error", certErr)
			}
		}
		err = http.ListenAndServeTLS(cfg.Address, cert.CertificateFilePath, cert.KeyFilePath, r)
	} else {
		err = http.ListenAndServe(cfg.Address, r)
	}
	if err != nil {
		logging.Sugar.Fatalw(err.Error(), "event", "start server")
	}
}
