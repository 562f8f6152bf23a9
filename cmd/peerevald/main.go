package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/crewlab/peereval/internal/api/http"
	auth "github.com/crewlab/peereval/internal/auth/middleware"
	"github.com/crewlab/peereval/internal/config"
	"github.com/crewlab/peereval/internal/db"
	"github.com/crewlab/peereval/internal/pipeline"
	"github.com/crewlab/peereval/internal/tabular"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := tabular.NewSQLStore(dbh, cfg.DBDriver)

	runner := &pipeline.Runner{
		Source: store,
		Sink:   store,
		Lock:   &pipeline.DBLocker{DB: dbh, TTL: cfg.RunLockTTL},
		Trust:  cfg.Trust,
	}

	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.AdminUser, cfg.AdminPassHash, cfg.ViewerAccounts)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))

	// Protected API (JWT → role in context)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(auth.RequireRole(auth.RoleAdmin)).
			Post("/runs", api.RunHandler(runner))
		pr.With(auth.RequireRole(auth.RoleAdmin)).
			Post("/reports/verify", api.VerifyHandler(runner, store))

		pr.With(auth.RequireRole(auth.RoleViewer)).
			Get("/reports/evaluators", api.EvaluatorReportHandler(store))
		pr.With(auth.RequireRole(auth.RoleViewer)).
			Get("/reports/scores", api.ScoreReportHandler(store))
		pr.With(auth.RequireRole(auth.RoleViewer)).
			Get("/reports/missing", api.MissingReportHandler(store))
		pr.With(auth.RequireRole(auth.RoleViewer)).
			Get("/reports/discrepancies", api.DiscrepancyReportHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
