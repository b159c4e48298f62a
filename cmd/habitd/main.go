package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "habits/internal/adapter/http"
	"habits/internal/adapter/memory"
	"habits/internal/adapter/postgres"
	"habits/internal/app"
	"habits/internal/domain"
	"habits/internal/scheduler"
)

func main() {
	addr := env("ADDR", ":5000")

	ttl, err := time.ParseDuration(env("SESSION_TTL", app.DefaultSessionTTL.String()))
	if err != nil || ttl <= 0 {
		log.Fatalf("SESSION_TTL: invalid duration %q", os.Getenv("SESSION_TTL"))
	}

	var (
		habits   domain.HabitRepository
		logs     domain.CompletionRepository
		users    domain.UserRepository
		sessions domain.SessionRepository
	)
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		db, err := postgres.Open(connStr)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer func() { _ = db.Close() }()
		habits, logs, users, sessions = db, db, db, postgres.NewSessionRepo(db)
	} else {
		log.Print("DATABASE_URL not set, using the in-memory store")
		db := memory.New()
		habits, logs, users, sessions = db, db, db, db.NewSessionRepo()
	}

	authSvc := app.NewAuthService(users, sessions).WithSessionTTL(ttl)
	habitSvc := app.NewHabitService(habits, logs)
	historySvc := app.NewHistoryService(logs)
	coachSvc := app.NewCoachService(habits, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := adapthttp.New(authSvc, habitSvc, historySvc, coachSvc)
	if issuer := os.Getenv("OIDC_ISSUER"); issuer != "" {
		cfg, err := adapthttp.NewOIDCConfig(ctx, issuer,
			os.Getenv("OIDC_CLIENT_ID"), os.Getenv("OIDC_CLIENT_SECRET"), os.Getenv("OIDC_REDIRECT_URL"))
		if err != nil {
			log.Fatalf("oidc: %v", err)
		}
		srv.WithOIDC(cfg)
		log.Printf("sso enabled via %s", issuer)
	}
	if env("FORWARD_AUTH", "") == "true" {
		srv.WithForwardAuth()
		log.Print("trusting Remote-User from the reverse proxy")
	}

	jobs, err := scheduler.New(habitSvc, authSvc, os.Getenv("RESET_SCHEDULE"))
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	jobs.Start()

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		jobs.Stop(shutdownCtx)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if n, err := authSvc.UserCount(ctx); err == nil {
		log.Printf("listening on %s (%d accounts)", addr, n)
	} else {
		log.Printf("listening on %s", addr)
	}
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-idle
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
