// cmd entrypoint for the edirt server.
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"edirt/social"
)

func main() {
	cfg, err := social.LoadConfig()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}

	db, err := social.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer db.Close()
	log.Println("Successfully connected to the database.")

	ctx := context.Background()
	if err := db.CreateTables(ctx); err != nil {
		log.Fatalf("Could not create tables: %v", err)
	}

	// The admin credentials come from the environment; seeding is a no-op
	// once the account exists.
	admin := social.NewUser(cfg.AdminUsername, cfg.AdminDisplayName, true)
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Fatalf("Could not hash admin password: %v", err)
	}
	if err := db.SeedAdmin(ctx, admin); err != nil {
		log.Fatalf("Could not seed admin account: %v", err)
	}

	session := scs.New()
	session.Lifetime = cfg.SessionLifetime
	session.Cookie.HttpOnly = true
	session.Cookie.SameSite = http.SameSiteLaxMode

	handlers, err := social.NewHandlers(db, session, "templates")
	if err != nil {
		log.Fatalf("Could not create handlers: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(session.LoadAndSave)
	handlers.RegisterRoutes(r)

	log.Printf("Starting edirt server on %s", cfg.Addr)
	svr := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}
	if err := svr.ListenAndServe(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
