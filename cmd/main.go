package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/sadiya09-889/final-GCU-library-management-system/configs"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/audit"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/catalog"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/circulation"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/db"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/handlers"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/middleware"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/reporting"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/store/mongostore"
	"github.com/sadiya09-889/final-GCU-library-management-system/internal/utils"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := configs.LoadConfig()
	db.Connect(cfg.MongoURI)
	utils.InitJwtSecret(cfg.JWTSecret)

	st := mongostore.New(db.Database(cfg.DBName))
	auditLogger := audit.Logger{Recorder: st}

	engine := circulation.NewEngine(st, auditLogger, circulation.Config{
		LoanPeriodDays: cfg.LoanPeriodDays,
		FinePerDay:     cfg.FineRate,
		MaxRenewals:    cfg.MaxRenewals,
	})
	catalogSvc := catalog.NewService(st, auditLogger)
	reportingSvc := reporting.NewService(st, engine)

	seedAdmin(st, cfg)

	r := mux.NewRouter()
	r.Use(middleware.JSONMiddleware)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})

	authHandler := &handlers.AuthHandler{Store: st}
	r.HandleFunc("/login", authHandler.Login).Methods("POST")

	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	bookHandler := handlers.NewBookHandler(st, catalogSvc, reportingSvc)
	api.HandleFunc("/books", bookHandler.GetBooks).Methods("GET")
	api.HandleFunc("/books", bookHandler.AddBook).Methods("POST")
	api.HandleFunc("/books/search", bookHandler.GetBooks).Methods("GET")
	api.HandleFunc("/books/{id}", bookHandler.GetBook).Methods("GET")
	api.HandleFunc("/books/{id}", bookHandler.UpdateBook).Methods("PUT")
	api.HandleFunc("/books/{id}", bookHandler.DeleteBook).Methods("DELETE")

	loanHandler := handlers.NewLoanHandler(st, engine, reportingSvc)
	api.HandleFunc("/loans", loanHandler.List).Methods("GET")
	api.HandleFunc("/loans/issue", loanHandler.Issue).Methods("POST")
	api.HandleFunc("/loans/overdue", loanHandler.Overdue).Methods("GET")
	api.HandleFunc("/loans/fines", loanHandler.Fines).Methods("GET")
	api.HandleFunc("/loans/{id}/return", loanHandler.Return).Methods("POST")
	api.HandleFunc("/loans/{id}/renew", loanHandler.Renew).Methods("POST")

	profileHandler := &handlers.ProfileHandler{Store: st}
	api.HandleFunc("/profiles/me", profileHandler.Me).Methods("GET")
	api.Handle("/profiles", middleware.RequireStaff(http.HandlerFunc(profileHandler.List))).Methods("GET")
	api.HandleFunc("/profiles", profileHandler.Register).Methods("POST")

	dashboardHandler := &handlers.DashboardHandler{Reporting: reportingSvc}
	api.Handle("/dashboard/stats", middleware.RequireStaff(http.HandlerFunc(dashboardHandler.Stats))).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	server := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(r),
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Warn().Msg("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	if err := db.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	log.Info().Msg("server shut down")
}

// seedAdmin creates the bootstrap admin account on first run.
func seedAdmin(st store.Store, cfg configs.Config) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := st.GetProfileByEmail(ctx, cfg.AdminEmail); err == nil {
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Msg("admin seed lookup failed")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("admin seed hash failed")
		return
	}

	_, err = st.InsertProfile(ctx, models.UserProfile{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		Role:         models.RoleAdmin,
		JoinDate:     time.Now().UTC(),
		PasswordHash: string(hash),
	})
	if err != nil {
		log.Error().Err(err).Msg("admin seed insert failed")
		return
	}
	log.Info().Str("email", cfg.AdminEmail).Msg("seeded admin account")
}
