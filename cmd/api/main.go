package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/config"
	"github.com/chachabrian/uniride-backend/internal/database"
	"github.com/chachabrian/uniride-backend/internal/handlers"
	"github.com/chachabrian/uniride-backend/internal/locations"
	"github.com/chachabrian/uniride-backend/internal/services"
	"github.com/chachabrian/uniride-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store carpool.Store
		users database.UserStore
	)
	switch cfg.Store {
	case "memory":
		log.Println("Using in-memory store; data is lost on restart")
		store = carpool.NewMemoryStore()
		users = database.NewMemoryUsers()
	default:
		db, err := database.InitDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		store = database.NewStore(db)
		users = database.NewGormUsers(db)
	}

	graph, err := locations.Load(cfg.LocationsCSV, cfg.AreasDB, cfg.LocationRadiusKm)
	if err != nil {
		log.Fatalf("Failed to load locations: %v", err)
	}
	log.Printf("Loaded %d locations, %d proximity edges", graph.Directory().Len(), len(graph.Edges()))

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run(ctx)

	// Ride events go through Redis when configured so that every instance's
	// hub sees them.
	var publisher carpool.Publisher = hub
	if cfg.RedisURL != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer client.Close()
		publisher = services.NewRedisPublisher(client)
		go func() {
			if err := services.RelayRideUpdates(ctx, client, hub); err != nil {
				log.Printf("Ride update relay stopped: %v", err)
			}
		}()
	}

	svc := carpool.NewService(store,
		carpool.WithNeighborhoods(graph),
		carpool.WithPublisher(publisher),
	)

	transcripts, err := services.NewTranscriptStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	if err := handlers.RegisterValidators(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	deps := handlers.Deps{
		Service:     svc,
		Users:       users,
		Tokens:      utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Graph:       graph,
		Hub:         hub,
		Archiver:    services.NewTranscriptArchiver(svc, transcripts, cfg.BaseURL),
		StoreName:   cfg.Store,
		EmailDomain: cfg.UniversityEmailDomain,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(deps),
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
