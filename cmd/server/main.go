// @title           Heng Studio API
// @version         1.0.0
// @description     Portfolio project store, media uploads and gallery ordering for the Heng photography studio site.

// @contact.name   API Support

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8787
// @BasePath  /

// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token
// @description Shared admin secret configured with ADMIN_TOKEN.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harry7799/heng-studio/docs"
	"github.com/harry7799/heng-studio/internal/config"
	"github.com/harry7799/heng-studio/internal/database"
	"github.com/harry7799/heng-studio/internal/gallery"
	"github.com/harry7799/heng-studio/internal/handlers"
	"github.com/harry7799/heng-studio/internal/realtime"
	"github.com/harry7799/heng-studio/internal/server"
	"github.com/harry7799/heng-studio/internal/services"
	"github.com/harry7799/heng-studio/internal/storage"
	"github.com/harry7799/heng-studio/internal/supabase"
	"github.com/harry7799/heng-studio/internal/validation"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.BackendCheck{}

	// Project store: PostgreSQL when DATABASE_URL is set, otherwise the JSON file
	var store database.ProjectStore
	storeKind := "file"
	if cfg.DatabaseURL != "" {
		db, err := database.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.NewMigrator(db).Run(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
		store = database.NewPostgresProjectStore(db, cfg.BackupRetention)
		storeKind = "postgres"
		checks["postgres"] = db.PingContext
	} else {
		store = database.NewFileProjectStore(cfg.DataFile, database.DocumentOptions{
			BackupDir:    cfg.BackupDir,
			BackupPrefix: "projects",
			Retention:    cfg.BackupRetention,
		})
	}
	defer store.Close()

	// Change events
	var publisher *realtime.Publisher
	if cfg.RedisURL != "" {
		client, err := realtime.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, change events disabled: %v", err)
		} else {
			defer client.Close()
			publisher = realtime.NewPublisher(client)
			checks["redis"] = publisher.Ping
		}
	}

	// Upload mirror
	var mirror services.Mirror
	if cfg.MirrorEnabled() {
		mirror = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
		log.Printf("Mirroring uploads to Supabase bucket %s", cfg.SupabaseStorageBucket)
	}

	media := storage.NewMediaStore(cfg.UploadDir, cfg.MaxUploadBytes)
	projectService := services.NewProjectService(store, validation.NewProjectValidator(), publisher)
	storageService := services.NewStorageService(media, mirror, publisher)

	if err := os.MkdirAll(cfg.GalleryDir, 0o755); err != nil {
		log.Printf("Warning: failed to create gallery directory: %v", err)
	}
	scanner := gallery.NewWatchedScanner(cfg.GalleryDir, gallery.DefaultURLPrefix)
	defer scanner.Close()
	go scanner.Run(ctx)

	manifest := gallery.NewFileManifest(cfg.GalleryManifest)

	if cfg.SnapshotSchedule != "" {
		scheduler, err := services.NewSnapshotScheduler(store, cfg.SnapshotSchedule)
		if err != nil {
			log.Fatalf("Failed to start snapshot scheduler: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	if cfg.AdminToken == "" {
		log.Println("Warning: ADMIN_TOKEN not set. Admin endpoints will return 503.")
	}

	router, err := server.BuildRouter(server.RouterDeps{
		Config:    cfg,
		Version:   version,
		StoreKind: storeKind,
		Projects:  projectService,
		Storage:   storageService,
		Scanner:   scanner,
		Manifest:  manifest,
		Publisher: publisher,
		Checks:    checks,
	})
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (store=%s)", cfg.Port, storeKind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: graceful shutdown failed: %v", err)
	}
}
