package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/harry7799/heng-studio/internal/config"
	"github.com/harry7799/heng-studio/internal/gallery"
	"github.com/harry7799/heng-studio/internal/handlers"
	"github.com/harry7799/heng-studio/internal/middleware"
	"github.com/harry7799/heng-studio/internal/realtime"
	"github.com/harry7799/heng-studio/internal/services"
)

const ServiceName = "heng-studio-api"

type RouterDeps struct {
	Config    *config.Config
	Version   string
	StoreKind string

	Projects  *services.ProjectService
	Storage   *services.StorageService
	Scanner   *gallery.WatchedScanner
	Manifest  *gallery.FileManifest
	Publisher *realtime.Publisher

	// Checks are reported by /health, keyed by backend name.
	Checks map[string]handlers.BackendCheck
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	cfg := dep.Config

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	gate := middleware.NewAdminGate(cfg.AdminToken)
	limiter := middleware.NewClientRateLimiter(cfg.AdminRateLimit, cfg.AdminRateBurst)

	healthHandler := handlers.NewHealthHandler(ServiceName, dep.Version, dep.StoreKind, dep.Checks)
	projectsHandler := handlers.NewProjectsHandler(dep.Projects)
	uploadHandler := handlers.NewUploadHandler(dep.Storage, cfg.MaxUploadBytes)
	galleryHandler := handlers.NewGalleryHandler(dep.Scanner, dep.Manifest, dep.Publisher)
	eventsHandler := handlers.NewEventsHandler(dep.Publisher)

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", healthHandler.Health)

	// Uploaded media and gallery images
	r.Static("/uploads", cfg.UploadDir)
	r.Static(gallery.DefaultURLPrefix, cfg.GalleryDir)

	api := r.Group("/api")
	api.GET("/health", healthHandler.Ping)

	api.GET("/projects", projectsHandler.ListProjects)
	api.GET("/projects/:id", projectsHandler.GetProject)
	api.GET("/gallery", galleryHandler.GetGallery)
	api.GET("/gallery/manifest", galleryHandler.GetManifest)

	admin := api.Group("")
	admin.Use(middleware.RateLimit(limiter))
	admin.Use(middleware.RequireAdmin(gate))

	admin.POST("/projects", projectsHandler.CreateProject)
	admin.PUT("/projects/:id", projectsHandler.ReplaceProject)
	admin.PATCH("/projects/:id", projectsHandler.PatchProject)
	admin.DELETE("/projects/:id", projectsHandler.DeleteProject)

	admin.GET("/media", uploadHandler.ListMedia)
	admin.POST("/uploads", uploadHandler.Upload)

	admin.GET("/events/:channel", eventsHandler.RecentEvents)

	if cfg.GallerySaveRequiresAdmin {
		admin.POST("/save-gallery", galleryHandler.SaveGallery)
	} else {
		api.POST("/save-gallery", galleryHandler.SaveGallery)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r, nil
}

// corsConfig allows the listed origins, or reflects any origin when the list
// is empty.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.AdminTokenHeader, middleware.RequestIDHeader, "If-Match"},
		ExposeHeaders: []string{"ETag", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}
	return c
}
