package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ward-notes-server/internal/audit"
	"ward-notes-server/internal/config"
	"ward-notes-server/internal/drive"
	"ward-notes-server/internal/handlers"
	"ward-notes-server/internal/logger"
	"ward-notes-server/internal/metrics"
	"ward-notes-server/internal/models"
	"ward-notes-server/internal/pdfparse"
	"ward-notes-server/internal/routes"
	"ward-notes-server/internal/wards"
)

func main() {
	// Load environment variables; a missing .env just means the real
	// environment is used.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	zapLog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer zapLog.Sync()

	dbs, err := models.InitDB(models.DatabaseConfig{Dir: cfg.Database.Dir})
	if err != nil {
		zapLog.Fatal("database init failed", zap.Error(err))
	}

	if err := seedUsers(dbs); err != nil {
		zapLog.Fatal("seeding default users failed", zap.Error(err))
	}

	recorder := audit.NewRecorder(dbs.Audit, zapLog)
	collector := metrics.NewCollector("ward_notes")

	extractor := selectExtractor(cfg.Extractor, zapLog)
	cache := wards.NewCache(func(path string) (map[string]pdfparse.Record, error) {
		records, err := pdfparse.ExtractFile(extractor, path, "")
		if err != nil {
			return nil, err
		}
		collector.PDFsParsedTotal.Inc()
		collector.PatientsExtracted.Add(float64(len(records)))
		return records, nil
	}, 32)
	cache.Hits = collector.ParseCacheHits
	cache.Misses = collector.ParseCacheMisses

	ctx := context.Background()

	var resolver handlers.PDFResolver
	var lister wards.FileLister
	if cfg.Google.FolderID != "" {
		client, err := drive.NewClient(ctx, cfg.Google, cfg.DataDirectory, zapLog)
		if err != nil {
			zapLog.Warn("google drive unavailable, serving local PDFs only", zap.Error(err))
		} else {
			resolver = client
			lister = client
		}
	}

	manager := wards.NewManager(cfg.PDFDirectory, cfg.Google.FolderID, lister, zapLog)
	manager.StartBackgroundLoad(ctx)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(collector.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Dependencies{
		Cfg:      cfg,
		DBs:      dbs,
		Manager:  manager,
		Cache:    cache,
		Resolver: resolver,
		Audit:    recorder,
		Metrics:  collector,
		Log:      zapLog,
	})

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	zapLog.Info("server starting", zap.String("addr", serverAddr), zap.String("extractor", cfg.Extractor))
	if err := router.Run(serverAddr); err != nil {
		zapLog.Fatal("server stopped", zap.Error(err))
	}
}

func selectExtractor(name string, zapLog *zap.Logger) pdfparse.Extractor {
	switch name {
	case "regex":
		return pdfparse.RegexExtractor{}
	case "line":
		return pdfparse.LineExtractor{}
	default:
		zapLog.Warn("unknown PDF_EXTRACTOR, using line", zap.String("value", name))
		return pdfparse.LineExtractor{}
	}
}

// seedUsers creates the default accounts on first run so a fresh deployment
// can be logged into.
func seedUsers(dbs *models.Databases) error {
	defaults := []struct {
		username string
		password string
		role     models.Role
	}{
		{"admin", "admin123", models.RoleAdmin},
		{"nurse1", "nurse123", models.RoleUser},
	}

	for _, d := range defaults {
		var count int64
		if err := dbs.Users.Model(&models.User{}).Where("username = ?", d.username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		user := models.User{Username: d.username, Role: d.role}
		if err := user.SetPassword(d.password); err != nil {
			return err
		}
		if err := dbs.Users.Create(&user).Error; err != nil {
			return err
		}
	}
	return nil
}
