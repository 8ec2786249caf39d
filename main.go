// Package main provides the main entry point for the CultureMap API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/culturemap-ua/culturemap-api/app/handlers"
	"github.com/culturemap-ua/culturemap-api/app/middleware"
	"github.com/culturemap-ua/culturemap-api/app/router"
	"github.com/culturemap-ua/culturemap-api/app/services"
	businessflow "github.com/culturemap-ua/culturemap-api/business_flow"
	"github.com/culturemap-ua/culturemap-api/config"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/culturemap-ua/culturemap-api/repository"
	"github.com/culturemap-ua/culturemap-api/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v3"
)

// Application represents the main application structure
type Application struct {
	router router.Router
	config *config.ProductionConfig
	server *fiber.App
}

func main() {
	log.Println("Starting CultureMap API...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger through a rotating file when one is
// configured. Stderr always keeps a copy.
func setupLogging(cfg config.LoggingConfig) {
	if cfg.File == "" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	log.Printf("Log rotation enabled: %s (max %dMB, %d backups)", cfg.File, cfg.MaxSizeMB, cfg.MaxBackups)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.CulturalObject{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache wires the listing cache. When Redis is disabled the noop
// implementation keeps every flow on the same code path.
func initializeCache(cfg config.CacheConfig) (services.ListingCache, error) {
	if !cfg.Enabled {
		log.Println("Listing cache disabled")
		return services.NoopListingCache{}, nil
	}

	cache, err := services.NewRedisListingCache(cfg.RedisURL, cfg.RedisDB, cfg.ListTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis listing cache established (db=%d, ttl=%s)", cfg.RedisDB, cfg.ListTTL)
	return cache, nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	cache, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	objectRepo := repository.NewCulturalObjectRepository(db)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	authFlow := businessflow.NewAuthFlow(userRepo, tokenService, cfg.Security.BcryptCost, db)
	objectFlow := businessflow.NewObjectFlow(objectRepo, tagRepo, cache, cfg.Moderation.Bounds, db)
	moderationFlow := businessflow.NewModerationFlow(objectRepo, cache, cfg.Moderation.HardDelete, db)
	tagFlow := businessflow.NewTagFlow(tagRepo, cache, db)

	if cfg.Seed.Enabled {
		if err := seedInitialData(userRepo, tagRepo, objectRepo, cfg.Seed); err != nil {
			return nil, fmt.Errorf("failed to seed initial data: %w", err)
		}
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authFlow)
	objectHandler := handlers.NewObjectHandler(objectFlow)
	tagHandler := handlers.NewTagHandler(tagFlow)
	moderationHandler := handlers.NewModerationAdminHandler(moderationFlow, objectFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		authHandler,
		objectHandler,
		tagHandler,
		moderationHandler,
		authMiddleware,
	)

	application := &Application{
		router: appRouter,
		config: cfg,
		server: appRouter.GetApp(),
	}

	return application, nil
}

// seedLandmark is a well-known heritage site used for demo data
type seedLandmark struct {
	title    string
	desc     string
	lat, lng float64
	tag      string
}

var seedTags = []struct {
	name string
	icon string
}{
	{"Замок", "🏰"},
	{"Церква", "⛪"},
	{"Музей", "🏛️"},
	{"Пам'ятник", "🗿"},
	{"Фортеця", "🛡️"},
	{"Палац", "👑"},
	{"Театр", "🎭"},
	{"Парк", "🌳"},
}

var seedLandmarks = []seedLandmark{
	{"Софійський собор", "Архітектурна пам'ятка XI століття в Києві", 50.4529, 30.5145, "Церква"},
	{"Кам'янець-Подільська фортеця", "Середньовічна фортеця над каньйоном Смотрича", 48.6735, 26.5634, "Фортеця"},
	{"Львівський оперний театр", "Театр опери та балету імені Соломії Крушельницької", 49.8440, 24.0266, "Театр"},
	{"Хотинська фортеця", "Фортеця X-XVIII століть на березі Дністра", 48.5222, 26.4986, "Фортеця"},
	{"Палац Потоцьких", "Палац кінця XIX століття у Львові", 49.8383, 24.0240, "Палац"},
	{"Острозький замок", "Резиденція князів Острозьких", 50.3253, 26.5193, "Замок"},
	{"Андріївська церква", "Бароковий храм за проєктом Растреллі", 50.4590, 30.5177, "Церква"},
	{"Качанівка", "Палацово-парковий ансамбль на Чернігівщині", 50.8367, 32.6589, "Парк"},
}

// seedInitialData populates the tag registry and a set of approved landmark
// objects so a fresh deployment renders a non-empty map. Seeding is
// idempotent: existing rows are left alone.
func seedInitialData(
	userRepo repository.UserRepository,
	tagRepo repository.TagRepository,
	objectRepo repository.CulturalObjectRepository,
	cfg config.SeedConfig,
) error {
	ctx := context.Background()

	// The seed author owns the demo objects and the registry tags, so it
	// carries the admin role like any other tag creator. Its password is
	// random and never disclosed, so the account cannot be logged into.
	author, err := userRepo.ByUsername(ctx, "culturemap-seed")
	if err != nil {
		return err
	}
	if author == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		author = &models.User{
			UUID:         uuid.New(),
			Username:     "culturemap-seed",
			Email:        "seed@culturemap.org.ua",
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			IsActive:     utils.ToPtr(true),
			CreatedAt:    utils.UTCNow(),
			UpdatedAt:    utils.UTCNow(),
		}
		if err := userRepo.Save(ctx, author); err != nil {
			return err
		}
	}

	tagsByName := make(map[string]models.Tag, len(seedTags))
	for _, st := range seedTags {
		tag, err := tagRepo.ByNameFold(ctx, st.name)
		if err != nil {
			return err
		}
		if tag == nil {
			tag = &models.Tag{
				Name:        st.name,
				Slug:        models.Slugify(st.name),
				Icon:        st.icon,
				CreatedByID: &author.ID,
				CreatedAt:   utils.UTCNow(),
				UpdatedAt:   utils.UTCNow(),
			}
			if err := tagRepo.Save(ctx, tag); err != nil {
				return err
			}
		}
		tagsByName[st.name] = *tag
	}

	count := cfg.ObjectCount
	if count > len(seedLandmarks) {
		count = len(seedLandmarks)
	}

	for i := range seedLandmarks[:count] {
		lm := seedLandmarks[i]
		existing, err := objectRepo.ByFilter(ctx, models.ObjectFilter{Title: &lm.title}, "", 1, 0)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}

		object := &models.CulturalObject{
			UUID:        uuid.New(),
			Title:       lm.title,
			Description: lm.desc,
			Latitude:    lm.lat,
			Longitude:   lm.lng,
			AuthorID:    author.ID,
			Status:      models.ObjectStatusApproved,
			Tags:        []models.Tag{tagsByName[lm.tag]},
			CreatedAt:   utils.UTCNow(),
			UpdatedAt:   utils.UTCNow(),
		}
		if err := objectRepo.Save(ctx, object); err != nil {
			return err
		}
	}

	log.Printf("Seed data ensured: %d tags, up to %d landmark objects", len(seedTags), count)
	return nil
}
