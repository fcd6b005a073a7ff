package main

import (
	"log"

	"sprout/internal/api"
	"sprout/internal/auth"
	"sprout/internal/careplan"
	"sprout/internal/clock"
	"sprout/internal/config"
	"sprout/internal/database"
	"sprout/internal/demo"
	"sprout/internal/planner"
	"sprout/internal/species"
	"sprout/internal/store"
	"sprout/internal/weather"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("FATAL: ", err)
	}

	if err := auth.Configure(auth.Settings{
		Secret:              cfg.JWTSecret,
		RefreshSecret:       cfg.JWTRefreshSecret,
		AccessTokenMinutes:  cfg.AccessTokenMinutes,
		RefreshTokenDays:    cfg.RefreshTokenDays,
		RememberRefreshDays: cfg.RememberRefreshDays,
		CookieSecure:        cfg.CookieSecure,
	}); err != nil {
		log.Fatal("FATAL: ", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DBPath, cfg.DBEncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	// Run migrations only if explicitly enabled (opt-in for safety)
	if cfg.RunMigrations {
		log.Println("Running database migrations...")
		if err := api.MigrateAddColumns(db); err != nil {
			log.Printf("Migration error (columns): %v", err)
		}
		if err := api.MigrateNormalizeCareTypes(db); err != nil {
			log.Printf("Migration error (care types): %v", err)
		}
	} else {
		log.Println("Migrations skipped (set RUN_MIGRATIONS=true to enable)")
	}

	clk := clock.NewReal(cfg.Location)
	st := store.New(db)
	pl := planner.New(st, clk, weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout), planner.Settings{
		HorizonDays:     cfg.TaskHorizonDays,
		LookbackDays:    cfg.EventLookbackDays,
		NeglectDays:     cfg.NeglectDays,
		DemoNeglectDays: cfg.DemoNeglectDays,
	})

	speciesClient, err := species.New(cfg.SpeciesBaseURL, cfg.SpeciesAPIKey, cfg.SpeciesCacheSize, cfg.WeatherTimeout)
	if err != nil {
		log.Fatal("Failed to create species cache:", err)
	}
	if !speciesClient.Enabled() {
		log.Println("Species lookup disabled (set SPECIES_API_KEY to enable)")
	}
	carePlans := careplan.New(cfg.CareplanBaseURL, cfg.CareplanAPIKey, cfg.CareplanModel, 0)
	if cfg.CareplanAPIKey == "" {
		log.Println("Care plan suggestions disabled (set CAREPLAN_API_KEY to enable)")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(api.RequestID())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	log.Printf("CORS allowed origins: %s", cfg.AllowedOrigins)
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: cfg.AllowedOrigins != "*", // Required for cookies
	}))

	api.SetupRoutes(app, &api.Deps{
		DB:                  db,
		Store:               st,
		Planner:             pl,
		Demo:                demo.New(clk),
		Species:             speciesClient,
		CarePlans:           carePlans,
		DisableRegistration: cfg.DisableRegistration,
	})

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
