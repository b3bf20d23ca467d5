package main

import (
	"context"
	"log"
	"os"

	"meetup_chat/config"
	"meetup_chat/handlers"
	"meetup_chat/internal/chat"
	"meetup_chat/middleware"
	"meetup_chat/middleware/ratelimit"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}

	migrate := config.Migrate
	if cfg.DBReset {
		migrate = config.ResetAndMigrate
	}
	if err := migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	svc := chat.NewService(db)

	if cfg.SeedDemo {
		if err := config.SeedDemo(context.Background(), svc); err != nil {
			log.Fatal("Failed to seed demo data: ", err)
		}
	}

	var pollThrottle fiber.Handler
	var throttle *ratelimit.PollThrottle
	if cfg.RedisAddr != "" {
		throttle = ratelimit.New(
			ratelimit.WithRedis(cfg.RedisAddr, cfg.RedisPassword),
			ratelimit.WithLimit(cfg.PollLimit, cfg.PollWindow),
		)
		if err := throttle.Start(context.Background()); err != nil {
			log.Fatal("Failed to start poll throttling: ", err)
		}
		pollThrottle = throttle.Handler()
	}

	app := fiber.New(fiber.Config{
		AppName:      "Meetup Chat",
		ServerHeader: "Meetup Chat Server/1.0",
		ErrorHandler: middleware.ErrorHandler,
	})

	middleware.SetupMiddleware(app, cfg)
	handlers.SetupRoutes(app, svc, cfg.JWTSecret, pollThrottle)
	middleware.SetupErrorHandler(app)

	go func() {
		log.Printf("🚀 Server starting on host %s in port %s", cfg.HOST, cfg.AppPort)
		if err := app.Listen(cfg.HOST + ":" + cfg.AppPort); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// One operation so the database outlives the in-flight requests.
			"server": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				if err := app.ShutdownWithContext(ctx); err != nil {
					return err
				}
				if throttle != nil {
					if err := throttle.Stop(ctx); err != nil {
						log.Printf("Failed to stop poll throttling: %v", err)
					}
				}
				return config.CloseDatabase(db)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
