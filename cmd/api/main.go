package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sharewheels/carpool-backend/internal/config"
	"github.com/sharewheels/carpool-backend/internal/database"
	"github.com/sharewheels/carpool-backend/internal/handlers"
	"github.com/sharewheels/carpool-backend/internal/middleware"
	"github.com/sharewheels/carpool-backend/internal/services"
	"github.com/sharewheels/carpool-backend/pkg/logger"
	"github.com/sharewheels/carpool-backend/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		logg.Fatal("failed to initialize database", logger.Err(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logg.Fatal("failed to get database instance", logger.Err(err))
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	// Redis is optional: search caching and reset locks degrade to no-ops.
	if err := services.InitRedis(cfg.Redis.URL); err != nil {
		logg.Warn("redis unavailable, caching disabled", logger.Err(err))
	}

	if err := services.InitStorage(); err != nil {
		logg.Fatal("failed to initialize storage", logger.Err(err))
	}

	hub := services.NewHub(logg)
	go hub.Run()

	notifier := services.NewNotifier(db, hub, logg)
	verifier := services.NewPaymentVerifier(cfg.Stripe.SecretKey, cfg.Stripe.Timeout)

	// Chat lines arriving over the socket take the same path as HTTP posts.
	hub.OnChatMessage = func(senderID, rideID uint, text string) {
		if _, err := services.PostChatMessage(db, hub, notifier, rideID, senderID, text); err != nil {
			logg.Warn("socket chat message rejected",
				logger.Uint("rideId", rideID),
				logger.Uint("senderId", senderID),
				logger.Err(err))
		}
	}

	scheduler := services.NewCarbonResetScheduler(db, logg)
	go scheduler.Run(context.Background())

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))
	r.Use(middleware.Metrics())

	r.Static("/uploads", "./uploads")
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "wsClients": hub.ConnectedClients()})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		// Search and ride detail are browsable without an account.
		api.GET("/rides/find", handlers.FindRides(db, logg, cfg.Cache))
		api.GET("/rides/:id", handlers.GetRide(db))

		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket(hub))

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.POST("/profile/picture", handlers.UploadProfilePicture(db))
				users.GET("/:id", handlers.GetUser(db))
				users.GET("", middleware.AdminOnly(), handlers.GetAllUsers(db))
			}

			rides := protected.Group("/rides")
			{
				rides.POST("", handlers.CreateRide(db, logg))
				rides.GET("", middleware.AdminOnly(), handlers.GetAllRides(db))
				rides.GET("/mine", handlers.GetMyRides(db))
				rides.PATCH("/:id", handlers.UpdateRide(db, notifier))
				rides.DELETE("/:id", handlers.DeleteRide(db))

				rides.GET("/:id/join", handlers.JoinRide(db, logg, notifier))
				rides.POST("/:id/leave", handlers.LeaveRide(db, logg, notifier))
				rides.POST("/:id/complete", handlers.CompleteRide(db, logg, notifier))
				rides.POST("/:id/cancel", handlers.CancelRide(db, logg, notifier))
				rides.POST("/:id/rate", handlers.RateRide(db, logg))

				rides.GET("/:id/chat", handlers.GetRideMessages(db))
				rides.POST("/:id/chat", handlers.SendRideMessage(db, hub, notifier))
				rides.GET("/:id/payments", handlers.GetRidePayments(db))
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", handlers.GetNotifications(notifier))
				notifications.PATCH("/:id/read", handlers.MarkNotificationRead(notifier))
				notifications.PATCH("/read-all", handlers.MarkAllNotificationsRead(notifier))
			}

			payments := protected.Group("/payments")
			{
				payments.POST("", handlers.CreatePayment(db, logg, verifier))
				payments.GET("/:id", handlers.GetPayment(db))
			}
		}
	}

	logg.Info("server starting", logger.String("port", cfg.Server.Port), logger.String("env", cfg.Server.Env))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logg.Fatal("server exited", logger.Err(err))
	}
}
