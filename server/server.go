package server

import (
	"time"

	"fleet-server/confs"
	"fleet-server/db"
	"fleet-server/handlers"
	httpHandler "fleet-server/handlers/http"
	"fleet-server/repositories"
	"fleet-server/services"
	"fleet-server/usecases"
	"fleet-server/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	app *gin.Engine
	db  db.Database
	cfg *confs.Settings
}

func NewServer(database db.Database, cfg *confs.Settings) *Server {
	return &Server{
		app: gin.Default(),
		db:  database,
		cfg: cfg,
	}
}

func (s *Server) Start() {
	// Setup CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true // Allow all origins for development
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	s.app.Use(cors.New(config))

	// Setup healthcheck route
	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "OK",
		})
	})

	// Initialize repositories
	ledger := repositories.NewCommandPgLedger(s.db)
	robotRepo := repositories.NewRobotPgRepository(s.db)
	readingRepo := repositories.NewBatteryReadingPgRepository(s.db)

	// Initialize use cases
	commandsUseCase := usecases.NewCommandsUseCase(ledger, s.cfg)
	pollUseCase := usecases.NewPollUseCase(commandsUseCase, ledger, s.cfg)
	robotsUseCase := usecases.NewRobotsUseCase(robotRepo, readingRepo)

	// Battery telemetry batching
	processor := services.NewTelemetryProcessor(readingRepo, s.cfg.BatteryDeltaThreshold, time.Duration(s.cfg.FlushIntervalSeconds)*time.Second)
	processor.Start()

	// WebSocket manager and handler
	manager := ws.NewManager()
	wsHandler := handlers.NewWSHandler(manager, robotsUseCase, commandsUseCase, processor)

	// Initialize handlers
	pollHandler := httpHandler.NewPollHandler(pollUseCase, robotsUseCase, processor)
	cmdHandler := httpHandler.NewCommandHandler(manager, commandsUseCase)
	robotHandler := httpHandler.NewRobotHandler(robotsUseCase)
	cacheHandler := handlers.NewCacheHandler(processor)
	loginHandler := httpHandler.NewLoginHandler(s.db.GetDB())

	// Setup API routes
	api := s.app.Group("/api/v1")
	{
		// Poll endpoint: robots report state, receive their next command
		api.POST("/poll", pollHandler.Poll)

		// Robot registry routes
		robots := api.Group("/robots")
		{
			robots.POST("", robotHandler.RegisterRobot)
			robots.GET("", robotHandler.GetAllRobots)
			robots.GET("/connected", wsHandler.GetConnectedRobots)
			robots.GET("/:id/commands", cmdHandler.GetPending)
			robots.GET("/:id/readings", robotHandler.GetBatteryReadings)
			robots.GET("/:id", robotHandler.GetRobot)
			robots.PUT("/:id", robotHandler.UpdateRobot)
			robots.DELETE("/:id", robotHandler.DeleteRobot)
		}

		// Operator command dispatch
		api.POST("/commands", cmdHandler.Dispatch)
		api.POST("/command-completions", cmdHandler.Complete)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginHandler.Login) // Login endpoint for the fleet console
		}

		// Cache management endpoints
		cache := api.Group("/cache")
		{
			cache.POST("/process", cacheHandler.ProcessCache)        // Trigger cache flush
			cache.GET("/data", cacheHandler.GetAllCachedReadings)    // Get all cached readings
			cache.GET("/stats", cacheHandler.GetCacheStats)          // Get cache statistics
		}
	}

	s.app.GET("/ws", wsHandler.HandleRobotWS)

	if err := s.app.Run(s.cfg.ListenAddr); err != nil {
		panic(err)
	}
}
