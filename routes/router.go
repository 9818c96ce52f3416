package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/thriftly/thriftly/config"
	"github.com/thriftly/thriftly/controllers"
	"github.com/thriftly/thriftly/middleware"
	"github.com/thriftly/thriftly/services"
	"github.com/thriftly/thriftly/utils"
)

// SetupRouter wires routes, middlewares, services and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	// Engine wiring: the ledger feeds levels, levels feed the reward sources.
	clock := services.SystemClock()
	ledger := services.NewLedger(db)
	levels := services.NewLevelService(db, clock, ledger)
	spins := services.NewSpinService(db, clock, levels)
	streaks := services.NewStreakService(db, clock, levels)
	goals := services.NewGoalService(db, clock, levels)

	authController := controllers.NewAuthController(db)
	spinController := controllers.NewSpinController(spins, ledger)
	streakController := controllers.NewStreakController(streaks)
	goalController := controllers.NewGoalController(goals)
	levelController := controllers.NewLevelController(levels)
	rewardsController := controllers.NewRewardsController(ledger)
	expenseController := controllers.NewExpenseController(db, streaks)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/spin", spinController.Spin)
	protected.GET("/spin/history", spinController.History)

	protected.POST("/streaks/:activity", streakController.Log)
	protected.GET("/streaks", streakController.List)

	protected.POST("/goals", goalController.Create)
	protected.GET("/goals", goalController.List)
	protected.POST("/goals/:id/progress", goalController.AddProgress)

	protected.POST("/level/recalculate", levelController.Recalculate)
	protected.GET("/level/progress", levelController.Progress)

	protected.GET("/rewards/unclaimed", rewardsController.Unclaimed)
	protected.GET("/rewards/recent", rewardsController.Recent)
	protected.GET("/rewards/stats", rewardsController.Stats)

	protected.POST("/expenses", expenseController.Create)
	protected.GET("/expenses", expenseController.List)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
