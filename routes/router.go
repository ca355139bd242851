package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famboard/famboard/config"
	"github.com/famboard/famboard/controllers"
	"github.com/famboard/famboard/middleware"
	"github.com/famboard/famboard/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
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

	authController := controllers.NewAuthController(db)
	householdController := controllers.NewHouseholdController(db)
	taskController := controllers.NewTaskController(db)
	completionController := controllers.NewCompletionController(db)
	rewardController := controllers.NewRewardController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)
	authGroup.DELETE("/me", middleware.AuthRequired(), authController.Deactivate)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/households", householdController.Create)
	protected.POST("/households/join", householdController.Join)
	protected.GET("/households", householdController.ListMine)
	protected.GET("/households/:id/members", householdController.Members)
	protected.PATCH("/households/:id/members/:memberId", householdController.UpdateMember)
	protected.POST("/households/:id/leave", householdController.Leave)
	protected.DELETE("/households/:id", householdController.Deactivate)

	protected.POST("/categories", taskController.CreateCategory)
	protected.GET("/households/:id/categories", taskController.ListCategories)

	protected.POST("/tasks", taskController.CreateTask)
	protected.GET("/households/:id/tasks", taskController.ListTasks)
	protected.GET("/tasks/:id", taskController.GetTask)
	protected.PATCH("/tasks/:id", taskController.UpdateTask)
	protected.DELETE("/tasks/:id", taskController.DeleteTask)
	protected.POST("/tasks/:id/complete", completionController.CompleteTask)

	protected.POST("/assignments", taskController.CreateAssignment)
	protected.GET("/households/:id/assignments", taskController.ListAssignments)
	protected.POST("/assignments/:id/complete", completionController.CompleteAssignment)
	protected.DELETE("/assignments/:id", taskController.CancelAssignment)

	protected.GET("/households/:id/completions", completionController.ListCompletions)
	protected.PATCH("/completions/:id", completionController.UpdateComment)

	protected.POST("/rewards", rewardController.CreateReward)
	protected.GET("/households/:id/rewards", rewardController.ListRewards)
	protected.PATCH("/rewards/:id", rewardController.UpdateReward)
	protected.POST("/rewards/:id/claim", rewardController.Claim)
	protected.GET("/households/:id/claims", rewardController.ListClaims)
	protected.POST("/claims/:id/fulfill", rewardController.FulfillClaim)
	protected.POST("/claims/:id/reject", rewardController.RejectClaim)

	protected.GET("/households/:id/balance", rewardController.Balance)
	protected.GET("/households/:id/leaderboard", rewardController.Leaderboard)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
