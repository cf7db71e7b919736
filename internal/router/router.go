package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pomodoro/desktop/internal/engine"
	"pomodoro/desktop/internal/handler"
	"pomodoro/desktop/internal/metrics"
	"pomodoro/desktop/internal/middleware"
	"pomodoro/desktop/internal/service"
)

func New(
	authService *service.AuthService,
	authHandler *handler.AuthHandler,
	pomodoroHandler *handler.PomodoroHandler,
	m *metrics.Metrics,
	corsOrigins []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	api := router.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/token", authHandler.Token)

	pomodoro := api.Group("/pomodoro")
	pomodoro.Use(middleware.Auth(authService))
	pomodoro.GET("/state", pomodoroHandler.GetState)
	for _, cmd := range engine.Commands {
		pomodoro.POST("/"+string(cmd), pomodoroHandler.Command(cmd))
	}
	pomodoro.GET("/profile", pomodoroHandler.GetProfile)
	pomodoro.PUT("/profile", pomodoroHandler.UpdateProfile)
	pomodoro.GET("/profiles", pomodoroHandler.ListProfiles)
	pomodoro.GET("/history", pomodoroHandler.GetHistory)
	pomodoro.GET("/stats", pomodoroHandler.GetStats)

	return router
}
