package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"cogui/internal/config"
	"cogui/internal/handlers"
	"cogui/internal/session"
	"cogui/internal/utils"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
}

// Setup builds the HTTP surface around the per-session pipelines.
func Setup(log *zap.Logger, manager *session.Manager) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secret := config.Conf.Server.SessionSecret
	if secret == "" {
		// No configured secret: generate an ephemeral one. Sessions won't
		// survive a restart, persisted preferences will.
		generated, err := utils.GenerateSecureToken(32)
		if err != nil {
			log.Fatal("Failed to generate session secret", zap.Error(err))
		}
		secret = generated
		log.Warn("No session secret configured, using an ephemeral one")
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("cogui_session", store))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	router.Use(PipelineSession(manager))

	pipelineHandler := handlers.NewPipelineHandler(log)
	preferencesHandler := handlers.NewPreferencesHandler(log)

	// Cognitive-state pushes and preference writes are low-frequency by
	// nature; rate limit them the same way the capture layer is expected
	// to throttle itself.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 60,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	sessionRoutes := router.Group("/session")
	{
		sessionRoutes.POST("/start", pipelineHandler.Start)
		sessionRoutes.POST("/stop", pipelineHandler.Stop)
		sessionRoutes.POST("/reset", pipelineHandler.Reset)
	}

	eventRoutes := router.Group("/events")
	{
		eventRoutes.POST("/samples", pipelineHandler.Samples)
		eventRoutes.POST("/clicks", pipelineHandler.Clicks)
		eventRoutes.POST("/scrolls", pipelineHandler.Scrolls)
	}

	router.GET("/metrics", pipelineHandler.Metrics)
	router.GET("/metrics/chart", pipelineHandler.MetricsChart)

	router.POST("/state", limiter, preferencesHandler.UpdateState)

	preferenceRoutes := router.Group("/preferences")
	{
		preferenceRoutes.GET("", preferencesHandler.Get)
		preferenceRoutes.PATCH("", limiter, preferencesHandler.Patch)
		preferenceRoutes.POST("/reset", AdminRequired(log), preferencesHandler.Reset)
		preferenceRoutes.POST("/revert-auto", preferencesHandler.RevertAuto)
	}

	router.PATCH("/adaptive-config", limiter, preferencesHandler.PatchConfig)
	router.POST("/environment", preferencesHandler.Environment)
	router.GET("/adaptations", preferencesHandler.Adaptations)

	return router
}
