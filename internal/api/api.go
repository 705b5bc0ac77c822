package api

import (
	"net/http"

	authHandler "voice-bridge/internal/auth/handler"
	voiceCallHandler "voice-bridge/internal/voicecall/handler"

	"github.com/gin-gonic/gin"
)

type API struct {
	router           *gin.RouterGroup
	authHandler      authHandler.Handler
	voiceCallHandler voiceCallHandler.Handler
}

func New(router *gin.RouterGroup, authHandler authHandler.Handler, voiceCallHandler voiceCallHandler.Handler) API {
	return API{
		router:           router,
		authHandler:      authHandler,
		voiceCallHandler: voiceCallHandler,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()

	twilioGroup := a.router.Group("/twilio")
	{
		twilioGroup.POST("/voice", a.voiceCallHandler.HandleAnswerCall)
		twilioGroup.GET("", a.voiceCallHandler.HandleMediaStream)
	}

	protectedGroup := a.router.Group("/api", a.authHandler.HandleJWTMiddleware)
	{
		protectedGroup.GET("/dashboard/events", a.voiceCallHandler.HandleEventStream)
		protectedGroup.GET("/calls/active", a.voiceCallHandler.HandleListActiveCalls)
		protectedGroup.GET("/callers/:phone", a.voiceCallHandler.HandleGetCaller)
		protectedGroup.PUT("/callers/:phone/guidance", a.voiceCallHandler.HandleUpdateGuidance)
		protectedGroup.POST("/callers/:phone/context", a.voiceCallHandler.HandleAppendContext)
		protectedGroup.GET("/sessions/:id/messages", a.voiceCallHandler.HandleGetSessionMessages)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	a.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "voice-bridge", "message": "media stream relay is running"})
	})
}
