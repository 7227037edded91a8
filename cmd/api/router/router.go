package router

import (
	"net/http"

	"git.ruekov.eu/ruakij/chat-relay/cmd/api/controllers"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/logger"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/models"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	// AllowOrigins lists CORS origins, empty or "*" allows all
	AllowOrigins   []string
	TrustedProxies []string
}

func New(chatService *service.ChatService, options Options) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Logger(), RecoveryMiddleware())
	router.Use(cors.New(corsConfig(options.AllowOrigins)))

	if err := router.SetTrustedProxies(options.TrustedProxies); err != nil {
		return nil, err
	}

	api := router.Group("/api")
	controllers.NewChatController(chatService).RegisterRoutes(api)
	controllers.NewStatusController(chatService).RegisterRoutes(api)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", "Accept", "Cache-Control", "X-Requested-With")

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	return config
}

// RecoveryMiddleware answers panics with a 500. Aborted streams are passed on to net/http so
// the connection is dropped instead of being closed cleanly.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.Error.Printf("Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, rec)
			if c.Writer.Written() {
				panic(http.ErrAbortHandler)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		}()

		c.Next()
	}
}
