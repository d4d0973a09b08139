package api

import (
	"context"
	"net/http"
	"time"

	"github.com/RichardKnop/machinery/v1"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/quarantaenehelden/notification-api/background"
	"github.com/quarantaenehelden/notification-api/external/slack"
	"github.com/quarantaenehelden/notification-api/logmodule"
	"github.com/quarantaenehelden/notification-api/store"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "gin")
}

// Server to run a http server instance
type Server struct {
	// Server instance
	server *http.Server

	// Stores
	store store.HeldenCore

	// External services
	slackWebhook slack.Webhook

	// job pool enqueuer
	backgroundEnqueuer *machinery.Server

	// notification configuration
	conf background.Config
}

// NewServer new instance of server
func NewServer(
	heldenStore store.HeldenCore,
	slackWebhook slack.Webhook,
	backgroundEnqueuer *machinery.Server,
	conf background.Config) *Server {
	return &Server{
		store:              heldenStore,
		slackWebhook:       slackWebhook,
		backgroundEnqueuer: backgroundEnqueuer,
		conf:               conf,
	}
}

// Run to run the server
func (s *Server) Run(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.setupRouter(),
	}

	return s.server.ListenAndServe()
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         10 * time.Second,
	}))

	apiRoute := r.Group("/api")
	apiRoute.Use(logmodule.Ginrus("API"))
	apiRoute.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))
	apiRoute.Use(s.recognizeUserMiddleware())

	helpRoute := apiRoute.Group("/helps")
	{
		helpRoute.POST("", s.askForHelp)
		helpRoute.GET("/:helpID", s.getHelp)
		helpRoute.POST("/:helpID/offers", s.offerHelp)
		helpRoute.POST("/:helpID/report", s.reportHelp)
	}

	secretRoute := r.Group("/secret")
	secretRoute.Use(logmodule.Ginrus("Secret"))
	secretRoute.Use(s.apikeyAuthentication(viper.GetString("server.apikey.admin")))
	{
		secretRoute.DELETE("/purge", s.adminPurgeDeleted)
	}

	r.GET("/healthz", s.healthz)

	return r
}

// Shutdown to shutdown the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// recognizeUserMiddleware picks the caller's user id off the request. The
// platform fronting this service already authenticated the user; this
// subsystem only needs the opaque id.
func (s *Server) recognizeUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader("X-User-Id")
		if uid == "" {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
			return
		}
		c.Set("uid", uid)
		c.Next()
	}
}

func (s *Server) apikeyAuthentication(apikey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apikey == "" || c.GetHeader("API-KEY") != apikey {
			abortWithEncoding(c, http.StatusUnauthorized, errorInvalidAuthorizationFormat)
			return
		}
		c.Next()
	}
}

// shouldInterupt sends error message and determine if it should interupt the current flow
func shouldInterupt(err error, c *gin.Context) bool {
	if err == nil {
		return false
	}

	log.Error(err)
	abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
	return true
}

func (s *Server) healthz(c *gin.Context) {
	// Ping db
	err := s.store.Ping()
	if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"version": viper.GetString("server.version"),
	})
}

func responseWithEncoding(c *gin.Context, code int, obj ErrorResponse) {
	c.JSON(code, obj)
}

func abortWithEncoding(c *gin.Context, code int, obj ErrorResponse, errors ...error) {
	for _, err := range errors {
		c.Error(err)
	}
	responseWithEncoding(c, code, obj)
	c.Abort()
}
