package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/romangod6/articles-api/internal/metrics"
	"github.com/romangod6/articles-api/internal/storage"
	"github.com/romangod6/articles-api/internal/utils"
	"go.uber.org/zap"
)

type Options struct {
	Port         int
	StrictStatus bool
}

type Server struct {
	router *gin.Engine
	port   int
	server *http.Server
}

// NewServer wires the article routes. recorder may be nil.
func NewServer(opts Options, store storage.Store, logger *zap.Logger, recorder *metrics.Recorder) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.RequestLogger(logger))
	if recorder != nil {
		router.Use(recorder.Middleware())
	}

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", utils.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", utils.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	handler := NewHandler(store, logger, opts.StrictStatus)

	router.GET("/", handler.Welcome)
	router.GET("/health", handler.Health)

	articles := router.Group("/articles")
	{
		articles.GET("", handler.ListArticles)
		articles.POST("", handler.CreateArticle)
		articles.PUT("/edit", handler.UpdateArticle)
		articles.PATCH("/edit/title", handler.UpdateArticleTitle)
		articles.DELETE("/:id", handler.DeleteArticle)
	}

	return &Server{
		router: router,
		port:   opts.Port,
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
