package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"supportviz/internal/logger"
	"supportviz/internal/pipeline"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

//go:embed templates/index.html
var templatesFS embed.FS

func NewRouter(svc *pipeline.Service, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		CORS(),
		RequestID(),
		otelgin.Middleware("supportviz"),
		RequestLogger(log),
	)
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/index.html")))

	h := NewHandler(svc)
	router.GET("/", h.Index)
	router.GET("/healthz", h.Healthz)

	api := router.Group("/api")
	{
		api.GET("/models", h.Models)
		api.POST("/update", h.Update)
		api.POST("/node_insight", h.NodeInsight)
	}
	return router
}

// Run serves handler on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
