package viewer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/menuqr/internal/auth"
	"github.com/danmuck/menuqr/internal/config"
	"github.com/danmuck/menuqr/internal/ledger"
	"github.com/danmuck/menuqr/internal/link"
	"github.com/danmuck/menuqr/internal/observability"
	"github.com/danmuck/menuqr/internal/qr"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	// maxBodyBytes bounds API request bodies; V2 menus may carry inline images.
	maxBodyBytes    = 8 << 20
	shutdownTimeout = 5 * time.Second
)

type Viewer struct {
	Name      string
	Addr      string
	BaseURL   string
	Placement link.Placement
	Appeared  time.Time

	ledger  *ledger.Store
	issuers auth.Validator
	qr      qr.Renderer
	preview *Preview
	router  *gin.Engine
}

// New builds the viewer and registers its routes. store may be nil.
func New(cfg config.ViewerConfig, store *ledger.Store) (*Viewer, error) {
	placement, err := link.ParsePlacement(cfg.Placement)
	if err != nil {
		return nil, err
	}

	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	v := &Viewer{
		Name:      cfg.Name,
		Addr:      cfg.Addr,
		BaseURL:   cfg.ViewerBaseURL,
		Placement: placement,
		Appeared:  time.Now(),
		ledger:    store,
		issuers:   issuerValidator(cfg.APIToken),
		qr:        qr.NewPNGRenderer(cfg.QRSize),
		preview:   NewPreview(),
		router:    r,
	}
	v.RegisterRoutes()
	return v, nil
}

func (v *Viewer) HTTPRouter() *gin.Engine {
	return v.router
}

func (v *Viewer) RegisterRoutes() {
	routes := v.router
	routes.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(v.Appeared).String(),
			"service": v.Name,
			"version": "0.1.0",
		})
	})

	routes.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(v.Appeared).String(),
			"service": v.Name,
			"version": "0.1.0",
		})
	})

	routes.GET("/menu", v.handleMenuPage)

	api := routes.Group("/api")
	api.POST("/decode", v.handleDecode)
	api.POST("/encode", auth.Require(v.issuers), v.handleEncode)
	api.POST("/preview", v.handlePreviewLoad)
	api.GET("/preview", v.handlePreviewGet)
	api.GET("/qr", v.handleQR)
}

// Serve listens on Addr until ctx is cancelled, then shuts down gracefully.
func (v *Viewer) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              v.Addr,
		Handler:           v.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", v.Addr).Str("service", v.Name).Msg("viewer_listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Str("service", v.Name).Msg("viewer_shutdown")
		return srv.Shutdown(shutdownCtx)
	}
}

func issuerValidator(token string) auth.Validator {
	if token == "" {
		return nil
	}
	return auth.StaticToken{Token: token}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
