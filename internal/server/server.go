package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/masarmall/leasing/internal/config"
	"github.com/masarmall/leasing/internal/export"
	itemdomain "github.com/masarmall/leasing/internal/item/domain"
	leasecontractdomain "github.com/masarmall/leasing/internal/leasecontract/domain"
	leaseinvoicedomain "github.com/masarmall/leasing/internal/leaseinvoice/domain"
	leaselinedomain "github.com/masarmall/leasing/internal/leaseline/domain"
	"github.com/masarmall/leasing/internal/observability"
	obslogger "github.com/masarmall/leasing/internal/observability/logger"
	obsmetrics "github.com/masarmall/leasing/internal/observability/metrics"
	obstracing "github.com/masarmall/leasing/internal/observability/tracing"
	propertydomain "github.com/masarmall/leasing/internal/property/domain"
	"github.com/masarmall/leasing/internal/ratelimit"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/masarmall/leasing/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module serves the HTTP API. Domain modules are supplied by the binary.
var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

// JobRunner triggers a single scheduler job on demand.
type JobRunner interface {
	RunJob(ctx context.Context, name string) (scheduler.JobResult, error)
}

type EngineParams struct {
	fx.In

	Cfg         config.Config
	ObsCfg      observability.Config
	HTTPMetrics *obsmetrics.HTTPMetrics `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	if p.ObsCfg.Debug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(p.HTTPMetrics))
	if len(p.Cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     p.Cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Params struct {
	fx.In

	Engine      *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	ItemSvc     itemdomain.Service
	PropertySvc propertydomain.Service
	LineSvc     leaselinedomain.Service
	LeaseSvc    leasecontractdomain.Service
	ScheduleSvc scheduledomain.Service
	InvoiceSvc  leaseinvoicedomain.Service
	Exporter    *export.Exporter
	Jobs        *scheduler.Scheduler  `optional:"true"`
	APILimiter  *ratelimit.APILimiter `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics   `optional:"true"`
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	itemSvc     itemdomain.Service
	propertySvc propertydomain.Service
	lineSvc     leaselinedomain.Service
	leaseSvc    leasecontractdomain.Service
	scheduleSvc scheduledomain.Service
	invoiceSvc  leaseinvoicedomain.Service
	exporter    *export.Exporter
	jobs        JobRunner
	apiLimiter  *ratelimit.APILimiter
	obsMetrics  *obsmetrics.Metrics
}

func NewServer(p Params) *Server {
	s := &Server{
		engine:      p.Engine,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		itemSvc:     p.ItemSvc,
		propertySvc: p.PropertySvc,
		lineSvc:     p.LineSvc,
		leaseSvc:    p.LeaseSvc,
		scheduleSvc: p.ScheduleSvc,
		invoiceSvc:  p.InvoiceSvc,
		exporter:    p.Exporter,
		apiLimiter:  p.APILimiter,
		obsMetrics:  p.ObsMetrics,
	}
	if p.Jobs != nil {
		s.jobs = p.Jobs
	}
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(s.APIRateLimit())

	v1.POST("/lease-lines/recompute", s.RecomputeLeaseLines)

	v1.POST("/items", s.CreateItem)
	v1.GET("/items", s.ListItems)
	v1.GET("/items/:id", s.GetItem)

	v1.POST("/properties", s.CreateProperty)
	v1.GET("/properties/:id", s.GetProperty)
	v1.GET("/properties/:id/floors", s.ListFloors)
	v1.GET("/properties/:id/floor-units", s.ListFloorUnits)
	v1.GET("/properties/:id/exit-floor-units", s.ListExitFloorUnits)
	v1.POST("/floors", s.CreateFloor)
	v1.POST("/floor-units", s.CreateFloorUnit)
	v1.POST("/floor-units/rent", s.RentSpace)
	v1.GET("/floor-units/:id", s.GetFloorUnit)
	v1.GET("/floor-units/:id/history", s.FloorUnitHistory)
	v1.POST("/floor-units/:id/return", s.ReturnSpace)

	v1.POST("/tax-templates", s.CreateTaxTemplate)

	v1.POST("/leases", s.CreateLease)
	v1.GET("/leases", s.ListLeases)
	v1.GET("/leases/:id", s.GetLease)
	v1.PUT("/leases/:id", s.UpdateLease)
	v1.POST("/leases/:id/submit", s.SubmitLease)
	v1.POST("/leases/:id/terminate", s.TerminateLease)
	v1.POST("/leases/:id/legal-case", s.LegalCaseLease)
	v1.POST("/leases/:id/renew", s.RenewLease)

	v1.GET("/leases/:id/schedule", s.GetSchedule)
	v1.GET("/leases/:id/schedule.xlsx", s.ExportScheduleXLSX)
	v1.GET("/leases/:id/schedule.pdf", s.ExportSchedulePDF)

	v1.GET("/lease-invoices", s.ListLeaseInvoices)
	v1.POST("/lease-invoices/:id/status", s.UpdateLeaseInvoiceStatus)

	v1.POST("/admin/jobs/:job/run", s.RunJob)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
