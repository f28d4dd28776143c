// Package server assembles the ward HTTP API: middleware, module handlers,
// the live ward feed and operational endpoints.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"vetward/internal/config"
	"vetward/internal/middleware"
	"vetward/internal/modules/admission"
	"vetward/internal/modules/directory"
	"vetward/internal/modules/reporting"
	"vetward/internal/modules/rooms"
	"vetward/internal/modules/wardfeed"
	"vetward/internal/pkg/metrics"
	"vetward/internal/pkg/response"
	"vetward/internal/repository"
)

// recorder is what both the room registry and the admission service report to.
type recorder interface {
	admission.Metrics
	rooms.Metrics
}

type Server struct {
	Engine     *gin.Engine
	Hub        *wardfeed.Hub
	Rooms      *rooms.Service
	Admissions *admission.Service
	Reports    *reporting.Service
}

// New wires every module against db. rec may be nil, in which case metrics are
// discarded and /metrics is not served.
func New(cfg *config.Config, db *gorm.DB, log zerolog.Logger, rec *metrics.Recorder) *Server {
	var m recorder = metrics.Nop{}
	if rec != nil {
		m = rec
	}

	store := repository.NewStore(db)
	dir := repository.NewDirectoryRepository(db)
	hub := wardfeed.NewHub(log)

	roomService := rooms.NewService(store, m, log)
	reportService := reporting.NewService(store, cfg.Location)
	admissionService := admission.NewService(store, roomService, dir, m, log,
		admission.WithLocation(cfg.Location),
		admission.WithPublisher(hub),
	)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", healthHandler(db))
	if rec != nil {
		r.GET("/metrics", gin.WrapH(rec.Handler()))
	}

	snapshot := wardfeed.SnapshotFunc(func(ctx context.Context) (any, error) {
		return roomService.Occupancy(ctx)
	})
	wardfeed.NewWSHandler(hub, snapshot, cfg.CORSAllowedOrigins).RegisterRoutes(&r.RouterGroup)

	v1 := r.Group("/api/v1")
	{
		rooms.NewHandler(roomService).RegisterRoutes(v1)
		admission.NewHandler(admissionService, reportService).RegisterRoutes(v1)
		reporting.NewHandler(reportService).RegisterRoutes(v1)
		directory.NewHandler(dir).RegisterRoutes(v1)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	// prime the occupancy gauges from the stored counters
	roomService.SyncOccupancy(context.Background())

	return &Server{
		Engine:     r,
		Hub:        hub,
		Rooms:      roomService,
		Admissions: admissionService,
		Reports:    reportService,
	}
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			_ = c.Error(err)
			response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
