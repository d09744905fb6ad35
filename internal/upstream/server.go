package upstream

import (
	"context"
	"net/http"
	"time"

	"example.com/fleetcontrol/config"
	"example.com/fleetcontrol/internal/api"
	"example.com/fleetcontrol/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Server is the development fleet API server.
type Server struct {
	config     config.Config
	db         *gorm.DB
	httpServer *http.Server
}

// NewServer connects to Postgres, migrates the resource tables and builds
// the HTTP server.
func NewServer(cfg config.Config, address string) (*Server, error) {
	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Vehicle{}, &CheckoutEvent{}, &CheckInEvent{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate resource tables")
	}

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestID())
	router.Use(api.Logger())

	registerResource[Vehicle](router, "vehicles", NewRepository[Vehicle](db))
	registerResource[CheckoutEvent](router, "checkout-events", NewRepository[CheckoutEvent](db))
	registerResource[CheckInEvent](router, "checkin-events", NewRepository[CheckInEvent](db))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		config: cfg,
		db:     db,
		httpServer: &http.Server{
			Addr:    address,
			Handler: router,
		},
	}, nil
}

// resourceRepo is the persistence contract registerResource wires routes to.
type resourceRepo[T any] interface {
	ListAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

// registerResource wires the CRUD contract for one resource: GET returns the
// JSON array, POST creates, PUT applies a partial body, DELETE removes.
// Failures respond non-2xx with a message body.
func registerResource[T any](router *gin.Engine, name string, repo resourceRepo[T]) {
	group := router.Group("/api/" + name)

	group.GET("", func(c *gin.Context) {
		records, err := repo.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, records)
	})

	group.POST("", func(c *gin.Context) {
		var record T
		if err := c.ShouldBindJSON(&record); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if err := repo.Create(c.Request.Context(), &record); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrDuplicateKey) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, record)
	})

	group.PUT("/:id", func(c *gin.Context) {
		id, err := recordID(c)
		if err != nil {
			return
		}
		var fields map[string]interface{}
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		delete(fields, "id")
		if err := repo.Update(c.Request.Context(), id, fields); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	group.DELETE("/:id", func(c *gin.Context) {
		id, err := recordID(c)
		if err != nil {
			return
		}
		if err := repo.Delete(c.Request.Context(), id); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}

func recordID(c *gin.Context) (int64, error) {
	var uri struct {
		ID int64 `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, err
	}
	return uri.ID, nil
}

// Start starts the dev API server.
func (s *Server) Start() error {
	log.Info().Str("address", s.httpServer.Addr).Msg("Starting upstream dev API server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}
	return nil
}

// Shutdown gracefully stops the dev API server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
