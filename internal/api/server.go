// Package api exposes the assessment engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vitals-risk-engine/internal/config"
	"github.com/vitals-risk-engine/internal/domain"
	"github.com/vitals-risk-engine/internal/service"
)

// Server is the HTTP front end for the assessment engine.
type Server struct {
	cfg    config.ServerConfig
	engine *service.Engine
	router *gin.Engine
	server *http.Server
	log    *logrus.Logger
}

// NewServer builds a server with the standard middleware chain.
func NewServer(cfg config.ServerConfig, engine *service.Engine, logger *logrus.Logger) *Server {
	if logger.GetLevel() == logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(corsMiddleware())
	router.Use(securityHeadersMiddleware())
	if cfg.RateLimit > 0 {
		router.Use(rateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))
	}

	s := &Server{
		cfg:    cfg,
		engine: engine,
		router: router,
		log:    logger,
	}
	s.setupRoutes()
	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/assess", s.handleAssess)
		v1.GET("/assessments/:id", s.handleGetAssessment)
		v1.GET("/patients/:id/assessments", s.handleListAssessments)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// assessRequest is the POST /assess payload.
type assessRequest struct {
	PatientID  string                     `json:"patient_id"`
	Algorithms []string                   `json:"algorithms"`
	Patient    *domain.RawPatientDocument `json:"patient"`
}

func (s *Server) handleAssess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}
	if req.Patient == nil {
		s.writeError(c, http.StatusBadRequest, domain.ErrCodeValidation, "patient document is required")
		return
	}

	resp, err := s.engine.Assess(c.Request.Context(), req.PatientID, req.Algorithms, req.Patient)
	if err != nil {
		s.writeError(c, statusForError(err), errorCodeFor(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetAssessment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.writeError(c, http.StatusBadRequest, domain.ErrCodeValidation, "invalid assessment id")
		return
	}

	assessment, err := s.engine.GetAssessment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeError(c, http.StatusNotFound, domain.ErrCodeInternal, "assessment not found")
			return
		}
		s.log.WithError(err).Error("Failed to load assessment")
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeInternal, "internal error")
		return
	}

	c.JSON(http.StatusOK, assessment)
}

func (s *Server) handleListAssessments(c *gin.Context) {
	patientID := c.Param("id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(c, http.StatusBadRequest, domain.ErrCodeValidation, "invalid limit")
			return
		}
		limit = parsed
	}

	assessments, err := s.engine.ListAssessments(c.Request.Context(), patientID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"assessments": []interface{}{}})
			return
		}
		s.log.WithError(err).Error("Failed to list assessments")
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeInternal, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessments": assessments})
}

func (s *Server) writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": c.GetString("request_id"),
	})
}

func statusForError(err error) int {
	switch err.(type) {
	case *domain.ValidationError, *domain.ValidationErrors, *domain.OutOfRangeError,
		*domain.InvalidEnumError, *domain.UnsupportedUnitError, *domain.DomainError:
		return http.StatusBadRequest
	default:
		if errors.Is(err, domain.ErrNotFound) {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	}
}

func errorCodeFor(err error) string {
	switch err.(type) {
	case *domain.ValidationError, *domain.ValidationErrors:
		return domain.ErrCodeValidation
	case *domain.OutOfRangeError:
		return domain.ErrCodeOutOfRange
	case *domain.InvalidEnumError:
		return domain.ErrCodeInvalidEnum
	case *domain.UnsupportedUnitError:
		return domain.ErrCodeUnsupportedUnit
	case *domain.DomainError:
		return domain.ErrCodeDomain
	default:
		return domain.ErrCodeInternal
	}
}
