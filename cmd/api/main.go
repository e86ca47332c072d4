package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"polyfit/internal/config"
	"polyfit/internal/curve"
	"polyfit/internal/unc"
	"polyfit/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	r := newRouter(cfg, os.Getenv("API_KEY"), logger)
	logger.Info("listening", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

type server struct {
	cfg    config.Config
	logger *zap.Logger
}

func newRouter(cfg config.Config, apiKey string, logger *zap.Logger) *gin.Engine {
	s := &server{cfg: cfg, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.GET("/models", s.handleModels)

	api := r.Group("/")
	api.Use(apiKeyMiddleware(apiKey))
	api.POST("/fit", s.handleFit)
	api.POST("/slope", s.handleSlope)
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// apiKeyMiddleware checks X-API-Key when a key is configured.
func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *server) handleModels(c *gin.Context) {
	models := curve.Models()
	out := make([]gin.H, len(models))
	for i, m := range models {
		mask, _ := curve.Resolve(m)
		out[i] = gin.H{"name": m, "mask": mask.String(), "params": mask.Arity()}
	}
	c.JSON(http.StatusOK, gin.H{"models": out, "default": s.cfg.Model})
}

type fitReq struct {
	X []float64 `json:"x" binding:"required"`
	Y []float64 `json:"y" binding:"required"`
	// Model is a registered name or a 0/1 mask; empty uses the configured one.
	Model string `json:"model"`
	LaTeX bool   `json:"latex"`
	// At lists x values to predict at.
	At []float64 `json:"at"`
}

type fitResp struct {
	Model       string            `json:"model"`
	Mask        string            `json:"mask"`
	Powers      []int             `json:"powers"`
	Params      []unc.Measurement `json:"params"`
	Formatted   []string          `json:"formatted"`
	SSR         float64           `json:"ssr"`
	DOF         int               `json:"dof"`
	Iterations  int               `json:"iterations"`
	Label       string            `json:"label"`
	Predictions []unc.Measurement `json:"predictions,omitempty"`
}

func (s *server) handleFit(c *gin.Context) {
	var req fitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if len(req.X) > s.cfg.Server.MaxSamples {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too many samples"})
		return
	}
	name := req.Model
	if name == "" {
		name = s.cfg.Model
	}
	sel, err := curve.ParseSelector(name)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	res, err := curve.FitWith(req.X, req.Y, sel, curve.Options{Solver: s.cfg.SolverOptions(), Logger: s.logger})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	fopts := unc.FormatOptions{LaTeX: req.LaTeX}
	formatted := make([]string, len(res.Params))
	for i, p := range res.Params {
		formatted[i] = unc.Format(p, fopts)
	}
	out := fitResp{
		Model:      name,
		Mask:       res.Mask.String(),
		Powers:     res.Powers(),
		Params:     res.Params,
		Formatted:  formatted,
		SSR:        res.SSR,
		DOF:        res.DOF,
		Iterations: res.Iterations,
		Label:      res.Label(curve.LabelOptions{LaTeX: req.LaTeX}),
	}
	if len(req.At) > 0 {
		out.Predictions = res.Predict(req.At)
	}
	c.JSON(http.StatusOK, out)
}

type slopeReq struct {
	X []float64 `json:"x" binding:"required"`
	Y []float64 `json:"y" binding:"required"`
}

func (s *server) handleSlope(c *gin.Context) {
	var req slopeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if len(req.X) > s.cfg.Server.MaxSamples {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too many samples"})
		return
	}
	m, err := curve.NormalizedSlope(req.X, req.Y)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slope": m, "formatted": unc.Format(m, unc.FormatOptions{})})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, curve.ErrUnknownModel), errors.Is(err, curve.ErrInvalidModel):
		return http.StatusBadRequest
	case errors.Is(err, curve.ErrFit):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
