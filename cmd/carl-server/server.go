package main

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ths-rwth/carl"
)

// newRouter wires the tool endpoints:
//
//	POST /tool    execute a tool call
//	GET  /schema  tool schema for agent registration
//	GET  /stats   factorization cache counters
//	GET  /health  liveness check
//	GET  /metrics prometheus metrics
func newRouter(session *carl.Session, logger *zap.Logger, maxBodyBytes int64) *gin.Engine {
	r := gin.New()
	r.Use(recoverer(logger), requestLogger(logger))

	r.POST("/tool", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		defer c.Request.Body.Close()

		dec := json.NewDecoder(c.Request.Body)
		dec.DisallowUnknownFields()

		var req carl.ToolRequest
		if err := dec.Decode(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if dec.More() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: trailing data"})
			return
		}

		resp := session.HandleToolCall(req)
		if resp.Error != "" {
			logger.Debug("tool call failed", zap.String("tool", req.Tool), zap.String("error", resp.Error))
		}
		c.JSON(http.StatusOK, resp)
	})

	r.GET("/schema", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(carl.ToolSpec()))
	})

	r.GET("/stats", func(c *gin.Context) {
		st := session.Cache().Stats()
		c.JSON(http.StatusOK, gin.H{
			"cache_id":       session.Cache().ID().String(),
			"factors":        st.Factors,
			"hits":           st.Hits,
			"misses":         st.Misses,
			"factorizations": st.Factorizations,
			"variables":      session.Pool().Len(),
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func recoverer(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in handler",
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
