package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Lzww0608/fastid"
)

// maxBatch bounds one request's draw on the worker so a single caller
// cannot pin everyone else in the sequence-exhaustion spin.
const maxBatch = 1000

func newServer(cfg serverConfig, worker *fastid.Worker, logger zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handler{worker: worker}
	v1 := router.Group("/v1")
	v1.GET("/id", h.generate)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: router,
	}
}

type handler struct {
	worker *fastid.Worker
}

// generate mints count identifiers in the requested format.
//
//	GET /v1/id?format=int|uuid|base62|base64&count=N
func (h *handler) generate(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "1"))
	if err != nil || count < 1 || count > maxBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("count must be between 1 and %d", maxBatch)})
		return
	}

	format := c.DefaultQuery("format", "int")
	ids := make([]string, count)
	switch format {
	case "int":
		for i := range ids {
			ids[i] = h.worker.Generate().String()
		}
	case "uuid":
		for i := range ids {
			ids[i] = h.worker.GenerateUUID().String()
		}
	case "base62":
		for i := range ids {
			ids[i] = h.worker.Generate().Base62()
		}
	case "base64":
		for i := range ids {
			ids[i] = h.worker.Generate().Base64()
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of int, uuid, base62, base64"})
		return
	}

	if count == 1 {
		c.JSON(http.StatusOK, gin.H{"id": ids[0]})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}
