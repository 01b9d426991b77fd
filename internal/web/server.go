package web

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewServer(handler *MarketHandler) *gin.Engine {
	server := gin.New()
	server.Use(gin.Recovery(), accessLog())
	server.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.RegisterRoutes(server)
	return server
}

func accessLog() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		slog.Debug("http request",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
			"cost", time.Since(start))
	}
}
