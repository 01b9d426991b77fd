package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/internal/service/hub"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MarketHandler struct {
	svc hub.Service
}

func NewMarketHandler(svc hub.Service) *MarketHandler {
	return &MarketHandler{svc: svc}
}

func (h *MarketHandler) RegisterRoutes(server *gin.Engine) {
	api := server.Group("/api")
	api.GET("/markets", h.GetCatalog)
	api.POST("/markets/sync", h.Sync)
	api.POST("/subscriptions", h.Subscribe)
	api.DELETE("/subscriptions", h.Unsubscribe)
	api.GET("/subscriptions/:email/financial-instruments", h.GetSubscribed)
}

// GetCatalog GET /api/markets
func (h *MarketHandler) GetCatalog(ctx *gin.Context) {
	catalog, err := h.svc.GetCatalogSnapshot(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toCatalogVo(catalog))
}

// Sync POST /api/markets/sync
func (h *MarketHandler) Sync(ctx *gin.Context) {
	inserted, err := h.svc.Reconcile(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, SyncVo{Inserted: inserted})
}

// Subscribe POST /api/subscriptions
func (h *MarketHandler) Subscribe(ctx *gin.Context) {
	var req SubscribeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.Subscribe(ctx.Request.Context(), hub.SubscribeReq{
		Email:          req.Email,
		Symbol:         req.Symbol,
		MarketType:     entity.MarketType(req.MarketType),
		UpperThreshold: decimal.NewFromFloat(*req.UpperThreshold),
		LowerThreshold: decimal.NewFromFloat(*req.LowerThreshold),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "Subscription created successfully."})
}

// Unsubscribe DELETE /api/subscriptions?email=&symbol=&marketType=
func (h *MarketHandler) Unsubscribe(ctx *gin.Context) {
	var req UnsubscribeReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.Unsubscribe(ctx.Request.Context(), req.Email, req.Symbol, entity.MarketType(req.MarketType))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetSubscribed GET /api/subscriptions/:email/financial-instruments
func (h *MarketHandler) GetSubscribed(ctx *gin.Context) {
	catalog, err := h.svc.GetSubscribedInstruments(ctx.Request.Context(), ctx.Param("email"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toCatalogVo(catalog))
}

func writeError(ctx *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrTransport):
		status = http.StatusBadGateway
	default:
		slog.Error("request failed", "method", ctx.Request.Method, "path", ctx.FullPath(), "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
