package handler

import (
	"context"
	"net/http"

	"github.com/gameshop/backend/internal/application/trade"
	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/infrastructure/logger"
	"github.com/gameshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TradeService runs trades for online players
type TradeService interface {
	Buy(ctx context.Context, player game.Player, shopID, productID string, units int) (*trade.Receipt, error)
	Sell(ctx context.Context, player game.Player, shopID, productID string, units int) (*trade.Receipt, error)
	SellAll(ctx context.Context, player game.Player, shopID, productID string) (*trade.Receipt, error)
}

// PlayerDirectory resolves online players
type PlayerDirectory interface {
	Find(id uuid.UUID) (game.Player, error)
}

// TradeHandler lets online players trade through the API
type TradeHandler struct {
	BaseHandler
	trades  TradeService
	players PlayerDirectory
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(trades TradeService, players PlayerDirectory) *TradeHandler {
	return &TradeHandler{trades: trades, players: players}
}

// RegisterRoutes mounts the trade endpoint
func (h *TradeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/shops/:shop/products/:product/trade", h.Trade)
}

// TradeRequest is one buy or sell. All sells every unit the player holds.
type TradeRequest struct {
	PlayerID  string            `json:"player_id" binding:"required,uuid"`
	TradeType product.TradeType `json:"trade_type" binding:"required,oneof=buy sell"`
	Units     int               `json:"units" binding:"min=0"`
	All       bool              `json:"all"`
}

// Trade godoc
// @Summary      Trade a product
// @Description  Buys or sells units of a product for an online player
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        shop    path string       true "Shop ID"
// @Param        product path string       true "Product ID"
// @Param        request body TradeRequest true "Trade"
// @Success      200 {object} dto.Response{data=trade.Receipt}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      402 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shops/{shop}/products/{product}/trade [post]
func (h *TradeHandler) Trade(c *gin.Context) {
	var req TradeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.All && req.TradeType != product.TradeSell {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Only sells can trade all units")
		return
	}
	if !req.All && req.Units == 0 {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "units", Message: "must be at least 1"}})
		return
	}

	logger.SetPlayer(c, req.PlayerID)
	player, err := h.players.Find(uuid.MustParse(req.PlayerID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	shopID, productID := c.Param("shop"), c.Param("product")

	var receipt *trade.Receipt
	switch {
	case req.All:
		receipt, err = h.trades.SellAll(ctx, player, shopID, productID)
	case req.TradeType == product.TradeBuy:
		receipt, err = h.trades.Buy(ctx, player, shopID, productID, req.Units)
	default:
		receipt, err = h.trades.Sell(ctx, player, shopID, productID, req.Units)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}
