package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/infrastructure/host"
	"github.com/gameshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlayerRegistry tracks simulated online players
type PlayerRegistry interface {
	Join(p *host.Player)
	Leave(id uuid.UUID)
	Find(id uuid.UUID) (game.Player, error)
	Online() []*host.Player
}

// Wallet funds player accounts
type Wallet interface {
	Balance(ctx context.Context, playerID uuid.UUID, currency string) (decimal.Decimal, error)
	Deposit(ctx context.Context, playerID uuid.UUID, currency string, amount decimal.Decimal) error
}

// PlayerHandler manages the players of a standalone server, standing in
// for the game host when the backend runs on its own
type PlayerHandler struct {
	BaseHandler
	players PlayerRegistry
	wallet  Wallet
}

// NewPlayerHandler creates a new PlayerHandler
func NewPlayerHandler(players PlayerRegistry, wallet Wallet) *PlayerHandler {
	return &PlayerHandler{players: players, wallet: wallet}
}

// RegisterRoutes mounts the player endpoints
func (h *PlayerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	players := rg.Group("/players")
	players.GET("", h.List)
	players.POST("", h.Join)
	players.DELETE("/:id", h.Leave)
	players.POST("/:id/deposit", h.Deposit)
}

// PlayerResponse is an online player
type PlayerResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// JoinRequest brings a player online
type JoinRequest struct {
	Name        string   `json:"name" binding:"required,max=16"`
	Slots       int      `json:"slots" binding:"omitempty,min=1,max=54"`
	Permissions []string `json:"permissions"`
}

// DepositRequest funds a player account
type DepositRequest struct {
	Currency string           `json:"currency" binding:"required"`
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
}

// BalanceResponse is a player balance in one currency
type BalanceResponse struct {
	PlayerID uuid.UUID       `json:"player_id"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// List godoc
// @Summary      List online players
// @Tags         players
// @Produce      json
// @Success      200 {object} dto.Response{data=[]PlayerResponse}
// @Router       /players [get]
func (h *PlayerHandler) List(c *gin.Context) {
	online := h.players.Online()
	out := make([]PlayerResponse, 0, len(online))
	for _, p := range online {
		out = append(out, PlayerResponse{ID: p.ID(), Name: p.Name()})
	}
	c.JSON(http.StatusOK, dto.NewListResponse(out))
}

// Join godoc
// @Summary      Bring a player online
// @Tags         players
// @Accept       json
// @Produce      json
// @Param        request body JoinRequest true "Player"
// @Success      201 {object} dto.Response{data=PlayerResponse}
// @Failure      400 {object} dto.Response
// @Router       /players [post]
func (h *PlayerHandler) Join(c *gin.Context) {
	var req JoinRequest
	if !h.BindJSON(c, &req) {
		return
	}
	var inv *host.SlotInventory
	if req.Slots > 0 {
		inv = host.NewSlotInventory(req.Slots)
	}
	p := host.NewPlayer(req.Name, inv, req.Permissions...)
	h.players.Join(p)
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(PlayerResponse{ID: p.ID(), Name: p.Name()}))
}

// Leave godoc
// @Summary      Take a player offline
// @Tags         players
// @Param        id path string true "Player ID"
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /players/{id} [delete]
func (h *PlayerHandler) Leave(c *gin.Context) {
	p, ok := h.player(c)
	if !ok {
		return
	}
	h.players.Leave(p.ID())
	c.Status(http.StatusNoContent)
}

// Deposit godoc
// @Summary      Fund a player account
// @Tags         players
// @Accept       json
// @Produce      json
// @Param        id      path string         true "Player ID"
// @Param        request body DepositRequest true "Deposit"
// @Success      200 {object} dto.Response{data=BalanceResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /players/{id}/deposit [post]
func (h *PlayerHandler) Deposit(c *gin.Context) {
	p, ok := h.player(c)
	if !ok {
		return
	}
	var req DepositRequest
	if !h.BindJSON(c, &req) {
		return
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	ctx := c.Request.Context()
	if err := h.wallet.Deposit(ctx, p.ID(), currency, *req.Amount); err != nil {
		h.HandleError(c, err)
		return
	}
	balance, err := h.wallet.Balance(ctx, p.ID(), currency)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, BalanceResponse{PlayerID: p.ID(), Currency: currency, Balance: balance})
}

func (h *PlayerHandler) player(c *gin.Context) (game.Player, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid player ID")
		return nil, false
	}
	p, err := h.players.Find(id)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return p, true
}
