package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-trading/internal/api/models"
	"energy-trading/internal/model"
	"energy-trading/internal/sim"
)

// TradingHandler exposes bid placement and bid/trade listings.
type TradingHandler struct {
	engine *sim.Engine
}

// NewTradingHandler creates a new trading handler.
func NewTradingHandler(engine *sim.Engine) *TradingHandler {
	return &TradingHandler{engine: engine}
}

// PlaceBid handles POST /api/v1/bids.
func (h *TradingHandler) PlaceBid(c *gin.Context) {
	var req models.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	bid, err := h.engine.PlaceBid(c.Request.Context(), sim.PlaceBidParams{
		Hour:     req.Hour,
		Price:    req.Price,
		Quantity: req.Quantity,
		Side:     model.Side(req.Side),
		Owner:    req.Owner,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.PlaceBidResponse{
		Status: "success",
		Bid:    bid,
	})
}

// ListBids handles GET /api/v1/bids?owner=.
func (h *TradingHandler) ListBids(c *gin.Context) {
	owner := c.DefaultQuery("owner", "demo_user")

	bids, err := h.engine.ListBids(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.BidListResponse{
		Bids:  bids,
		Count: len(bids),
		Owner: owner,
	})
}

// ListTrades handles GET /api/v1/trades?owner=. Each trade carries P&L
// computed live against the current real-time snapshot.
func (h *TradingHandler) ListTrades(c *gin.Context) {
	owner := c.DefaultQuery("owner", "demo_user")

	trades, err := h.engine.ListTrades(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err)
		return
	}

	var total float64
	for _, t := range trades {
		if t.PnL != nil {
			total += *t.PnL
		}
	}
	c.JSON(http.StatusOK, models.TradeListResponse{
		Trades:   trades,
		Count:    len(trades),
		TotalPnL: total,
		Owner:    owner,
	})
}
