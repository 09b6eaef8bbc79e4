package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-trading/internal/api/models"
	"energy-trading/internal/data"
	"energy-trading/internal/sim"
)

// MarketDataHandler exposes market summary and market listing endpoints.
type MarketDataHandler struct {
	engine  *sim.Engine
	primary string
}

// NewMarketDataHandler creates a new market data handler.
func NewMarketDataHandler(engine *sim.Engine, primaryMarket string) *MarketDataHandler {
	return &MarketDataHandler{engine: engine, primary: primaryMarket}
}

// Summary handles GET /api/v1/summary: latest cached day-ahead and
// real-time prices for the current phase, plus their spread.
func (h *MarketDataHandler) Summary(c *gin.Context) {
	phase := h.engine.Phase()
	dayAhead, realTime, err := h.engine.Cache().LatestPrices(phase)
	if err != nil {
		writeError(c, err)
		return
	}

	daPoints, rtPoints := h.engine.Cache().PointCounts(phase)
	resp := models.SummaryResponse{SimulationMode: true}

	if dayAhead != nil {
		resp.DayAhead = &models.PriceSnapshot{
			Price:      dayAhead.Price,
			Currency:   "USD",
			Timestamp:  dayAhead.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			DataPoints: daPoints,
		}
	}
	if realTime != nil {
		resp.RealTime = &models.PriceSnapshot{
			Price:      realTime.Price,
			Currency:   "USD",
			Timestamp:  realTime.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			DataPoints: rtPoints,
		}
	}
	if dayAhead != nil && realTime != nil {
		resp.Spread = realTime.Price - dayAhead.Price
	}
	resp.ReferenceDate = h.engine.Clock().ReferenceDate().Format("2006-01-02")

	c.JSON(http.StatusOK, resp)
}

// Markets handles GET /api/v1/markets.
func (h *MarketDataHandler) Markets(c *gin.Context) {
	markets := data.SupportedMarkets()
	c.JSON(http.StatusOK, models.MarketListResponse{
		Markets: markets,
		Count:   len(markets),
		Primary: h.primary,
	})
}
