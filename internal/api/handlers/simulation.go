package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-trading/internal/api/models"
	"energy-trading/internal/sim"
)

// SimulationHandler exposes phase, clock, and initialization operations.
type SimulationHandler struct {
	engine *sim.Engine
}

// NewSimulationHandler creates a new simulation handler.
func NewSimulationHandler(engine *sim.Engine) *SimulationHandler {
	return &SimulationHandler{engine: engine}
}

// Initialize handles POST /api/v1/initialize. Idempotent: reports "cached"
// when both snapshots are already present.
func (h *SimulationHandler) Initialize(c *gin.Context) {
	result, err := h.engine.Initialize(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Refresh handles POST /api/v1/refresh: drops both snapshots and refetches.
func (h *SimulationHandler) Refresh(c *gin.Context) {
	h.engine.Cache().Invalidate()
	result, err := h.engine.Initialize(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Status handles GET /api/v1/simulation/status.
func (h *SimulationHandler) Status(c *gin.Context) {
	st, err := h.engine.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Advance handles POST /api/v1/simulation/advance: BIDDING -> TRADING with
// batch clearing of all pending bids.
func (h *SimulationHandler) Advance(c *gin.Context) {
	summary, err := h.engine.AdvanceToTradingDay(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AdvanceResponse{
		Status:   "success",
		Phase:    h.engine.Phase(),
		Clearing: summary,
	})
}

// Back handles POST /api/v1/simulation/back: TRADING -> BIDDING. Existing
// bids and trades are untouched.
func (h *SimulationHandler) Back(c *gin.Context) {
	if err := h.engine.BackToBiddingDay(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PhaseResponse{
		Status: "success",
		Phase:  h.engine.Phase(),
	})
}

// Reset handles POST /api/v1/simulation/reset: clears all bids and trades.
func (h *SimulationHandler) Reset(c *gin.Context) {
	if err := h.engine.ResetOrderBook(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PhaseResponse{
		Status: "success",
		Phase:  h.engine.Phase(),
	})
}

// SetTime handles POST /api/v1/simulation/time.
func (h *SimulationHandler) SetTime(c *gin.Context) {
	var req models.SetTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	h.engine.SetSimulatedTime(req.Hour, req.Minute)
	st, err := h.engine.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// TimeSeries handles GET /api/v1/timeseries: day-ahead in full, real-time
// revealed up to the simulated time.
func (h *SimulationHandler) TimeSeries(c *gin.Context) {
	ts, simTime, err := h.engine.TimeSeries(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TimeSeriesResponse{
		TimeSeries:            ts,
		Phase:                 h.engine.Phase(),
		CurrentSimulationTime: simTime,
		SimulationMode:        true,
	})
}
