package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-trading/internal/api/models"
	"energy-trading/internal/data"
	"energy-trading/internal/sim"
)

// writeError maps the simulation error taxonomy onto the JSON error
// envelope. Every engine failure is recoverable, so nothing here is a 5xx
// except provider failures and genuinely unexpected errors.
func writeError(c *gin.Context, err error) {
	var (
		validation  *sim.ValidationError
		phase       *sim.PhaseViolationError
		unavailable *sim.DataUnavailableError
		provider    *sim.ProviderFailureError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: validation.Message,
			},
		})
	case errors.As(err, &phase):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "PHASE_VIOLATION",
				Message: phase.Message,
			},
		})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "DATA_UNAVAILABLE",
				Message: unavailable.Message,
			},
		})
	case errors.As(err, &provider):
		detail := models.ErrorDetail{
			Code:    "PROVIDER_FAILURE",
			Message: provider.Error(),
			Details: map[string]interface{}{"leg": provider.Leg},
		}
		// Surface upstream API error codes when the provider is Grid Status.
		var gsErr *data.GridStatusError
		if errors.As(provider.Err, &gsErr) {
			detail.Details["provider_code"] = gsErr.Code
			detail.Details["provider_status"] = gsErr.StatusCode
		}
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: detail})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
			},
		})
	}
}
