package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fieldserve/database/repository"
	"fieldserve/models"
	"fieldserve/services/allocation"
	"fieldserve/utils"
)

// Wired in main once the database and cache connections exist.
var (
	AllocationSvc allocation.AllocationService
	EngineerRepo  repository.EngineerRepository
	ConfigRepo    repository.ConfigRepository
)

// respondAllocationError maps service errors to HTTP statuses.
func respondAllocationError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrSlotConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "slot no longer available", "retryable": true})
		return
	}
	var allocErr *allocation.AllocationError
	if errors.As(err, &allocErr) {
		status := http.StatusInternalServerError
		switch allocErr.Code {
		case "dataMissing":
			status = http.StatusNotFound
		case "invalidRequest":
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": allocErr.Message, "code": allocErr.Code})
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "allocation request failed", err.Error())
}

// GetViableSlotsHandler returns candidate slots for a booking request.
func GetViableSlotsHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	maxSlots, _ := strconv.Atoi(c.DefaultQuery("maxSlots", "0"))

	slots, err := AllocationSvc.GetViableSlots(c.Request.Context(), req, maxSlots)
	if err != nil {
		respondAllocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots, "count": len(slots)})
}

// PresentSlotsHandler returns the ranked, badged customer view.
func PresentSlotsHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	maxSlots, _ := strconv.Atoi(c.DefaultQuery("maxSlots", "0"))

	presentation, err := AllocationSvc.PresentSlotsToCustomer(c.Request.Context(), req, allocation.PresentOptions{MaxSlots: maxSlots})
	if err != nil {
		respondAllocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentation)
}

// ScoreSlotHandler scores one candidate slot. Weights are optional; the
// stored platform weights apply when omitted.
func ScoreSlotHandler(c *gin.Context) {
	var input struct {
		Request models.BookingRequest  `json:"request"`
		Slot    models.ScheduleSlot    `json:"slot"`
		Weights *models.ScoringWeights `json:"weights,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ctx := c.Request.Context()
	engineer, err := EngineerRepo.GetByID(ctx, input.Slot.EngineerID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "engineer not found", err.Error())
		return
	}

	weights := models.ScoringWeights{}
	if input.Weights != nil {
		if err := input.Weights.Validate(); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid weights", err.Error())
			return
		}
		weights = *input.Weights
	} else {
		weights, err = ConfigRepo.ScoringWeights(ctx)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "failed to load scoring weights", err.Error())
			return
		}
	}

	score, err := AllocationSvc.ScoreSlotAllocation(ctx, input.Slot, input.Request, *engineer, weights)
	if err != nil {
		respondAllocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

// CalculatePriceHandler prices one candidate slot.
func CalculatePriceHandler(c *gin.Context) {
	var input struct {
		Request models.BookingRequest `json:"request"`
		Slot    models.ScheduleSlot   `json:"slot"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	quote, err := AllocationSvc.CalculatePrice(c.Request.Context(), input.Request, input.Slot)
	if err != nil {
		respondAllocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// PredictRiskHandler estimates cancellation risk for one candidate slot.
func PredictRiskHandler(c *gin.Context) {
	var input struct {
		Request models.BookingRequest `json:"request"`
		Slot    models.ScheduleSlot   `json:"slot"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	risk, err := AllocationSvc.PredictCancellationRisk(c.Request.Context(), input.Request, input.Slot)
	if err != nil {
		respondAllocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, risk)
}

// WorkloadHandler returns an engineer's workload balance for a date.
func WorkloadHandler(c *gin.Context) {
	engineerID := c.Param("engineerId")
	dateStr := c.DefaultQuery("date", time.Now().Format(models.DateLayout))
	date, err := time.Parse(models.DateLayout, dateStr)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	balance, err := AllocationSvc.CalculateWorkloadBalance(c.Request.Context(), engineerID, date)
	if err != nil {
		respondAllocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// RouteHandler returns an engineer's optimized route for a date.
func RouteHandler(c *gin.Context) {
	engineerID := c.Param("engineerId")
	dateStr := c.DefaultQuery("date", time.Now().Format(models.DateLayout))
	if _, err := time.Parse(models.DateLayout, dateStr); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	route, err := AllocationSvc.BuildOptimizedRoute(c.Request.Context(), engineerID, dateStr)
	if err != nil {
		respondAllocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// CommitSlotHandler confirms a booking for a chosen slot. A lost race for
// the slot returns 409 and the customer should re-request candidates.
func CommitSlotHandler(c *gin.Context) {
	var input struct {
		Request models.BookingRequest `json:"request"`
		Slot    models.ScheduleSlot   `json:"slot"`
		Price   float64               `json:"price"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	booking, err := AllocationSvc.CommitSlot(c.Request.Context(), input.Request, input.Slot, input.Price)
	if err != nil {
		respondAllocationError(c, err)
		return
	}

	getLogger(c).Info("booking committed",
		zap.String("bookingId", booking.ID),
		zap.String("engineerId", booking.EngineerID),
		zap.String("date", booking.Date),
		zap.String("slot", booking.Slot))
	c.JSON(http.StatusCreated, booking)
}
