package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldserve/models"
	"fieldserve/services/payment"
	"fieldserve/utils"
)

// Wired in main.
var DepositSvc payment.DepositHandler

// CollectDepositHandler takes an up-front deposit against a committed
// booking and flags it prepaid. The amount is sized server-side from the
// booking's price and risk tier.
func CollectDepositHandler(c *gin.Context) {
	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	receipt, err := DepositSvc.CollectDeposit(c.Request.Context(), req)
	if errors.Is(err, payment.ErrDepositNotRequired) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "depositRequired": false})
		return
	}
	if err != nil {
		respondAllocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}
