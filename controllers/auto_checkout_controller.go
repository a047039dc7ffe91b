package controllers

import (
	"net/http"

	"hotel-admin-backend/services"
	"hotel-admin-backend/utils"

	"github.com/gin-gonic/gin"
)

type AutoCheckoutController struct {
	Svc *services.AutoCheckoutService
}

func NewAutoCheckoutController(svc *services.AutoCheckoutService) *AutoCheckoutController {
	return &AutoCheckoutController{Svc: svc}
}

type runPayload struct {
	Manual bool `json:"manual"`
}

// RunJob triggers one invocation of the auto-checkout job. The scheduler
// calls it with manual=false; operators set manual=true to bypass the
// time gates.
func (ctrl *AutoCheckoutController) RunJob(c *gin.Context) {
	var payload runPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	result := ctrl.Svc.Run(payload.Manual)
	if result.Status == services.RunStatusError {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStats reports today / trailing-7-day checkout aggregates.
func (ctrl *AutoCheckoutController) GetStats(c *gin.Context) {
	stats, err := ctrl.Svc.Stats()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stats)
}
