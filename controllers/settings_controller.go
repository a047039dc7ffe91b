package controllers

import (
	"net/http"

	"hotel-admin-backend/models"
	"hotel-admin-backend/services"
	"hotel-admin-backend/utils"

	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	Svc *services.SettingsService
}

func NewSettingsController(svc *services.SettingsService) *SettingsController {
	return &SettingsController{Svc: svc}
}

// editable keys; the last-run ledger key is owned by the job
var editableSettingKeys = map[string]bool{
	models.SettingAutoCheckoutEnabled: true,
	models.SettingAutoCheckoutTime:    true,
	models.SettingAutoCheckoutGrace:   true,
	models.SettingHourlyRateRoom:      true,
	models.SettingHourlyRateHall:      true,
}

func (ctrl *SettingsController) GetSettings(c *gin.Context) {
	values, err := ctrl.Svc.All()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, values)
}

func (ctrl *SettingsController) UpdateSettings(c *gin.Context) {
	var payload map[string]string
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	for key, value := range payload {
		if !editableSettingKeys[key] {
			utils.JSONError(c, http.StatusBadRequest, "unknown or read-only setting: "+key)
			return
		}
		if err := ctrl.Svc.Put(key, value); err != nil {
			utils.JSONError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	values, err := ctrl.Svc.All()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, values)
}
