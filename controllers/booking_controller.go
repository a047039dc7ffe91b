package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"hotel-admin-backend/services"
	"hotel-admin-backend/utils"

	"github.com/gin-gonic/gin"
)

type CreateBookingRequest struct {
	GuestName string                   `json:"guest_name" binding:"required"`
	RoomID    uint                     `json:"room_id" binding:"required"`
	CheckIn   string                   `json:"check_in"`
	GuestList []map[string]interface{} `json:"guest_list,omitempty"`
}

type BookingController struct {
	BookingSvc  *services.BookingService
	CheckoutSvc *services.AutoCheckoutService
}

func NewBookingController(bookingSvc *services.BookingService, checkoutSvc *services.AutoCheckoutService) *BookingController {
	return &BookingController{BookingSvc: bookingSvc, CheckoutSvc: checkoutSvc}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking id")
		return 0, false
	}
	return uint(id), true
}

func (ctrl *BookingController) GetBookings(c *gin.Context) {
	list, err := ctrl.BookingSvc.GetAllWithRelations()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := ctrl.BookingSvc.CreateBooking(req.GuestName, req.RoomID, req.CheckIn, req.GuestList)
	if err != nil {
		switch {
		case strings.HasPrefix(err.Error(), "validation"),
			err.Error() == "room_not_found",
			err.Error() == "guest_name_required",
			err.Error() == "room_id_required":
			utils.JSONError(c, http.StatusBadRequest, err.Error())
		default:
			utils.JSONError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

func (ctrl *BookingController) GetBookingDetails(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	booking, err := ctrl.BookingSvc.GetBookingDetails(id)
	if err != nil {
		if err.Error() == "booking_not_found" {
			utils.JSONError(c, http.StatusNotFound, err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// CheckIn stamps the actual arrival time.
func (ctrl *BookingController) CheckIn(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	booking, err := ctrl.BookingSvc.MarkCheckedIn(id)
	if err != nil {
		switch err.Error() {
		case "booking_not_found":
			utils.JSONError(c, http.StatusNotFound, err.Error())
		case "already_checked_in", "booking_already_completed":
			utils.JSONError(c, http.StatusConflict, err.Error())
		default:
			utils.JSONError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// CheckoutBooking is the operator-forced checkout of a single booking. It
// runs the same billed transaction the auto-checkout job uses.
func (ctrl *BookingController) CheckoutBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	item, err := ctrl.CheckoutSvc.CheckoutBookingByID(id)
	if err != nil {
		switch err.Error() {
		case "booking_not_found":
			utils.JSONError(c, http.StatusNotFound, err.Error())
		case "booking_already_processed":
			utils.JSONError(c, http.StatusConflict, err.Error())
		default:
			utils.JSONError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}

func (ctrl *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := ctrl.BookingSvc.DeleteByID(id); err != nil {
		if err.Error() == "booking_not_found" {
			utils.JSONError(c, http.StatusNotFound, err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
