package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-admin-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BookingService wraps *gorm.DB for the generic booking screens. The forced
// checkout itself lives in AutoCheckoutService.
type BookingService struct {
	DB *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{DB: db}
}

// helper: keep only safe fields of the accompanying-guest draft list
func normalizeGuestList(guestList []map[string]interface{}) []map[string]interface{} {
	if len(guestList) == 0 {
		return []map[string]interface{}{}
	}
	out := make([]map[string]interface{}, 0, len(guestList))
	for _, g := range guestList {
		name := ""
		for _, key := range []string{"name", "fullName", "full_name"} {
			if v, ok := g[key]; ok && v != nil {
				if s, ok2 := v.(string); ok2 {
					name = strings.TrimSpace(s)
				} else {
					name = strings.TrimSpace(fmt.Sprintf("%v", v))
				}
				break
			}
		}
		if name == "" {
			continue
		}
		out = append(out, map[string]interface{}{"fullName": name})
	}
	return out
}

func parseBookingTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04", raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid time value %q", raw)
}

// CreateBooking validates the room and stores a new BOOKED booking with the
// accompanying-guest draft serialized as JSON.
func (s *BookingService) CreateBooking(
	guestName string,
	roomID uint,
	checkIn string,
	guestList []map[string]interface{},
) (*models.Booking, error) {

	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return nil, errors.New("guest_name_required")
	}
	if roomID == 0 {
		return nil, errors.New("room_id_required")
	}

	var room models.Room
	if err := s.DB.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("room_not_found")
		}
		return nil, fmt.Errorf("db error checking room %d: %w", roomID, err)
	}

	checkInAt, err := parseBookingTime(checkIn)
	if err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	if checkInAt == nil {
		now := time.Now()
		checkInAt = &now
	}

	accompanyingJSON, _ := json.Marshal(normalizeGuestList(guestList)) // best-effort

	booking := &models.Booking{
		GuestName:          guestName,
		RoomID:             &roomID,
		Status:             models.BookingStatusBooked,
		CheckIn:            checkInAt,
		AccompanyingGuests: datatypes.JSON(accompanyingJSON),
	}
	if err := s.DB.Create(booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := s.DB.Model(&models.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{"status": "Occupied"}).Error; err != nil {
		return nil, fmt.Errorf("failed to update room %d status: %w", roomID, err)
	}

	if err := s.DB.Preload("Room").First(booking, booking.ID).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

// MarkCheckedIn stamps the actual arrival time on an active booking.
func (s *BookingService) MarkCheckedIn(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("booking_not_found")
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking.Status == models.BookingStatusCompleted {
		return nil, errors.New("booking_already_completed")
	}
	if booking.CheckedInAt != nil {
		return nil, errors.New("already_checked_in")
	}

	now := time.Now()
	if err := s.DB.Model(&booking).Updates(map[string]interface{}{
		"checked_in_at": now,
		"status":        models.BookingStatusBooked,
	}).Error; err != nil {
		return nil, err
	}
	booking.CheckedInAt = &now
	return &booking, nil
}

// GetBookingDetails loads one booking with its room.
func (s *BookingService) GetBookingDetails(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.Preload("Room").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("booking_not_found")
		}
		return nil, fmt.Errorf("failed to retrieve booking details: %w", err)
	}
	return &booking, nil
}

// GetAllWithRelations lists bookings newest first.
func (s *BookingService) GetAllWithRelations() ([]models.Booking, error) {
	var list []models.Booking
	if err := s.DB.
		Preload("Room").
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, nil
}

// DeleteByID soft-deletes one booking.
func (s *BookingService) DeleteByID(bookingID uint) error {
	res := s.DB.Delete(&models.Booking{}, bookingID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("booking_not_found")
	}
	return nil
}
