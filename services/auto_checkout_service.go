package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"hotel-admin-backend/models"
	"hotel-admin-backend/utils"

	"gorm.io/gorm"
)

// Terminal statuses of one auto-checkout run.
const (
	RunStatusDisabled   = "disabled"
	RunStatusNotTime    = "not_time"
	RunStatusAlreadyRun = "already_run"
	RunStatusNoBookings = "no_bookings"
	RunStatusCompleted  = "completed"
	RunStatusError      = "error"
)

// CheckedOutBooking is the per-booking detail of a successful checkout.
type CheckedOutBooking struct {
	BookingID    uint    `json:"bookingId"`
	GuestName    string  `json:"guestName"`
	ResourceName string  `json:"resourceName"`
	BilledHours  int     `json:"billedHours"`
	Amount       float64 `json:"amount"`
}

// FailedBooking pairs a booking with the error that stopped its checkout.
type FailedBooking struct {
	BookingID uint   `json:"bookingId"`
	GuestName string `json:"guestName"`
	Error     string `json:"error"`
}

// RunResult is the structured outcome returned to the caller of every run.
type RunResult struct {
	Status     string    `json:"status"`
	Manual     bool      `json:"manual"`
	RanAt      time.Time `json:"ranAt"`
	Total      int       `json:"total"`
	CheckedOut int       `json:"checkedOut"`
	Failed     int       `json:"failed"`

	CheckedOutBookings []CheckedOutBooking `json:"checkedOutBookings,omitempty"`
	FailedBookings     []FailedBooking     `json:"failedBookings,omitempty"`

	Error string `json:"error,omitempty"`
}

// NotifyFunc delivers the best-effort post-checkout notification. It runs
// after the transaction commits; a failure is logged and otherwise ignored.
type NotifyFunc func(bookingID uint, guestName, resourceName string, amount float64) error

// AutoCheckoutService implements the daily forced-checkout job: it gates the
// run against the configured schedule, selects due bookings, closes each one
// in its own transaction and records the run in the settings ledger.
type AutoCheckoutService struct {
	DB       *gorm.DB
	Settings *SettingsService
	Loc      *time.Location
	Notify   NotifyFunc
}

func NewAutoCheckoutService(db *gorm.DB, settings *SettingsService, loc *time.Location) *AutoCheckoutService {
	if loc == nil {
		loc = time.Local
	}
	return &AutoCheckoutService{
		DB:       db,
		Settings: settings,
		Loc:      loc,
		Notify:   utils.SendCheckoutNotice,
	}
}

// Run executes one invocation of the job. Manual invocations bypass the
// time-of-day and once-per-day gates and never touch the last-run ledger.
func (s *AutoCheckoutService) Run(manual bool) *RunResult {
	cfg := s.Settings.Load()
	now := time.Now().In(s.Loc)
	return s.run(now, manual, cfg)
}

func (s *AutoCheckoutService) run(now time.Time, manual bool, cfg AutoCheckoutSettings) *RunResult {
	result := &RunResult{Manual: manual, RanAt: now}

	if status := s.evaluateGate(now, manual, cfg); status != "" {
		result.Status = status
		return result
	}

	due, err := s.dueBookings(now)
	if err != nil {
		log.Printf("auto-checkout: eligibility query failed: %v", err)
		result.Status = RunStatusError
		result.Error = err.Error()
		return result
	}

	if len(due) == 0 {
		result.Status = RunStatusNoBookings
		s.recordRun(now, manual)
		return result
	}

	// Sequential on purpose: each booking gets its own transaction and a
	// failure never stops the remaining candidates.
	for _, booking := range due {
		item, err := s.checkoutOne(booking, now, cfg)
		if err != nil {
			s.recordFailure(booking, now, err)
			result.FailedBookings = append(result.FailedBookings, FailedBooking{
				BookingID: booking.ID,
				GuestName: booking.GuestName,
				Error:     err.Error(),
			})
			continue
		}
		result.CheckedOutBookings = append(result.CheckedOutBookings, item)
		s.notifyCheckout(item)
	}

	result.Total = len(due)
	result.CheckedOut = len(result.CheckedOutBookings)
	result.Failed = len(result.FailedBookings)
	result.Status = RunStatusCompleted

	s.recordRun(now, manual)
	return result
}

// evaluateGate decides whether the run may proceed. An empty return means
// proceed; anything else is the terminal status. The rule is a symmetric
// grace window around the scheduled time plus a same-day last-run check.
func (s *AutoCheckoutService) evaluateGate(now time.Time, manual bool, cfg AutoCheckoutSettings) string {
	if !cfg.Enabled {
		return RunStatusDisabled
	}
	if manual {
		return ""
	}

	scheduled := time.Date(now.Year(), now.Month(), now.Day(),
		cfg.ScheduledHour, cfg.ScheduledMinute, 0, 0, now.Location())
	diff := now.Sub(scheduled).Minutes()
	if diff < 0 {
		diff = -diff
	}
	if diff > float64(cfg.GraceMinutes) {
		return RunStatusNotTime
	}

	if cfg.LastRunAt != nil {
		last := cfg.LastRunAt.In(now.Location())
		if last.Year() == now.Year() && last.YearDay() == now.YearDay() {
			return RunStatusAlreadyRun
		}
	}

	return ""
}

// dueBookings lists active, unswept bookings ordered by scheduled check-in.
// Besides the processed flag it excludes bookings that already have a
// success log entry today, as an independent second idempotency check.
func (s *AutoCheckoutService) dueBookings(now time.Time) ([]models.Booking, error) {
	dayStart, dayEnd := s.dayBounds(now)

	loggedToday := s.DB.Model(&models.CheckoutLog{}).
		Select("booking_id").
		Where("outcome = ? AND booking_id IS NOT NULL", models.CheckoutOutcomeSuccess).
		Where("checkout_date >= ? AND checkout_date < ?", dayStart, dayEnd)

	var due []models.Booking
	err := s.DB.Preload("Room").
		Where("status IN ?", []string{models.BookingStatusBooked, models.BookingStatusPending}).
		Where("processed = ?", false).
		Where("id NOT IN (?)", loggedToday).
		Order("check_in ASC").
		Find(&due).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select due bookings: %w", err)
	}
	return due, nil
}

// checkoutOne closes a single booking: billing computation, booking update,
// payment and audit log, all in one transaction. The booking update is a
// conditional claim on the processed flag, so two overlapping runs cannot
// both bill the same booking.
func (s *AutoCheckoutService) checkoutOne(booking models.Booking, now time.Time, cfg AutoCheckoutSettings) (CheckedOutBooking, error) {
	var item CheckedOutBooking

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var fresh models.Booking
		if err := tx.First(&fresh, booking.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("booking_not_found")
			}
			return err
		}
		if fresh.Processed || fresh.Status == models.BookingStatusCompleted {
			return errors.New("booking_already_processed")
		}

		if fresh.RoomID == nil {
			return errors.New("booking_missing_room")
		}
		var room models.Room
		if err := tx.First(&room, *fresh.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("room_not_found")
			}
			return fmt.Errorf("failed to load room %d: %w", *fresh.RoomID, err)
		}

		start := fresh.CheckedInAt
		if start == nil {
			start = fresh.CheckIn
		}
		if start == nil {
			return errors.New("booking_missing_check_in")
		}

		elapsed := int(now.Sub(*start).Minutes())
		hours := billedHours(elapsed)
		rate := hourlyRate(room.ResourceType, cfg)
		amount := float64(hours) * rate

		claim := tx.Model(&models.Booking{}).
			Where("id = ? AND processed = ?", fresh.ID, false).
			Where("status IN ?", []string{models.BookingStatusBooked, models.BookingStatusPending}).
			Updates(map[string]interface{}{
				"status":           models.BookingStatusCompleted,
				"check_out":        now,
				"duration_minutes": elapsed,
				"total_amount":     amount,
				"processed":        true,
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return errors.New("booking_already_processed")
		}

		if err := tx.Model(&models.Room{}).
			Where("id = ?", room.ID).
			Updates(map[string]interface{}{"status": "Available"}).Error; err != nil {
			return fmt.Errorf("failed to release room %d: %w", room.ID, err)
		}

		note := fmt.Sprintf("Auto checkout: %d min billed as %d hour(s) x %.2f (%s)",
			elapsed, hours, rate, room.ResourceType)

		payment := models.Payment{
			BookingID: fresh.ID,
			RoomID:    fresh.RoomID,
			Amount:    amount,
			Method:    models.PaymentMethodAutoCheckout,
			Note:      note,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		dayStart, _ := s.dayBounds(now)
		bookingID := fresh.ID
		entry := models.CheckoutLog{
			BookingID:    &bookingID,
			RoomID:       fresh.RoomID,
			ResourceName: room.DisplayName(),
			GuestName:    fresh.GuestName,
			CheckoutDate: dayStart,
			CheckoutTime: now.Format("15:04:05"),
			Outcome:      models.CheckoutOutcomeSuccess,
			Note:         note,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create checkout log: %w", err)
		}

		item = CheckedOutBooking{
			BookingID:    fresh.ID,
			GuestName:    fresh.GuestName,
			ResourceName: room.DisplayName(),
			BilledHours:  hours,
			Amount:       amount,
		}
		return nil
	})

	return item, err
}

// recordFailure writes the failure audit entry after the transaction has
// rolled back. The booking itself stays untouched.
func (s *AutoCheckoutService) recordFailure(booking models.Booking, now time.Time, cause error) {
	dayStart, _ := s.dayBounds(now)

	var bookingID *uint
	if booking.ID != 0 {
		id := booking.ID
		bookingID = &id
	}

	entry := models.CheckoutLog{
		BookingID:    bookingID,
		RoomID:       booking.RoomID,
		ResourceName: booking.Room.DisplayName(),
		GuestName:    booking.GuestName,
		CheckoutDate: dayStart,
		CheckoutTime: now.Format("15:04:05"),
		Outcome:      models.CheckoutOutcomeFailed,
		Note:         cause.Error(),
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("auto-checkout: failed to write failure log for booking %d: %v", booking.ID, err)
	}
}

// notifyCheckout runs after the commit; failure never reaches the caller.
func (s *AutoCheckoutService) notifyCheckout(item CheckedOutBooking) {
	if s.Notify == nil {
		return
	}
	if err := s.Notify(item.BookingID, item.GuestName, item.ResourceName, item.Amount); err != nil {
		log.Printf("warning: checkout notification for booking %d failed: %v", item.BookingID, err)
	}
}

// recordRun updates the last-run ledger. Manual runs never update it, so the
// once-per-day guard on automatic runs stays meaningful.
func (s *AutoCheckoutService) recordRun(now time.Time, manual bool) {
	if manual {
		return
	}
	if err := s.Settings.SetLastRun(now); err != nil {
		log.Printf("auto-checkout: failed to record last run: %v", err)
	}
}

// CheckoutBookingByID force-closes a single booking through the same
// transaction the job uses. Backs the operator checkout endpoint.
func (s *AutoCheckoutService) CheckoutBookingByID(bookingID uint) (CheckedOutBooking, error) {
	cfg := s.Settings.Load()
	now := time.Now().In(s.Loc)

	var booking models.Booking
	if err := s.DB.Preload("Room").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CheckedOutBooking{}, errors.New("booking_not_found")
		}
		return CheckedOutBooking{}, fmt.Errorf("failed to load booking: %w", err)
	}

	item, err := s.checkoutOne(booking, now, cfg)
	if err != nil {
		s.recordFailure(booking, now, err)
		return CheckedOutBooking{}, err
	}
	s.notifyCheckout(item)
	return item, nil
}

// PeriodStats aggregates successful checkouts and their payment amounts.
type PeriodStats struct {
	Checkouts int64   `json:"checkouts"`
	Amount    float64 `json:"amount"`
}

type CheckoutStats struct {
	Today    PeriodStats `json:"today"`
	Last7Day PeriodStats `json:"last7Days"`
}

// Stats is the read-only reporting view over the audit log and payments.
func (s *AutoCheckoutService) Stats() (*CheckoutStats, error) {
	return s.statsAt(time.Now().In(s.Loc))
}

func (s *AutoCheckoutService) statsAt(now time.Time) (*CheckoutStats, error) {
	dayStart, _ := s.dayBounds(now)
	weekStart := dayStart.AddDate(0, 0, -6)

	stats := &CheckoutStats{}

	var err error
	if stats.Today, err = s.periodStats(dayStart); err != nil {
		return nil, err
	}
	if stats.Last7Day, err = s.periodStats(weekStart); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AutoCheckoutService) periodStats(since time.Time) (PeriodStats, error) {
	var out PeriodStats

	err := s.DB.Model(&models.CheckoutLog{}).
		Where("outcome = ? AND checkout_date >= ?", models.CheckoutOutcomeSuccess, since).
		Count(&out.Checkouts).Error
	if err != nil {
		return out, fmt.Errorf("failed to count checkouts: %w", err)
	}

	err = s.DB.Model(&models.Payment{}).
		Where("method = ? AND created_at >= ?", models.PaymentMethodAutoCheckout, since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&out.Amount).Error
	if err != nil {
		return out, fmt.Errorf("failed to sum payments: %w", err)
	}

	return out, nil
}

func (s *AutoCheckoutService) dayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// billedHours rounds elapsed minutes up to whole hours with a floor of one:
// a partial hour bills as a full hour, and zero or negative elapsed time
// (clock skew, same-minute booking) bills exactly one hour.
func billedHours(elapsedMinutes int) int {
	if elapsedMinutes <= 0 {
		return 1
	}
	hours := (elapsedMinutes + 59) / 60
	if hours < 1 {
		return 1
	}
	return hours
}

func hourlyRate(resourceType string, cfg AutoCheckoutSettings) float64 {
	if resourceType == models.ResourceTypeHall {
		return cfg.HallHourlyRate
	}
	return cfg.RoomHourlyRate
}
