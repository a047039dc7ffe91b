package services

import (
	"errors"
	"testing"
	"time"

	"hotel-admin-backend/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Admin{},
		&models.SystemSetting{},
		&models.Room{},
		&models.Booking{},
		&models.Payment{},
		&models.CheckoutLog{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func newTestService(t *testing.T) *AutoCheckoutService {
	t.Helper()
	db := newTestDB(t)
	svc := NewAutoCheckoutService(db, NewSettingsService(db), time.UTC)
	svc.Notify = func(uint, string, string, float64) error { return nil }
	return svc
}

func putSetting(t *testing.T, svc *AutoCheckoutService, key, value string) {
	t.Helper()
	if err := svc.Settings.Put(key, value); err != nil {
		t.Fatalf("failed to put setting %s: %v", key, err)
	}
}

func enableJob(t *testing.T, svc *AutoCheckoutService) {
	t.Helper()
	putSetting(t, svc, models.SettingAutoCheckoutEnabled, "1")
	putSetting(t, svc, models.SettingAutoCheckoutTime, "10:00")
	putSetting(t, svc, models.SettingAutoCheckoutGrace, "30")
}

func createRoom(t *testing.T, svc *AutoCheckoutService, number, resourceType string) models.Room {
	t.Helper()
	room := models.Room{RoomNumber: number, ResourceType: resourceType, Status: "Occupied"}
	if err := svc.DB.Create(&room).Error; err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	return room
}

func createBooking(t *testing.T, svc *AutoCheckoutService, roomID uint, guest string, checkIn time.Time) models.Booking {
	t.Helper()
	booking := models.Booking{
		GuestName: guest,
		RoomID:    &roomID,
		Status:    models.BookingStatusBooked,
		CheckIn:   &checkIn,
	}
	if err := svc.DB.Create(&booking).Error; err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}
	return booking
}

func TestBilledHours(t *testing.T) {
	cases := []struct {
		minutes int
		want    int
	}{
		{-10, 1},
		{0, 1},
		{1, 1},
		{59, 1},
		{60, 1},
		{61, 2},
		{120, 2},
		{121, 3},
	}
	for _, tc := range cases {
		if got := billedHours(tc.minutes); got != tc.want {
			t.Errorf("billedHours(%d) = %d, want %d", tc.minutes, got, tc.want)
		}
	}
}

func TestEvaluateGate(t *testing.T) {
	svc := &AutoCheckoutService{Loc: time.UTC}

	base := DefaultAutoCheckoutSettings()
	base.Enabled = true
	base.ScheduledHour = 10
	base.ScheduledMinute = 0
	base.GraceMinutes = 30

	at := func(hour, minute int) time.Time {
		return time.Date(2026, 8, 28, hour, minute, 0, 0, time.UTC)
	}
	sameDay := at(9, 40)
	yesterday := sameDay.AddDate(0, 0, -1)

	cases := []struct {
		name   string
		now    time.Time
		manual bool
		mutate func(*AutoCheckoutSettings)
		want   string
	}{
		{"disabled", at(10, 0), false, func(c *AutoCheckoutSettings) { c.Enabled = false }, RunStatusDisabled},
		{"disabled beats manual", at(10, 0), true, func(c *AutoCheckoutSettings) { c.Enabled = false }, RunStatusDisabled},
		{"manual bypasses time gate", at(18, 0), true, nil, ""},
		{"manual bypasses already-run gate", at(10, 0), true, func(c *AutoCheckoutSettings) { c.LastRunAt = &sameDay }, ""},
		{"too early", at(9, 0), false, nil, RunStatusNotTime},
		{"too late", at(10, 31), false, nil, RunStatusNotTime},
		{"early edge of window", at(9, 30), false, nil, ""},
		{"late edge of window", at(10, 30), false, nil, ""},
		{"on time", at(10, 15), false, nil, ""},
		{"already ran today", at(10, 15), false, func(c *AutoCheckoutSettings) { c.LastRunAt = &sameDay }, RunStatusAlreadyRun},
		{"ran yesterday", at(10, 15), false, func(c *AutoCheckoutSettings) { c.LastRunAt = &yesterday }, ""},
	}

	for _, tc := range cases {
		cfg := base
		if tc.mutate != nil {
			tc.mutate(&cfg)
		}
		if got := svc.evaluateGate(tc.now, tc.manual, cfg); got != tc.want {
			t.Errorf("%s: evaluateGate = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRunChecksOutDueBookings(t *testing.T) {
	svc := newTestService(t)
	enableJob(t, svc)

	now := time.Date(2026, 8, 28, 10, 15, 0, 0, time.UTC)
	room := createRoom(t, svc, "101", models.ResourceTypeRoom)
	first := createBooking(t, svc, room.ID, "Alice", now.Add(-2*time.Hour))
	second := createBooking(t, svc, room.ID, "Bob", now.Add(-61*time.Minute))

	result := svc.run(now, false, svc.Settings.Load())

	if result.Status != RunStatusCompleted {
		t.Fatalf("status = %q, want %q (error: %s)", result.Status, RunStatusCompleted, result.Error)
	}
	if result.Total != 2 || result.CheckedOut != 2 || result.Failed != 0 {
		t.Fatalf("counts = %d/%d/%d, want 2/2/0", result.Total, result.CheckedOut, result.Failed)
	}
	// earliest check-in first
	if result.CheckedOutBookings[0].BookingID != first.ID || result.CheckedOutBookings[1].BookingID != second.ID {
		t.Errorf("unexpected processing order: %+v", result.CheckedOutBookings)
	}

	var updated models.Booking
	if err := svc.DB.First(&updated, first.ID).Error; err != nil {
		t.Fatalf("failed to reload booking: %v", err)
	}
	if updated.Status != models.BookingStatusCompleted || !updated.Processed {
		t.Errorf("booking not completed: status=%q processed=%v", updated.Status, updated.Processed)
	}
	if updated.CheckOut == nil {
		t.Error("check_out not set")
	}
	if updated.DurationMinutes != 120 {
		t.Errorf("duration = %d, want 120", updated.DurationMinutes)
	}
	if updated.TotalAmount != 2*300 {
		t.Errorf("amount = %.2f, want 600", updated.TotalAmount)
	}

	// 61 minutes rounds up to 2 hours
	updated = models.Booking{}
	if err := svc.DB.First(&updated, second.ID).Error; err != nil {
		t.Fatalf("failed to reload booking: %v", err)
	}
	if updated.DurationMinutes != 61 || updated.TotalAmount != 2*300 {
		t.Errorf("second booking duration/amount = %d/%.2f, want 61/600", updated.DurationMinutes, updated.TotalAmount)
	}

	var paymentCount int64
	svc.DB.Model(&models.Payment{}).Where("method = ?", models.PaymentMethodAutoCheckout).Count(&paymentCount)
	if paymentCount != 2 {
		t.Errorf("payment count = %d, want 2", paymentCount)
	}

	var freedRoom models.Room
	svc.DB.First(&freedRoom, room.ID)
	if freedRoom.Status != "Available" {
		t.Errorf("room status = %q, want Available", freedRoom.Status)
	}

	var logCount int64
	svc.DB.Model(&models.CheckoutLog{}).Where("outcome = ?", models.CheckoutOutcomeSuccess).Count(&logCount)
	if logCount != 2 {
		t.Errorf("success log count = %d, want 2", logCount)
	}

	// automatic run records the ledger
	cfg := svc.Settings.Load()
	if cfg.LastRunAt == nil || !cfg.LastRunAt.Equal(now) {
		t.Errorf("last run = %v, want %v", cfg.LastRunAt, now)
	}
}

func TestRunOutsideWindowTouchesNothing(t *testing.T) {
	svc := newTestService(t)
	enableJob(t, svc)

	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	room := createRoom(t, svc, "101", models.ResourceTypeRoom)
	booking := createBooking(t, svc, room.ID, "Alice", now.Add(-2*time.Hour))

	result := svc.run(now, false, svc.Settings.Load())

	if result.Status != RunStatusNotTime {
		t.Fatalf("status = %q, want %q", result.Status, RunStatusNotTime)
	}

	var reloaded models.Booking
	svc.DB.First(&reloaded, booking.ID)
	if reloaded.Status != models.BookingStatusBooked || reloaded.Processed {
		t.Errorf("booking was touched: status=%q processed=%v", reloaded.Status, reloaded.Processed)
	}
	if cfg := svc.Settings.Load(); cfg.LastRunAt != nil {
		t.Errorf("ledger was updated on not_time run: %v", cfg.LastRunAt)
	}
}

func TestRunDisabledTouchesNothing(t *testing.T) {
	svc := newTestService(t)
	putSetting(t, svc, models.SettingAutoCheckoutEnabled, "0")

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	room := createRoom(t, svc, "101", models.ResourceTypeRoom)
	booking := createBooking(t, svc, room.ID, "Alice", now.Add(-2*time.Hour))

	result := svc.run(now, false, svc.Settings.Load())
	if result.Status != RunStatusDisabled {
		t.Fatalf("status = %q, want %q", result.Status, RunStatusDisabled)
	}

	var reloaded models.Booking
	svc.DB.First(&reloaded, booking.ID)
	if reloaded.Processed {
		t.Error("booking processed while job disabled")
	}
	var logCount int64
	svc.DB.Model(&models.CheckoutLog{}).Count(&logCount)
	if logCount != 0 {
		t.Errorf("log count = %d, want 0", logCount)
	}
	if cfg := svc.Settings.Load(); cfg.LastRunAt != nil {
		t.Errorf("ledger was updated on disabled run: %v", cfg.LastRunAt)
	}
}

func TestManualRunBypassesGatesAndSkipsLedger(t *testing.T) {
	svc := newTestService(t)
	enableJob(t, svc)

	// way outside the 10:00±30 window
	now := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	room := createRoom(t, svc, "H1", models.ResourceTypeHall)
	createBooking(t, svc, room.ID, "Alice", now.Add(-30*time.Minute))

	result := svc.run(now, true, svc.Settings.Load())

	if result.Status != RunStatusCompleted {
		t.Fatalf("status = %q, want %q", result.Status, RunStatusCompleted)
	}
	if !result.Manual {
		t.Error("result not flagged manual")
	}
	// hall rate, 30 min bills as one hour
	if result.CheckedOutBookings[0].Amount != 500 {
		t.Errorf("amount = %.2f, want 500", result.CheckedOutBookings[0].Amount)
	}
	if cfg := svc.Settings.Load(); cfg.LastRunAt != nil {
		t.Errorf("manual run updated the ledger: %v", cfg.LastRunAt)
	}
}

func TestSecondRunIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	enableJob(t, svc)

	now := time.Date(2026, 8, 28, 10, 15, 0, 0, time.UTC)
	room := createRoom(t, svc, "101", models.ResourceTypeRoom)
	createBooking(t, svc, room.ID, "Alice", now.Add(-90*time.Minute))

	first := svc.run(now, false, svc.Settings.Load())
	if first.Status != RunStatusCompleted {
		t.Fatalf("first run status = %q", first.Status)
	}

	// second automatic firing inside the grace window
	second := svc.run(now.Add(5*time.Minute), false, svc.Settings.Load())
	if second.Status != RunStatusAlreadyRun {
		t.Fatalf("second run status = %q, want %q", second.Status, RunStatusAlreadyRun)
	}

	// a manual rerun finds nothing due either
	third := svc.run(now.Add(10*time.Minute), true, svc.Settings.Load())
	if third.Status != RunStatusNoBookings {
		t.Fatalf("manual rerun status = %q, want %q", third.Status, RunStatusNoBookings)
	}

	var paymentCount int64
	svc.DB.Model(&models.Payment{}).Count(&paymentCount)
	if paymentCount != 1 {
		t.Errorf("payment count = %d, want exactly 1", paymentCount)
	}
}

func TestEmptyAutomaticRunStillRecordsLedger(t *testing.T) {
	svc := newTestService(t)
	enableJob(t, svc)

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	result := svc.run(now, false, svc.Settings.Load())
	if result.Status != RunStatusNoBookings {
		t.Fatalf("status = %q, want %q", result.Status, RunStatusNoBookings)
	}
	cfg := svc.Settings.Load()
	if cfg.LastRunAt == nil || !cfg.LastRunAt.Equal(now) {
		t.Errorf("last run = %v, want %v", cfg.LastRunAt, now)
	}
}

func TestFailingBookingIsIsolated(t *testing.T) {
	svc := newTestService(t)
	enableJob(t, svc)

	now := time.Date(2026, 8, 28, 10, 15, 0, 0, time.UTC)
	room := createRoom(t, svc, "101", models.ResourceTypeRoom)

	missingRoom := uint(9999)
	broken := models.Booking{
		GuestName: "Broken",
		RoomID:    &missingRoom,
		Status:    models.BookingStatusBooked,
	}
	checkIn := now.Add(-30 * time.Minute)
	broken.CheckIn = &checkIn
	if err := svc.DB.Create(&broken).Error; err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}
	healthy := createBooking(t, svc, room.ID, "Alice", now.Add(-45*time.Minute))

	result := svc.run(now, false, svc.Settings.Load())

	if result.Status != RunStatusCompleted {
		t.Fatalf("status = %q, want %q", result.Status, RunStatusCompleted)
	}
	if result.CheckedOut != 1 || result.Failed != 1 {
		t.Fatalf("checked_out/failed = %d/%d, want 1/1", result.CheckedOut, result.Failed)
	}
	if result.FailedBookings[0].BookingID != broken.ID || result.FailedBookings[0].Error == "" {
		t.Errorf("unexpected failure detail: %+v", result.FailedBookings[0])
	}

	// the broken booking is untouched
	var reloaded models.Booking
	svc.DB.First(&reloaded, broken.ID)
	if reloaded.Status != models.BookingStatusBooked || reloaded.Processed || reloaded.TotalAmount != 0 {
		t.Errorf("failed booking was mutated: %+v", reloaded)
	}

	// the healthy one still went through
	reloaded = models.Booking{}
	svc.DB.First(&reloaded, healthy.ID)
	if reloaded.Status != models.BookingStatusCompleted {
		t.Errorf("healthy booking not completed: %q", reloaded.Status)
	}

	var failLogs []models.CheckoutLog
	svc.DB.Where("outcome = ?", models.CheckoutOutcomeFailed).Find(&failLogs)
	if len(failLogs) != 1 {
		t.Fatalf("failure log count = %d, want 1", len(failLogs))
	}
	if failLogs[0].Note == "" {
		t.Error("failure log has empty note")
	}
	if failLogs[0].BookingID == nil || *failLogs[0].BookingID != broken.ID {
		t.Errorf("failure log booking id = %v", failLogs[0].BookingID)
	}
}

func TestActualCheckInOverridesScheduled(t *testing.T) {
	svc := newTestService(t)
	enableJob(t, svc)

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	room := createRoom(t, svc, "101", models.ResourceTypeRoom)

	booking := createBooking(t, svc, room.ID, "Alice", now.Add(-5*time.Hour))
	actual := now.Add(-61 * time.Minute)
	if err := svc.DB.Model(&booking).Update("checked_in_at", actual).Error; err != nil {
		t.Fatalf("failed to set checked_in_at: %v", err)
	}

	result := svc.run(now, false, svc.Settings.Load())
	if result.Status != RunStatusCompleted {
		t.Fatalf("status = %q", result.Status)
	}
	if result.CheckedOutBookings[0].BilledHours != 2 {
		t.Errorf("billed hours = %d, want 2 (from actual check-in)", result.CheckedOutBookings[0].BilledHours)
	}
}

func TestDueBookingsSkipsLoggedToday(t *testing.T) {
	svc := newTestService(t)

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	room := createRoom(t, svc, "101", models.ResourceTypeRoom)
	booking := createBooking(t, svc, room.ID, "Alice", now.Add(-2*time.Hour))

	// processed flag never committed, but today's success log exists
	dayStart, _ := svc.dayBounds(now)
	id := booking.ID
	entry := models.CheckoutLog{
		BookingID:    &id,
		RoomID:       booking.RoomID,
		ResourceName: "101",
		GuestName:    "Alice",
		CheckoutDate: dayStart,
		CheckoutTime: "09:59:00",
		Outcome:      models.CheckoutOutcomeSuccess,
	}
	if err := svc.DB.Create(&entry).Error; err != nil {
		t.Fatalf("failed to create log: %v", err)
	}

	due, err := svc.dueBookings(now)
	if err != nil {
		t.Fatalf("dueBookings: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("due = %d bookings, want 0", len(due))
	}

	// a success log from yesterday does not block
	if err := svc.DB.Model(&models.CheckoutLog{}).Where("id = ?", entry.ID).
		Update("checkout_date", dayStart.AddDate(0, 0, -1)).Error; err != nil {
		t.Fatalf("failed to backdate log: %v", err)
	}
	due, err = svc.dueBookings(now)
	if err != nil {
		t.Fatalf("dueBookings: %v", err)
	}
	if len(due) != 1 {
		t.Errorf("due = %d bookings, want 1", len(due))
	}
}

func TestNotifierFailureDoesNotAffectRun(t *testing.T) {
	svc := newTestService(t)
	enableJob(t, svc)

	notified := 0
	svc.Notify = func(uint, string, string, float64) error {
		notified++
		return errors.New("sms gateway down")
	}

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	room := createRoom(t, svc, "101", models.ResourceTypeRoom)
	createBooking(t, svc, room.ID, "Alice", now.Add(-2*time.Hour))

	result := svc.run(now, false, svc.Settings.Load())
	if result.Status != RunStatusCompleted || result.Failed != 0 {
		t.Fatalf("run affected by notifier failure: %+v", result)
	}
	if notified != 1 {
		t.Errorf("notifier called %d times, want 1", notified)
	}
}

func TestCheckoutBookingByID(t *testing.T) {
	svc := newTestService(t)
	enableJob(t, svc)

	room := createRoom(t, svc, "101", models.ResourceTypeRoom)
	booking := createBooking(t, svc, room.ID, "Alice", time.Now().UTC().Add(-30*time.Minute))

	item, err := svc.CheckoutBookingByID(booking.ID)
	if err != nil {
		t.Fatalf("CheckoutBookingByID: %v", err)
	}
	if item.BilledHours != 1 || item.Amount != 300 {
		t.Errorf("item = %+v, want 1 hour at 300", item)
	}

	// second attempt is rejected and audited as a failure
	if _, err := svc.CheckoutBookingByID(booking.ID); err == nil {
		t.Fatal("expected error on double checkout")
	} else if err.Error() != "booking_already_processed" {
		t.Errorf("err = %v, want booking_already_processed", err)
	}

	var paymentCount int64
	svc.DB.Model(&models.Payment{}).Count(&paymentCount)
	if paymentCount != 1 {
		t.Errorf("payment count = %d, want 1", paymentCount)
	}
}

func TestStats(t *testing.T) {
	svc := newTestService(t)

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	dayStart, _ := svc.dayBounds(now)

	addCheckout := func(bookingID uint, daysAgo int, amount float64) {
		id := bookingID
		when := dayStart.AddDate(0, 0, -daysAgo)
		entry := models.CheckoutLog{
			BookingID:    &id,
			ResourceName: "101",
			GuestName:    "Guest",
			CheckoutDate: when,
			CheckoutTime: "12:00:00",
			Outcome:      models.CheckoutOutcomeSuccess,
		}
		if err := svc.DB.Create(&entry).Error; err != nil {
			t.Fatalf("failed to create log: %v", err)
		}
		payment := models.Payment{
			BookingID: bookingID,
			Amount:    amount,
			Method:    models.PaymentMethodAutoCheckout,
			CreatedAt: when.Add(12 * time.Hour),
		}
		if err := svc.DB.Create(&payment).Error; err != nil {
			t.Fatalf("failed to create payment: %v", err)
		}
	}

	addCheckout(1, 0, 300)  // today
	addCheckout(2, 3, 600)  // inside the trailing week
	addCheckout(3, 10, 900) // outside

	stats, err := svc.statsAt(now)
	if err != nil {
		t.Fatalf("statsAt: %v", err)
	}
	if stats.Today.Checkouts != 1 || stats.Today.Amount != 300 {
		t.Errorf("today = %+v, want 1 checkout / 300", stats.Today)
	}
	if stats.Last7Day.Checkouts != 2 || stats.Last7Day.Amount != 900 {
		t.Errorf("last 7 days = %+v, want 2 checkouts / 900", stats.Last7Day)
	}
}
