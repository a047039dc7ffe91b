package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"hotel-admin-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoCheckoutSettings is the resolved configuration for one job run. It is
// loaded once per run and passed down; nothing re-reads the store
// mid-transaction.
type AutoCheckoutSettings struct {
	Enabled         bool
	ScheduledHour   int
	ScheduledMinute int
	GraceMinutes    int
	RoomHourlyRate  float64
	HallHourlyRate  float64
	LastRunAt       *time.Time
}

// DefaultAutoCheckoutSettings are the hard-coded fallbacks used when the
// settings store is unreachable or a value does not parse.
func DefaultAutoCheckoutSettings() AutoCheckoutSettings {
	return AutoCheckoutSettings{
		Enabled:         false,
		ScheduledHour:   12,
		ScheduledMinute: 0,
		GraceMinutes:    30,
		RoomHourlyRate:  300,
		HallHourlyRate:  500,
	}
}

type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

// All returns every settings row as a key/value map.
func (s *SettingsService) All() (map[string]string, error) {
	var rows []models.SystemSetting
	if err := s.DB.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// Load resolves the auto-checkout configuration. A store failure falls back
// to the defaults so the job can still report a decision; bad individual
// values fall back field-wise.
func (s *SettingsService) Load() AutoCheckoutSettings {
	cfg := DefaultAutoCheckoutSettings()

	values, err := s.All()
	if err != nil {
		log.Printf("warning: settings store unavailable, using defaults: %v", err)
		return cfg
	}

	if raw, ok := values[models.SettingAutoCheckoutEnabled]; ok {
		cfg.Enabled = parseBoolSetting(raw)
	}
	if raw, ok := values[models.SettingAutoCheckoutTime]; ok {
		if h, m, err := parseClockSetting(raw); err == nil {
			cfg.ScheduledHour = h
			cfg.ScheduledMinute = m
		} else {
			log.Printf("warning: invalid %s value %q: %v", models.SettingAutoCheckoutTime, raw, err)
		}
	}
	if raw, ok := values[models.SettingAutoCheckoutGrace]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n >= 0 {
			cfg.GraceMinutes = n
		}
	}
	if raw, ok := values[models.SettingHourlyRateRoom]; ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && f > 0 {
			cfg.RoomHourlyRate = f
		}
	}
	if raw, ok := values[models.SettingHourlyRateHall]; ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && f > 0 {
			cfg.HallHourlyRate = f
		}
	}
	if raw, ok := values[models.SettingAutoCheckoutLastRun]; ok && strings.TrimSpace(raw) != "" {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
			cfg.LastRunAt = &t
		} else {
			log.Printf("warning: invalid %s value %q: %v", models.SettingAutoCheckoutLastRun, raw, err)
		}
	}

	return cfg
}

// Put upserts one settings key.
func (s *SettingsService) Put(key, value string) error {
	setting := models.SystemSetting{Key: key, Value: value}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// SetLastRun records the completion instant of a successful automatic run.
// This is the only settings key the job ever writes.
func (s *SettingsService) SetLastRun(t time.Time) error {
	return s.Put(models.SettingAutoCheckoutLastRun, t.Format(time.RFC3339))
}

func parseBoolSetting(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseClockSetting(raw string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
