package models

import "time"

// Setting keys read by the auto-checkout job. Only SettingAutoCheckoutLastRun
// is ever written by the job itself (through the run ledger).
const (
	SettingAutoCheckoutEnabled = "auto_checkout_enabled"
	SettingAutoCheckoutTime    = "auto_checkout_time"
	SettingAutoCheckoutGrace   = "auto_checkout_grace_minutes"
	SettingHourlyRateRoom      = "hourly_rate_room"
	SettingHourlyRateHall      = "hourly_rate_hall"
	SettingAutoCheckoutLastRun = "auto_checkout_last_run"
)

type SystemSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"column:setting_value;size:255" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
