package models

import (
	"gorm.io/gorm"
)

// Resource types. The hourly billing rate is chosen by this field.
const (
	ResourceTypeRoom = "room"
	ResourceTypeHall = "hall"
)

type Room struct {
	gorm.Model

	RoomNumber string `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`

	// CustomName overrides RoomNumber for display when non-empty.
	CustomName string `json:"customName" gorm:"column:custom_name;type:varchar(100)"`

	ResourceType string `json:"resourceType" gorm:"column:resource_type;size:20;default:room"`
	Status       string `json:"status"`
	Floor        string `json:"floor" gorm:"type:varchar(10)"`
	Description  string `json:"description" gorm:"type:text"`
}

// DisplayName returns the name used in audit logs and notifications.
func (r Room) DisplayName() string {
	if r.CustomName != "" {
		return r.CustomName
	}
	return r.RoomNumber
}
