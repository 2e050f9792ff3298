package storage

import "time"

// CalculatorConfig is the proposal's calculator snapshot, fixed at
// creation time.
type CalculatorConfig struct {
	Events          int     `json:"events"`
	TicketsPerEvent int     `json:"ticketsPerEvent"`
	AvgTicketPrice  float64 `json:"avgTicketPrice"`
}

type Proposal struct {
	ID          int64            `gorm:"primaryKey" json:"id"`
	Slug        string           `gorm:"uniqueIndex;not null" json:"slug"`
	ClientName  string           `gorm:"not null" json:"client_name"`
	ClientEmail string           `gorm:"not null" json:"client_email"`
	Config      CalculatorConfig `gorm:"embedded;embeddedPrefix:config_" json:"config"`
	IsActive    bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Details is the structured payload attached to an activity event. Which
// fields are set depends on the action kind; all are optional so unknown
// forward-compatible events still round-trip.
type Details struct {
	Value      *float64 `json:"value,omitempty"`
	Initial    *float64 `json:"initial,omitempty"`
	Duration   string   `json:"duration,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Section    string   `json:"section,omitempty"`
	ClientName string   `json:"client_name,omitempty"`
	Email      string   `json:"email,omitempty"`
}

type ActivityEvent struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"index;not null" json:"slug"`
	ClientEmail *string   `json:"client_email"`
	Action      string    `gorm:"not null" json:"action"`
	Details     Details   `gorm:"serializer:json" json:"details"`
	CreatedAt   time.Time `json:"created_at"`
}

type AccessLog struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Slug      *string   `json:"slug"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}
