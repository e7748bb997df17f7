package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Staff subscribe to the destinations they want violation alerts for.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Destinations []*Destination `gorm:"many2many:subscription_destination_mapping;"`
}
