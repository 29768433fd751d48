package model

import "time"

// Venue is the location hosting bookable services.  The lifecycle
// core treats venues as read-only context: their names appear in
// notification content but are never mutated here.
type Venue struct {
	ID        uint64    // venues.id
	Name      string    // venues.name
	City      string    // venues.city
	Address   string    // venues.address
	CreatedAt time.Time // venues.created_at
}

// Service is a bookable offering at a venue (a room type, a table,
// a court).  Read-only context like Venue.
type Service struct {
	ID         uint64    // services.id
	VenueID    uint64    // services.venue_id
	Name       string    // services.name
	PriceCents int64     // services.price_cents (per-night/per-slot base price)
	Currency   string    // services.currency
	CreatedAt  time.Time // services.created_at
}
