package domain

import (
	"time"

	"github.com/navinavi029/Circld-sub003/pkg/geo"
)

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "available"
	ItemStatusPending     ItemStatus = "pending"
	ItemStatusUnavailable ItemStatus = "unavailable"
)

// Item is a barterable good owned by a user. The trade core reads items
// but never mutates them.
type Item struct {
	ID          string     `firestore:"-" json:"id"`
	OwnerID     string     `firestore:"ownerId" json:"owner_id"`
	Title       string     `firestore:"title" json:"title"`
	Description string     `firestore:"description" json:"description"`
	Category    string     `firestore:"category" json:"category"`
	Condition   string     `firestore:"condition" json:"condition"`
	ImageURL    string     `firestore:"imageUrl" json:"image_url"`
	Status      ItemStatus `firestore:"status" json:"status"`
	Location    *geo.Point `firestore:"location" json:"location,omitempty"`
	CreatedAt   time.Time  `firestore:"createdAt" json:"created_at"`
}

// PoolFilters narrows the item pool. Empty slices mean "no restriction";
// MaxDistanceKm <= 0 disables the distance filter.
type PoolFilters struct {
	Categories    []string `json:"categories,omitempty"`
	Conditions    []string `json:"conditions,omitempty"`
	MaxDistanceKm float64  `json:"max_distance_km,omitempty"`
}
