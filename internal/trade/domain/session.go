package domain

import "time"

type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
)

// Valid reports whether d is one of the two known directions.
func (d SwipeDirection) Valid() bool {
	return d == SwipeLeft || d == SwipeRight
}

// SwipeRecord is one decision inside a session. Immutable once created;
// at most one record per item per session.
type SwipeRecord struct {
	ItemID    string         `firestore:"itemId" json:"item_id"`
	Direction SwipeDirection `firestore:"direction" json:"direction"`
	Timestamp time.Time      `firestore:"timestamp" json:"timestamp"`
}

// SwipeSession scopes a user's left/right decisions against the pool for
// one trade anchor. Exactly one session is current per user; choosing a
// new anchor supersedes the previous session.
type SwipeSession struct {
	ID             string        `firestore:"-" json:"id"`
	UserID         string        `firestore:"userId" json:"user_id"`
	TradeAnchorID  string        `firestore:"tradeAnchorId" json:"trade_anchor_id"`
	CreatedAt      time.Time     `firestore:"createdAt" json:"created_at"`
	LastActivityAt time.Time     `firestore:"lastActivityAt" json:"last_activity_at"`
	Swipes         []SwipeRecord `firestore:"swipes" json:"swipes"`
}

// SwipedItemIDs returns the ids already decided in this session.
func (s *SwipeSession) SwipedItemIDs() []string {
	ids := make([]string, 0, len(s.Swipes))
	for _, sw := range s.Swipes {
		ids = append(ids, sw.ItemID)
	}
	return ids
}

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusDeclined OfferStatus = "declined"
)

// TradeOffer is created when a user right-swipes an item: the swiper
// offers their anchor item in exchange for the target. An accepted offer
// is the subject a conversation is opened for.
type TradeOffer struct {
	ID              string      `firestore:"-" json:"id"`
	FromUserID      string      `firestore:"fromUserId" json:"from_user_id"`
	ToUserID        string      `firestore:"toUserId" json:"to_user_id"`
	OfferedItemID   string      `firestore:"offeredItemId" json:"offered_item_id"`
	RequestedItemID string      `firestore:"requestedItemId" json:"requested_item_id"`
	Status          OfferStatus `firestore:"status" json:"status"`
	CreatedAt       time.Time   `firestore:"createdAt" json:"created_at"`
	UpdatedAt       time.Time   `firestore:"updatedAt" json:"updated_at"`
}
