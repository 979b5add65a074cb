package domain

// CachedSwipe is a durable intent record for a swipe whose remote write
// failed while offline. It exists only between that failure and its
// successful replay. Two entries are duplicates only when every field
// matches.
type CachedSwipe struct {
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	ItemID    string         `json:"item_id"`
	Direction SwipeDirection `json:"direction"`
	Timestamp int64          `json:"timestamp"`
}

// Equal reports field-for-field equality, the queue's dedup key.
func (c CachedSwipe) Equal(other CachedSwipe) bool {
	return c == other
}

// CachedSessionState is a flattened mirror of the last known-good
// session, serving reads while offline and seeding optimistic UI. It is
// overwritten wholesale on every successful sync.
type CachedSessionState struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	TradeAnchorID  string              `json:"trade_anchor_id"`
	CreatedAt      int64               `json:"created_at"`
	LastActivityAt int64               `json:"last_activity_at"`
	Swipes         []CachedSwipeEntry  `json:"swipes"`
}

// CachedSwipeEntry is one flattened swipe inside the mirrored session.
type CachedSwipeEntry struct {
	ItemID    string         `json:"item_id"`
	Direction SwipeDirection `json:"direction"`
	Timestamp int64          `json:"timestamp"`
}

// Complete reports whether the snapshot carries every field required
// before it may be cached. Partial snapshots are never written.
func (s *CachedSessionState) Complete() bool {
	return s.ID != "" && s.UserID != "" && s.CreatedAt != 0 && s.LastActivityAt != 0
}

// MirrorSession flattens a remote session into its cacheable form.
func MirrorSession(session *SwipeSession) *CachedSessionState {
	state := &CachedSessionState{
		ID:             session.ID,
		UserID:         session.UserID,
		TradeAnchorID:  session.TradeAnchorID,
		CreatedAt:      session.CreatedAt.UnixMilli(),
		LastActivityAt: session.LastActivityAt.UnixMilli(),
	}
	for _, sw := range session.Swipes {
		state.Swipes = append(state.Swipes, CachedSwipeEntry{
			ItemID:    sw.ItemID,
			Direction: sw.Direction,
			Timestamp: sw.Timestamp.UnixMilli(),
		})
	}
	return state
}
