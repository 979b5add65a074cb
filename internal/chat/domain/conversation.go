package domain

import "time"

// Conversation is opened for one accepted trade offer and carries the
// denormalized preview fields the inbox list renders, updated
// transactionally with each new message.
type Conversation struct {
	ID              string           `firestore:"-" json:"id"`
	OfferID         string           `firestore:"offerId" json:"offer_id"`
	ParticipantIDs  []string         `firestore:"participantIds" json:"participant_ids"`
	AnchorItemID    string           `firestore:"anchorItemId" json:"anchor_item_id"`
	TargetItemID    string           `firestore:"targetItemId" json:"target_item_id"`
	LastMessageText string           `firestore:"lastMessageText" json:"last_message_text"`
	LastMessageAt   time.Time        `firestore:"lastMessageAt" json:"last_message_at"`
	UnreadCount     map[string]int64 `firestore:"unreadCount" json:"unread_count"`
	CreatedAt       time.Time        `firestore:"createdAt" json:"created_at"`
	UpdatedAt       time.Time        `firestore:"updatedAt" json:"updated_at"`
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// PartnerOf returns the other participant of a two-party conversation.
func (c *Conversation) PartnerOf(userID string) string {
	for _, id := range c.ParticipantIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

// Message is one chat message. ReadBy accumulates the ids of users who
// have seen it.
type Message struct {
	ID             string    `firestore:"-" json:"id"`
	ConversationID string    `firestore:"conversationId" json:"conversation_id"`
	SenderID       string    `firestore:"senderId" json:"sender_id"`
	Text           string    `firestore:"text" json:"text"`
	ReadBy         []string  `firestore:"readBy" json:"read_by"`
	CreatedAt      time.Time `firestore:"createdAt" json:"created_at"`
}

// ItemDetails is the denormalized item projection attached to
// conversations for display. Derived data only, never a source of truth.
type ItemDetails struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// UserDetails is the denormalized user projection for display.
type UserDetails struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Display defaults for documents that no longer exist remotely.
const (
	UnknownItemTitle = "Unknown Item"
	UnknownUserName  = "Unknown User"
)

// ConversationWithDetails is a conversation enriched for the inbox.
type ConversationWithDetails struct {
	*Conversation
	AnchorItem ItemDetails `json:"anchor_item"`
	TargetItem ItemDetails `json:"target_item"`
	Partner    UserDetails `json:"partner"`
}
