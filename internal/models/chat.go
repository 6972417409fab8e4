package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat pairs exactly two users. Messages live in their own collection keyed
// by chat id; the chat document only carries a cached copy of the latest
// message and the last activity timestamp.
type Chat struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// PairKey is the scalar identity of the pair. The unique index lives on
	// this field: a unique index on the user_ids array would be multikey and
	// collide per element, locking each user to a single chat partner.
	PairKey      string               `bson:"pair_key" json:"-"`
	UserIDs      []primitive.ObjectID `bson:"user_ids" json:"userIds"`
	LastMessage  *Message             `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	LastActivity time.Time            `bson:"last_activity" json:"lastActivity"`
	IsActive     bool                 `bson:"is_active" json:"isActive"`
	CreatedAt    time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updatedAt"`
}

// CanonicalPair returns the two ids sorted by hex so that (a,b) and (b,a)
// key the same chat document.
func CanonicalPair(a, b primitive.ObjectID) []primitive.ObjectID {
	if a.Hex() > b.Hex() {
		a, b = b, a
	}
	return []primitive.ObjectID{a, b}
}

// PairKey derives the scalar pair identity "<minHex>:<maxHex>" from the two
// user ids. Order independent; distinct pairs sharing one member yield
// distinct keys.
func PairKey(a, b primitive.ObjectID) string {
	pair := CanonicalPair(a, b)
	return pair[0].Hex() + ":" + pair[1].Hex()
}

// HasMember reports whether the user belongs to this chat.
func (c *Chat) HasMember(userID primitive.ObjectID) bool {
	for _, id := range c.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherMember returns the peer of userID in this two-party chat.
func (c *Chat) OtherMember(userID primitive.ObjectID) (primitive.ObjectID, bool) {
	for _, id := range c.UserIDs {
		if id != userID {
			return id, true
		}
	}
	return primitive.NilObjectID, false
}
