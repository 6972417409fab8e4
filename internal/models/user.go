package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the minimal public view of an account. The users collection is
// owned by the auth/profile services; this subsystem only reads it.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name,omitempty" json:"name,omitempty"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`
}

// DisplayName picks the best available identity string for message echoes
// and notification payloads.
func (u *User) DisplayName() string {
	if u == nil {
		return "Unknown User"
	}
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unknown User"
}
