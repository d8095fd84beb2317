package model

import (
	"time"

	"notetaker/storage"
)

type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Username  string    `bson:"username" json:"username"`
	Email     string    `bson:"email" json:"email"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// UserFromDocument converts a canonical storage document into a User.
func UserFromDocument(doc storage.Document) User {
	return User{
		ID:        stringField(doc, "id"),
		Username:  stringField(doc, "username"),
		Email:     stringField(doc, "email"),
		CreatedAt: timeField(doc, "created_at"),
	}
}
