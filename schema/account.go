package schema

import (
	"time"
)

// Account maps an opaque user id to the address notifications are sent to.
type Account struct {
	UID       string    `json:"uid" gorm:"primary_key"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
