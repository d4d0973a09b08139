package store

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/quarantaenehelden/notification-api/schema"
)

var ErrAccountNotFound = fmt.Errorf("account not found")

// CreateAccount registers an account with its notification address
func (s *HeldenStore) CreateAccount(uid, email string) (*schema.Account, error) {
	a := schema.Account{
		UID:   uid,
		Email: email,
	}

	if err := s.ormDB.Create(&a).Error; err != nil {
		return nil, err
	}

	return &a, nil
}

// GetAccountEmail resolves a user id to its notification address. An unknown
// id yields ErrAccountNotFound so callers can treat it as a per-recipient
// failure instead of a store outage.
func (s *HeldenStore) GetAccountEmail(uid string) (string, error) {
	var a schema.Account
	if err := s.ormDB.Where("uid = ?", uid).First(&a).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return "", ErrAccountNotFound
		}
		return "", err
	}

	return a.Email, nil
}
