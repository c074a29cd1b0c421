package interfaces

import (
	"citrus-link/models"

	"gorm.io/gorm"
)

// UserRepositoryInterface defines the contract for user data access.
type UserRepositoryInterface interface {
	// Create inserts a new user, rejecting duplicate usernames.
	Create(user *models.User) error

	// GetByUsername retrieves a user by its unique username.
	GetByUsername(username string) (*models.User, error)

	// GetByUsernameTx is GetByUsername bound to a running transaction.
	GetByUsernameTx(tx *gorm.DB, username string) (*models.User, error)
}
