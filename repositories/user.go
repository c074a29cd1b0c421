package repositories

import (
	"citrus-link/models"
	"citrus-link/repositories/base"
	"citrus-link/repositories/interfaces"

	"gorm.io/gorm"
)

const userTable = "t_sys_user"

// UserRepository implements UserRepositoryInterface.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *gorm.DB) interfaces.UserRepositoryInterface {
	return &UserRepository{
		db: db,
	}
}

// Create inserts a new user, rejecting duplicate usernames.
func (ur *UserRepository) Create(user *models.User) error {
	var count int64
	if err := ur.db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return base.WrapDBError("create", userTable, err)
	}
	if count > 0 {
		return base.NewDuplicateEntityError(userTable, "username", user.Username)
	}

	if err := ur.db.Create(user).Error; err != nil {
		return base.HandleDBError("create", userTable, user.Username, err)
	}
	return nil
}

// GetByUsername retrieves a user by its unique username.
func (ur *UserRepository) GetByUsername(username string) (*models.User, error) {
	return ur.GetByUsernameTx(ur.db, username)
}

// GetByUsernameTx is GetByUsername bound to a running transaction.
func (ur *UserRepository) GetByUsernameTx(tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := tx.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, base.HandleDBError("get", userTable, username, err)
	}
	return &user, nil
}
