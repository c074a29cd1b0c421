package interfaces

import (
	"citrus-link/models"

	"gorm.io/gorm"
)

// TargetRepositoryInterface defines the contract for target data access.
// Targets are only ever written inside the transaction of their owning
// task, so every mutation takes an explicit *gorm.DB.
type TargetRepositoryInterface interface {
	// CreateTx inserts a new target, rejecting ripeness outside [0,1].
	// The store-assigned id is populated on the passed struct.
	CreateTx(tx *gorm.DB, target *models.Target) error

	// DeleteTx removes a target within a transaction.
	DeleteTx(tx *gorm.DB, id int64) error

	// GetByID retrieves a target by its store-assigned id.
	GetByID(id int64) (*models.Target, error)

	// ListPlanar extracts the planar (x,y) components of every stored
	// target point for map display.
	ListPlanar() ([]models.TargetPlanar, error)

	// GetWKT re-serializes a target point as readable text for
	// diagnostics.
	GetWKT(id int64) (string, error)
}
