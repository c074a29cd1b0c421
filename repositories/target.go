package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"citrus-link/models"
	"citrus-link/repositories/base"
	"citrus-link/repositories/interfaces"

	"gorm.io/gorm"
)

const targetTable = "t_biz_target"

// TargetRepository implements TargetRepositoryInterface.
type TargetRepository struct {
	db *gorm.DB
}

// NewTargetRepository creates a new instance of TargetRepository.
func NewTargetRepository(db *gorm.DB) interfaces.TargetRepositoryInterface {
	return &TargetRepository{
		db: db,
	}
}

// CreateTx inserts a new target within the owning task's transaction.
// Ripeness outside [0,1] is rejected before the insert.
func (tr *TargetRepository) CreateTx(tx *gorm.DB, target *models.Target) error {
	if target.Ripeness < 0 || target.Ripeness > 1.0 {
		return base.NewValidationError("ripeness", fmt.Sprintf("%g", target.Ripeness), "must be within [0,1]")
	}

	if err := tx.Create(target).Error; err != nil {
		return base.WrapDBError("create", targetTable, err)
	}
	return nil
}

// DeleteTx removes a target within a transaction.
func (tr *TargetRepository) DeleteTx(tx *gorm.DB, id int64) error {
	if err := tx.Where("id = ?", id).Delete(&models.Target{}).Error; err != nil {
		return base.WrapDBError("delete", targetTable, err)
	}
	return nil
}

// GetByID retrieves a target by its store-assigned id.
func (tr *TargetRepository) GetByID(id int64) (*models.Target, error) {
	var target models.Target
	err := tr.db.Where("id = ?", id).First(&target).Error
	if err != nil {
		return nil, base.HandleDBError("get", targetTable, fmt.Sprintf("id %d", id), err)
	}
	return &target, nil
}

// ListPlanar extracts the planar (x,y) components of every stored
// target point. The z component is dropped for display.
func (tr *TargetRepository) ListPlanar() ([]models.TargetPlanar, error) {
	var rows []models.TargetPlanar
	err := tr.db.Model(&models.Target{}).
		Select("id, ST_X(coordinate) AS x, ST_Y(coordinate) AS y").
		Order("id").
		Scan(&rows).Error
	if err != nil {
		return nil, base.WrapDBError("list", targetTable, err)
	}
	return rows, nil
}

// GetWKT re-serializes a target point as readable text for diagnostics.
func (tr *TargetRepository) GetWKT(id int64) (string, error) {
	var wkt string
	row := tr.db.Model(&models.Target{}).
		Select("ST_AsText(coordinate)").
		Where("id = ?", id).
		Row()
	if err := row.Scan(&wkt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", base.NewEntityNotFoundError(targetTable, fmt.Sprintf("id %d", id))
		}
		return "", base.WrapDBError("get", targetTable, err)
	}
	return wkt, nil
}
