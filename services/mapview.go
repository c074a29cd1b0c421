package services

import (
	"crypto/sha256"
	"math/big"

	"citrus-link/database"
	"citrus-link/models"
)

// Map object type tags consumed by the dashboard renderer.
const (
	mapTypeRobot  = "UGV"
	mapTypeTarget = "Target"
)

// MapService produces 2-D display coordinates for every robot and
// target on the field map.
type MapService struct {
	db    *database.Database
	cache RobotCache
}

// NewMapService creates a new instance of MapService.
func NewMapService(db *database.Database, cache RobotCache) *MapService {
	return &MapService{
		db:    db,
		cache: cache,
	}
}

// GetMapObjects merges robot pseudo-positions with planar target
// coordinates into one map payload.
func (ms *MapService) GetMapObjects() (*models.MapObjects, error) {
	robots, err := ms.db.RobotRepo.List()
	if err != nil {
		return nil, err
	}

	robotList := make([]models.MapRobot, 0, len(robots))
	for _, r := range robots {
		// A live presence entry overrides a stale stored status, so a
		// robot reporting over MQTT shows online even before its next
		// row update lands.
		status := r.Status
		if ms.cache.IsRobotOnline(r.ID) {
			status = models.RobotStatusOnline
		}

		x, y := PseudoPosition(r.ID)
		robotList = append(robotList, models.MapRobot{
			ID:     r.ID,
			Type:   mapTypeRobot,
			Status: status,
			X:      x,
			Y:      y,
		})
	}

	targets, err := ms.db.TargetRepo.ListPlanar()
	if err != nil {
		return nil, err
	}

	targetList := make([]models.MapTarget, 0, len(targets))
	for _, t := range targets {
		targetList = append(targetList, models.MapTarget{
			ID:   t.ID,
			Type: mapTypeTarget,
			X:    t.X,
			Y:    t.Y,
		})
	}

	return &models.MapObjects{
		Robots:  robotList,
		Targets: targetList,
	}, nil
}

// PseudoPosition derives a deterministic display position from a robot
// id. Robots carry no stored geometry yet, so the id's SHA-256 digest,
// read as one large integer H, is folded into the display grid:
// x = H mod 80 + 10 and y = (H/100) mod 60 + 20, keeping every robot
// inside [10,90) x [20,80).
func PseudoPosition(id string) (int64, int64) {
	digest := sha256.Sum256([]byte(id))
	h := new(big.Int).SetBytes(digest[:])

	x := new(big.Int).Mod(h, big.NewInt(80)).Int64() + 10
	y := new(big.Int).Mod(new(big.Int).Div(h, big.NewInt(100)), big.NewInt(60)).Int64() + 20
	return x, y
}
