package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"citrus-link/config"
	"citrus-link/models"

	"github.com/go-redis/redis/v8"
)

// cacheTTL bounds how long stale telemetry survives a silent robot.
const cacheTTL = 24 * time.Hour

// ErrCacheMiss marks an absent key, as opposed to a failing Redis
// connection. Callers test for it with errors.Is.
var ErrCacheMiss = errors.New("cache miss")

type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: rdb,
		ctx:    ctx,
	}, nil
}

// SaveTelemetry caches the last raw telemetry report for a robot.
func (r *RedisClient) SaveTelemetry(robotID string, telemetry *models.TelemetryMessage) error {
	key := fmt.Sprintf("robot:telemetry:%s", robotID)

	payload, err := json.Marshal(telemetry)
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry: %w", err)
	}

	if err := r.client.Set(r.ctx, key, payload, cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to save telemetry to Redis: %w", err)
	}
	return nil
}

// GetTelemetry returns the last cached telemetry report for a robot.
func (r *RedisClient) GetTelemetry(robotID string) (*models.TelemetryMessage, error) {
	key := fmt.Sprintf("robot:telemetry:%s", robotID)

	val, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("telemetry for robot %s: %w", robotID, ErrCacheMiss)
		}
		return nil, fmt.Errorf("failed to get telemetry from Redis: %w", err)
	}

	var telemetry models.TelemetryMessage
	if err := json.Unmarshal([]byte(val), &telemetry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal telemetry: %w", err)
	}
	return &telemetry, nil
}

// SaveConnectionStatus records a robot's presence.
func (r *RedisClient) SaveConnectionStatus(robotID, status string) error {
	key := fmt.Sprintf("robot:connection:%s", robotID)

	connectionInfo := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
	}

	infoJSON, err := json.Marshal(connectionInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal connection info: %w", err)
	}

	if err := r.client.Set(r.ctx, key, infoJSON, cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to save connection status to Redis: %w", err)
	}
	return nil
}

// GetConnectionStatus returns a robot's last recorded presence.
func (r *RedisClient) GetConnectionStatus(robotID string) (string, error) {
	key := fmt.Sprintf("robot:connection:%s", robotID)

	val, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("connection status for robot %s: %w", robotID, ErrCacheMiss)
		}
		return "", fmt.Errorf("failed to get connection status from Redis: %w", err)
	}

	var connectionInfo map[string]interface{}
	if err := json.Unmarshal([]byte(val), &connectionInfo); err != nil {
		return "", fmt.Errorf("failed to unmarshal connection info: %w", err)
	}

	status, ok := connectionInfo["status"].(string)
	if !ok {
		return "", fmt.Errorf("invalid connection status format")
	}
	return status, nil
}

// ClearRobot drops all cached keys for a deleted robot.
func (r *RedisClient) ClearRobot(robotID string) error {
	keys := []string{
		fmt.Sprintf("robot:telemetry:%s", robotID),
		fmt.Sprintf("robot:connection:%s", robotID),
	}
	if err := r.client.Del(r.ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear robot keys from Redis: %w", err)
	}
	return nil
}

// IsRobotOnline reports cached presence; absence counts as offline.
func (r *RedisClient) IsRobotOnline(robotID string) bool {
	status, err := r.GetConnectionStatus(robotID)
	if err != nil {
		return false
	}
	return status == models.RobotStatusOnline
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
