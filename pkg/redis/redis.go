package redis

import (
	"PresensiGolang/internal/entity"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// IRedis is the clock-event history cache feeding the anomaly detectors.
// Every read returns empty history (not an error) when nothing is cached,
// so detectors degrade to no-anomaly.
type IRedis interface {
	AddKnownDevice(ctx context.Context, userID string, deviceID string) error
	GetKnownDevices(ctx context.Context, userID string) ([]string, error)
	SetLastLocation(ctx context.Context, userID string, loc entity.Location) error
	GetLastLocation(ctx context.Context, userID string) (*entity.Location, error)
	PushClockIn(ctx context.Context, userID string, ts time.Time) error
	GetRecentClockIns(ctx context.Context, userID string) ([]time.Time, error)
}

const (
	historyTTL     = 30 * 24 * time.Hour
	recentMaxItems = 50
)

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func deviceKey(userID string) string   { return fmt.Sprintf("attendance:devices:%s", userID) }
func locationKey(userID string) string { return fmt.Sprintf("attendance:location:%s", userID) }
func recentKey(userID string) string   { return fmt.Sprintf("attendance:recent:%s", userID) }

func (r *redisClient) AddKnownDevice(ctx context.Context, userID string, deviceID string) error {
	if deviceID == "" {
		return nil
	}

	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, deviceKey(userID), deviceID)
	pipe.Expire(ctx, deviceKey(userID), historyTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		logrus.Error(fmt.Sprintf("Error adding known device for user %s: %v", userID, err))
		return err
	}
	return nil
}

func (r *redisClient) GetKnownDevices(ctx context.Context, userID string) ([]string, error) {
	devices, err := r.client.SMembers(ctx, deviceKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logrus.Error(fmt.Sprintf("Error getting known devices for user %s: %v", userID, err))
		return nil, err
	}
	return devices, nil
}

func (r *redisClient) SetLastLocation(ctx context.Context, userID string, loc entity.Location) error {
	payload, err := json.Marshal(loc)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, locationKey(userID), payload, historyTTL).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error setting last location for user %s: %v", userID, err))
		return err
	}
	return nil
}

func (r *redisClient) GetLastLocation(ctx context.Context, userID string) (*entity.Location, error) {
	payload, err := r.client.Get(ctx, locationKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logrus.Error(fmt.Sprintf("Error getting last location for user %s: %v", userID, err))
		return nil, err
	}

	var loc entity.Location
	if err := json.Unmarshal([]byte(payload), &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *redisClient) PushClockIn(ctx context.Context, userID string, ts time.Time) error {
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, recentKey(userID), ts.UTC().Format(time.RFC3339Nano))
	pipe.LTrim(ctx, recentKey(userID), 0, recentMaxItems-1)
	pipe.Expire(ctx, recentKey(userID), historyTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		logrus.Error(fmt.Sprintf("Error pushing clock-in history for user %s: %v", userID, err))
		return err
	}
	return nil
}

func (r *redisClient) GetRecentClockIns(ctx context.Context, userID string) ([]time.Time, error) {
	entries, err := r.client.LRange(ctx, recentKey(userID), 0, recentMaxItems-1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logrus.Error(fmt.Sprintf("Error getting clock-in history for user %s: %v", userID, err))
		return nil, err
	}

	times := make([]time.Time, 0, len(entries))
	for _, raw := range entries {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			continue
		}
		times = append(times, ts)
	}
	return times, nil
}
