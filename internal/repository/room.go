package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pixelgrove/gostones-backend/internal/entity"
)

var ErrRoomNotFound = errors.New("room not found")

const roomKeyPrefix = "room:"

// RoomRegistry stores room discovery metadata. Lookups by join code scan all
// records; fine while room counts stay small, not horizontally scalable.
type RoomRegistry interface {
	CreateOrUpdate(ctx context.Context, record *entity.RoomRecord) error
	GetByID(ctx context.Context, id string) (*entity.RoomRecord, error)
	DeleteByID(ctx context.Context, id string) error
	All(ctx context.Context) ([]*entity.RoomRecord, error)
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRegistry(client *redis.Client) RoomRegistry {
	return &dbRoom{
		client: client,
	}
}

func (that *dbRoom) CreateOrUpdate(ctx context.Context, record *entity.RoomRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal room record: %w", err)
	}

	roomKey := roomKeyPrefix + record.ID
	if err = that.client.Set(ctx, roomKey, recordJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set room record: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.RoomRecord, error) {
	roomKey := roomKeyPrefix + id

	response, err := that.client.Get(ctx, roomKey).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.RoomRecord{}, ErrRoomNotFound
	}

	if err != nil {
		return &entity.RoomRecord{}, fmt.Errorf("failed to get room record: %w", err)
	}

	var record entity.RoomRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return &entity.RoomRecord{}, fmt.Errorf("failed to unmarshal room record: %w", err)
	}

	return &record, nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	roomKey := roomKeyPrefix + id

	if err := that.client.Del(ctx, roomKey).Err(); err != nil {
		return fmt.Errorf("failed to delete room record: %w", err)
	}

	return nil
}

func (that *dbRoom) All(ctx context.Context) ([]*entity.RoomRecord, error) {
	var records []*entity.RoomRecord

	iter := that.client.Scan(ctx, 0, roomKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		response, err := that.client.Get(ctx, iter.Val()).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to get room record: %w", err)
		}

		var record entity.RoomRecord
		if err = json.Unmarshal([]byte(response), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room record: %w", err)
		}

		records = append(records, &record)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan room records: %w", err)
	}

	return records, nil
}
