package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m-lab/pprate/data"
)

const recordPrefix = "pprate:record:"

// ErrNotFound means that no record exists for the UUID, or that it expired.
var ErrNotFound = errors.New("record not found")

// SetRecord stores rec under its UUID for ttl.
func (c *Client) SetRecord(ctx context.Context, rec *data.CapacityRecord, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, recordPrefix+rec.UUID, b, ttl).Err()
}

// GetRecord returns the record stored under uuid.
func (c *Client) GetRecord(ctx context.Context, uuid string) (*data.CapacityRecord, error) {
	b, err := c.rdb.Get(ctx, recordPrefix+uuid).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec data.CapacityRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
