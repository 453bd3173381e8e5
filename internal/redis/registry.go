package redisclient

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
)

type slotRegistry struct {
	client *redis.Client
}

// NewSlotRegistry returns a Redis-backed slot registry. Occupancy is a
// plain key per slot, written with SETNX so that check and insert are one
// atomic step shared across instances.
func NewSlotRegistry(client *redis.Client) booking.Registry {
	return &slotRegistry{client: client}
}

func slotRegistryKey(key booking.SlotKey) string {
	return fmt.Sprintf("slot:%s", key.String())
}

func (r *slotRegistry) IsOccupied(ctx context.Context, key booking.SlotKey) (bool, error) {
	n, err := r.client.Exists(ctx, slotRegistryKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("check slot occupancy: %w", err)
	}
	return n > 0, nil
}

func (r *slotRegistry) Reserve(ctx context.Context, key booking.SlotKey) error {
	ok, err := r.client.SetNX(ctx, slotRegistryKey(key), "reserved", 0).Result()
	if err != nil {
		return fmt.Errorf("reserve slot: %w", err)
	}
	if !ok {
		return booking.ErrSlotOccupied
	}
	return nil
}

func (r *slotRegistry) Release(ctx context.Context, key booking.SlotKey) error {
	if err := r.client.Del(ctx, slotRegistryKey(key)).Err(); err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}
