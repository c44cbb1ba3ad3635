package repository

import (
	"context"

	"avias-service/internal/domain/entity"
)

// SnapshotRepository defines the interface for the published flight
// table. Publish must be atomic: a concurrent Load sees either the
// previous snapshot or the new one, never a partial write.
type SnapshotRepository interface {
	Publish(ctx context.Context, records []entity.FlatFlightRecord) error
	Load(ctx context.Context) ([]entity.FlatFlightRecord, error)
	WriteChargeTable(ctx context.Context, records []entity.PricedChargeRecord) error
}
