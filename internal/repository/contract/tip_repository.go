package contract

import (
	"context"

	"fundocs-be/internal/entity"
	"fundocs-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TipRepository interface {
	Create(ctx context.Context, tip *entity.Tip) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Tip, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tip, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error

	// SaveVotes writes votes and voters only if the row is still at
	// tip.Version, bumping the version. ok is false when another writer won.
	SaveVotes(ctx context.Context, tip *entity.Tip) (ok bool, err error)
}
