package inbound

import (
	"context"

	"github.com/sweetshop/sweetshop/domain/entity"
)

type CatalogUseCase interface {
	List(ctx context.Context) ([]entity.Sweet, error)
	Search(ctx context.Context, filter entity.SearchFilter) ([]entity.Sweet, error)
	Get(ctx context.Context, id string) (*entity.Sweet, error)
	// Purchase returns the sweets already bought even when it also returns an error.
	Purchase(ctx context.Context, ids ...string) ([]entity.Sweet, error)

	// Admin operations.
	Create(ctx context.Context, in entity.SweetInput) (*entity.Sweet, error)
	Update(ctx context.Context, id string, upd entity.SweetUpdate) (*entity.Sweet, error)
	Delete(ctx context.Context, id string) error
	Restock(ctx context.Context, id string, quantity int) (*entity.Sweet, error)
}
