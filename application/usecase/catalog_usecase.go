package usecase

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sweetshop/sweetshop/application/port/inbound"
	"github.com/sweetshop/sweetshop/application/port/outbound"
	"github.com/sweetshop/sweetshop/domain/entity"
	domainerror "github.com/sweetshop/sweetshop/domain/error"
	"github.com/sweetshop/sweetshop/domain/session"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
)

// StateSource is the read side of the session manager.
type StateSource interface {
	State() session.State
}

const maxConcurrentPurchases = 4

var (
	// AdminRequirement gates catalog mutations.
	AdminRequirement = session.Requirement{Path: "/admin", RequiredRole: entity.RoleAdmin}
	// ShopperRequirement gates purchases.
	ShopperRequirement = session.Requirement{Path: "/dashboard"}
)

type CatalogUseCase struct {
	sweets   outbound.SweetGateway
	sessions StateSource
	logger   logger.Logger
}

var _ inbound.CatalogUseCase = (*CatalogUseCase)(nil)

func NewCatalogUseCase(sweets outbound.SweetGateway, sessions StateSource, log logger.Logger) *CatalogUseCase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CatalogUseCase{sweets: sweets, sessions: sessions, logger: log}
}

func (uc *CatalogUseCase) List(ctx context.Context) ([]entity.Sweet, error) {
	return uc.sweets.List(ctx)
}

func (uc *CatalogUseCase) Search(ctx context.Context, filter entity.SearchFilter) ([]entity.Sweet, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, domainerror.ErrInvalidRequest("minPrice exceeds maxPrice", nil)
	}
	return uc.sweets.Search(ctx, filter)
}

func (uc *CatalogUseCase) Get(ctx context.Context, id string) (*entity.Sweet, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return uc.sweets.Get(ctx, id)
}

// Purchase buys one unit of each id. Requests run concurrently and results
// keep the order of ids. The first failure cancels requests not yet sent.
// Purchases the API already accepted stay bought, so on error the sweets
// that did go through are returned alongside it.
func (uc *CatalogUseCase) Purchase(ctx context.Context, ids ...string) ([]entity.Sweet, error) {
	if err := uc.authorize(ShopperRequirement); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, domainerror.ErrInvalidRequest("at least one sweet id is required", nil)
	}
	for _, id := range ids {
		if err := requireID(id); err != nil {
			return nil, err
		}
	}

	bought := make([]*entity.Sweet, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPurchases)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			sweet, err := uc.sweets.Purchase(gctx, id)
			if err != nil {
				return err
			}
			bought[i] = sweet
			return nil
		})
	}
	err := g.Wait()

	results := make([]entity.Sweet, 0, len(ids))
	for _, s := range bought {
		if s != nil {
			results = append(results, *s)
		}
	}
	if err != nil {
		uc.logger.Warn(ctx, "Purchase failed", map[string]interface{}{
			"ids":       strings.Join(ids, ","),
			"completed": len(results),
			"error":     err.Error(),
		})
		return results, err
	}

	uc.logger.Info(ctx, "Purchase completed", map[string]interface{}{"count": len(ids)})
	return results, nil
}

func (uc *CatalogUseCase) Create(ctx context.Context, in entity.SweetInput) (*entity.Sweet, error) {
	if err := uc.authorize(AdminRequirement); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, domainerror.ErrInvalidRequest(err.Error(), err)
	}
	return uc.sweets.Create(ctx, in)
}

func (uc *CatalogUseCase) Update(ctx context.Context, id string, upd entity.SweetUpdate) (*entity.Sweet, error) {
	if err := uc.authorize(AdminRequirement); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := upd.Validate(); err != nil {
		return nil, domainerror.ErrInvalidRequest(err.Error(), err)
	}
	return uc.sweets.Update(ctx, id, upd)
}

func (uc *CatalogUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.authorize(AdminRequirement); err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	return uc.sweets.Delete(ctx, id)
}

func (uc *CatalogUseCase) Restock(ctx context.Context, id string, quantity int) (*entity.Sweet, error) {
	if err := uc.authorize(AdminRequirement); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domainerror.ErrInvalidRequest(entity.ErrInvalidRestock.Error(), entity.ErrInvalidRestock)
	}
	return uc.sweets.Restock(ctx, id, quantity)
}

// authorize maps a guard decision onto an error. A loading session counts
// as unauthenticated since no request can wait on it here.
func (uc *CatalogUseCase) authorize(req session.Requirement) error {
	decision := Decide(uc.sessions.State(), req)
	if decision.IsAllowed() {
		return nil
	}
	if decision.Reason == session.ReasonForbidden {
		return domainerror.ErrForbidden
	}
	return domainerror.ErrUnauthenticated
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return domainerror.ErrInvalidRequest("sweet id is required", nil)
	}
	return nil
}
