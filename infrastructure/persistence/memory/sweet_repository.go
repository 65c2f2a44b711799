package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sweetshop/sweetshop/domain/entity"
)

var (
	ErrSweetNotFound = errors.New("sweet not found")
	ErrOutOfStock    = errors.New("sweet is out of stock")
)

type SweetRepository struct {
	mu     sync.RWMutex
	sweets map[string]*entity.Sweet
	now    func() time.Time
}

func NewSweetRepository() *SweetRepository {
	return &SweetRepository{
		sweets: make(map[string]*entity.Sweet),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func copySweet(s *entity.Sweet) entity.Sweet {
	c := *s
	if s.Description != nil {
		d := *s.Description
		c.Description = &d
	}
	return c
}

// List returns sweets oldest first.
func (r *SweetRepository) List(ctx context.Context) ([]entity.Sweet, error) {
	return r.Search(ctx, entity.SearchFilter{})
}

func (r *SweetRepository) Search(_ context.Context, filter entity.SearchFilter) ([]entity.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Sweet, 0, len(r.sweets))
	for _, s := range r.sweets {
		if filter.Matches(s) {
			out = append(out, copySweet(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SweetRepository) Get(_ context.Context, id string) (*entity.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sweets[id]
	if !ok {
		return nil, ErrSweetNotFound
	}
	c := copySweet(s)
	return &c, nil
}

func (r *SweetRepository) Create(_ context.Context, in entity.SweetInput) (*entity.Sweet, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s := &entity.Sweet{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Category:  in.Category,
		Price:     in.Price,
		Quantity:  in.Quantity,
		CreatedAt: r.now(),
	}
	if in.Description != "" {
		d := in.Description
		s.Description = &d
	}

	r.mu.Lock()
	r.sweets[s.ID] = s
	r.mu.Unlock()

	c := copySweet(s)
	return &c, nil
}

func (r *SweetRepository) Update(_ context.Context, id string, upd entity.SweetUpdate) (*entity.Sweet, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sweets[id]
	if !ok {
		return nil, ErrSweetNotFound
	}
	upd.Apply(s)
	c := copySweet(s)
	return &c, nil
}

func (r *SweetRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sweets[id]; !ok {
		return ErrSweetNotFound
	}
	delete(r.sweets, id)
	return nil
}

// Purchase takes one unit out of stock.
func (r *SweetRepository) Purchase(_ context.Context, id string) (*entity.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sweets[id]
	if !ok {
		return nil, ErrSweetNotFound
	}
	if s.Quantity <= 0 {
		return nil, ErrOutOfStock
	}
	s.Quantity--
	c := copySweet(s)
	return &c, nil
}

func (r *SweetRepository) Restock(_ context.Context, id string, quantity int) (*entity.Sweet, error) {
	if quantity <= 0 {
		return nil, entity.ErrInvalidRestock
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sweets[id]
	if !ok {
		return nil, ErrSweetNotFound
	}
	s.Quantity += quantity
	c := copySweet(s)
	return &c, nil
}
