package restapi

import (
	"context"
	"net/url"

	"github.com/sweetshop/sweetshop/application/port/outbound"
	"github.com/sweetshop/sweetshop/domain/entity"
)

const sweetsPath = "/sweets"

type SweetGateway struct {
	api API
}

var _ outbound.SweetGateway = (*SweetGateway)(nil)

func NewSweetGateway(api API) *SweetGateway {
	return &SweetGateway{api: api}
}

func sweetPath(id string, action ...string) string {
	p := sweetsPath + "/" + url.PathEscape(id)
	for _, a := range action {
		p += "/" + a
	}
	return p
}

func (g *SweetGateway) List(ctx context.Context) ([]entity.Sweet, error) {
	var out []entity.Sweet
	if err := g.api.Get(ctx, sweetsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *SweetGateway) Search(ctx context.Context, filter entity.SearchFilter) ([]entity.Sweet, error) {
	var out []entity.Sweet
	if err := g.api.Get(ctx, sweetsPath+"/search", filter.Query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *SweetGateway) Get(ctx context.Context, id string) (*entity.Sweet, error) {
	var out entity.Sweet
	if err := g.api.Get(ctx, sweetPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *SweetGateway) Create(ctx context.Context, in entity.SweetInput) (*entity.Sweet, error) {
	var out entity.Sweet
	if err := g.api.Post(ctx, sweetsPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *SweetGateway) Update(ctx context.Context, id string, upd entity.SweetUpdate) (*entity.Sweet, error) {
	var out entity.Sweet
	if err := g.api.Put(ctx, sweetPath(id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *SweetGateway) Delete(ctx context.Context, id string) error {
	return g.api.Delete(ctx, sweetPath(id), nil)
}

func (g *SweetGateway) Purchase(ctx context.Context, id string) (*entity.Sweet, error) {
	var out entity.Sweet
	if err := g.api.Post(ctx, sweetPath(id, "purchase"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

func (g *SweetGateway) Restock(ctx context.Context, id string, quantity int) (*entity.Sweet, error) {
	var out entity.Sweet
	if err := g.api.Post(ctx, sweetPath(id, "restock"), restockRequest{Quantity: quantity}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
