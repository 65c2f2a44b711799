package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sweetshop/sweetshop/domain/entity"
	"github.com/sweetshop/sweetshop/infrastructure/http/response"
	"github.com/sweetshop/sweetshop/infrastructure/persistence/memory"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
)

type SweetStore interface {
	Search(ctx context.Context, filter entity.SearchFilter) ([]entity.Sweet, error)
	Get(ctx context.Context, id string) (*entity.Sweet, error)
	Create(ctx context.Context, in entity.SweetInput) (*entity.Sweet, error)
	Update(ctx context.Context, id string, upd entity.SweetUpdate) (*entity.Sweet, error)
	Delete(ctx context.Context, id string) error
	Purchase(ctx context.Context, id string) (*entity.Sweet, error)
	Restock(ctx context.Context, id string, quantity int) (*entity.Sweet, error)
}

type SweetHandler struct {
	sweets SweetStore
	logger logger.Logger
}

func NewSweetHandler(sweets SweetStore, log logger.Logger) *SweetHandler {
	return &SweetHandler{sweets: sweets, logger: log}
}

func (h *SweetHandler) List(w http.ResponseWriter, r *http.Request) {
	sweets, err := h.sweets.Search(r.Context(), entity.SearchFilter{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, sweets)
}

func (h *SweetHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.SearchFilter{Name: q.Get("name"), Category: q.Get("category")}

	for key, dst := range map[string]**float64{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.UnprocessableEntity(w, key+" must be a number")
			return
		}
		*dst = &v
	}

	sweets, err := h.sweets.Search(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, sweets)
}

func (h *SweetHandler) Get(w http.ResponseWriter, r *http.Request) {
	sweet, err := h.sweets.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, sweet)
}

func (h *SweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in entity.SweetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.UnprocessableEntity(w, "Invalid request body")
		return
	}
	sweet, err := h.sweets.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, sweet)
}

func (h *SweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd entity.SweetUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		response.UnprocessableEntity(w, "Invalid request body")
		return
	}
	sweet, err := h.sweets.Update(r.Context(), mux.Vars(r)["id"], upd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, sweet)
}

func (h *SweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sweets.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *SweetHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	sweet, err := h.sweets.Purchase(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, sweet)
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *SweetHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.UnprocessableEntity(w, "Invalid request body")
		return
	}
	sweet, err := h.sweets.Restock(r.Context(), mux.Vars(r)["id"], req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, sweet)
}

func (h *SweetHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, memory.ErrSweetNotFound):
		response.NotFound(w, "Sweet not found")
	case errors.Is(err, memory.ErrOutOfStock):
		response.BadRequest(w, "Sweet is out of stock")
	case errors.Is(err, entity.ErrSweetNameRequired),
		errors.Is(err, entity.ErrSweetCategoryRequired),
		errors.Is(err, entity.ErrInvalidPrice),
		errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrInvalidRestock),
		errors.Is(err, entity.ErrEmptyUpdate):
		response.UnprocessableEntity(w, capitalize(err.Error()))
	default:
		h.logger.Error(r.Context(), "Sweet operation failed", err, nil)
		response.InternalServerError(w, "Internal server error")
	}
}
