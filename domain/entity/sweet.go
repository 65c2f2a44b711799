package entity

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrSweetNameRequired     = errors.New("sweet name is required")
	ErrSweetCategoryRequired = errors.New("sweet category is required")
	ErrInvalidPrice          = errors.New("price must be greater than zero")
	ErrInvalidQuantity       = errors.New("quantity must not be negative")
	ErrInvalidRestock        = errors.New("restock quantity must be greater than zero")
	ErrEmptyUpdate           = errors.New("update has no fields set")
)

type Sweet struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Sweet) InStock() bool {
	return s.Quantity > 0
}

// SweetInput is the payload for creating a sweet.
type SweetInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

func (in SweetInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrSweetNameRequired
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrSweetCategoryRequired
	}
	if in.Price <= 0 {
		return ErrInvalidPrice
	}
	if in.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// SweetUpdate carries only the fields being changed; nil means untouched.
type SweetUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
}

func (u SweetUpdate) Validate() error {
	if u.Name == nil && u.Category == nil && u.Description == nil && u.Price == nil && u.Quantity == nil {
		return ErrEmptyUpdate
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return ErrSweetNameRequired
	}
	if u.Category != nil && strings.TrimSpace(*u.Category) == "" {
		return ErrSweetCategoryRequired
	}
	if u.Price != nil && *u.Price <= 0 {
		return ErrInvalidPrice
	}
	if u.Quantity != nil && *u.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Apply copies the set fields onto s.
func (u SweetUpdate) Apply(s *Sweet) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Category != nil {
		s.Category = *u.Category
	}
	if u.Description != nil {
		d := *u.Description
		s.Description = &d
	}
	if u.Price != nil {
		s.Price = *u.Price
	}
	if u.Quantity != nil {
		s.Quantity = *u.Quantity
	}
}

type SearchFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// Query encodes the filter using the API's parameter names, skipping unset values.
func (f SearchFilter) Query() url.Values {
	q := url.Values{}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	return q
}

// Matches reports whether s satisfies the filter. Name and category match
// case-insensitively by substring.
func (f SearchFilter) Matches(s *Sweet) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Category != "" && !strings.Contains(strings.ToLower(s.Category), strings.ToLower(f.Category)) {
		return false
	}
	if f.MinPrice != nil && s.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && s.Price > *f.MaxPrice {
		return false
	}
	return true
}
