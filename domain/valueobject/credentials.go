package valueobject

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"github.com/sweetshop/sweetshop/domain/entity"
)

const MinPasswordLength = 8

var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrNameRequired     = errors.New("name is required")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type Credentials struct {
	email    string
	password string
}

// NewCredentials only checks shape; the API decides whether they are correct.
func NewCredentials(email, password string) (*Credentials, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	return &Credentials{
		email:    email,
		password: password,
	}, nil
}

func (c *Credentials) Email() string {
	return c.email
}

func (c *Credentials) Password() string {
	return c.password
}

// Registration is the sign-up form. Role is optional; the API defaults it.
type Registration struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if err := validateEmail(strings.TrimSpace(r.Email)); err != nil {
		return err
	}
	if len(r.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if r.Role != "" && !r.Role.Valid() {
		return entity.ErrUnknownRole
	}
	return nil
}

func ValidEmail(email string) bool {
	return validateEmail(email) == nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	if !emailRegex.MatchString(strings.ToLower(email)) {
		return ErrInvalidEmail
	}
	return nil
}
