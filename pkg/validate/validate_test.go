package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/sweetshop/pkg/validate"
)

type registerInput struct {
	Username string `json:"username" validate:"required,alpha_dash,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type sweetInput struct {
	Name     string   `json:"name"      validate:"required,max=100"`
	Price    *float64 `json:"price"     validate:"required,gte=0"`
	Quantity int      `json:"quantity"  validate:"gte=0"`
	ImageURL string   `json:"image_url" validate:"nullable,url"`
	Role     string   `json:"role"      validate:"nullable,in=user|admin"`
}

func price(f float64) *float64 { return &f }

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{Username: "ravi_k", Email: "ravi@example.com", Password: "secret1"})
	assert.False(t, validate.HasErrors(errs), "%v", errs)

	errs = validate.Struct(&sweetInput{Name: "Ladoo", Price: price(0)})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{Username: "   "})
	assert.Equal(t, "The username field is required.", errs["username"])
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestNilPointerIsEmpty(t *testing.T) {
	errs := validate.Struct(sweetInput{Name: "Barfi"})
	assert.Equal(t, "The price field is required.", errs["price"])
}

func TestRules(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		field string
	}{
		{"bad email", registerInput{Username: "ravi", Email: "ravi@", Password: "secret1"}, "email"},
		{"short username", registerInput{Username: "ab", Email: "a@b.io", Password: "secret1"}, "username"},
		{"username charset", registerInput{Username: "ravi k", Email: "a@b.io", Password: "secret1"}, "username"},
		{"short password", registerInput{Username: "ravi", Email: "a@b.io", Password: "123"}, "password"},
		{"negative price", sweetInput{Name: "Barfi", Price: price(-1)}, "price"},
		{"negative quantity", sweetInput{Name: "Barfi", Price: price(1), Quantity: -1}, "quantity"},
		{"bad url", sweetInput{Name: "Barfi", Price: price(1), ImageURL: "ftp://x"}, "image_url"},
		{"unknown role", sweetInput{Name: "Barfi", Price: price(1), Role: "owner"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validate.Struct(tt.in)
			assert.Contains(t, errs, tt.field)
			assert.Len(t, errs, 1, "%v", errs)
		})
	}
}

func TestNonStructIsValid(t *testing.T) {
	assert.Empty(t, validate.Struct(42))
}
