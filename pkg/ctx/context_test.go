package ctx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/pkg/auth"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
)

type purchaseInput struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// serve runs h through ctx.Wrap and decodes the envelope it wrote.
func serve(t *testing.T, r *http.Request, h ctx.HandlerFunc) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	ctx.Wrap(h).ServeHTTP(rec, r)

	var env response.Envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestBindJSON(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		ok       bool
		status   int
		quantity int
	}{
		{name: "empty body keeps zero value", body: "", ok: true, quantity: 0},
		{name: "valid body", body: `{"quantity":3}`, ok: true, quantity: 3},
		{name: "malformed JSON", body: `{"quantity":`, status: http.StatusBadRequest},
		{name: "wrong type", body: `{"quantity":"two"}`, status: http.StatusBadRequest},
		{name: "fails validation", body: `{"quantity":-1}`, status: http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))

			var in purchaseInput
			var ok bool
			var written int
			rec, env := serve(t, req, func(c *ctx.Context) {
				ok = c.BindJSON(&in)
				written = c.WrittenStatus()
			})

			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.quantity, in.Quantity)
				assert.Zero(t, written)
				assert.Zero(t, rec.Body.Len())
				return
			}
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.status, env.Status)
			assert.Equal(t, tc.status, written)
			if tc.status == http.StatusUnprocessableEntity {
				assert.Equal(t, "Validation failed", env.Message)
				assert.Contains(t, env.Errors, "quantity")
			}
		})
	}
}

func TestEnvelopes(t *testing.T) {
	cases := []struct {
		name    string
		handler ctx.HandlerFunc
		status  int
		message string
		data    any
	}{
		{
			name:    "success",
			handler: func(c *ctx.Context) { c.Success(map[string]int{"stock": 3}) },
			status:  http.StatusOK,
			data:    map[string]any{"stock": float64(3)},
		},
		{
			name:    "created",
			handler: func(c *ctx.Context) { c.Created(map[string]string{"id": "s-1"}) },
			status:  http.StatusCreated,
			data:    map[string]any{"id": "s-1"},
		},
		{
			name: "message with data",
			handler: func(c *ctx.Context) {
				c.Message(http.StatusOK, "Purchase successful, but email failed", map[string]int{"remaining_stock": 2})
			},
			status:  http.StatusOK,
			message: "Purchase successful, but email failed",
			data:    map[string]any{"remaining_stock": float64(2)},
		},
		{
			name:    "error",
			handler: func(c *ctx.Context) { c.Error(http.StatusNotFound, "Sweet not found") },
			status:  http.StatusNotFound,
			message: "Sweet not found",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var written int
			rec, env := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c *ctx.Context) {
				tc.handler(c)
				written = c.WrittenStatus()
			})

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.status, written)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.status, env.Status)
			assert.Equal(t, tc.message, env.Message)
			assert.Equal(t, tc.data, env.Data)
		})
	}
}

func TestCaller(t *testing.T) {
	cases := []struct {
		name   string
		claims *auth.Claims
		userID string
		role   string
	}{
		{name: "anonymous"},
		{
			name:   "customer",
			claims: &auth.Claims{Role: "user", RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"}},
			userID: "u-1",
			role:   "user",
		},
		{
			name:   "admin",
			claims: &auth.Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "u-2"}},
			userID: "u-2",
			role:   "admin",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.claims != nil {
				req = req.WithContext(auth.WithClaims(req.Context(), tc.claims))
			}

			var userID, role string
			serve(t, req, func(c *ctx.Context) {
				userID, role = c.UserID(), c.Role()
			})
			assert.Equal(t, tc.userID, userID)
			assert.Equal(t, tc.role, role)
		})
	}
}

func TestQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/search?name=ladoo&min_price=", nil)

	var name, minPrice, missing string
	serve(t, req, func(c *ctx.Context) {
		name, minPrice, missing = c.Query("name"), c.Query("min_price"), c.Query("category")
	})
	assert.Equal(t, "ladoo", name)
	assert.Empty(t, minPrice)
	assert.Empty(t, missing)
}
