package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/pkg/bind"
)

type purchaseInput struct {
	SweetID  string `json:"sweet_id" validate:"required"`
	Quantity int    `json:"quantity"`
}

func TestJSONDecodes(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sweet_id":"s-1","quantity":2}`))
	var in purchaseInput
	errs, err := bind.JSON(r, &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, purchaseInput{SweetID: "s-1", Quantity: 2}, in)
}

func TestJSONReportsValidation(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":2}`))
	errs, err := bind.JSON(r, &purchaseInput{})
	require.NoError(t, err)
	assert.Contains(t, errs, "sweet_id")
}

func TestJSONRejectsMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":`))
	_, err := bind.JSON(r, &purchaseInput{})
	assert.ErrorIs(t, err, bind.ErrBody)
}

func TestJSONEmptyBodyKeepsDefaults(t *testing.T) {
	var in struct {
		Quantity int `json:"quantity"`
	}
	in.Quantity = 1
	r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	errs, err := bind.JSON(r, &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 1, in.Quantity)
}

func TestJSONBodyTooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sweet_id":"`+strings.Repeat("x", 64)+`"}`))
	r.Body = http.MaxBytesReader(rec, r.Body, 16)
	_, err := bind.JSON(r, &purchaseInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
