package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestNewPurchaseSnapshotsSweet(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	sweet := Sweet{ID: "s-1", Name: "Gulab Jamun", Price: 12.5, Quantity: 40}

	p := NewPurchase(sweet, "u-1", 3, at)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, "s-1", p.SweetID)
	assert.Equal(t, "Gulab Jamun", p.SweetName)
	assert.Equal(t, 3, p.Quantity)
	assert.Equal(t, 12.5, p.Price)
	assert.Equal(t, 37.5, p.Total)
	assert.Equal(t, time.UTC, p.Timestamp.Location())
	assert.True(t, p.Timestamp.Equal(at))

	sweet.Price = 99
	sweet.Name = "Renamed"
	assert.Equal(t, 12.5, p.Price, "snapshot must not follow the sweet")
	assert.Equal(t, "Gulab Jamun", p.SweetName)
}

func TestLineTotalAvoidsBinaryDrift(t *testing.T) {
	assert.Equal(t, 0.3, LineTotal(0.1, 3))
	assert.Equal(t, 59.97, LineTotal(19.99, 3))
	assert.Equal(t, 0.0, LineTotal(0, 10))
}

func TestSweetChangesEmpty(t *testing.T) {
	assert.True(t, SweetChanges{}.Empty())
	name := "Barfi"
	assert.False(t, SweetChanges{Name: &name}.Empty())
}
