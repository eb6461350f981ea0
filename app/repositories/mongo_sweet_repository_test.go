package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAdjustFilterGuardsDecrements(t *testing.T) {
	cases := []struct {
		name  string
		delta int
		want  bson.M
	}{
		{name: "purchase", delta: -2, want: bson.M{"_id": "s-1", "quantity": bson.M{"$gte": 2}}},
		{name: "single unit", delta: -1, want: bson.M{"_id": "s-1", "quantity": bson.M{"$gte": 1}}},
		{name: "restock", delta: 5, want: bson.M{"_id": "s-1"}},
		{name: "zero", delta: 0, want: bson.M{"_id": "s-1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, adjustFilter("s-1", tc.delta))
		})
	}
}

func TestAdjustUpdateIncrementsAndStamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

	assert.Equal(t, bson.M{
		"$inc": bson.M{"quantity": -3},
		"$set": bson.M{"updated_at": now.UTC()},
	}, adjustUpdate(-3, now))
}
