package sqlitestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/railbook/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoad_EmptyCollection(t *testing.T) {
	db := newTestDB(t)
	users := NewCollection[model.User](db, "users")

	got, err := users.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveLoad_RoundTripPreservesOrder(t *testing.T) {
	db := newTestDB(t)
	trains := NewCollection[model.Train](db, "trains")
	ctx := context.Background()

	in := []model.Train{
		{ID: "t001", Number: "12301", Stations: []string{"Delhi", "Kanpur", "Patna"}},
		{ID: "t002", Number: "12951", Stations: []string{"Mumbai", "Delhi"}},
	}
	require.NoError(t, trains.Save(ctx, in))

	out, err := trains.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "t001", out[0].ID)
	assert.Equal(t, []string{"Delhi", "Kanpur", "Patna"}, out[0].Stations)
	assert.Equal(t, "t002", out[1].ID)
}

func TestSave_IsAFullRewrite(t *testing.T) {
	db := newTestDB(t)
	users := NewCollection[model.User](db, "users")
	ctx := context.Background()

	require.NoError(t, users.Save(ctx, []model.User{{ID: "u1"}, {ID: "u2"}}))
	require.NoError(t, users.Save(ctx, []model.User{{ID: "u3"}}))

	out, err := users.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "u3", out[0].ID)
}

func TestCollections_AreIndependent(t *testing.T) {
	db := newTestDB(t)
	users := NewCollection[model.User](db, "users")
	trains := NewCollection[model.Train](db, "trains")
	ctx := context.Background()

	require.NoError(t, users.Save(ctx, []model.User{{ID: "u1", Name: "Alice"}}))
	require.NoError(t, trains.Save(ctx, []model.Train{{ID: "t001"}}))

	// Rewriting one collection must not disturb the other.
	require.NoError(t, users.Save(ctx, []model.User{}))

	gotTrains, err := trains.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, gotTrains, 1)

	gotUsers, err := users.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, gotUsers)
}

func TestSave_NestedTicketsSurvive(t *testing.T) {
	db := newTestDB(t)
	users := NewCollection[model.User](db, "users")
	ctx := context.Background()

	in := []model.User{{
		ID:   "u1",
		Name: "Alice",
		Tickets: []model.Ticket{{
			ID: "tk1", UserID: "u1", Source: "Delhi", Destination: "Patna",
			Train: model.Train{ID: "t001", Number: "12301",
				Stations:     []string{"Delhi", "Patna"},
				Seats:        [][]int{{0, 0}, {1, 0}},
				StationTimes: map[string]string{"Delhi": "06:00"},
			},
		}},
	}}
	require.NoError(t, users.Save(ctx, in))

	out, err := users.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	tk := out[0].Tickets[0]
	assert.Equal(t, "tk1", tk.ID)
	assert.Equal(t, [][]int{{0, 0}, {1, 0}}, tk.Train.Seats)
	assert.Equal(t, "06:00", tk.Train.StationTimes["Delhi"])
}
