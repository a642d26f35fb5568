package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/missions/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunMissionStoreContract runs a suite of tests to verify that a MissionStore
// implementation adheres to the defined interface contract.
// The store must be empty when the suite starts.
func RunMissionStoreContract(t *testing.T, store MissionStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

	t.Run("Insert and Load", func(t *testing.T) {
		id := prefix + "-load"
		m := domain.NewMission(id, "Investigate Incident", "desc", now)

		require.NoError(t, store.Insert(ctx, m), "Insert should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, id, loaded.ID)
		assert.Equal(t, "Investigate Incident", loaded.Title)
		assert.Equal(t, domain.StateCreated, loaded.State)
		assert.Empty(t, loaded.History)
	})

	t.Run("Insert Duplicate", func(t *testing.T) {
		id := prefix + "-dup"
		require.NoError(t, store.Insert(ctx, domain.NewMission(id, "first", "", now)))

		err := store.Insert(ctx, domain.NewMission(id, "second", "", now))
		assert.ErrorIs(t, err, domain.ErrMissionExists)

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "first", loaded.Title, "duplicate insert must not overwrite")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+prefix)
		assert.ErrorIs(t, err, domain.ErrMissionNotFound)
	})

	t.Run("Save", func(t *testing.T) {
		id := prefix + "-save"
		require.NoError(t, store.Insert(ctx, domain.NewMission(id, "title", "", now)))

		m, err := store.Load(ctx, id)
		require.NoError(t, err)
		m.Record(domain.TriggerAssign, domain.StateAssigned, now.Add(time.Second))
		require.NoError(t, store.Save(ctx, m))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StateAssigned, loaded.State)
		require.Len(t, loaded.History, 1)
		assert.Equal(t, domain.TriggerAssign, loaded.History[0].Trigger)
	})

	t.Run("Save Non-Existent", func(t *testing.T) {
		err := store.Save(ctx, domain.NewMission("ghost-"+prefix, "ghost", "", now))
		assert.ErrorIs(t, err, domain.ErrMissionNotFound)
	})

	t.Run("Copies Are Isolated", func(t *testing.T) {
		id := prefix + "-iso"
		m := domain.NewMission(id, "title", "", now)
		require.NoError(t, store.Insert(ctx, m))

		// Mutating the inserted pointer or a loaded copy must not leak into the store.
		m.State = domain.StateClosed
		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		loaded.History = append(loaded.History, domain.HistoryEntry{To: domain.StateClosed})

		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StateCreated, again.State)
		assert.Empty(t, again.History)
	})

	t.Run("List Preserves Insertion Order", func(t *testing.T) {
		before, err := store.List(ctx)
		require.NoError(t, err)

		ids := make([]string, 5)
		for i := range ids {
			ids[i] = fmt.Sprintf("%s-list-%d", prefix, 4-i) // inserted in descending lexical order
			require.NoError(t, store.Insert(ctx, domain.NewMission(ids[i], "t", "", now)))
		}

		all, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, len(before)+len(ids))

		tail := all[len(before):]
		for i, m := range tail {
			assert.Equal(t, ids[i], m.ID)
		}
	})
}
