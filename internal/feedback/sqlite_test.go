package feedback

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleFeedback(encounterID, code string) *Feedback {
	return &Feedback{
		EncounterID:   encounterID,
		PhysicianID:   "PHY-1",
		CoderID:       "CODER-1",
		SuggestedCode: code,
		FinalCode:     code,
		CoderAgreed:   true,
		EngineVersion: "2.0.0-enhanced",
		Confidence:    0.99,
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fb := sampleFeedback("ENC-1", "I21.9")
	require.NoError(t, store.Save(ctx, fb))
	assert.NotZero(t, fb.ID)
	assert.False(t, fb.CreatedAt.IsZero())

	got, err := store.Get(ctx, "ENC-1", "I21.9")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "CODER-1", got.CoderID)
	assert.True(t, got.CoderAgreed)
	assert.InDelta(t, 0.99, got.Confidence, 1e-9)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "ENC-404", "I21.9")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_SaveUpdatesExistingPair(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleFeedback("ENC-1", "I21.9")
	require.NoError(t, store.Save(ctx, first))

	second := sampleFeedback("ENC-1", "I21.9")
	second.FinalCode = "I21.4"
	second.CoderAgreed = false
	second.Notes = "NSTEMI documented on review"
	require.NoError(t, store.Save(ctx, second))
	assert.Equal(t, first.ID, second.ID, "same encounter/code pair must update in place")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := store.Get(ctx, "ENC-1", "I21.9")
	require.NoError(t, err)
	assert.Equal(t, "I21.4", got.FinalCode)
	assert.False(t, got.CoderAgreed)
	assert.Equal(t, "NSTEMI documented on review", got.Notes)
}

func TestSQLiteStore_ListAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, code := range []string{"I21.9", "J18.9", "K37"} {
		require.NoError(t, store.Save(ctx, sampleFeedback("ENC-1", code)))
	}

	all, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	require.NoError(t, store.Delete(ctx, all[0].ID))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSQLiteStore_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()

	source := newTestStore(t)
	require.NoError(t, source.Save(ctx, sampleFeedback("ENC-1", "I21.9")))
	require.NoError(t, source.Save(ctx, sampleFeedback("ENC-2", "K37")))

	var buf bytes.Buffer
	require.NoError(t, source.ExportJSON(ctx, &buf))

	target := newTestStore(t)
	require.NoError(t, target.Save(ctx, sampleFeedback("ENC-1", "I21.9")))

	imported, skipped, err := target.ImportJSON(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)

	count, err := target.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSQLiteStore_ImportRejectsGarbage(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.ImportJSON(context.Background(), bytes.NewBufferString("not json"))
	assert.Error(t, err)
}
