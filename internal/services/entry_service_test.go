package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Twahaaa/JOURNY/internal/apperr"
	"github.com/Twahaaa/JOURNY/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeEntryStore is an in-memory EntryStore for exercising the service
// without MongoDB.
type fakeEntryStore struct {
	mu          sync.Mutex
	entries     map[primitive.ObjectID]*models.JournalEntry
	order       []primitive.ObjectID
	createCalls int
	failCreate  error
	failUpdate  error
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[primitive.ObjectID]*models.JournalEntry)}
}

func (f *fakeEntryStore) Create(ctx context.Context, ownerID, content string) (*models.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	now := time.Now().UTC()
	entry := &models.JournalEntry{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		Content:   content,
		Status:    models.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.entries[entry.ID] = entry
	f.order = append(f.order, entry.ID)
	copied := *entry
	return &copied, nil
}

func (f *fakeEntryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, apperr.NotFound("Entry not found")
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeEntryStore) FindAllByOwner(ctx context.Context, ownerID string) ([]models.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.JournalEntry
	for _, id := range f.order {
		if e := f.entries[id]; e.OwnerID == ownerID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEntryStore) UpdateAnalysis(ctx context.Context, id primitive.ObjectID, analysis models.Analysis) (*models.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	entry, ok := f.entries[id]
	if !ok {
		return nil, apperr.NotFound("Entry not found")
	}
	entry.Analysis = analysis
	entry.Status = models.StatusCompleted
	entry.UpdatedAt = time.Now().UTC()
	copied := *entry
	return &copied, nil
}

func (f *fakeEntryStore) DeleteByID(ctx context.Context, id primitive.ObjectID, ownerID string) (*models.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok || entry.OwnerID != ownerID {
		return nil, apperr.NotFound("Entry not found or user not authorized")
	}
	delete(f.entries, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	copied := *entry
	return &copied, nil
}

// fakeAnalyzer returns a canned result or error; onAnalyze lets tests
// observe store state at the moment of the upstream call.
type fakeAnalyzer struct {
	result    models.Analysis
	err       error
	calls     int
	onAnalyze func()
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, entryText string) (models.Analysis, error) {
	f.calls++
	if f.onAnalyze != nil {
		f.onAnalyze()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeCache is an in-memory EntryCache that records invalidations.
type fakeCache struct {
	mu          sync.Mutex
	data        map[string][]models.JournalEntry
	invalidates int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]models.JournalEntry)}
}

func (f *fakeCache) Get(ctx context.Context, ownerID string) ([]models.JournalEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, ok := f.data[ownerID]
	return entries, ok
}

func (f *fakeCache) Set(ctx context.Context, ownerID string, entries []models.JournalEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[ownerID] = entries
}

func (f *fakeCache) Invalidate(ctx context.Context, ownerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidates++
	delete(f.data, ownerID)
}

func TestSubmitForAnalysisSuccess(t *testing.T) {
	store := newFakeEntryStore()
	want := models.Analysis{
		"summary":             "A good day overall.",
		"mood":                "positive",
		"habits_and_patterns": "regular exercise",
		"concerns":            "none",
		"suggestions":         []interface{}{"keep it up"},
	}

	var statusDuringAnalysis models.EntryStatus
	analyzer := &fakeAnalyzer{result: want}
	analyzer.onAnalyze = func() {
		// Exactly one record must exist, and it must already be durable
		// (PROCESSING) before the upstream call happens.
		require.Equal(t, 1, store.createCalls)
		for _, e := range store.entries {
			statusDuringAnalysis = e.Status
		}
	}

	svc := NewEntryService(store, analyzer, nil)
	result, err := svc.SubmitForAnalysis(context.Background(), "user-1", "Had a great day")
	require.NoError(t, err)

	assert.Equal(t, models.StatusProcessing, statusDuringAnalysis)
	assert.Equal(t, 1, analyzer.calls)
	assert.NotEmpty(t, result.EntryID)
	assert.Equal(t, want, result.Analysis)

	id, err := primitive.ObjectIDFromHex(result.EntryID)
	require.NoError(t, err)
	stored, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, want, stored.Analysis)
	assert.Equal(t, "Had a great day", stored.Content)
}

func TestSubmitForAnalysisEmptyText(t *testing.T) {
	store := newFakeEntryStore()
	analyzer := &fakeAnalyzer{}
	svc := NewEntryService(store, analyzer, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.SubmitForAnalysis(context.Background(), "user-1", text)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	}

	// Rejected before any store or network call
	assert.Equal(t, 0, store.createCalls)
	assert.Equal(t, 0, analyzer.calls)
}

func TestSubmitForAnalysisUpstreamFailure(t *testing.T) {
	store := newFakeEntryStore()
	analyzer := &fakeAnalyzer{err: apperr.Analysis("Failed to analyze entry.", errors.New("analysis is not valid JSON"))}
	svc := NewEntryService(store, analyzer, nil)

	_, err := svc.SubmitForAnalysis(context.Background(), "user-1", "rough week")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAnalysis))

	// The created record is not rolled back; it stays PROCESSING with no
	// analysis attached.
	require.Equal(t, 1, store.createCalls)
	entries, err := store.FindAllByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.StatusProcessing, entries[0].Status)
	assert.Nil(t, entries[0].Analysis)
}

func TestSubmitForAnalysisDropsListingCachedDuringAnalysis(t *testing.T) {
	store := newFakeEntryStore()
	cache := newFakeCache()
	analyzer := &fakeAnalyzer{result: models.Analysis{"summary": "fine"}}

	svc := NewEntryService(store, analyzer, cache)

	// A listing that lands while the upstream call is in flight caches the
	// entry in its PROCESSING state.
	analyzer.onAnalyze = func() {
		entries, err := svc.ListEntries(context.Background(), "user-1")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, models.StatusProcessing, entries[0].Status)
		_, ok := cache.Get(context.Background(), "user-1")
		require.True(t, ok, "the mid-analysis listing must have populated the cache")
	}

	_, err := svc.SubmitForAnalysis(context.Background(), "user-1", "long day")
	require.NoError(t, err)

	// The stale PROCESSING snapshot must be gone once the entry completes,
	// so the next listing reflects the COMPLETED state immediately instead
	// of waiting out the cache TTL.
	_, ok := cache.Get(context.Background(), "user-1")
	assert.False(t, ok)

	entries, err := svc.ListEntries(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.StatusCompleted, entries[0].Status)
	assert.Equal(t, models.Analysis{"summary": "fine"}, entries[0].Analysis)
}

func TestListEntriesSortedByCreatedAtDescending(t *testing.T) {
	store := newFakeEntryStore()
	svc := NewEntryService(store, &fakeAnalyzer{}, nil)

	// Insert out of chronological order; the store returns insertion order.
	base := time.Now().UTC()
	for _, offset := range []time.Duration{2 * time.Hour, 0, 5 * time.Hour, time.Hour} {
		entry, err := store.Create(context.Background(), "user-1", "entry")
		require.NoError(t, err)
		store.entries[entry.ID].CreatedAt = base.Add(offset)
	}
	other, err := store.Create(context.Background(), "user-2", "not yours")
	require.NoError(t, err)

	entries, err := svc.ListEntries(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.After(entries[i-1].CreatedAt),
			"entries must be sorted createdAt-descending")
	}
	for _, e := range entries {
		assert.NotEqual(t, other.ID, e.ID)
		assert.Equal(t, "user-1", e.OwnerID)
	}
}

func TestGetEntryOwnership(t *testing.T) {
	store := newFakeEntryStore()
	svc := NewEntryService(store, &fakeAnalyzer{}, nil)

	entry, err := store.Create(context.Background(), "user-1", "mine")
	require.NoError(t, err)

	got, err := svc.GetEntry(context.Background(), "user-1", entry.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)

	// Another identity gets the same answer as a missing entry
	_, err = svc.GetEntry(context.Background(), "user-2", entry.ID.Hex())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = svc.GetEntry(context.Background(), "user-1", primitive.NewObjectID().Hex())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGetEntryMalformedID(t *testing.T) {
	store := newFakeEntryStore()
	svc := NewEntryService(store, &fakeAnalyzer{}, nil)

	for _, id := range []string{"not-an-object-id", "12345", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, err := svc.GetEntry(context.Background(), "user-1", id)
		require.Error(t, err, "id %q", id)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation), "id %q", id)
	}
}

func TestDeleteEntryOwnership(t *testing.T) {
	store := newFakeEntryStore()
	svc := NewEntryService(store, &fakeAnalyzer{}, nil)

	entry, err := store.Create(context.Background(), "user-1", "mine")
	require.NoError(t, err)

	// Wrong owner cannot delete
	_, err = svc.DeleteEntry(context.Background(), "user-2", entry.ID.Hex())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	entries, _ := store.FindAllByOwner(context.Background(), "user-1")
	require.Len(t, entries, 1)

	// Malformed id never reaches the store
	_, err = svc.DeleteEntry(context.Background(), "user-1", "nope")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	deleted, err := svc.DeleteEntry(context.Background(), "user-1", entry.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, entry.ID, deleted.ID)
	entries, _ = store.FindAllByOwner(context.Background(), "user-1")
	assert.Empty(t, entries)
}

func TestSubmitForAnalysisStoreFailure(t *testing.T) {
	store := newFakeEntryStore()
	store.failCreate = apperr.Store(errors.New("mongo down"))
	analyzer := &fakeAnalyzer{result: models.Analysis{"summary": "x"}}
	svc := NewEntryService(store, analyzer, nil)

	_, err := svc.SubmitForAnalysis(context.Background(), "user-1", "text")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindStore))
	// No upstream call when the durable record could not be created
	assert.Equal(t, 0, analyzer.calls)
}
