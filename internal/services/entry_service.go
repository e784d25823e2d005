package services

import (
	"context"
	"sort"
	"strings"

	"github.com/Twahaaa/JOURNY/internal/apperr"
	"github.com/Twahaaa/JOURNY/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntryCache caches per-owner entry listings. Strictly a read-path
// accelerator: a miss is always acceptable, correctness never depends on it.
type EntryCache interface {
	Get(ctx context.Context, ownerID string) ([]models.JournalEntry, bool)
	Set(ctx context.Context, ownerID string, entries []models.JournalEntry)
	Invalidate(ctx context.Context, ownerID string)
}

// EntryService orchestrates entry submission, analysis and retrieval. Each
// call is an independent stateless request; two concurrent submissions by
// the same user create two independent entries.
type EntryService struct {
	store    EntryStore
	analyzer Analyzer
	cache    EntryCache // optional
}

func NewEntryService(store EntryStore, analyzer Analyzer, cache EntryCache) *EntryService {
	return &EntryService{store: store, analyzer: analyzer, cache: cache}
}

func (s *EntryService) invalidateCache(ctx context.Context, ownerID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ownerID)
	}
}

// SubmitResult is what a successful submission returns to the caller.
type SubmitResult struct {
	EntryID  string
	Analysis models.Analysis
}

// SubmitForAnalysis records the raw text as a PROCESSING entry, requests an
// analysis, and on success attaches it and moves the entry to COMPLETED.
//
// The entry is created before the external call so the text is durably
// recorded even if analysis fails. A failed analysis leaves the entry at
// PROCESSING with no analysis; it is neither rolled back nor deleted, and
// there is no retry path.
func (s *EntryService) SubmitForAnalysis(ctx context.Context, ownerID, entryText string) (*SubmitResult, error) {
	if strings.TrimSpace(entryText) == "" {
		return nil, apperr.Validation("Entry text is required")
	}

	entry, err := s.store.Create(ctx, ownerID, entryText)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, ownerID)

	analysis, err := s.analyzer.Analyze(ctx, entryText)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateAnalysis(ctx, entry.ID, analysis)
	if err != nil {
		return nil, err
	}
	// A listing fetched during the analysis window cached this entry as
	// PROCESSING; drop it now that the entry is COMPLETED.
	s.invalidateCache(ctx, ownerID)

	return &SubmitResult{EntryID: updated.ID.Hex(), Analysis: updated.Analysis}, nil
}

// ListEntries returns all entries for an owner, most recent first. The sort
// happens here, after the fetch: store-side ordering has been unreliable in
// the deployed environment, so it is never relied upon.
func (s *EntryService) ListEntries(ctx context.Context, ownerID string) ([]models.JournalEntry, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, ownerID); ok {
			return cached, nil
		}
	}

	entries, err := s.store.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if s.cache != nil {
		s.cache.Set(ctx, ownerID, entries)
	}
	return entries, nil
}

// GetEntry returns one entry if it exists and belongs to the caller. A
// malformed identifier is rejected before any store query.
func (s *EntryService) GetEntry(ctx context.Context, ownerID, entryID string) (*models.JournalEntry, error) {
	id, err := parseEntryID(entryID)
	if err != nil {
		return nil, err
	}

	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.OwnerID != ownerID {
		// Same answer as a missing entry: never confirm another user's id
		return nil, apperr.NotFound("Entry not found or user not authorized")
	}
	return entry, nil
}

// DeleteEntry deletes one entry if it exists and belongs to the caller.
func (s *EntryService) DeleteEntry(ctx context.Context, ownerID, entryID string) (*models.JournalEntry, error) {
	id, err := parseEntryID(entryID)
	if err != nil {
		return nil, err
	}

	entry, err := s.store.DeleteByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, ownerID)
	return entry, nil
}

func parseEntryID(entryID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(entryID))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid entry ID")
	}
	return id, nil
}
