package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntryStatus is the lifecycle state of a journal entry. An entry starts at
// PROCESSING and moves at most once to COMPLETED when its analysis lands.
// A failed analysis leaves the entry at PROCESSING; there is no FAILED state
// and no reprocess operation.
type EntryStatus string

const (
	StatusProcessing EntryStatus = "PROCESSING"
	StatusCompleted  EntryStatus = "COMPLETED"
)

// Analysis is the open-shape result of an AI analysis. The upstream prompt
// pins five keys (summary, mood, habits_and_patterns, concerns, suggestions)
// but the value shapes have drifted across model versions, so this stays a
// schema-less map written atomically as one object.
type Analysis map[string]interface{}

// StringList reads a key whose value may be a single string or a list of
// strings (the "suggestions" key has been seen both ways).
func (a Analysis) StringList(key string) []string {
	if a == nil {
		return nil
	}
	switch v := a[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// JournalEntry is the sole persisted entity: one journal submission and,
// once analysis completes, its attached report. OwnerID and Content are
// immutable after creation; there is no edit operation.
type JournalEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	Content   string             `bson:"content" json:"content"`
	Status    EntryStatus        `bson:"status" json:"status"`
	Analysis  Analysis           `bson:"analysis,omitempty" json:"analysis,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
