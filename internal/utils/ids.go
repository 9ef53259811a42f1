package utils

import "github.com/google/uuid"

// IDHookFunc defines the signature for the NewID test hook.
// It returns an id and whether to override the default generation.
type IDHookFunc func() (id string, override bool)

// NewIDHook lets tests pin the ids NewID hands out.
var NewIDHook IDHookFunc

// NewID returns a new random document id.
func NewID() string {
	if NewIDHook != nil {
		if id, override := NewIDHook(); override {
			return id
		}
	}
	return uuid.NewString()
}

// NewSortableID returns a time-ordered id. Ids from one process sort in
// creation order even within the same millisecond.
func NewSortableID() string {
	if NewIDHook != nil {
		if id, override := NewIDHook(); override {
			return id
		}
	}
	return uuid.Must(uuid.NewV7()).String()
}

// ValidID reports whether s looks like an id produced by NewID.
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
