// Package models defines the domain types for clawmarks.
package models

import "time"

// Schema version written to the backing file.
const DocumentVersion = 1

// Trail statuses.
const (
	TrailStatusActive   = "active"
	TrailStatusArchived = "archived"
)

// Mark types. TypeReference is the default when a caller omits the type.
const (
	TypeDecision     = "decision"
	TypeQuestion     = "question"
	TypeChangeNeeded = "change_needed"
	TypeReference    = "reference"
	TypeAlternative  = "alternative"
	TypeDependency   = "dependency"
)

// MarkTypes lists every valid mark type.
var MarkTypes = []string{
	TypeDecision,
	TypeQuestion,
	TypeChangeNeeded,
	TypeReference,
	TypeAlternative,
	TypeDependency,
}

// Document is the root aggregate persisted as one JSON file per project.
// Slice order is insertion order and doubles as display order.
type Document struct {
	Version int     `json:"version"`
	Trails  []Trail `json:"trails"`
	Marks   []Mark  `json:"marks"`
}

// NewDocument returns an empty document at the current schema version.
func NewDocument() *Document {
	return &Document{
		Version: DocumentVersion,
		Trails:  []Trail{},
		Marks:   []Mark{},
	}
}

// Trail is a named grouping of marks representing one thread of exploration.
type Trail struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Mark is an annotated bookmark at a file/line/column, with a semantic
// type, normalized tags, and outgoing references to other marks.
type Mark struct {
	ID         string    `json:"id"`
	TrailID    string    `json:"trail_id"`
	File       string    `json:"file"`
	Line       int       `json:"line"`
	Column     *int      `json:"column,omitempty"`
	Annotation string    `json:"annotation"`
	Type       string    `json:"type"`
	Tags       []string  `json:"tags"`
	References []string  `json:"references"`
	CreatedAt  time.Time `json:"created_at"`
}
