package model

import "time"

// DocumentType identifies what kind of record a retrievable document was
// derived from.
type DocumentType string

const (
	DocumentTask    DocumentType = "task"
	DocumentNote    DocumentType = "note"
	DocumentJournal DocumentType = "journal"
)

// Document is a unit of indexed content available to similarity search.
type Document struct {
	CreatedAt time.Time
	DueDate   *time.Time
	EntryDate *time.Time
	ID        string
	Type      DocumentType
	Title     string
	Content   string
}

// RetrievedDocument is a document returned by a similarity search, with
// its cosine similarity to the query vector. Consumed only to build a
// grounding context string.
type RetrievedDocument struct {
	Document
	Similarity float64
}
