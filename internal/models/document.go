// Package models defines core data structures for organizations, documents, and chunks.
package models

import "time"

// Organization is the tenant owning a set of documents.
type Organization struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Document is the metadata for one uploaded document. Name is the storage key
// (file basename); removal marks the document inactive rather than deleting it.
type Document struct {
	ID         int64     `json:"id,omitempty"`
	Org        string    `json:"org"`
	Name       string    `json:"name"`
	ChunkSize  int       `json:"chunk_size"`
	Overlap    int       `json:"overlap"`
	Model      string    `json:"model"`
	UploadTime time.Time `json:"upload_time"`
	Active     bool      `json:"active"`
}

// Chunk is one bounded span of a document's normalized text. Ordinal is the
// 0-based position within the document; Vector may be nil before embedding.
type Chunk struct {
	ID         int64     `json:"id,omitempty"`
	DocumentID int64     `json:"document_id,omitempty"`
	Ordinal    int       `json:"ordinal"`
	Text       string    `json:"text"`
	Vector     []float32 `json:"-"`
}
