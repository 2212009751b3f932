package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/keeperhq/keeper/internal/model"
	"github.com/keeperhq/keeper/internal/service"
)

// vecExtensionLoaded is flipped by the sqlite_vec build tag; when true the
// cosine distance runs inside SQLite via the vec extension instead of in Go.
var vecExtensionLoaded bool

// IndexDocument stores a document and its embedding for semantic retrieval.
// Re-indexing an existing document replaces the previous row.
func (s *SQLiteStorage) IndexDocument(ctx context.Context, doc model.Document, embedding []float32) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDocument(&doc); err != nil {
		return err
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding", ErrNilParameter)
	}

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, type, title, content, due_date, entry_date, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, string(doc.Type), doc.Title, doc.Content,
		nullableTime(doc.DueDate), nullableTime(doc.EntryDate),
		encodeEmbedding(embedding), doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	return nil
}

// SearchSimilar returns documents whose embeddings are within the cosine
// similarity threshold, most similar first. An optional date range filters
// on the document's entry date (falling back to due date for tasks).
func (s *SQLiteStorage) SearchSimilar(ctx context.Context, embedding []float32, opts service.SearchOptions) ([]model.RetrievedDocument, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: embedding", ErrNilParameter)
	}
	if opts.Limit <= 0 {
		opts.Limit = 5
	}

	if vecExtensionLoaded {
		return s.searchSimilarVec(ctx, embedding, opts)
	}
	return s.searchSimilarScan(ctx, embedding, opts)
}

// searchSimilarVec pushes the distance computation into SQLite via the
// sqlite-vec extension.
func (s *SQLiteStorage) searchSimilarVec(ctx context.Context, embedding []float32, opts service.SearchOptions) ([]model.RetrievedDocument, error) {
	query := `SELECT id, type, title, content, due_date, entry_date,
		1.0 - vec_distance_cosine(embedding, ?) AS similarity
		FROM documents`
	args := []any{encodeEmbedding(embedding)}

	if opts.DateRange != nil {
		query += ` WHERE COALESCE(entry_date, due_date) BETWEEN ? AND ?`
		args = append(args, opts.DateRange.Start, opts.DateRange.End)
	}

	query += ` ORDER BY similarity DESC LIMIT ?`
	args = append(args, opts.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.RetrievedDocument
	for rows.Next() {
		doc, similarity, err := scanRetrieved(rows)
		if err != nil {
			return nil, err
		}
		if similarity < opts.Threshold {
			continue
		}
		results = append(results, model.RetrievedDocument{Document: doc, Similarity: similarity})
	}

	return results, rows.Err()
}

// searchSimilarScan computes cosine similarity in Go. Fine for personal
// data volumes; the vec path exists for larger stores.
func (s *SQLiteStorage) searchSimilarScan(ctx context.Context, embedding []float32, opts service.SearchOptions) ([]model.RetrievedDocument, error) {
	query := `SELECT id, type, title, content, due_date, entry_date, embedding FROM documents`
	var args []any
	if opts.DateRange != nil {
		query += ` WHERE COALESCE(entry_date, due_date) BETWEEN ? AND ?`
		args = append(args, opts.DateRange.Start, opts.DateRange.End)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.RetrievedDocument
	for rows.Next() {
		var doc model.Document
		var docType string
		var title sql.NullString
		var dueDate, entryDate sql.NullTime
		var blob []byte
		if err := rows.Scan(&doc.ID, &docType, &title, &doc.Content, &dueDate, &entryDate, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Type = model.DocumentType(docType)
		doc.Title = title.String
		doc.DueDate = scanNullableTime(dueDate)
		doc.EntryDate = scanNullableTime(entryDate)

		stored, err := decodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		similarity := cosineSimilarity(embedding, stored)
		if similarity < opts.Threshold {
			continue
		}
		results = append(results, model.RetrievedDocument{Document: doc, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

func scanRetrieved(rows *sql.Rows) (model.Document, float64, error) {
	var doc model.Document
	var docType string
	var title sql.NullString
	var dueDate, entryDate sql.NullTime
	var similarity float64
	if err := rows.Scan(&doc.ID, &docType, &title, &doc.Content, &dueDate, &entryDate, &similarity); err != nil {
		return model.Document{}, 0, fmt.Errorf("failed to scan document: %w", err)
	}
	doc.Type = model.DocumentType(docType)
	doc.Title = title.String
	doc.DueDate = scanNullableTime(dueDate)
	doc.EntryDate = scanNullableTime(entryDate)
	return doc, similarity, nil
}

// encodeEmbedding serializes a float32 vector in little-endian order, the
// layout sqlite-vec expects for BLOB vectors.
func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeEmbedding(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding blob: %d bytes", len(buf))
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when dimensions mismatch or either vector is zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
