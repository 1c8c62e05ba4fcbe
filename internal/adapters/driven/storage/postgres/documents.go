package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
)

// DocumentRepository implements driven.DocumentStore on PostgreSQL.
type DocumentRepository struct {
	db DBTX
}

var _ driven.DocumentStore = (*DocumentRepository)(nil)

// NewDocumentRepository binds a repository to db.
func NewDocumentRepository(db DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, user_id, source_id, source_name, chat_id, message_id, file_name, file_type, ` +
	`file_size, mime_type, hash, text, posted_at, indexed_at`

// FindByHash retrieves a user's document by dedup key.
func (r *DocumentRepository) FindByHash(ctx context.Context, userID int64, hash string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 AND hash = $2`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, userID, hash))
	if err != nil {
		return nil, domain.Persistence("finding document", err)
	}
	return doc, nil
}

// Insert stores a new document.
func (r *DocumentRepository) Insert(ctx context.Context, doc *domain.Document) error {
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = time.Now().UTC()
	}

	query := `INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.SourceID, doc.SourceName, doc.Origin.ChatID, doc.Origin.MessageID,
		doc.FileName, doc.FileType, doc.FileSize, doc.MIMEType, doc.Hash, doc.Text,
		doc.PostedAt.UTC(), doc.IndexedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.Persistence("inserting document", err)
	}
	return nil
}

// Find returns a user's documents matching the query.
func (r *DocumentRepository) Find(ctx context.Context, userID int64, q domain.DocumentQuery) ([]domain.Document, error) {
	query, args := buildFind(userID, q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Persistence("searching documents", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, domain.Persistence("scanning document", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("iterating documents", err)
	}
	return docs, nil
}

// buildFind renders the SELECT for a document query with numbered
// placeholders.
func buildFind(userID int64, q domain.DocumentQuery) (string, []any) {
	var b strings.Builder
	args := []any{userID}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	b.WriteString(`SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1`)
	if q.FileType != "" {
		b.WriteString(` AND lower(file_type) = lower(` + next(q.FileType) + `)`)
	}
	if q.SourceID != "" {
		b.WriteString(` AND source_id = ` + next(q.SourceID))
	}
	if q.Text != "" {
		p := next("%" + escapeLike(q.Text) + "%")
		b.WriteString(` AND (file_name ILIKE ` + p + ` OR text ILIKE ` + p + `)`)
	}

	order := "DESC"
	if q.Sort == domain.SortOldest {
		order = "ASC"
	}
	b.WriteString(` ORDER BY posted_at ` + order + `, id ASC`)
	b.WriteString(` LIMIT ` + next(q.EffectiveLimit()))
	b.WriteString(` OFFSET ` + next(q.Offset))

	return b.String(), args
}

// escapeLike quotes the LIKE metacharacters so user text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Get retrieves a document by ID, scoped to its owner.
func (r *DocumentRepository) Get(ctx context.Context, userID int64, id string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND user_id = $2`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, domain.Persistence("getting document", err)
	}
	return doc, nil
}

// Count returns the number of documents a user has.
func (r *DocumentRepository) Count(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM documents WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, domain.Persistence("counting documents", err)
	}
	return count, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.UserID, &doc.SourceID, &doc.SourceName,
		&doc.Origin.ChatID, &doc.Origin.MessageID, &doc.FileName, &doc.FileType,
		&doc.FileSize, &doc.MIMEType, &doc.Hash, &doc.Text, &doc.PostedAt, &doc.IndexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &doc, nil
}
