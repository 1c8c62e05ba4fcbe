package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
)

// SourceRepository implements driven.SourceStore on PostgreSQL.
type SourceRepository struct {
	db DBTX
}

var _ driven.SourceStore = (*SourceRepository)(nil)

// NewSourceRepository binds a repository to db.
func NewSourceRepository(db DBTX) *SourceRepository {
	return &SourceRepository{db: db}
}

const sourceColumns = `id, user_id, peer_id, identifier, name, kind, created_at, last_indexed_at, last_message_id`

// FindByPeer retrieves a user's source by platform id.
func (r *SourceRepository) FindByPeer(ctx context.Context, userID, peerID int64) (*domain.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE user_id = $1 AND peer_id = $2`
	source, err := scanSource(r.db.QueryRowContext(ctx, query, userID, peerID))
	if err != nil {
		return nil, domain.Persistence("finding source", err)
	}
	return source, nil
}

// FindByIdentifier retrieves a user's source by normalised identifier.
func (r *SourceRepository) FindByIdentifier(ctx context.Context, userID int64, identifier string) (*domain.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE user_id = $1 AND lower(identifier) = lower($2) LIMIT 1`
	source, err := scanSource(r.db.QueryRowContext(ctx, query, userID, identifier))
	if err != nil {
		return nil, domain.Persistence("finding source", err)
	}
	return source, nil
}

// Insert stores a new source.
func (r *SourceRepository) Insert(ctx context.Context, source *domain.Source) error {
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO sources (` + sourceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		source.ID, source.UserID, source.PeerID, source.Identifier, source.Name, string(source.Kind),
		source.CreatedAt.UTC(), nullTime(source.LastIndexedAt), nullInt(source.LastMessageID))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.Persistence("inserting source", err)
	}
	return nil
}

// UpdateWatermark sets the last indexed message id and time.
func (r *SourceRepository) UpdateWatermark(ctx context.Context, userID, peerID int64, messageID int, at time.Time) error {
	query := `UPDATE sources SET last_message_id = $1, last_indexed_at = $2
		WHERE user_id = $3 AND peer_id = $4`
	result, err := r.db.ExecContext(ctx, query, messageID, at.UTC(), userID, peerID)
	if err != nil {
		return domain.Persistence("updating watermark", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Persistence("updating watermark", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns all sources of a user, oldest first.
func (r *SourceRepository) List(ctx context.Context, userID int64) ([]domain.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE user_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, userID)
}

// ListByPeer returns every user's source for a platform id.
func (r *SourceRepository) ListByPeer(ctx context.Context, peerID int64) ([]domain.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE peer_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, peerID)
}

// Delete removes a user's source. Indexed documents are kept.
func (r *SourceRepository) Delete(ctx context.Context, userID, peerID int64) error {
	query := `DELETE FROM sources WHERE user_id = $1 AND peer_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, peerID); err != nil {
		return domain.Persistence("deleting source", err)
	}
	return nil
}

func (r *SourceRepository) list(ctx context.Context, query string, arg int64) ([]domain.Source, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, domain.Persistence("listing sources", err)
	}
	defer rows.Close()

	sources := make([]domain.Source, 0)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, domain.Persistence("scanning source", err)
		}
		sources = append(sources, *source)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("iterating sources", err)
	}
	return sources, nil
}

func scanSource(row rowScanner) (*domain.Source, error) {
	var source domain.Source
	var kind string
	var lastIndexedAt sql.NullTime
	var lastMessageID sql.NullInt64
	if err := row.Scan(&source.ID, &source.UserID, &source.PeerID, &source.Identifier,
		&source.Name, &kind, &source.CreatedAt, &lastIndexedAt, &lastMessageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	source.Kind = domain.SourceKind(kind)
	if lastIndexedAt.Valid {
		t := lastIndexedAt.Time
		source.LastIndexedAt = &t
	}
	if lastMessageID.Valid {
		id := int(lastMessageID.Int64)
		source.LastMessageID = &id
	}
	return &source, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
