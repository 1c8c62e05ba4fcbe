package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/tgindex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
)

// DatabaseFile is the name of the database inside the data directory.
const DatabaseFile = "tgindex.db"

// Store is a SQLite-based storage that provides the source and document
// stores through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.tgindex/data/tgindex.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".tgindex", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets the listener write while a search reads.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return tx.Commit()
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY conflict.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

const sourceColumns = `id, user_id, peer_id, identifier, name, kind, created_at, last_indexed_at, last_message_id`

// FindByPeer retrieves a user's source by platform id.
func (s *sourceStore) FindByPeer(ctx context.Context, userID, peerID int64) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE user_id = ? AND peer_id = ?`,
		userID, peerID)
	source, err := scanSource(row)
	if err != nil {
		return nil, domain.Persistence("finding source", err)
	}
	return source, nil
}

// FindByIdentifier retrieves a user's source by normalised identifier.
func (s *sourceStore) FindByIdentifier(ctx context.Context, userID int64, identifier string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE user_id = ? AND lower(identifier) = lower(?) LIMIT 1`,
		userID, identifier)
	source, err := scanSource(row)
	if err != nil {
		return nil, domain.Persistence("finding source", err)
	}
	return source, nil
}

// Insert stores a new source.
func (s *sourceStore) Insert(ctx context.Context, source *domain.Source) error {
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sources (`+sourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, source.ID, source.UserID, source.PeerID, source.Identifier, source.Name, string(source.Kind),
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
func (s *sourceStore) UpdateWatermark(ctx context.Context, userID, peerID int64, messageID int, at time.Time) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE sources SET last_message_id = ?, last_indexed_at = ?
		WHERE user_id = ? AND peer_id = ?
	`, messageID, at.UTC(), userID, peerID)
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
func (s *sourceStore) List(ctx context.Context, userID int64) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, domain.Persistence("listing sources", err)
	}
	defer rows.Close()
	return scanSources(rows)
}

// ListByPeer returns every user's source for a platform id.
func (s *sourceStore) ListByPeer(ctx context.Context, peerID int64) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE peer_id = ? ORDER BY created_at, id`, peerID)
	if err != nil {
		return nil, domain.Persistence("listing sources", err)
	}
	defer rows.Close()
	return scanSources(rows)
}

// Delete removes a user's source. Indexed documents are kept.
func (s *sourceStore) Delete(ctx context.Context, userID, peerID int64) error {
	_, err := s.store.db.ExecContext(ctx,
		`DELETE FROM sources WHERE user_id = ? AND peer_id = ?`, userID, peerID)
	if err != nil {
		return domain.Persistence("deleting source", err)
	}
	return nil
}

func scanSources(rows *sql.Rows) ([]domain.Source, error) {
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*domain.Source, error) {
	var source domain.Source
	var kind string
	var createdAt, lastIndexedAt sql.NullTime
	var lastMessageID sql.NullInt64
	if err := row.Scan(&source.ID, &source.UserID, &source.PeerID, &source.Identifier,
		&source.Name, &kind, &createdAt, &lastIndexedAt, &lastMessageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	source.Kind = domain.SourceKind(kind)
	if createdAt.Valid {
		source.CreatedAt = createdAt.Time
	}
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

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, user_id, source_id, source_name, chat_id, message_id, file_name, file_type,
	file_size, mime_type, hash, text, posted_at, indexed_at`

// FindByHash retrieves a user's document by dedup key.
func (s *documentStore) FindByHash(ctx context.Context, userID int64, hash string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE user_id = ? AND hash = ?`, userID, hash)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, domain.Persistence("finding document", err)
	}
	return doc, nil
}

// Insert stores a new document.
func (s *documentStore) Insert(ctx context.Context, doc *domain.Document) error {
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.UserID, doc.SourceID, doc.SourceName, doc.Origin.ChatID, doc.Origin.MessageID,
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
func (s *documentStore) Find(ctx context.Context, userID int64, query domain.DocumentQuery) ([]domain.Document, error) {
	where, args := documentFilter(userID, query)

	order := "DESC"
	if query.Sort == domain.SortOldest {
		order = "ASC"
	}

	//nolint:gosec // where and order are built from constants
	stmt := `SELECT ` + documentColumns + ` FROM documents WHERE ` + where +
		` ORDER BY posted_at ` + order + `, id ASC LIMIT ? OFFSET ?`
	args = append(args, query.EffectiveLimit(), query.Offset)

	rows, err := s.store.db.QueryContext(ctx, stmt, args...)
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

// documentFilter builds the WHERE clause for a query. Text matches are
// case-insensitive substrings of the file name or the message text.
func documentFilter(userID int64, query domain.DocumentQuery) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}

	if query.FileType != "" {
		clauses = append(clauses, "lower(file_type) = lower(?)")
		args = append(args, query.FileType)
	}
	if query.SourceID != "" {
		clauses = append(clauses, "source_id = ?")
		args = append(args, query.SourceID)
	}
	if query.Text != "" {
		needle := strings.ToLower(query.Text)
		clauses = append(clauses, "(instr(lower(file_name), ?) > 0 OR instr(lower(text), ?) > 0)")
		args = append(args, needle, needle)
	}

	return strings.Join(clauses, " AND "), args
}

// Get retrieves a document by ID, scoped to its owner.
func (s *documentStore) Get(ctx context.Context, userID int64, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ? AND user_id = ?`, id, userID)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, domain.Persistence("getting document", err)
	}
	return doc, nil
}

// Count returns the number of documents a user has.
func (s *documentStore) Count(ctx context.Context, userID int64) (int, error) {
	var count int
	row := s.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE user_id = ?`, userID)
	if err := row.Scan(&count); err != nil {
		return 0, domain.Persistence("counting documents", err)
	}
	return count, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var postedAt, indexedAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.UserID, &doc.SourceID, &doc.SourceName,
		&doc.Origin.ChatID, &doc.Origin.MessageID, &doc.FileName, &doc.FileType,
		&doc.FileSize, &doc.MIMEType, &doc.Hash, &doc.Text, &postedAt, &indexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if postedAt.Valid {
		doc.PostedAt = postedAt.Time
	}
	if indexedAt.Valid {
		doc.IndexedAt = indexedAt.Time
	}
	return &doc, nil
}

// ==================== Helper Functions ====================

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
