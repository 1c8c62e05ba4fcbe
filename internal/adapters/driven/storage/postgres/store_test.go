package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var (
	sourceCols   = []string{"id", "user_id", "peer_id", "identifier", "name", "kind", "created_at", "last_indexed_at", "last_message_id"}
	documentCols = []string{"id", "user_id", "source_id", "source_name", "chat_id", "message_id", "file_name", "file_type",
		"file_size", "mime_type", "hash", "text", "posted_at", "indexed_at"}
	fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
)

// ==================== Migrations ====================

func TestRunMigrations_UsesEmbeddedFS(t *testing.T) {
	db, _ := newMockDB(t)

	called := false
	orig := gooseUpContext
	gooseUpContext = func(_ context.Context, got *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		called = true
		assert.Same(t, db, got)
		assert.Equal(t, ".", dir)
		return nil
	}
	defer func() { gooseUpContext = orig }()

	store := &Store{db: db}
	require.NoError(t, store.RunMigrations(context.Background()))
	assert.True(t, called)
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	db, _ := newMockDB(t)

	orig := gooseUpContext
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	store := &Store{db: db}
	assert.EqualError(t, store.RunMigrations(context.Background()), "boom")
}

func TestNewStore_EmptyDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.Error(t, err)
}

// ==================== Sources ====================

func TestSourceRepository_FindByPeer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM sources WHERE user_id = \$1 AND peer_id = \$2`).
		WithArgs(int64(1), int64(100)).
		WillReturnRows(sqlmock.NewRows(sourceCols).
			AddRow("s1", int64(1), int64(100), "newsdrop", "News Drop", "channel", fixedTime, fixedTime, int64(50)))

	got, err := repo.FindByPeer(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, domain.SourceKindChannel, got.Kind)
	require.NotNil(t, got.LastMessageID)
	assert.Equal(t, 50, *got.LastMessageID)
	require.NotNil(t, got.LastIndexedAt)
}

func TestSourceRepository_FindByPeerNeverIndexed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM sources WHERE user_id = \$1 AND peer_id = \$2`).
		WithArgs(int64(1), int64(100)).
		WillReturnRows(sqlmock.NewRows(sourceCols).
			AddRow("s1", int64(1), int64(100), "newsdrop", "", "group", fixedTime, nil, nil))

	got, err := repo.FindByPeer(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.False(t, got.Indexed())
	assert.Nil(t, got.LastIndexedAt)
}

func TestSourceRepository_FindNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceRepository(db)

	mock.ExpectQuery(`FROM sources WHERE user_id = \$1 AND lower\(identifier\) = lower\(\$2\)`).
		WithArgs(int64(1), "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByIdentifier(context.Background(), 1, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceRepository_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceRepository(db)

	mock.ExpectExec(`INSERT INTO sources`).
		WithArgs("s1", int64(1), int64(100), "newsdrop", "News Drop", "channel",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	src := &domain.Source{ID: "s1", UserID: 1, PeerID: 100, Identifier: "newsdrop", Name: "News Drop", Kind: domain.SourceKindChannel}
	require.NoError(t, repo.Insert(context.Background(), src))
	assert.False(t, src.CreatedAt.IsZero())
}

func TestSourceRepository_InsertDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceRepository(db)

	mock.ExpectExec(`INSERT INTO sources`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := repo.Insert(context.Background(), &domain.Source{ID: "s1", UserID: 1, PeerID: 100})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestSourceRepository_InsertFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceRepository(db)

	mock.ExpectExec(`INSERT INTO sources`).WillReturnError(errors.New("db down"))

	err := repo.Insert(context.Background(), &domain.Source{ID: "s1", UserID: 1, PeerID: 100})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Contains(t, err.Error(), "db down")
}

func TestSourceRepository_UpdateWatermark(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "updated", rows: 1},
		{name: "missing source", rows: 0, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewSourceRepository(db)

			mock.ExpectExec(`UPDATE sources SET last_message_id = \$1, last_indexed_at = \$2`).
				WithArgs(50, fixedTime, int64(1), int64(100)).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err := repo.UpdateWatermark(context.Background(), 1, 100, 50, fixedTime)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSourceRepository_ListByPeer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceRepository(db)

	mock.ExpectQuery(`FROM sources WHERE peer_id = \$1 ORDER BY created_at, id`).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows(sourceCols).
			AddRow("s1", int64(1), int64(100), "newsdrop", "", "channel", fixedTime, nil, nil).
			AddRow("s2", int64(2), int64(100), "newsdrop", "", "channel", fixedTime, nil, nil))

	got, err := repo.ListByPeer(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[1].UserID)
}

func TestSourceRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSourceRepository(db)

	mock.ExpectExec(`DELETE FROM sources WHERE user_id = \$1 AND peer_id = \$2`).
		WithArgs(int64(1), int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), 1, 100))
}

// ==================== Documents ====================

func documentRow(rows *sqlmock.Rows, id, hash string) *sqlmock.Rows {
	return rows.AddRow(id, int64(1), "s1", "News Drop", int64(100), int64(42), "report.pdf", "pdf",
		int64(2048), "application/pdf", hash, "Quarterly report", fixedTime, fixedTime)
}

func TestDocumentRepository_FindByHash(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`FROM documents WHERE user_id = \$1 AND hash = \$2`).
		WithArgs(int64(1), "h1").
		WillReturnRows(documentRow(sqlmock.NewRows(documentCols), "d1", "h1"))

	got, err := repo.FindByHash(context.Background(), 1, "h1")
	require.NoError(t, err)
	assert.Equal(t, "d1", got.ID)
	assert.Equal(t, domain.MessageLocator{ChatID: 100, MessageID: 42}, got.Origin)
	assert.Equal(t, int64(2048), got.FileSize)
}

func TestDocumentRepository_InsertDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectExec(`INSERT INTO documents`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, Message: "duplicate key"})

	err := repo.Insert(context.Background(), &domain.Document{ID: "d1", UserID: 1, Hash: "h1", PostedAt: fixedTime})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestDocumentRepository_Find(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`FROM documents WHERE user_id = \$1 AND lower\(file_type\) = lower\(\$2\) ` +
		`AND \(file_name ILIKE \$3 OR text ILIKE \$3\) ORDER BY posted_at DESC, id ASC LIMIT \$4 OFFSET \$5`).
		WithArgs(int64(1), "pdf", `%50\%\_off%`, domain.DefaultSearchLimit, 0).
		WillReturnRows(documentRow(sqlmock.NewRows(documentCols), "d1", "h1"))

	got, err := repo.Find(context.Background(), 1, domain.DocumentQuery{FileType: "pdf", Text: "50%_off"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].ID)
}

func TestBuildFind_OldestWithSource(t *testing.T) {
	query, args := buildFind(7, domain.DocumentQuery{SourceID: "s1", Sort: domain.SortOldest, Offset: 10, Limit: 5})
	assert.Contains(t, query, "source_id = $2")
	assert.Contains(t, query, "ORDER BY posted_at ASC")
	assert.NotContains(t, query, "ILIKE")
	assert.Equal(t, []any{int64(7), "s1", 5, 10}, args)
}

func TestDocumentRepository_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`FROM documents WHERE id = \$1 AND user_id = \$2`).
		WithArgs("d1", int64(2)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 2, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE user_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.Count(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDocumentRepository_CountFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("connection reset"))

	_, err := repo.Count(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
