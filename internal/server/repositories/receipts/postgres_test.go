package receipts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ts := time.Date(2024, 5, 2, 7, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`^INSERT INTO package_receipts \(user_id, package_id, total_weight, note\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING id, accepted_at$`).
		WithArgs(int64(8), "PKG-001", 12.5, "wet").
		WillReturnRows(sqlmock.NewRows([]string{"id", "accepted_at"}).AddRow(int64(1), ts))

	rc, err := repo.Create(context.Background(), &models.PackageReceipt{UserID: 8, PackageID: "PKG-001", TotalWeight: 12.5, Note: "wet"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rc.ID)
	assert.Equal(t, ts, rc.AcceptedAt)
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	cols := []string{"id", "user_id", "package_id", "total_weight", "note", "document_key", "accepted_at"}

	mock.ExpectQuery(`FROM package_receipts WHERE id = \$1$`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), int64(8), "PKG-001", 12.5, "", nil, time.Now()))
	rc, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, rc.DocumentKey)

	mock.ExpectQuery(`FROM package_receipts WHERE id = \$1$`).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(2), int64(8), "PKG-002", 3.0, "", "receipts/2/abc", time.Now()))
	rc, err = repo.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "receipts/2/abc", rc.DocumentKey)

	mock.ExpectQuery(`FROM package_receipts`).WithArgs(int64(3)).WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), 3)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetDocumentKey(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `^UPDATE package_receipts SET document_key = \$1 WHERE id = \$2$`

	mock.ExpectExec(q).WithArgs("receipts/1/k", int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetDocumentKey(context.Background(), 1, "receipts/1/k"))

	mock.ExpectExec(q).WithArgs("receipts/9/k", int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetDocumentKey(context.Background(), 9, "receipts/9/k"), common.ErrorNotFound)
}
