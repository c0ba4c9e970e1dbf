package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/bhoomi-portal/land-registry-api/internal/models"
)

func newDocumentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var documentRows = []string{
	"id", "property_id", "type", "file_name", "file_path", "content_hash",
	"size_bytes", "description", "uploaded_by", "uploaded_at",
}

func TestDocumentRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	document := &models.Document{
		PropertyID:  "prop-1",
		Type:        models.DocumentTypeSaleDeed,
		FileName:    "deed.pdf",
		FilePath:    "prop-1/abc.pdf",
		ContentHash: "deadbeef",
		SizeBytes:   1024,
		UploadedBy:  "owner-1",
	}
	require.NoError(t, repo.Create(context.Background(), document))
	require.NotEmpty(t, document.ID)

	rows := sqlmock.NewRows(documentRows).
		AddRow("doc-1", "prop-1", "sale_deed", "deed.pdf", "prop-1/abc.pdf", "deadbeef", 1024, nil, "owner-1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE property_id = $1 ORDER BY uploaded_at, id")).
		WithArgs("prop-1").
		WillReturnRows(rows)

	list, err := repo.ListByProperty(context.Background(), "prop-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, models.DocumentTypeSaleDeed, list[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryFindByHashExactMatch(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	rows := sqlmock.NewRows(documentRows).
		AddRow("doc-1", "prop-1", "sale_deed", "deed.pdf", "prop-1/abc.pdf", "deadbeef", 1024, nil, "owner-1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE content_hash = $1")).
		WithArgs("deadbeef").
		WillReturnRows(rows)

	found, err := repo.FindByHash(context.Background(), "deadbeef")
	require.NoError(t, err)
	require.Equal(t, "doc-1", found.ID)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE content_hash = $1")).
		WithArgs("deadbeee").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByHash(context.Background(), "deadbeee")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
