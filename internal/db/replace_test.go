package db

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = []Column{
	{Name: "District", Type: "TEXT"},
	{Name: "Income", Type: "DOUBLE PRECISION"},
}

func TestReplaceTable_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "districts"`)).
		WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "districts" ("District" TEXT, "Income" DOUBLE PRECISION)`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"districts"}, []string{"District", "Income"}).WillReturnResult(2)
	mock.ExpectCommit()

	rows := [][]any{{"Taipei City", 1800000.0}, {"Tainan City", nil}}
	n, err := ReplaceTable(context.Background(), mock, "districts", testColumns, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTable_NoRowsStillCreates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS").WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCommit()

	n, err := ReplaceTable(context.Background(), mock, "districts", testColumns, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTable_CreateError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS").WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec("CREATE TABLE").WillReturnError(fmt.Errorf("permission denied"))
	mock.ExpectRollback()

	_, err = ReplaceTable(context.Background(), mock, "districts", testColumns, [][]any{{"A", 1.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create districts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTable_CopyErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS").WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"analytics", "districts"}, []string{"District", "Income"}).
		WillReturnError(fmt.Errorf("copy failed"))
	mock.ExpectRollback()

	_, err = ReplaceTable(context.Background(), mock, "analytics.districts", testColumns, [][]any{{"A", 1.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO analytics.districts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTable_NoColumns(t *testing.T) {
	_, err := ReplaceTable(context.Background(), nil, "districts", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestCreateTableSQL(t *testing.T) {
	got := createTableSQL("analytics.districts", testColumns)
	assert.Equal(t, `CREATE TABLE "analytics"."districts" ("District" TEXT, "Income" DOUBLE PRECISION)`, got)
}
