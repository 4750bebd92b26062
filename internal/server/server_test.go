package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbscribe/internal/database"
	"github.com/koustreak/dbscribe/internal/database/sqlite"
	"github.com/koustreak/dbscribe/internal/dialect"
	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/introspect"
	"github.com/koustreak/dbscribe/internal/schema"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Driver) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(ctx, database.DefaultConfig(database.DriverSQLite, ":memory:"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	for _, stmt := range []string{
		`CREATE TABLE author (id INTEGER NOT NULL, name TEXT NOT NULL, CONSTRAINT pk_author PRIMARY KEY (id))`,
		`CREATE TABLE book (
			id        INTEGER NOT NULL,
			author_id INTEGER NOT NULL,
			title     TEXT,
			CONSTRAINT pk_book PRIMARY KEY (id),
			CONSTRAINT fk_book_author FOREIGN KEY (author_id) REFERENCES author (id)
		)`,
		`CREATE INDEX ix_book_title ON book (title)`,
	} {
		_, err := db.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	in, err := introspect.New(db, dialect.DefaultRegistry())
	require.NoError(t, err)

	ts := httptest.NewServer(New(in))
	t.Cleanup(ts.Close)
	return ts, db
}

func get(t *testing.T, ts *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","backend":"sqlite"}`, body)
}

func TestListSchemasAndTables(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := get(t, ts, "/schemas")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["main"]`, body)

	status, body = get(t, ts, "/schemas/main/tables")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["author","book"]`, body)

	status, body = get(t, ts, "/schemas/_/tables?ordered=true")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["author","book"]`, body)
}

func TestInspectTable(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := get(t, ts, "/schemas/main/tables/book")
	require.Equal(t, http.StatusOK, status, body)

	var table schema.Table
	require.NoError(t, json.Unmarshal([]byte(body), &table))
	assert.Equal(t, "book", table.Name)
	assert.Equal(t, []string{"id", "author_id", "title"}, table.ColumnNames())
	require.NotNil(t, table.PrimaryKey)
	assert.Equal(t, "PK_book", table.PrimaryKey.Name)
	require.Len(t, table.ForeignKeys, 1)
	assert.Equal(t, "author", table.ForeignKeys[0].ReferencedTableName)
}

func TestTableDDL(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := get(t, ts, "/schemas/main/tables/author/ddl")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CREATE TABLE \"author\"(\n"+
		"    \"id\" INTEGER NOT NULL,\n"+
		"    \"name\" TEXT NOT NULL,\n"+
		"    CONSTRAINT \"PK_author\" PRIMARY KEY(\"id\"));\n", body)

	status, body = get(t, ts, "/schemas/main/tables/book/ddl?constraints=false")
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "CONSTRAINT")
	assert.Contains(t, body, `CREATE INDEX "ix_book_title" ON "book"("title")`)
}

func TestSchemaDDL_CreatesInDependencyOrder(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := get(t, ts, "/schemas/main/ddl")
	require.Equal(t, http.StatusOK, status)

	// The script must replay on an empty database.
	ctx := context.Background()
	dst, err := sqlite.New(ctx, database.DefaultConfig(database.DriverSQLite, ":memory:"))
	require.NoError(t, err)
	t.Cleanup(dst.Close)

	for _, stmt := range splitScript(body) {
		_, err := dst.Exec(ctx, stmt)
		require.NoError(t, err, stmt)
	}
}

func TestErrorStatus(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		path   string
		status int
		kind   string
	}{
		{"/schemas/archive/tables", http.StatusNotFound, "schema_not_found"},
		{"/schemas/main/tables/refund", http.StatusNotFound, "table_not_found"},
		{"/schemas/main/tables?ordered=maybe", http.StatusBadRequest, "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := get(t, ts, tt.path)
			assert.Equal(t, tt.status, status)

			var payload map[string]string
			require.NoError(t, json.Unmarshal([]byte(body), &payload))
			assert.Equal(t, tt.kind, payload["kind"])
		})
	}
}

func TestErrorStatus_ClosedConnection(t *testing.T) {
	ts, db := newTestServer(t)
	db.Close()

	status, _ := get(t, ts, "/schemas")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusOf(errs.New(errs.ErrKindQueryFailed, "boom")))
	assert.Equal(t, http.StatusGatewayTimeout, statusOf(errs.New(errs.ErrKindTimeout, "slow")))
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(errs.ConnectionNotOpen()))
	assert.Equal(t, http.StatusNotFound, statusOf(errs.SchemaNotFound("archive")))
}

func splitScript(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";\n") {
		if part = strings.TrimSpace(part); part != "" {
			stmts = append(stmts, part)
		}
	}
	return stmts
}
