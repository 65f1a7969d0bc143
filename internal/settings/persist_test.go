package settings

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type rowStub struct {
	blob []byte
	err  error
}

func (r rowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.blob
	return nil
}

type pgStub struct {
	rows map[string][]byte
	sql  []string
}

func (p *pgStub) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	return nil, pgx.ErrTxClosed
}

func (p *pgStub) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.sql = append(p.sql, sql)
	blob, ok := p.rows[args[0].(string)]
	if !ok {
		return rowStub{err: pgx.ErrNoRows}
	}
	return rowStub{blob: blob}
}

func (p *pgStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.sql = append(p.sql, sql)
	p.rows[args[0].(string)] = args[1].([]byte)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := &pgStub{rows: map[string][]byte{}}
	persister := NewPostgresPersister(conn)

	_, err := persister.Load(ctx, StorageKey("tenant-123"))
	require.ErrorIs(t, err, ErrNoState)

	store, err := Open(ctx, "tenant-123", persister)
	require.NoError(t, err)
	_, err = store.Set(ctx, Patch{Timezone: strPtr("Asia/Jakarta")})
	require.NoError(t, err)
	require.Contains(t, conn.sql[len(conn.sql)-1], "ON CONFLICT (key)")

	again, err := Open(ctx, "tenant-123", persister)
	require.NoError(t, err)
	require.Equal(t, "Asia/Jakarta", again.Get().Timezone)
}

func TestPostgresEnsureSchemaSurfacesBeginError(t *testing.T) {
	err := NewPostgresPersister(&pgStub{rows: map[string][]byte{}}).EnsureSchema(context.Background())
	require.ErrorIs(t, err, pgx.ErrTxClosed)
}
