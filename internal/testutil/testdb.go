package testutil

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"hilo-casino/internal/config"
	"hilo-casino/internal/fairness"
	"hilo-casino/internal/game"
	"hilo-casino/internal/resultpush"
	"hilo-casino/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

// OpenTestStore returns a store bound to a private schema that holds the round
// archive tables. The schema is dropped when the test ends. Tests are skipped
// when TEST_POSTGRES_DSN is unset.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	schema := pgx.Identifier{"hilo_test_" + strings.ToLower(ulid.Make().String())}.Sanitize()
	if err := execAdmin(ctx, cfg.TestPostgresDSN, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := execAdmin(ctx, cfg.TestPostgresDSN, "DROP SCHEMA "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
	})

	st, err := store.New(searchPathDSN(cfg.TestPostgresDSN, strings.Trim(schema, `"`)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(st.Close)

	ddl, err := os.ReadFile(migrationPath("000001_init.up.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := st.Pool.Exec(ctx, string(ddl)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	return st
}

// SettledRound builds the record a room publishes after settling roundID,
// with a real commitment so Verify lookups find it.
func SettledRound(t *testing.T, roomID string, roundID int64, dice [3]int, at time.Time, payouts ...game.Payout) resultpush.RoundRecord {
	t.Helper()
	c, err := fairness.Open(nil)
	if err != nil {
		t.Fatalf("open commitment: %v", err)
	}
	sum := dice[0] + dice[1] + dice[2]
	if payouts == nil {
		payouts = []game.Payout{}
	}
	return resultpush.RoundRecord{
		RoomID:    roomID,
		RoundID:   roundID,
		Dice:      dice,
		Sum:       sum,
		Side:      game.SideForSum(sum),
		Seed:      c.Reveal(),
		Commit:    c.Commit,
		SettledAt: at.UTC().Truncate(time.Millisecond),
		Payouts:   payouts,
	}
}

// ArchiveRounds delivers each record to the postgres sink.
func ArchiveRounds(t *testing.T, st *store.Store, recs ...resultpush.RoundRecord) {
	t.Helper()
	for _, rec := range recs {
		if err := st.Deliver(context.Background(), rec); err != nil {
			t.Fatalf("archive %s round %d: %v", rec.RoomID, rec.RoundID, err)
		}
	}
}

func execAdmin(ctx context.Context, dsn, sql string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, sql)
	return err
}

// searchPathDSN pins the schema for URL and keyword/value DSNs alike.
func searchPathDSN(dsn, schema string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		q := u.Query()
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return dsn + " search_path=" + schema
}

func migrationPath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations", name)
}
