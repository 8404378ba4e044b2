package cli

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/xxh3"

	"github.com/runnerr0/wikisnap/internal/catalog"
	"github.com/runnerr0/wikisnap/internal/config"
)

// loadConfig loads the config file named by --config, or the default
// config (creating it on first use) when the flag is empty.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.Load(globals.Config)
	}
	return config.LoadOrCreate()
}

// openCatalog opens the run catalog database, runs migrations, and
// returns a ready-to-use store and the underlying *sql.DB.
func openCatalog(cfg *config.Config) (*catalog.SQLiteStore, *sql.DB, error) {
	dbPath, err := cfg.CatalogDBPath()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}

	runner := catalog.NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := catalog.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}

// fingerprintFile computes the xxh3-64 hash of a file's raw (still
// compressed) bytes, hex encoded. Identifies a dump across runs.
func fingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}

	var sum [8]byte
	s := h.Sum64()
	for i := 0; i < 8; i++ {
		sum[i] = byte(s >> (56 - 8*i))
	}
	return hex.EncodeToString(sum[:]), nil
}

// logf prints progress to stderr when --verbose is set.
func logf(globals *GlobalFlags, format string, args ...any) {
	if globals != nil && globals.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// formatNumber renders n with thousands separators for human output.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
