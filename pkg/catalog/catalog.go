package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skillctl/skillctl/pkg/logger"
	"github.com/skillctl/skillctl/pkg/skill"
)

// Catalog is a SQLite-backed index of a skill corpus.
type Catalog struct {
	db *sqlx.DB
}

// Entry is an indexed skill row.
type Entry struct {
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	License       string    `db:"license" json:"license,omitempty"`
	Compatibility string    `db:"compatibility" json:"compatibility,omitempty"`
	AllowedTools  string    `db:"allowed_tools" json:"-"`
	UserInvocable bool      `db:"user_invocable" json:"userInvocable"`
	Author        string    `db:"author" json:"author,omitempty"`
	Version       string    `db:"version" json:"version,omitempty"`
	Category      string    `db:"category" json:"category,omitempty"`
	Directory     string    `db:"directory" json:"directory,omitempty"`
	Builtin       bool      `db:"builtin" json:"builtin,omitempty"`
	BodyHash      string    `db:"body_hash" json:"bodyHash"`
	ScanID        string    `db:"scan_id" json:"scanId"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// Tools returns the entry's allowed tools as a slice.
func (e *Entry) Tools() []string {
	if e.AllowedTools == "" {
		return nil
	}
	return strings.Split(e.AllowedTools, ",")
}

// MarshalJSON exposes the comma-joined allowed_tools column as a list, the
// same shape the skill model uses.
func (e Entry) MarshalJSON() ([]byte, error) {
	type alias Entry
	return json.Marshal(struct {
		alias
		AllowedTools []string `json:"allowedTools,omitempty"`
	}{alias(e), e.Tools()})
}

// Scan records one rebuild of the index.
type Scan struct {
	ID         string       `db:"id" json:"id"`
	StartedAt  time.Time    `db:"started_at" json:"startedAt"`
	FinishedAt sql.NullTime `db:"finished_at" json:"-"`
	SkillCount int          `db:"skill_count" json:"skillCount"`
}

// Filter narrows List results.
type Filter struct {
	// Category restricts results to an exact metadata.category value.
	Category string
	// NameGlob restricts results to names matching a glob pattern,
	// e.g. "git-*" or "acme/**".
	NameGlob string
	// Substring restricts results to entries whose name or description
	// contains the given text, case-insensitively.
	Substring string
}

// Stats summarizes the indexed corpus.
type Stats struct {
	Total      int            `json:"total"`
	Builtin    int            `json:"builtin"`
	ByCategory map[string]int `json:"byCategory"`
	LastScan   *Scan          `json:"lastScan,omitempty"`
}

// Open opens the catalog at the given path, creating and migrating the
// database as needed. An empty path uses DefaultDBPath.
func Open(ctx context.Context, dbPath string) (*Catalog, error) {
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	db, err := open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Rebuild replaces the index with the given skills in a single
// transaction and returns the scan ID.
func (c *Catalog) Rebuild(ctx context.Context, skills map[string]*skill.Skill) (string, error) {
	scanID := uuid.New().String()
	now := time.Now().UTC()

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO scans (id, started_at, finished_at, skill_count) VALUES (?, ?, ?, ?)",
		scanID, now, now, len(skills),
	); err != nil {
		return "", errors.Wrap(err, "failed to record scan")
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM skills"); err != nil {
		return "", errors.Wrap(err, "failed to clear index")
	}

	for _, s := range skills {
		hash := sha256.Sum256([]byte(s.Content))
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO skills (
				name, description, license, compatibility, allowed_tools,
				user_invocable, author, version, category, directory,
				builtin, body_hash, scan_id, updated_at
			) VALUES (
				:name, :description, :license, :compatibility, :allowed_tools,
				:user_invocable, :author, :version, :category, :directory,
				:builtin, :body_hash, :scan_id, :updated_at
			)`,
			map[string]interface{}{
				"name":           s.Name,
				"description":    s.Description,
				"license":        s.License,
				"compatibility":  s.Compatibility,
				"allowed_tools":  strings.Join(s.AllowedTools, ","),
				"user_invocable": s.UserInvocable,
				"author":         s.Metadata.Author,
				"version":        s.Metadata.Version,
				"category":       s.Metadata.Category,
				"directory":      s.Directory,
				"builtin":        s.Builtin,
				"body_hash":      hex.EncodeToString(hash[:]),
				"scan_id":        scanID,
				"updated_at":     now,
			},
		); err != nil {
			return "", errors.Wrapf(err, "failed to index skill '%s'", s.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "failed to commit index rebuild")
	}

	logger.G(ctx).WithField("scan_id", scanID).WithField("skills", len(skills)).Debug("catalog rebuilt")
	return scanID, nil
}

// List returns indexed entries matching the filter, sorted by name.
func (c *Catalog) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := "SELECT * FROM skills"
	var args []interface{}
	if filter.Category != "" {
		query += " WHERE category = ?"
		args = append(args, filter.Category)
	}

	var entries []Entry
	if err := c.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list skills")
	}

	if filter.NameGlob != "" {
		g, err := glob.Compile(filter.NameGlob, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "invalid name pattern '%s'", filter.NameGlob)
		}
		entries = filterEntries(entries, func(e Entry) bool { return g.Match(e.Name) })
	}

	if filter.Substring != "" {
		needle := strings.ToLower(filter.Substring)
		entries = filterEntries(entries, func(e Entry) bool {
			return strings.Contains(strings.ToLower(e.Name), needle) ||
				strings.Contains(strings.ToLower(e.Description), needle)
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func filterEntries(entries []Entry, keep func(Entry) bool) []Entry {
	filtered := entries[:0]
	for _, e := range entries {
		if keep(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Get returns a single indexed entry by name.
func (c *Catalog) Get(ctx context.Context, name string) (*Entry, error) {
	var entry Entry
	err := c.db.GetContext(ctx, &entry, "SELECT * FROM skills WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Errorf("skill '%s' not found in catalog", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get skill '%s'", name)
	}
	return &entry, nil
}

// Stats returns summary statistics for the indexed corpus.
func (c *Catalog) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByCategory: make(map[string]int)}

	if err := c.db.GetContext(ctx, &stats.Total, "SELECT COUNT(*) FROM skills"); err != nil {
		return nil, errors.Wrap(err, "failed to count skills")
	}
	if err := c.db.GetContext(ctx, &stats.Builtin, "SELECT COUNT(*) FROM skills WHERE builtin"); err != nil {
		return nil, errors.Wrap(err, "failed to count builtin skills")
	}

	rows, err := c.db.QueryxContext(ctx,
		"SELECT category, COUNT(*) FROM skills WHERE category != '' GROUP BY category")
	if err != nil {
		return nil, errors.Wrap(err, "failed to count categories")
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, errors.Wrap(err, "failed to scan category count")
		}
		stats.ByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate category counts")
	}

	var last Scan
	err = c.db.GetContext(ctx, &last, "SELECT * FROM scans ORDER BY started_at DESC LIMIT 1")
	if err == nil {
		stats.LastScan = &last
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "failed to get last scan")
	}

	return stats, nil
}
