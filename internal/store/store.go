// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tiertype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUser is returned when a username is already taken.
	ErrDuplicateUser = errors.New("username already exists")
)

// Store wraps SQLite access for users, scores and achievements.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps per-connection pragmas in effect.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			played_at TEXT NOT NULL,
			typed_chars INTEGER NOT NULL DEFAULT 0,
			mistakes INTEGER NOT NULL DEFAULT 0,
			elapsed_seconds INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			achievement_id TEXT NOT NULL,
			unlocked_at TEXT NOT NULL,
			PRIMARY KEY (user_id, achievement_id)
		);`,
		`CREATE TABLE IF NOT EXISTS progress (
			user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			difficulty TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS auth_tokens (
			jti TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			issued_at TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			revoked_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_user_played ON scores(user_id, played_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateUser inserts a user and fills in its id and creation time.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		user.Username, user.PasswordHash, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

// GetUserByUsername looks a user up by name.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
}

// GetUserByID looks a user up by id.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse user created_at: %w", err)
	}
	user.CreatedAt = parsed
	return user, nil
}

// InsertResult appends a finished session to the user's history.
func (s *Store) InsertResult(ctx context.Context, userID int64, r model.SessionResult) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (user_id, wpm, accuracy, difficulty, played_at, typed_chars, mistakes, elapsed_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID,
		r.WPM,
		r.Accuracy,
		r.Difficulty.String(),
		r.PlayedAt.UTC().Format(time.RFC3339Nano),
		r.TypedChars,
		r.Mistakes,
		r.ElapsedSeconds,
	)
	if err != nil {
		return 0, fmt.Errorf("insert score: %w", err)
	}
	return res.LastInsertId()
}

// ListResults returns the user's history, oldest first. Rows whose
// difficulty or timestamp cannot be parsed are skipped and counted.
func (s *Store) ListResults(ctx context.Context, userID int64) ([]model.SessionResult, int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT wpm, accuracy, difficulty, played_at, typed_chars, mistakes, elapsed_seconds
		 FROM scores
		 WHERE user_id = ?
		 ORDER BY played_at ASC, id ASC`, userID)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.SessionResult
	skipped := 0
	for rows.Next() {
		var r model.SessionResult
		var difficulty, playedAt string
		if err := rows.Scan(&r.WPM, &r.Accuracy, &difficulty, &playedAt, &r.TypedChars, &r.Mistakes, &r.ElapsedSeconds); err != nil {
			return nil, 0, err
		}
		d, derr := model.ParseDifficulty(difficulty)
		parsed, terr := time.Parse(time.RFC3339Nano, playedAt)
		if derr != nil || terr != nil {
			skipped++
			continue
		}
		r.Difficulty = d
		r.PlayedAt = parsed
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return results, skipped, nil
}

// UnlockedAchievements returns the ids the user has unlocked.
func (s *Store) UnlockedAchievements(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT achievement_id FROM achievements WHERE user_id = ? ORDER BY unlocked_at ASC, achievement_id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// UnlockAchievements records newly unlocked ids. Already unlocked ids keep
// their original unlock time.
func (s *Store) UnlockAchievements(ctx context.Context, userID int64, ids []string, at time.Time) (err error) {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO achievements (user_id, achievement_id, unlocked_at) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	stamp := at.UTC().Format(time.RFC3339Nano)
	for _, id := range ids {
		if _, err = stmt.ExecContext(ctx, userID, id, stamp); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ProgressedDifficulty returns the highest tier the user has unlocked,
// Easy when nothing is stored or the stored value is unknown.
func (s *Store) ProgressedDifficulty(ctx context.Context, userID int64) (model.Difficulty, error) {
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT difficulty FROM progress WHERE user_id = ?`, userID).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Easy, nil
		}
		return model.Easy, err
	}
	d, perr := model.ParseDifficulty(stored)
	if perr != nil {
		return model.Easy, nil
	}
	return d, nil
}

// AdvanceDifficulty stores d as the user's tier unless a higher tier is
// already stored. It returns the tier in effect afterwards.
func (s *Store) AdvanceDifficulty(ctx context.Context, userID int64, d model.Difficulty) (model.Difficulty, error) {
	if !d.Valid() {
		return model.Easy, fmt.Errorf("invalid difficulty %v", d)
	}
	current, err := s.ProgressedDifficulty(ctx, userID)
	if err != nil {
		return current, err
	}
	if d <= current {
		return current, nil
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO progress (user_id, difficulty, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET difficulty = excluded.difficulty, updated_at = excluded.updated_at`,
		userID, d.String(), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return current, fmt.Errorf("update progress: %w", err)
	}
	return d, nil
}

// RecordToken stores an issued login token id.
func (s *Store) RecordToken(ctx context.Context, jti string, userID int64, issuedAt, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_tokens (jti, user_id, issued_at, expires_at) VALUES (?, ?, ?, ?)`,
		jti, userID, issuedAt.UTC().Format(time.RFC3339Nano), expiresAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// RevokeToken marks a token id as logged out.
func (s *Store) RevokeToken(ctx context.Context, jti string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE auth_tokens SET revoked_at = ? WHERE jti = ? AND revoked_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), jti)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TokenActive reports whether a token id was issued and not revoked.
func (s *Store) TokenActive(ctx context.Context, jti string) (bool, error) {
	var revoked sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT revoked_at FROM auth_tokens WHERE jti = ?`, jti).Scan(&revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return !revoked.Valid, nil
}

func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE")
}
