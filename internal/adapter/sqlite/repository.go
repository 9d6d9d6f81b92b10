package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aegis/userkit/internal/domain"
	"github.com/aegis/userkit/internal/port"
)

// Repository stores users in a SQLite database
type Repository struct {
	db *sql.DB
}

func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// single writer; also keeps a :memory: database alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

func New(dbPath string) (*Repository, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Create inserts user. Generated IDs come from the AUTOINCREMENT sequence,
// so the ID of a deleted row is never handed out again.
func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	var res sql.Result
	if user.ID != 0 {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", user.ID).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return port.ErrAlreadyExists
		}
		res, err = tx.ExecContext(ctx,
			"INSERT INTO users (id, name, email, password, updated_at) VALUES (?, ?, ?, ?, ?)",
			user.ID, user.Name, user.Email, user.Password, now)
	} else {
		res, err = tx.ExecContext(ctx,
			"INSERT INTO users (name, email, password, updated_at) VALUES (?, ?, ?, ?)",
			user.Name, user.Email, user.Password, now)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	user.ID = int(id)
	return nil
}

func (r *Repository) Get(ctx context.Context, id int) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, email, password FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *Repository) SetPassword(ctx context.Context, id int, password string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password = ?, updated_at = ? WHERE id = ?",
		password, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return port.ErrNotFound
	}
	return nil
}
