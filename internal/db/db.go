package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/ChaseHampton/graver/internal/cemetery"
	"github.com/ChaseHampton/graver/internal/config"
	"github.com/ChaseHampton/graver/internal/memorial"
)

var ErrNotFound = errors.New("not found")

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type Store struct {
	db      *sqlx.DB
	dialect dialect
}

// Open connects to the database named by cfg and creates the tables.
func Open(ctx context.Context, cfg config.DbConfig) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	s, err := NewStore(db, cfg.Driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := s.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func NewStore(db *sqlx.DB, driver string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return &Store{db: db, dialect: d}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateTables(ctx context.Context) error {
	for _, stmt := range []string{s.dialect.createGraves, s.dialect.createCemeteries} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

// SaveMemorial inserts m or replaces the row with the same memorial id.
func (s *Store) SaveMemorial(ctx context.Context, m memorial.Memorial) error {
	if _, err := s.db.NamedExecContext(ctx, s.dialect.upsert("graves", "memorial_id", memorialColumns), NewMemorialDto(m)); err != nil {
		return fmt.Errorf("failed to save memorial %d: %w", m.MemorialID, err)
	}
	return nil
}

// GetMemorial returns ErrNotFound when no row has the id.
func (s *Store) GetMemorial(ctx context.Context, id int64) (memorial.Memorial, error) {
	var dto MemorialDto
	query := s.db.Rebind("SELECT " + strings.Join(memorialColumns, ", ") + " FROM graves WHERE memorial_id = ?")
	if err := s.db.GetContext(ctx, &dto, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return memorial.Memorial{}, fmt.Errorf("memorial_id=%d: %w", id, ErrNotFound)
		}
		return memorial.Memorial{}, fmt.Errorf("failed to get memorial %d: %w", id, err)
	}
	return dto.Memorial(), nil
}

func (s *Store) SaveCemetery(ctx context.Context, c cemetery.Cemetery) error {
	if _, err := s.db.NamedExecContext(ctx, s.dialect.upsert("cemeteries", "cemetery_id", cemeteryColumns), NewCemeteryDto(c)); err != nil {
		return fmt.Errorf("failed to save cemetery %d: %w", c.CemeteryID, err)
	}
	return nil
}

func (s *Store) GetCemetery(ctx context.Context, id int64) (cemetery.Cemetery, error) {
	var dto CemeteryDto
	query := s.db.Rebind("SELECT " + strings.Join(cemeteryColumns, ", ") + " FROM cemeteries WHERE cemetery_id = ?")
	if err := s.db.GetContext(ctx, &dto, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cemetery.Cemetery{}, fmt.Errorf("cemetery_id=%d: %w", id, ErrNotFound)
		}
		return cemetery.Cemetery{}, fmt.Errorf("failed to get cemetery %d: %w", id, err)
	}
	return dto.Cemetery(), nil
}

// MemorialIDs lists every stored memorial id.
func (s *Store) MemorialIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, "SELECT memorial_id FROM graves ORDER BY memorial_id"); err != nil {
		return nil, fmt.Errorf("failed to list memorial ids: %w", err)
	}
	return ids, nil
}
