package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const creationColumns = `id, user_id, prompt, content, type, publish, likes, created_at, updated_at`

// DatabaseClient is the creation ledger backed by Supabase Postgres.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCreation(row rowScanner) (*models.Creation, error) {
	var c models.Creation
	var opType string
	err := row.Scan(&c.ID, &c.UserID, &c.Prompt, &c.Content, &opType, &c.Publish,
		pq.Array(&c.Likes), &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Type = models.OperationType(opType)
	return &c, nil
}

// CreateCreation appends a ledger entry. ID and timestamps are assigned here.
func (d *DatabaseClient) CreateCreation(ctx context.Context, c *models.Creation) (*models.Creation, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	likes := c.Likes
	if likes == nil {
		likes = []string{}
	}

	row := d.db.QueryRowContext(ctx, `
		INSERT INTO creations (id, user_id, prompt, content, type, publish, likes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+creationColumns,
		c.ID, c.UserID, c.Prompt, c.Content, string(c.Type), c.Publish, pq.Array(likes))

	created, err := scanCreation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create creation: %w", err)
	}
	return created, nil
}

func (d *DatabaseClient) GetCreation(ctx context.Context, id uuid.UUID) (*models.Creation, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+creationColumns+` FROM creations WHERE id = $1`, id)
	c, err := scanCreation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Creation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creation: %w", err)
	}
	return c, nil
}

func (d *DatabaseClient) ListByUser(ctx context.Context, userID string) ([]models.Creation, error) {
	return d.list(ctx, `SELECT `+creationColumns+` FROM creations WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (d *DatabaseClient) ListPublished(ctx context.Context) ([]models.Creation, error) {
	return d.list(ctx, `SELECT `+creationColumns+` FROM creations WHERE publish = true ORDER BY created_at DESC`)
}

func (d *DatabaseClient) list(ctx context.Context, query string, args ...any) ([]models.Creation, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list creations: %w", err)
	}
	defer rows.Close()

	creations := []models.Creation{}
	for rows.Next() {
		c, err := scanCreation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan creation: %w", err)
		}
		creations = append(creations, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list creations: %w", err)
	}
	return creations, nil
}

// ToggleLike flips userID's membership in the likes set. Concurrent toggles
// on the same row resolve last-write-wins.
func (d *DatabaseClient) ToggleLike(ctx context.Context, id uuid.UUID, userID string) (*models.Creation, bool, error) {
	c, err := d.GetCreation(ctx, id)
	if err != nil {
		return nil, false, err
	}

	liked := c.ToggleLike(userID)
	likes := c.Likes
	if likes == nil {
		likes = []string{}
	}

	_, err = d.db.ExecContext(ctx, `
		UPDATE creations SET likes = $1, updated_at = NOW() WHERE id = $2
	`, pq.Array(likes), id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to update likes: %w", err)
	}
	return c, liked, nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
