package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/model"
)

// GameRepo provides read access to the games table.
type GameRepo struct {
	ex executor
}

// NewGameRepo returns a GameRepo bound to the database.
func NewGameRepo(db *sql.DB) *GameRepo { return &GameRepo{ex: db} }

// GameByID loads one game.
func (r *GameRepo) GameByID(ctx context.Context, id uint64) (*model.Game, error) {
	var g model.Game
	err := r.ex.QueryRowContext(ctx,
		`SELECT id, title, publisher, created_at FROM games WHERE id = ?`, id).
		Scan(&g.ID, &g.Title, &g.Publisher, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
