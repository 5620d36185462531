package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/model"
)

// PostRepo provides access to the posts table.  The games installed
// on a post live in the posts_games join table and are loaded eagerly
// with every post, because game checks happen on every admission.
type PostRepo struct {
	ex executor
}

// NewPostRepo returns a PostRepo bound to the database.
func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{ex: db} }

// PostByID loads one post with its installed games.
func (r *PostRepo) PostByID(ctx context.Context, id uint64) (*model.Post, error) {
	var p model.Post
	err := r.ex.QueryRowContext(ctx,
		`SELECT id, name, out_of_service, created_at, updated_at FROM posts WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.OutOfService, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	games, err := r.gameIDs(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.GameIDs = games
	return &p, nil
}

// ListPosts returns every post ordered by name, with installed games
// populated.
func (r *PostRepo) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := r.ex.QueryContext(ctx,
		`SELECT id, name, out_of_service, created_at, updated_at FROM posts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	posts := make([]model.Post, 0)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Name, &p.OutOfService, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range posts {
		games, err := r.gameIDs(ctx, posts[i].ID)
		if err != nil {
			return nil, err
		}
		posts[i].GameIDs = games
	}
	return posts, nil
}

func (r *PostRepo) gameIDs(ctx context.Context, postID uint64) ([]uint64, error) {
	rows, err := r.ex.QueryContext(ctx,
		`SELECT game_id FROM posts_games WHERE post_id = ? ORDER BY game_id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
