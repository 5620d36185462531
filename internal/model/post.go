package model

import "time"

// Post represents a physical workstation in the gaming room as stored
// in the `posts` table.  A post hosts at most one active play session
// at any instant; that invariant is enforced by the engine, not by the
// database.  Posts that are under maintenance are flagged out of
// service and are never offered to clients.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name shown to operators (e.g. "PC-04").
//  OutOfService – true when the post must not host sessions.
//  GameIDs      – identifiers of the games installed on this post,
//                 loaded from the posts_games join table.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Post struct {
	ID           uint64    // posts.id
	Name         string    // posts.name
	OutOfService bool      // posts.out_of_service
	GameIDs      []uint64  // posts_games.game_id (eagerly loaded)
	CreatedAt    time.Time // posts.created_at
	UpdatedAt    time.Time // posts.updated_at
}

// Supports reports whether the given game is installed on the post.
func (p *Post) Supports(gameID uint64) bool {
	for _, id := range p.GameIDs {
		if id == gameID {
			return true
		}
	}
	return false
}
