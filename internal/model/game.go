package model

import "time"

// Game represents a row in the `games` table.  Games are pure
// reference data: sessions and reservations point at them, and posts
// advertise which games they have installed.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – display title of the game.
//  Publisher – publisher name, informational only.
//  CreatedAt – timestamp of creation.
type Game struct {
	ID        uint64    // games.id
	Title     string    // games.title
	Publisher string    // games.publisher
	CreatedAt time.Time // games.created_at
}
