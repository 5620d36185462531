package engine

import (
	"context"

	"github.com/iliyamo/game-room-reservation/internal/model"
)

// PostAllocator answers which post currently hosts an active session.
// A post is available exactly when no ACTIVE session references it;
// paused and completed sessions hold no claim.  The allocator is a
// pure read layer: callers must hold the relevant entity locks for
// the answer to stay true across the following mutation.
type PostAllocator struct{}

// NewPostAllocator returns a PostAllocator.
func NewPostAllocator() *PostAllocator { return &PostAllocator{} }

// ActiveSessionFor returns the active session on the post, or nil
// when the post is free.
func (a *PostAllocator) ActiveSessionFor(ctx context.Context, s Stores, postID uint64) (*model.Session, error) {
	return s.Sessions.ActiveByPost(ctx, postID)
}

// IsAvailable reports whether the post can admit a new active session.
func (a *PostAllocator) IsAvailable(ctx context.Context, s Stores, postID uint64) (bool, error) {
	active, err := a.ActiveSessionFor(ctx, s, postID)
	if err != nil {
		return false, err
	}
	return active == nil, nil
}
