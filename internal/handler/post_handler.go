package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-room-reservation/internal/repository"
)

// PostHandler exposes the floor state: which posts exist and what is
// running on them right now.
type PostHandler struct {
	Store *repository.Store
}

func NewPostHandler(store *repository.Store) *PostHandler {
	return &PostHandler{Store: store}
}

type postResp struct {
	ID           uint64   `json:"id"`
	Name         string   `json:"name"`
	OutOfService bool     `json:"out_of_service"`
	GameIDs      []uint64 `json:"game_ids"`
	Status       string   `json:"status"` // FREE | OCCUPIED | OUT_OF_SERVICE
	SessionID    *uint64  `json:"session_id,omitempty"`
	// A paused session parked on this post. The post itself stays
	// FREE; the field is a hint for operators resuming clients.
	PausedSessionID *uint64 `json:"paused_session_id,omitempty"`
}

// List returns every post with its live occupancy. A post counts as
// occupied only while a session is ACTIVE on it; paused sessions do
// not hold their post.
func (h *PostHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := h.Store.Posts.ListPosts(ctx)
	if err != nil {
		return writeEngineError(c, err)
	}
	view := h.Store.View()
	out := make([]postResp, 0, len(posts))
	for _, p := range posts {
		r := postResp{
			ID:           p.ID,
			Name:         p.Name,
			OutOfService: p.OutOfService,
			GameIDs:      p.GameIDs,
			Status:       "FREE",
		}
		if p.OutOfService {
			r.Status = "OUT_OF_SERVICE"
		} else {
			active, err := view.Sessions.ActiveByPost(ctx, p.ID)
			if err != nil {
				return writeEngineError(c, err)
			}
			if active != nil {
				r.Status = "OCCUPIED"
				id := active.ID
				r.SessionID = &id
			} else if paused, err := h.Store.Sessions.PausedByPost(ctx, p.ID); err != nil {
				return writeEngineError(c, err)
			} else if paused != nil {
				id := paused.ID
				r.PausedSessionID = &id
			}
		}
		out = append(out, r)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": out})
}

// Session returns the session currently active on a post, with its
// live remaining time. 404 when the post is free.
func (h *PostHandler) Session(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Store.Posts.PostByID(ctx, id); err != nil {
		return writeEngineError(c, err)
	}
	active, err := h.Store.View().Sessions.ActiveByPost(ctx, id)
	if err != nil {
		return writeEngineError(c, err)
	}
	if active == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no active session on post"})
	}
	return c.JSON(http.StatusOK, toSessionResp(active, time.Now().UTC()))
}
