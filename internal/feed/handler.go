package feed

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/xinchao-storefront/internal/catalog"
)

// VisitorHeader identifies the visitor whose social state a request touches.
const VisitorHeader = "X-Visitor-ID"

// Catalog is the catalog view a feed session is opened on.
type Catalog interface {
	Snapshot(ctx context.Context) []catalog.Item
}

type Handler struct {
	hub     *Hub
	social  *SocialStore
	catalog Catalog
}

func NewHandler(hub *Hub, social *SocialStore, cat Catalog) *Handler {
	return &Handler{hub: hub, social: social, catalog: cat}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	feed := app.Group("/api/v1/feed")

	feed.Post("/sessions", h.openSession)
	feed.Delete("/sessions/:sid", h.closeSession)
	feed.Post("/sessions/:sid/observations", h.observe)
	feed.Post("/sessions/:sid/mute", h.mute)
	feed.Post("/sessions/:sid/items/:id/toggle", h.togglePlayback)
	feed.Post("/sessions/:sid/items/:id/blocked", h.playbackBlocked)
	feed.Post("/sessions/:sid/items/:id/expand", h.toggleExpanded)

	feed.Get("/items/:id", h.getState)
	feed.Post("/items/:id/like", h.toggleLike)
	feed.Post("/items/:id/double-tap", h.doubleTap)
	feed.Post("/items/:id/save", h.toggleSave)
	feed.Get("/items/:id/comments", h.getComments)
	feed.Post("/items/:id/comments", h.addComment)
	feed.Delete("/state", h.resetState)
}

func visitorID(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Get(VisitorHeader)); v != "" {
		return v
	}
	return "anonymous"
}

func sessionNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "feed session not found"})
}

func (h *Handler) openSession(c *fiber.Ctx) error {
	items := h.catalog.Snapshot(c.UserContext())
	ids := catalog.IDs(items)
	s := h.hub.Open(ids)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"sessionId": s.ID,
		"items":     items,
		"states":    h.social.States(c.UserContext(), visitorID(c), ids),
		"muted":     s.Controller.Muted(),
		"commands":  s.Player.Drain(),
	})
}

func (h *Handler) closeSession(c *fiber.Ctx) error {
	h.hub.Close(c.Params("sid"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) observe(c *fiber.Ctx) error {
	s, ok := h.hub.Get(c.Params("sid"))
	if !ok {
		return sessionNotFound(c)
	}
	var batch []Observation
	if err := c.BodyParser(&batch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	changed := s.Controller.Observe(c.UserContext(), batch)
	return c.JSON(fiber.Map{
		"activeId": s.Controller.Active(),
		"changed":  changed,
		"commands": s.Player.Drain(),
	})
}

type muteRequest struct {
	Muted *bool `json:"muted"`
}

// mute sets the flag when the body names it and toggles it otherwise.
func (h *Handler) mute(c *fiber.Ctx) error {
	s, ok := h.hub.Get(c.Params("sid"))
	if !ok {
		return sessionNotFound(c)
	}
	req := new(muteRequest)
	_ = c.BodyParser(req)

	var muted bool
	if req.Muted != nil {
		s.Controller.SetMuted(*req.Muted)
		muted = *req.Muted
	} else {
		muted = s.Controller.ToggleMute()
	}
	return c.JSON(fiber.Map{"muted": muted, "commands": s.Player.Drain()})
}

func (h *Handler) togglePlayback(c *fiber.Ctx) error {
	s, ok := h.hub.Get(c.Params("sid"))
	if !ok {
		return sessionNotFound(c)
	}
	s.Controller.TogglePlayback(c.UserContext(), c.Params("id"))
	return c.JSON(fiber.Map{"commands": s.Player.Drain()})
}

type blockedRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) playbackBlocked(c *fiber.Ctx) error {
	s, ok := h.hub.Get(c.Params("sid"))
	if !ok {
		return sessionNotFound(c)
	}
	req := new(blockedRequest)
	_ = c.BodyParser(req)
	if req.Reason == "" {
		req.Reason = "play() rejected"
	}

	s.Controller.PlaybackBlocked(c.UserContext(), c.Params("id"), &BlockedError{Reason: req.Reason})
	return c.JSON(fiber.Map{"commands": s.Player.Drain()})
}

func (h *Handler) toggleExpanded(c *fiber.Ctx) error {
	s, ok := h.hub.Get(c.Params("sid"))
	if !ok {
		return sessionNotFound(c)
	}
	return c.JSON(fiber.Map{"expandedId": s.Controller.ToggleExpanded(c.Params("id"))})
}

func (h *Handler) getState(c *fiber.Ctx) error {
	return c.JSON(h.social.State(c.UserContext(), visitorID(c), c.Params("id")))
}

func (h *Handler) toggleLike(c *fiber.Ctx) error {
	return c.JSON(h.social.ToggleLike(c.UserContext(), visitorID(c), c.Params("id")))
}

func (h *Handler) doubleTap(c *fiber.Ctx) error {
	return c.JSON(h.social.Like(c.UserContext(), visitorID(c), c.Params("id")))
}

func (h *Handler) toggleSave(c *fiber.Ctx) error {
	return c.JSON(h.social.ToggleSave(c.UserContext(), visitorID(c), c.Params("id")))
}

func (h *Handler) getComments(c *fiber.Ctx) error {
	return c.JSON(h.social.Comments(c.UserContext(), visitorID(c), c.Params("id")))
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *Handler) addComment(c *fiber.Ctx) error {
	req := new(commentRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	st, added := h.social.AddComment(c.UserContext(), visitorID(c), c.Params("id"), req.Text)
	if !added {
		return c.JSON(st)
	}
	return c.Status(fiber.StatusCreated).JSON(st)
}

func (h *Handler) resetState(c *fiber.Ctx) error {
	h.social.Reset(c.UserContext(), visitorID(c))
	return c.SendStatus(fiber.StatusNoContent)
}
