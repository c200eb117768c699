package concierge

import (
	"bufio"
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/xinchao-storefront/internal/catalog"
	"go.uber.org/zap"
)

// VisitorHeader identifies the visitor whose lead details a request touches.
const VisitorHeader = "X-Visitor-ID"

// Products resolves the product a chat is about.
type Products interface {
	GetByID(ctx context.Context, id string) (catalog.Item, error)
}

// ActiveItems reports the item a feed session is currently showing.
type ActiveItems interface {
	ActiveItem(sessionID string) string
}

type Handler struct {
	manager  *Manager
	leads    *LeadStore
	products Products
	feed     ActiveItems
	log      *zap.Logger
}

func NewHandler(manager *Manager, leads *LeadStore, products Products, feed ActiveItems, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{manager: manager, leads: leads, products: products, feed: feed, log: log}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	chat := app.Group("/api/v1/chat")

	chat.Post("/sessions", h.startSession)
	chat.Get("/sessions/:sid", h.getSession)
	chat.Post("/sessions/:sid/messages", h.sendMessage)
	chat.Get("/sessions/:sid/summary", h.getSummary)
	chat.Post("/sessions/:sid/close", h.closeSession)
	chat.Get("/lead", h.getLead)
	chat.Put("/lead", h.putLead)
}

func visitorID(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Get(VisitorHeader)); v != "" {
		return v
	}
	return "anonymous"
}

type startRequest struct {
	ProductID     string `json:"productId"`
	FeedSessionID string `json:"feedSessionId"`
}

// startSession opens a chat about productId, or about whatever the given feed
// session is showing. Unknown products fall back to a general consultation.
func (h *Handler) startSession(c *fiber.Ctx) error {
	req := new(startRequest)
	_ = c.BodyParser(req)

	productID := req.ProductID
	if productID == "" && req.FeedSessionID != "" && h.feed != nil {
		productID = h.feed.ActiveItem(req.FeedSessionID)
	}
	var product *catalog.Item
	if productID != "" {
		if it, err := h.products.GetByID(c.UserContext(), productID); err == nil {
			product = &it
		}
	}

	s := h.manager.Start(visitorID(c), product)
	return c.Status(fiber.StatusCreated).JSON(sessionResponse(s))
}

func sessionResponse(s *Session) fiber.Map {
	var productID *string
	if s.Product != nil {
		productID = &s.Product.ID
	}
	return fiber.Map{
		"sessionId": s.ID,
		"productId": productID,
		"online":    s.Online(),
		"closed":    s.Closed(),
		"messages":  s.Messages(),
	}
}

func sessionNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "chat session not found"})
}

func (h *Handler) getSession(c *fiber.Ctx) error {
	s, ok := h.manager.Get(c.Params("sid"))
	if !ok {
		return sessionNotFound(c)
	}
	return c.JSON(sessionResponse(s))
}

type messageRequest struct {
	Text string `json:"text"`
}

// sendMessage streams the reply as plain text chunks.
func (h *Handler) sendMessage(c *fiber.Ctx) error {
	s, ok := h.manager.Get(c.Params("sid"))
	if !ok {
		return sessionNotFound(c)
	}
	req := new(messageRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	switch {
	case strings.TrimSpace(req.Text) == "":
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ErrEmptyMessage.Error()})
	case s.Closed():
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"message": ErrClosed.Error()})
	}

	// the stream writer outlives the handler, so nothing from c is used inside it
	ctx := context.WithoutCancel(c.UserContext())
	text := req.Text
	log := h.log.With(zap.String("session", s.ID))

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		_, err := s.Send(ctx, text, func(chunk string) {
			_, _ = w.WriteString(chunk)
			_ = w.Flush()
		})
		if errors.Is(err, ErrBusy) || errors.Is(err, ErrClosed) {
			log.Info("chat message rejected", zap.Error(err))
			_, _ = w.WriteString(err.Error())
			_ = w.Flush()
		}
	})
	return nil
}

func (h *Handler) getSummary(c *fiber.Ctx) error {
	s, ok := h.manager.Get(c.Params("sid"))
	if !ok {
		return sessionNotFound(c)
	}
	c.Type("txt", "utf-8")
	return c.SendString(s.RequestSummary(c.UserContext()))
}

func (h *Handler) closeSession(c *fiber.Ctx) error {
	h.manager.Close(c.UserContext(), c.Params("sid"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) getLead(c *fiber.Ctx) error {
	return c.JSON(h.leads.Get(c.UserContext(), visitorID(c)))
}

func (h *Handler) putLead(c *fiber.Ctx) error {
	l := new(Lead)
	if err := c.BodyParser(l); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(h.leads.Put(c.UserContext(), visitorID(c), *l))
}
