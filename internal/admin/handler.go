// Package admin guards the hidden admin panel's API: a password sign-in that
// issues a JWT, and the middleware that checks it.
package admin

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	Prefix     = "/api/v1/admin"
	signInPath = Prefix + "/sign-in"
	tokenTTL   = 12 * time.Hour
	roleAdmin  = "admin"
)

type Handler struct {
	password string
	secret   []byte
	now      func() time.Time
}

type signInRequest struct {
	Password string `json:"password"`
}

// NewHandler builds the sign-in handler. An empty password disables sign-in.
func NewHandler(password, secret string) *Handler {
	return &Handler{password: password, secret: []byte(secret), now: time.Now}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post(signInPath, h.signIn)
}

// Group returns the admin router. Every route on it requires an admin token.
func (h *Handler) Group(app fiber.Router) fiber.Router {
	return app.Group(Prefix, h.Middleware(), requireAdmin)
}

// Middleware validates the bearer token and stores it in Locals("user").
// Without a signing secret every admin route is refused.
func (h *Handler) Middleware() fiber.Handler {
	if len(h.secret) == 0 {
		return func(c *fiber.Ctx) error {
			if c.Path() == signInPath {
				return c.Next()
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin is disabled"})
		}
	}
	return jwtware.New(jwtware.Config{
		SigningKey: h.secret,
		Filter: func(c *fiber.Ctx) bool {
			return c.Path() == signInPath
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
		},
	})
}

func (h *Handler) signIn(c *fiber.Ctx) error {
	if h.password == "" || len(h.secret) == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin sign-in is disabled"})
	}
	payload := new(signInRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if subtle.ConstantTimeCompare([]byte(payload.Password), []byte(h.password)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid password"})
	}

	expires := h.now().Add(tokenTTL)
	claims := jwt.MapClaims{
		"role": roleAdmin,
		"exp":  expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"token":     signed,
		"expiresAt": expires.UnixMilli(),
	})
}

// requireAdmin rejects tokens that do not carry the admin role.
func requireAdmin(c *fiber.Ctx) error {
	if c.Path() == signInPath {
		return c.Next()
	}
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || claims["role"] != roleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
	}
	return c.Next()
}
