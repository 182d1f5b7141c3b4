package auth

import (
	"github.com/Abraxas-365/authcore/pkg/iam/user"
	"github.com/gofiber/fiber/v2"
)

// AuthHandlers exposes AuthService over HTTP
type AuthHandlers struct {
	service *AuthService
}

func NewAuthHandlers(service *AuthService) *AuthHandlers {
	return &AuthHandlers{service: service}
}

// RegisterRoutes mounts the auth endpoints on router (normally /api/auth)
func (h *AuthHandlers) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.Register)
	router.Post("/login", h.Login)
	router.Post("/refresh-token", h.RefreshToken)
	router.Post("/generate-magic-link", h.GenerateMagicLink)
	router.Get("/verify-magic-link", h.VerifyMagicLink)
	router.Post("/google", h.GoogleLogin)
}

// SessionResponse is returned by every flow that issues a token pair
type SessionResponse struct {
	Message      string       `json:"message"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"`
	User         user.Summary `json:"user"`
}

type RegisterResponse struct {
	Message string          `json:"message"`
	User    user.PublicUser `json:"user"`
}

type RefreshResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type MagicLinkResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func newSessionResponse(message string, s *Session) SessionResponse {
	return SessionResponse{
		Message:      message,
		Token:        s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		User:         s.User.Summary(),
	}
}

func (h *AuthHandlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrInvalidRequestBody()
	}

	u, err := h.service.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{
		Message: "User created successfully",
		User:    u.ToPublic(),
	})
}

func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrInvalidRequestBody()
	}

	session, err := h.service.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(newSessionResponse("Login successful", session))
}

func (h *AuthHandlers) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&req); err != nil {
		return ErrNoRefreshToken()
	}

	grant, err := h.service.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(RefreshResponse{
		Success:   true,
		Token:     grant.AccessToken,
		ExpiresIn: grant.ExpiresIn,
	})
}

func (h *AuthHandlers) GenerateMagicLink(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return ErrEmailRequired()
	}

	if err := h.service.GenerateMagicLink(c.UserContext(), req.Email); err != nil {
		return err
	}

	return c.JSON(MagicLinkResponse{
		Success: true,
		Message: "Magic link sent to your email",
	})
}

func (h *AuthHandlers) VerifyMagicLink(c *fiber.Ctx) error {
	session, err := h.service.VerifyMagicLink(c.UserContext(), c.Query("token"))
	if err != nil {
		return err
	}

	return c.JSON(newSessionResponse("Magic link login successful", session))
}

func (h *AuthHandlers) GoogleLogin(c *fiber.Ctx) error {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := c.BodyParser(&req); err != nil {
		return ErrIDTokenRequired()
	}

	session, err := h.service.GoogleLogin(c.UserContext(), req.IDToken)
	if err != nil {
		return err
	}

	return c.JSON(newSessionResponse("Google login successful", session))
}
