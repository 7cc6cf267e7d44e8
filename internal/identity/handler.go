package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type principalResponse struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Register handles principal onboarding.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	principal, err := h.service.Register(c.UserContext(), Credentials{Name: req.Name, Secret: req.Secret})
	if err != nil {
		if errors.Is(err, ErrNameTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(principalResponse{Address: principal.Address, Name: principal.Name})
}
