package handler

import (
	"errors"
	"log"

	"sharemarket-backend/internal/model"
	"sharemarket-backend/internal/repository"
	"sharemarket-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	identitySvc *service.IdentityService
	userRepo    *repository.UserRepository
	historyRepo *repository.UsernameHistoryRepository
}

func NewUserHandler(identitySvc *service.IdentityService, userRepo *repository.UserRepository, historyRepo *repository.UsernameHistoryRepository) *UserHandler {
	return &UserHandler{identitySvc: identitySvc, userRepo: userRepo, historyRepo: historyRepo}
}

// GET /api/v1/me
func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}

	return c.JSON(user)
}

// GET /api/v1/users/:id/profile
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.userRepo.GetProfile(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}

	return c.JSON(profile)
}

// GET /api/v1/users/username-availability?username=...
func (h *UserHandler) UsernameAvailability(c *fiber.Ctx) error {
	candidate := c.Query("username")
	if candidate == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username query parameter is required"})
	}

	available, err := h.identitySvc.CheckUsernameAvailability(c.Context(), candidate)
	if err != nil {
		log.Printf("[IDENTITY] availability check error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to check availability"})
	}

	return c.JSON(fiber.Map{"username": candidate, "available": available})
}

// PUT /api/v1/me/username
func (h *UserHandler) ChangeUsername(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req model.ChangeUsernameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Username == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username is required"})
	}

	user, err := h.identitySvc.ChangeUsername(c.Context(), userID, req.Username)
	if err != nil {
		return identityError(c, err)
	}

	return c.JSON(user)
}

// GET /api/v1/me/username-history
func (h *UserHandler) UsernameHistory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	entries, err := h.historyRepo.ListByUser(c.Context(), userID)
	if err != nil {
		log.Printf("[IDENTITY] history list error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list username history"})
	}

	return c.JSON(fiber.Map{"history": entries})
}

func identityError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	case errors.Is(err, service.ErrUsernameRetired):
		return c.Status(409).JSON(fiber.Map{"error": "username was previously used and cannot be reassigned"})
	case errors.Is(err, service.ErrUsernameTaken):
		return c.Status(409).JSON(fiber.Map{"error": "username is already in use"})
	case errors.Is(err, service.ErrSameUsername):
		return c.Status(400).JSON(fiber.Map{"error": "new username matches the current one"})
	case errors.Is(err, service.ErrInvalidUsername):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("[IDENTITY ERROR] %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
