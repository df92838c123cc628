package handler

import (
	"sharemarket-backend/internal/repository"
	"sharemarket-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	userRepo *repository.UserRepository
	feeRepo  *repository.FeeRepository
	wsHub    *service.WSHub
}

func NewAdminHandler(userRepo *repository.UserRepository, feeRepo *repository.FeeRepository, wsHub *service.WSHub) *AdminHandler {
	return &AdminHandler{userRepo: userRepo, feeRepo: feeRepo, wsHub: wsHub}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	totalUsers, _ := h.userRepo.CountTotal(c.Context())
	feesCollected, _ := h.feeRepo.TotalCollected(c.Context())
	online := h.wsHub.OnlineCount()

	return c.JSON(fiber.Map{
		"users_total":    totalUsers,
		"users_online":   online,
		"fees_collected": feesCollected,
	})
}
