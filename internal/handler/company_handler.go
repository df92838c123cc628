package handler

import (
	"log"
	"strconv"

	"sharemarket-backend/internal/model"
	"sharemarket-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CompanyHandler struct {
	companyRepo *repository.CompanyRepository
}

func NewCompanyHandler(companyRepo *repository.CompanyRepository) *CompanyHandler {
	return &CompanyHandler{companyRepo: companyRepo}
}

// GET /api/v1/companies
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	search := c.Query("search", "")
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	companies, total, err := h.companyRepo.List(c.Context(), search, limit, offset)
	if err != nil {
		log.Printf("[COMPANY] list error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list companies"})
	}

	return c.JSON(fiber.Map{
		"companies": companies,
		"total":     total,
	})
}

// GET /api/v1/companies/:id
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	company, err := h.companyRepo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "company not found"})
	}

	return c.JSON(company)
}

// POST /api/v1/admin/companies
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var req model.CreateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	company, err := h.companyRepo.Create(c.Context(), &model.Company{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Sector:      req.Sector,
		Description: req.Description,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		log.Printf("[COMPANY] create error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create company"})
	}

	return c.Status(201).JSON(company)
}
