package handler

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"sharemarket-backend/internal/model"
	"sharemarket-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	listingSvc     *service.ListingService
	negotiationSvc *service.NegotiationService
}

func NewListingHandler(listingSvc *service.ListingService, negotiationSvc *service.NegotiationService) *ListingHandler {
	return &ListingHandler{listingSvc: listingSvc, negotiationSvc: negotiationSvc}
}

// GET /api/v1/listings
func (h *ListingHandler) Search(c *fiber.Ctx) error {
	req := &model.SearchListingsRequest{
		Type:       c.Query("type", ""),
		CompanyID:  c.Query("company_id", ""),
		SearchText: c.Query("search", ""),
		SortBy:     c.Query("sort_by", "newest"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			req.Limit = v
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil {
			req.Offset = v
		}
	}
	if minStr := c.Query("min_price"); minStr != "" {
		if v, err := strconv.ParseInt(minStr, 10, 64); err == nil {
			req.MinPrice = &v
		}
	}
	if maxStr := c.Query("max_price"); maxStr != "" {
		if v, err := strconv.ParseInt(maxStr, 10, 64); err == nil {
			req.MaxPrice = &v
		}
	}

	listings, total, err := h.listingSvc.SearchListings(c.Context(), req)
	if err != nil {
		log.Printf("[MARKET] search error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to search listings"})
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"total":    total,
	})
}

// POST /api/v1/listings
func (h *ListingHandler) Create(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	username := c.Locals("username").(string)

	var req model.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.CompanyID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "company_id is required"})
	}

	listing, err := h.listingSvc.CreateListing(c.Context(), userID, username, &req)
	if err != nil {
		return listingError(c, err)
	}

	return c.Status(201).JSON(listing)
}

// GET /api/v1/listings/:id
func (h *ListingHandler) GetByID(c *fiber.Ctx) error {
	listing, err := h.listingSvc.GetListing(c.Context(), c.Params("id"))
	if err != nil {
		return listingError(c, err)
	}
	return c.JSON(listing)
}

// PATCH /api/v1/listings/:id
func (h *ListingHandler) Update(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req model.UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	listing, err := h.listingSvc.UpdateListing(c.Context(), c.Params("id"), userID, &req)
	if err != nil {
		return listingError(c, err)
	}

	return c.JSON(listing)
}

// POST /api/v1/listings/:id/boost
func (h *ListingHandler) Boost(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	listing, err := h.listingSvc.BoostListing(c.Context(), c.Params("id"), userID)
	if err != nil {
		return listingError(c, err)
	}

	return c.JSON(fiber.Map{
		"listing":          listing,
		"boost_expires_at": listing.BoostExpiresAt,
	})
}

// DELETE /api/v1/listings/:id
func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.listingSvc.DeleteListing(c.Context(), c.Params("id"), userID); err != nil {
		return listingError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

// GET /api/v1/my-listings
func (h *ListingHandler) MyListings(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	status := c.Query("status", "all")

	listings, err := h.listingSvc.GetMyListings(c.Context(), userID, status)
	if err != nil {
		log.Printf("[MARKET] my-listings error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get listings"})
	}

	return c.JSON(fiber.Map{"listings": listings})
}

// POST /api/v1/listings/:id/bids
func (h *ListingHandler) PlaceBid(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	username := c.Locals("username").(string)

	var req model.PlaceBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	bid, err := h.negotiationSvc.PlaceBid(c.Context(), c.Params("id"), userID, username, &req)
	if err != nil {
		return listingError(c, err)
	}

	return c.Status(201).JSON(bid)
}

// POST /api/v1/listings/:id/bids/:bidId/accept
func (h *ListingHandler) AcceptBid(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	bid, err := h.negotiationSvc.AcceptBid(c.Context(), c.Params("id"), c.Params("bidId"), userID)
	if err != nil {
		return listingError(c, err)
	}

	return c.JSON(bid)
}

// POST /api/v1/listings/:id/bids/:bidId/reject
func (h *ListingHandler) RejectBid(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	bid, err := h.negotiationSvc.RejectBid(c.Context(), c.Params("id"), c.Params("bidId"), userID)
	if err != nil {
		return listingError(c, err)
	}

	return c.JSON(bid)
}

// POST /api/v1/listings/:id/bids/:bidId/counter
func (h *ListingHandler) CounterBid(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req model.CounterBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	round, err := h.negotiationSvc.CounterBid(c.Context(), c.Params("id"), c.Params("bidId"), userID, &req)
	if err != nil {
		return listingError(c, err)
	}

	return c.JSON(fiber.Map{"round": round})
}

func listingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "listing not found"})
	case errors.Is(err, service.ErrBidNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "bid not found"})
	case errors.Is(err, service.ErrCompanyNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "company not found"})
	case errors.Is(err, service.ErrNotListingOwner):
		return c.Status(403).JSON(fiber.Map{"error": "not the listing owner"})
	case errors.Is(err, service.ErrListingNotActive):
		return c.Status(409).JSON(fiber.Map{"error": "listing is no longer active"})
	case errors.Is(err, service.ErrSelfBid):
		return c.Status(409).JSON(fiber.Map{"error": "cannot bid on your own listing"})
	case errors.Is(err, service.ErrBidFinalized):
		return c.Status(409).JSON(fiber.Map{"error": "bid already accepted or rejected"})
	case errors.Is(err, service.ErrAcceptedBidExists):
		return c.Status(409).JSON(fiber.Map{"error": "listing has an accepted bid, contact support"})
	case errors.Is(err, service.ErrConcurrentUpdate):
		return c.Status(409).JSON(fiber.Map{"error": "listing was modified concurrently, retry"})
	case errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidMinLot),
		errors.Is(err, service.ErrInvalidType):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		if strings.Contains(err.Error(), "no rows") {
			return c.Status(404).JSON(fiber.Map{"error": "listing not found"})
		}
		log.Printf("[MARKET ERROR] %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
