package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jrbailey528/solanasign/internal/dto"
	"github.com/jrbailey528/solanasign/internal/service"
	"github.com/jrbailey528/solanasign/pkg/middleware"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

// ListingHandler handles resale market HTTP requests
type ListingHandler struct {
	listingService service.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// CreateListing handles POST /tickets/:id/list
func (h *ListingHandler) CreateListing(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.listing.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		unauthorized(c)
		return
	}

	ticketID := c.Param("id")
	if ticketID == "" {
		span.SetStatus(codes.Error, "ticket id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "ticket id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("ticket_id", ticketID),
		attribute.String("user_id", userID),
		attribute.Float64("price", req.Price),
	)

	result, err := h.listingService.CreateListing(ctx, ticketID, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("listing_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// ListListings handles GET /listings
func (h *ListingHandler) ListListings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.listing.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	req := dto.ListListingsRequest{EventID: c.Query("event_id")}
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			req.Limit = n
		}
	}

	result, err := h.listingService.ListListings(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", result.Count))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// PurchaseListing handles POST /listings/:id/purchase
func (h *ListingHandler) PurchaseListing(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.listing.purchase")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		unauthorized(c)
		return
	}

	listingID := c.Param("id")
	if listingID == "" {
		span.SetStatus(codes.Error, "listing id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "listing id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(
		attribute.String("listing_id", listingID),
		attribute.String("buyer_id", userID),
	)

	result, err := h.listingService.PurchaseListing(ctx, listingID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// CancelListing handles POST /listings/:id/cancel
func (h *ListingHandler) CancelListing(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.listing.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		unauthorized(c)
		return
	}

	listingID := c.Param("id")
	if listingID == "" {
		span.SetStatus(codes.Error, "listing id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "listing id required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(
		attribute.String("listing_id", listingID),
		attribute.String("user_id", userID),
	)

	result, err := h.listingService.CancelListing(ctx, listingID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}
