package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/internal/dto"
)

// handleError converts domain errors to HTTP responses
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_CREDENTIALS",
		})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "EMAIL_EXISTS",
		})
	case errors.Is(err, domain.ErrInventoryExhausted):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "SOLD_OUT",
			Message: "No tickets remain for this event",
		})
	case errors.Is(err, domain.ErrListingUnavailable):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "LISTING_UNAVAILABLE",
			Message: "The listing was sold, cancelled, or expired",
		})
	case errors.Is(err, domain.ErrVersionConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "CONFLICT",
			Message: "The ticket changed while processing. Please retry.",
		})
	case errors.Is(err, domain.ErrMintFailed):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "MINT_FAILED",
			Message: "NFT minting failed. No ticket was issued and no payment was taken.",
		})
	case errors.Is(err, domain.ErrOwnershipMismatch):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "OWNERSHIP_MISMATCH",
			Message: "On-chain ownership does not match the ticket holder",
		})
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case domain.IsForbiddenError(err):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "FORBIDDEN",
		})
	case domain.IsInvalidStateError(err), domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
	case domain.IsConflictError(err):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "CONFLICT",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}

// unauthorized writes the standard missing-identity response
func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "unauthorized",
		Code:  "UNAUTHORIZED",
	})
}

// badRequest writes a binding failure response
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "invalid request",
		Code:    "INVALID_REQUEST",
		Message: err.Error(),
	})
}
