package domain

import "errors"

// Domain errors
var (
	// Not found errors
	ErrUserNotFound      = errors.New("user not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrListingNotFound   = errors.New("listing not found")
	ErrRecipientNotFound = errors.New("recipient not found")

	// Auth errors
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Ownership errors
	ErrNotTicketOwner    = errors.New("ticket does not belong to this user")
	ErrNotListingSeller  = errors.New("listing does not belong to this user")
	ErrOwnershipMismatch = errors.New("on-chain owner does not match ticket holder")
	ErrSelfPurchase      = errors.New("cannot purchase own listing")
	ErrSelfTransfer      = errors.New("cannot transfer ticket to yourself")

	// Lifecycle errors
	ErrInvalidTicketStatus  = errors.New("invalid ticket status")
	ErrTicketNotListable    = errors.New("ticket cannot be listed in its current state")
	ErrTicketAlreadyUsed    = errors.New("ticket has already been used")
	ErrTicketNotActive      = errors.New("ticket is not active")
	ErrTicketPending        = errors.New("ticket mint has not completed")
	ErrListingUnavailable   = errors.New("listing is no longer available")
	ErrInvalidListingStatus = errors.New("invalid listing status")

	// Inventory errors
	ErrInventoryExhausted = errors.New("no tickets available for this event")

	// Gateway errors
	ErrMintFailed = errors.New("nft mint failed")

	// Concurrency errors
	ErrVersionConflict = errors.New("concurrent modification detected")

	// Validation errors
	ErrInvalidUserID          = errors.New("invalid user id")
	ErrInvalidEventID         = errors.New("invalid event id")
	ErrInvalidTicketID        = errors.New("invalid ticket id")
	ErrInvalidListingID       = errors.New("invalid listing id")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrInvalidPassword        = errors.New("password must be at least 8 characters")
	ErrInvalidName            = errors.New("name cannot be empty")
	ErrInvalidPrice           = errors.New("price must be greater than zero")
	ErrInvalidWalletAddress   = errors.New("invalid wallet address")
	ErrInvalidSeat            = errors.New("invalid seat assignment")
	ErrInvalidDate            = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrListingNotFound) ||
		errors.Is(err, ErrRecipientNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidTicketID) ||
		errors.Is(err, ErrInvalidListingID) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidPassword) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidWalletAddress) ||
		errors.Is(err, ErrInvalidSeat) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTransactionKind) ||
		errors.Is(err, ErrInvalidTicketStatus) ||
		errors.Is(err, ErrInvalidListingStatus)
}

// IsForbiddenError checks if the error is an ownership/authorization error
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrNotTicketOwner) ||
		errors.Is(err, ErrNotListingSeller) ||
		errors.Is(err, ErrOwnershipMismatch)
}

// IsInvalidStateError checks if the error is a lifecycle state error
func IsInvalidStateError(err error) bool {
	return errors.Is(err, ErrTicketNotListable) ||
		errors.Is(err, ErrTicketAlreadyUsed) ||
		errors.Is(err, ErrTicketNotActive) ||
		errors.Is(err, ErrTicketPending) ||
		errors.Is(err, ErrListingUnavailable) ||
		errors.Is(err, ErrSelfPurchase) ||
		errors.Is(err, ErrSelfTransfer) ||
		errors.Is(err, ErrInventoryExhausted)
}

// IsConflictError checks if the error is a concurrency conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrVersionConflict) ||
		errors.Is(err, ErrEmailAlreadyExists)
}
