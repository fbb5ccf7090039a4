// internal/services/errors.go
package services

import "errors"

// Domain error kinds. Handlers map these to HTTP statuses with errors.Is;
// the messages are part of the API contract.
var (
	// Users
	ErrUserNotFound       = errors.New("User not found")
	ErrEmailTaken         = errors.New("User with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid login credentials")

	// Products
	ErrProductNotFound = errors.New("Product not found")

	// Cart
	ErrCartNotFound      = errors.New("Cart not found")
	ErrItemNotInCart     = errors.New("Product not found in your cart")
	ErrInsufficientStock = errors.New("Not enough quantity")

	// Orders
	ErrOrderNotFound = errors.New("Order not found")
	ErrCartEmpty     = errors.New("There are no items in the cart")

	// Role requests
	ErrInvalidRole          = errors.New("Role not found")
	ErrPendingRequestExists = errors.New("Only one request per user is allowed")
	ErrRequestNotFound      = errors.New("Request not found")
	ErrRequestReviewed      = errors.New("Request has already been approved or rejected")

	// Authorization
	ErrNotAllowed = errors.New("You don't have enough permissions to perform this action")
)
