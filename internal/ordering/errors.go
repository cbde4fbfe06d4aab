package ordering

import "errors"

// Placement failures. Each is recoverable by the caller; none leaves
// partial writes behind.
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrUserNotFound      = errors.New("user not found")
	ErrMedicineNotFound  = errors.New("medicine not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPlacementFailed   = errors.New("order placement failed")
)
