package cart

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrLineNotFound     = errors.New("cart line not found")
	ErrQuantityLimit    = errors.New("quantity exceeds limit")
)
