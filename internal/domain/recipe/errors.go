package recipe

import "errors"

var (
	ErrEmptyTitle     = errors.New("recipe title is required")
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrNotOwner       = errors.New("recipe does not belong to this user")
)
