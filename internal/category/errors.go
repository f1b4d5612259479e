package category

import "errors"

// Validation errors returned before any mutation.
var (
	ErrInvalidName         = errors.New("category name is required")
	ErrNameExists          = errors.New("category name already exists")
	ErrInvalidParent       = errors.New("invalid parent category")
	ErrInvalidColor        = errors.New("color must be a #RRGGBB hex value")
	ErrCannotModifyDefault = errors.New("default categories cannot be modified")
	ErrCategoryInUse       = errors.New("category is referenced by transactions")
	ErrSameCategory        = errors.New("source and target category are the same")
)
