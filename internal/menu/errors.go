package menu

import "errors"

var (
	ErrInvalidSchema    = errors.New("menu: invalid schema")
	ErrEmptyMenu        = errors.New("menu: menu is empty, nothing to save")
	ErrImageUnsupported = errors.New("menu: images require a v2 menu")
	ErrTitleUnsupported = errors.New("menu: titles require a v2 menu")
	ErrUnknownVersion   = errors.New("menu: unknown schema version")
)

// SchemaError locates the first structural violation found during import.
type SchemaError struct {
	Where string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return ErrInvalidSchema.Error() + ": " + e.Where + ": " + e.Err.Error()
	}
	return ErrInvalidSchema.Error() + ": " + e.Where
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func schemaError(where string, err error) error {
	return &SchemaError{Where: where, Err: err}
}
