package repository

import "errors"

// Errores de dominio. Los stores los retornan envueltos (fmt.Errorf con %w)
// y los callers los chequean con errors.Is o los helpers de abajo.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
