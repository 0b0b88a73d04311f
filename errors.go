package sculptor

import (
	"errors"

	"github.com/samuelmaurice/sculptor/database"
	"github.com/samuelmaurice/sculptor/query"
)

var (
	// ErrModelNotFound is returned by First and Find when no row matches.
	ErrModelNotFound = database.ErrModelNotFound

	// ErrConnectionNotFound is returned when an entity names a connection
	// that is not registered.
	ErrConnectionNotFound = database.ErrConnectionNotFound

	// ErrCoercion is matched by every value conversion failure.
	ErrCoercion = query.ErrCoercion

	// ErrRelation is returned when a relation's foreign key cannot be resolved.
	ErrRelation = errors.New("invalid relation")
)
