package scenario

import "errors"

var (
	// ErrSource indicates the catalog source could not be read or is not
	// a JSON array at the container level.
	ErrSource = errors.New("scenario source unreadable")

	// ErrValidation indicates a scenario record is missing a required
	// field or reuses an id. A single bad record fails the whole load.
	ErrValidation = errors.New("invalid scenario record")

	// ErrInsufficientScenarios indicates the catalog holds fewer
	// scenarios than a selection requested.
	ErrInsufficientScenarios = errors.New("not enough scenarios in catalog")

	// ErrNotFound indicates no scenario exists for the requested id.
	ErrNotFound = errors.New("scenario not found")
)
