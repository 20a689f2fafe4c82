package model

import "errors"

var (
	// ErrInvalidCoordinate reports a malformed dependency coordinate.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrArtifactFetchFailed reports that every mirror failed for an artifact.
	ErrArtifactFetchFailed = errors.New("artifact fetch failed")
	// ErrMalformedUnit reports class bytes that do not parse.
	ErrMalformedUnit = errors.New("malformed unit")
	// ErrResourceNotFound reports that no bytes exist for a class name.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrRegistryFrozen reports a registration after initialization ended.
	ErrRegistryFrozen = errors.New("mix registry is frozen")
	// ErrSearchPathFrozen reports an extension after initialization ended.
	ErrSearchPathFrozen = errors.New("search path is frozen")
)
