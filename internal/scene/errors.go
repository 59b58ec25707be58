package scene

import "errors"

var (
	// ErrDuplicateBox indicates a box with the same ID already exists.
	ErrDuplicateBox = errors.New("duplicate box id")

	// ErrBoxTooSmall indicates a box cannot hold its border.
	ErrBoxTooSmall = errors.New("box too small")

	// ErrReservedID indicates a box ID that collides with a scene target.
	ErrReservedID = errors.New("reserved box id")

	// ErrBoxNotFound indicates the box does not exist.
	ErrBoxNotFound = errors.New("box not found")
)
