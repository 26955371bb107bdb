package plugin

import "errors"

var (
	// ErrDuplicateDescriptor indicates an attempt to register a plugin name twice.
	ErrDuplicateDescriptor = errors.New("plugin: duplicate descriptor")
	// ErrInvalidDescriptor occurs when a descriptor fails validation.
	ErrInvalidDescriptor = errors.New("plugin: invalid descriptor")
	// ErrRegistrySealed indicates a registration attempt after initialization.
	ErrRegistrySealed = errors.New("plugin: registry sealed")
)
