package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the navigation packages.
var (
	// ErrConfiguration marks malformed build input. It is fatal to graph
	// construction and is never silently defaulted.
	ErrConfiguration = errors.New("invalid navigation configuration")

	// ErrNoPath is returned when the search exhausts the open set without
	// reaching the goal. It is an expected outcome in a disconnected graph.
	ErrNoPath = errors.New("no path found")

	// ErrUnwalkableEndpoint is returned when the start or goal does not map to
	// any graph node. It also matches ErrNoPath.
	ErrUnwalkableEndpoint error = &endpointError{}

	// ErrReplanFailed is returned by a follower that lost its path and could
	// not find an alternate route.
	ErrReplanFailed = errors.New("replanning failed")

	// ErrCorruptGraph is returned when a persisted graph cannot be loaded.
	ErrCorruptGraph = errors.New("corrupt navigation graph")

	ErrUnknownAgent    = errors.New("unknown agent")
	ErrUnknownObstacle = errors.New("unknown obstacle")
)

type endpointError struct{}

func (e *endpointError) Error() string { return "endpoint is not on the navigation graph" }

// Is lets errors.Is(err, ErrNoPath) hold for unwalkable endpoints
func (e *endpointError) Is(target error) bool { return target == ErrNoPath }

// ConfigError describes a single invalid configuration field
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfiguration, e.Field, e.Reason)
}

// Is matches ErrConfiguration
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// NewConfigError builds a ConfigError with a formatted reason
func NewConfigError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
