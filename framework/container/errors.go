package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingDefinition  = errors.New("missing service definition")
	ErrCircularDependency = errors.New("circular dependency detected")
	ErrNoModuleLoader     = errors.New("no module loader")
	ErrNoInitialiser      = errors.New("no initialiser")
	ErrNoArgResolver      = errors.New("no arg resolver")
	ErrNoExtraHandler     = errors.New("no extra handler")
	ErrUnknownExtension   = errors.New("extension implements no capability")
)

// CircularDependencyError lists the resolution chain that led back to an id
// already being resolved. The last element is the repeated id.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircularDependency, strings.Join(e.Chain, ", "))
}

// Is makes errors.Is(err, ErrCircularDependency) hold.
func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// ServiceError is the single wrapper every failed resolution is reported as.
// A failing dependency produces nested ServiceErrors, one per level.
type ServiceError struct {
	ServiceID string
	Cause     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %q: %v", e.ServiceID, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(serviceID string, cause error) error {
	return &ServiceError{ServiceID: serviceID, Cause: cause}
}
