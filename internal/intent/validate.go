package intent

import (
	"fmt"
	"strings"

	"github.com/payagent/payagent/internal/catalog"
)

// Validation is the outcome of checking an intent against its schema.
type Validation struct {
	Valid  bool
	Errors []string
}

// Validate checks every required parameter of the intent's action kind and
// reports each missing or empty one as a distinct error. It performs no
// type coercion and has no side effects; the dispatcher calls it before
// any settlement call is attempted.
func Validate(it Intent) Validation {
	if it.Kind == catalog.ActionUnknown {
		return Validation{Valid: false, Errors: []string{"could not determine an action from the input"}}
	}

	schema, ok := catalog.Lookup(it.Kind)
	if !ok {
		return Validation{Valid: false, Errors: []string{fmt.Sprintf("unsupported action: %s", it.Kind)}}
	}

	var errs []string
	for _, name := range schema.RequiredParams() {
		if strings.TrimSpace(it.Param(name)) == "" {
			errs = append(errs, fmt.Sprintf("missing required parameter: %s", name))
		}
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}
