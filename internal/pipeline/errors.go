package pipeline

import (
	"errors"
	"fmt"

	"supportviz/internal/blueprint"
	"supportviz/internal/llm"
)

type ErrorKind string

const (
	KindConfig    ErrorKind = "config"
	KindTransport ErrorKind = "transport"
	KindMalformed ErrorKind = "malformed"
	KindSchema    ErrorKind = "schema"
)

// GenerationError is why an LLM override was discarded.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("llm generation (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func classify(err error) *GenerationError {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge
	}
	kind := KindTransport
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		kind = KindConfig
	case errors.Is(err, llm.ErrMalformedOutput):
		kind = KindMalformed
	case errors.Is(err, blueprint.ErrInvalid):
		kind = KindSchema
	}
	return &GenerationError{Kind: kind, Err: err}
}
