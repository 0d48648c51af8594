package core

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDocument   = errors.New("input document is missing or unreadable")
	ErrMalformedDocument = errors.New("input document is malformed")
	ErrNoAdapter         = errors.New("no GPU adapter satisfies the renderer requirements")
	ErrShaderCompilation = errors.New("shader compilation failed")
	ErrFrameUnavailable  = errors.New("no presentable frame available")
	ErrSessionClosed     = errors.New("session already shut down")
)

// ShaderCompilationError reports a shader source that cannot be turned into
// a pipeline with the expected entry points and bind layout.
type ShaderCompilationError struct {
	// Label names the pipeline the source belongs to.
	Label  string
	Reason string
	Err    error
}

func (e *ShaderCompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("shader %q: %s: %v", e.Label, e.Reason, e.Err)
	}
	return fmt.Sprintf("shader %q: %s", e.Label, e.Reason)
}

func (e *ShaderCompilationError) Unwrap() error {
	return e.Err
}

func (e *ShaderCompilationError) Is(target error) bool {
	return target == ErrShaderCompilation
}
