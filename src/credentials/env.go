package credentials

import (
	"context"
	"fmt"
	"os"
)

// Env reads the key from an environment variable on every call.
type Env struct {
	Variable string
}

func NewEnv(variable string) *Env {
	return &Env{Variable: variable}
}

func (e *Env) Name() string { return "env" }

func (e *Env) Resolve(_ context.Context) (string, error) {
	v := os.Getenv(e.Variable)
	if v == "" {
		return "", fmt.Errorf("%w in environment variable %s", ErrMissing, e.Variable)
	}
	return v, nil
}
