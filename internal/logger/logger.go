package logger

import (
	"go.uber.org/zap"
)

// New builds a zap logger appropriate for the environment: human-readable
// development output locally, sampled JSON in production.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// NewNamed builds an environment-appropriate logger tagged with the service name.
func NewNamed(env, service string) (*zap.Logger, error) {
	l, err := New(env)
	if err != nil {
		return nil, err
	}
	return l.Named(service), nil
}
