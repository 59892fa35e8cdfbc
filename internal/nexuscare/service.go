package nexuscare

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/nexuscare/nexuscare-cli/internal/api"
)

// Service exposes the backend endpoints as typed operations. Outgoing
// payloads that originate from user input are validated locally before any
// request leaves the process, mirroring the backend's field rules so obvious
// mistakes fail fast and offline.
type Service struct {
	api      *api.Client
	validate *validator.Validate
}

// New binds a Service to the given API client.
func New(client *api.Client) *Service {
	return &Service{
		api:      client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// validateStruct wraps validator errors with a stable prefix so callers can
// distinguish local validation from backend rejections.
func (s *Service) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
