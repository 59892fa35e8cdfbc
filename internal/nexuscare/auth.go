package nexuscare

import (
	"context"

	"github.com/nexuscare/nexuscare-cli/internal/api"
)

// RegisterRequest carries the /auth/register/ payload. The validate tags
// mirror the backend's field requirements.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	UserType        string `json:"user_type" validate:"required,oneof=patient doctor admin nurse"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	PhoneNumber     string `json:"phone_number" validate:"required"`
}

// Register creates a new account. No authentication is attached and no
// cookies are sent: the endpoint must be reachable anonymously.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*UserProfile, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	var created UserProfile
	err := s.api.Post(ctx, "/auth/register/", req, &created, &api.Options{SkipAuth: true})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with the backend and returns the issued tokens plus
// the account profile. Like Register, the call itself is anonymous.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var res LoginResponse
	body := loginRequest{Email: email, Password: password}
	err := s.api.Post(ctx, "/auth/login/", body, &res, &api.Options{SkipAuth: true})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CurrentUser fetches the profile belonging to the current bearer token.
// Some backend versions wrap the profile in a {user: ...} envelope and some
// return it bare; both shapes are accepted.
func (s *Service) CurrentUser(ctx context.Context) (*UserProfile, error) {
	var payload struct {
		UserProfile
		User *UserProfile `json:"user"`
	}
	if err := s.api.Get(ctx, "/me/", &payload, nil); err != nil {
		return nil, err
	}
	if payload.User != nil {
		return payload.User, nil
	}
	profile := payload.UserProfile
	return &profile, nil
}

// Professionals lists the registered doctors.
func (s *Service) Professionals(ctx context.Context) ([]Doctor, error) {
	var doctors []Doctor
	if err := s.api.Get(ctx, "/auth/professionals/", &doctors, nil); err != nil {
		return nil, err
	}
	return doctors, nil
}
