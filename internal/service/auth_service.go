package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"replacement-request-service/internal/model"
)

// AuthService asks the external auth microservice who a token belongs to.
type AuthService struct {
	authURL string
	client  *http.Client
}

type AuthUser struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Role    model.Role `json:"role"`
	Login   string     `json:"login"`
	Enabled bool       `json:"enabled"`
}

func NewAuthService(authURL string, timeout time.Duration) *AuthService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AuthService{
		authURL: authURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ValidateToken resolves the token via /users/current on the auth service.
func (a *AuthService) ValidateToken(token string) (*AuthUser, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/users/current", a.authURL), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("invalid token")
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, errors.New("user disabled")
	}
	if user.Role == "" {
		user.Role = model.RoleCustomer
	}
	return &user, nil
}
