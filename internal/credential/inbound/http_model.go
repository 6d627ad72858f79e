package inbound

import (
	"net/http"
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (LoginResponse) Message() string {
	return "Authenticated"
}

type MeResponse struct {
	Subject      string   `json:"subject"`
	Roles        []string `json:"roles"`
	IsPrivileged bool     `json:"is_privileged"`
}

type AccountResponse struct {
	Identifier   string    `json:"identifier"`
	IsPrivileged bool      `json:"is_privileged"`
	CreatedAt    time.Time `json:"created_at"`
}

type AccountCreateRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	IsPrivileged bool   `json:"is_privileged"`
}

type AccountCreateResponse struct{}

func (AccountCreateResponse) Message() string {
	return "Account created"
}

func (AccountCreateResponse) StatusCode() int {
	return http.StatusCreated
}
