package dto

// LoginRequest represents admin credentials payload.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
