package request

// TokenRequest exchanges credentials for an API bearer token.
type TokenRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required" example:"s3cret-pass"`
}
