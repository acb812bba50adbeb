package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrNotAuthenticated = ErrorResponse{
		Status:  "error",
		Error:   "not_authenticated",
		Details: "Authentication credentials were not provided.",
	}

	ErrInternal = ErrorResponse{
		Status: "error",
		Error:  "internal_error",
	}
)
