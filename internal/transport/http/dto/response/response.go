package response

// Response wraps successful JSON payloads other than the photo listing,
// which is a bare array.
type Response struct {
	Status string `json:"status" example:"success"`
	Data   any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Error   string `json:"error" example:"not_authenticated"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(data any) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

func ErrorResponseWithDetails(err, details string) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Error:   err,
		Details: details,
	}
}
