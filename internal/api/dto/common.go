package dto

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ListResponse wraps every list the console API returns
type ListResponse[T any] struct {
	Items []T `json:"items"`
}
