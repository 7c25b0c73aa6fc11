package errors

// ErrorResponse is the body the console API returns for any failed request
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code,omitempty"`
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CodeFromErr returns the machine-readable code of the first sentinel err is
// marked with, so the console can branch on it instead of parsing messages.
func CodeFromErr(err error) string {
	for _, sc := range statusCodes {
		if Is(err, sc.err) {
			if ie, ok := sc.err.(*InternalError); ok {
				return ie.Code
			}
		}
	}
	return ErrCodeSystemError
}
