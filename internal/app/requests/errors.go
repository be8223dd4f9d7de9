package requests

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func validationError(message string, details map[string]any) *Error {
	return &Error{Status: 400, Code: "VALIDATION_ERROR", Message: message, Details: details}
}

func notAuthorized() *Error {
	return &Error{Status: 403, Code: "NOT_AUTHORIZED", Message: "not authorized for this resource"}
}

func notFound(message string) *Error {
	return &Error{Status: 404, Code: "NOT_FOUND", Message: message}
}
