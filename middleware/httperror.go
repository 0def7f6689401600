package middleware

// HTTPError carries a status code alongside a client-safe message.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}
