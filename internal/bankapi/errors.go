package bankapi

import "fmt"

// RequestError is a non-success HTTP response from the banking API. It keeps
// the requested URL and the raw response body for diagnosis; callers treat it
// as fatal for the current operation.
type RequestError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}
