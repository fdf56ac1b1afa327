// Package viewstate holds the Loading/Success/Error state of each record list shown
// to a client and drives it from store subscriptions and commands.
package viewstate

// Status discriminates the variants of State
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a tagged union: Records is meaningful only for StatusSuccess and
// Message only for StatusError.
type State[T any] struct {
	Status  Status `json:"status"`
	Records []T    `json:"records"`
	Message string `json:"message,omitempty"`
}

func Loading[T any]() State[T] {
	return State[T]{Status: StatusLoading}
}

func Success[T any](records []T) State[T] {
	if records == nil {
		records = []T{}
	}
	return State[T]{Status: StatusSuccess, Records: records}
}

func Failure[T any](message string) State[T] {
	return State[T]{Status: StatusError, Message: message}
}

func (s State[T]) IsLoading() bool { return s.Status == StatusLoading }
func (s State[T]) IsSuccess() bool { return s.Status == StatusSuccess }
func (s State[T]) IsError() bool   { return s.Status == StatusError }
