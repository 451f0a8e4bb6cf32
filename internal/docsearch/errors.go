package docsearch

import (
	"errors"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

// Message prefixes of the two failure kinds. Callers treat a result string
// starting with either prefix as a failed search.
const (
	TransportErrorPrefix  = "Error searching Meilisearch: "
	UnexpectedErrorPrefix = "Unexpected error: "
)

// TransportError covers connection failures, timeouts and non-2xx responses.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return TransportErrorPrefix + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// UnexpectedError covers everything else: undecodable responses and malformed hits.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string { return UnexpectedErrorPrefix + e.Err.Error() }

func (e *UnexpectedError) Unwrap() error { return e.Err }

// IsFailure reports whether a SearchDocs result string describes a failure.
func IsFailure(result string) bool {
	return strings.HasPrefix(result, TransportErrorPrefix) || strings.HasPrefix(result, UnexpectedErrorPrefix)
}

// classify maps an error returned by the Meilisearch client onto one of the two kinds.
func classify(err error) error {
	var meiliErr *meilisearch.Error
	if !errors.As(err, &meiliErr) {
		return &UnexpectedError{Err: err}
	}

	switch meiliErr.ErrCode {
	case meilisearch.ErrCodeMarshalRequest, meilisearch.ErrCodeResponseUnmarshalBody:
		return &UnexpectedError{Err: err}
	default:
		return &TransportError{Err: err}
	}
}
