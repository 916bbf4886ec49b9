package fetch

import (
	"fmt"

	"github.com/rohmanhakim/link-preview/internal/metadata"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseNetworkFailure        FetchErrorCause = "network failure"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseRedirectLimitExceeded FetchErrorCause = "reached redirect limit"
)

// FetchError classifies a transport failure. It is reported to the
// configured error callback and recorded as metadata; it never propagates
// out of the resolution loop.
type FetchError struct {
	Message string
	Cause   FetchErrorCause
	URL     string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error (%s): %s", e.Cause, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// mapFetchErrorToMetadataCause maps fetch-local error semantics to the
// canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used to derive
// control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseRedirectLimitExceeded:
		return metadata.CauseNetworkFailure
	case ErrCauseReadResponseBodyError:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
