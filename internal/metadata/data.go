package metadata

/*
ErrorCause is a closed, canonical classification used exclusively for
observability (logging, metrics, reporting).

Rules:
  - ErrorCause is for observability only.
  - It MUST NOT influence control flow: never used to decide whether
    resolution continues, retries, or aborts.
  - Packages MAY map their local errors to ErrorCause, but MUST NOT
    invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be
used.
*/
type ErrorCause int

const (
	// CauseUnknown is the safe fallback for unclassified failures.
	CauseUnknown ErrorCause = iota
	// CauseNetworkFailure covers transport-level failures: DNS, connect,
	// timeouts, redirect-budget exhaustion.
	CauseNetworkFailure
	// CauseContentInvalid covers fetched content that could not be
	// processed: malformed oEmbed documents, unusable markup.
	CauseContentInvalid
	// CauseCapacityExhausted marks discovery branches abandoned because
	// the crawl frontier reached its request ceiling.
	CauseCapacityExhausted
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseCapacityExhausted:
		return "capacity_exhausted"
	default:
		return "unknown"
	}
}
