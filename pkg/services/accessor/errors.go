package accessor

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// FailureKind is the closed set of accessor failure classes.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	// FailureUnavailable covers throttling, disabled services and data that is not yet populated.
	FailureUnavailable
	FailureAccessDenied
	FailureNotFound
)

func (k FailureKind) String() string {
	switch k {
	case FailureUnavailable:
		return "unavailable"
	case FailureAccessDenied:
		return "access_denied"
	case FailureNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

var defaultCodes = map[string]FailureKind{
	// unavailable
	"DataUnavailableException":      FailureUnavailable,
	"OptInRequired":                 FailureUnavailable,
	"SubscriptionRequiredException": FailureUnavailable,
	"ServiceUnavailable":            FailureUnavailable,
	"ServiceUnavailableException":   FailureUnavailable,
	"Throttling":                    FailureUnavailable,
	"ThrottlingException":           FailureUnavailable,
	"TooManyRequestsException":      FailureUnavailable,
	"RequestLimitExceeded":          FailureUnavailable,
	"LimitExceededException":        FailureUnavailable,

	// access denied
	"AccessDenied":                FailureAccessDenied,
	"AccessDeniedException":       FailureAccessDenied,
	"UnauthorizedOperation":       FailureAccessDenied,
	"UnauthorizedException":       FailureAccessDenied,
	"AuthorizationError":          FailureAccessDenied,
	"AuthFailure":                 FailureAccessDenied,
	"UnrecognizedClientException": FailureAccessDenied,

	// not found
	"NoSuchEntity":                         FailureNotFound,
	"NoSuchEntityException":                FailureNotFound,
	"NotFoundException":                    FailureNotFound,
	"ResourceNotFoundException":            FailureNotFound,
	"NoSuchBucket":                         FailureNotFound,
	"NoSuchBucketPolicy":                   FailureNotFound,
	"NoSuchTagSet":                         FailureNotFound,
	"NoSuchTagSetError":                    FailureNotFound,
	"NoSuchPublicAccessBlockConfiguration": FailureNotFound,
	"DBInstanceNotFound":                   FailureNotFound,
	"DBInstanceNotFoundFault":              FailureNotFound,
	"InvalidAMIID.NotFound":                FailureNotFound,
	"InvalidAMIID.Unavailable":             FailureNotFound,
	"LoadBalancerNotFound":                 FailureNotFound,
	"TrailNotFoundException":               FailureNotFound,
}

// Error is an accessor failure with its class.
type Error struct {
	Kind FailureKind
	Op   string
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type classifyOptions struct {
	overrides map[string]FailureKind
}

// Option adjusts classification for one accessor call.
type Option func(*classifyOptions)

// WithCodes maps extra error codes to kind for this call only.
func WithCodes(kind FailureKind, codes ...string) Option {
	return func(o *classifyOptions) {
		for _, code := range codes {
			o.overrides[code] = kind
		}
	}
}

// Classify wraps err into an *Error carrying its failure kind.
// A nil err stays nil and an already classified error is returned unchanged.
func Classify(op string, err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	o := classifyOptions{overrides: map[string]FailureKind{}}
	for _, opt := range opts {
		opt(&o)
	}

	result := &Error{Kind: FailureUnknown, Op: op, Err: err}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		result.Code = apiErr.ErrorCode()
		if kind, ok := o.overrides[result.Code]; ok {
			result.Kind = kind
		} else if kind, ok := defaultCodes[result.Code]; ok {
			result.Kind = kind
		}
	}
	return result
}

// KindOf returns the failure kind of err; unclassified errors are unknown.
func KindOf(err error) FailureKind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return FailureUnknown
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == FailureNotFound
}
