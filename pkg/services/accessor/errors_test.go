package accessor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "boom"}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		opts []Option
		want FailureKind
	}{
		{name: "access denied", err: apiError("AccessDenied"), want: FailureAccessDenied},
		{name: "unauthorized operation", err: apiError("UnauthorizedOperation"), want: FailureAccessDenied},
		{name: "no such entity", err: apiError("NoSuchEntity"), want: FailureNotFound},
		{name: "budget not found", err: apiError("NotFoundException"), want: FailureNotFound},
		{name: "data unavailable", err: apiError("DataUnavailableException"), want: FailureUnavailable},
		{name: "throttled", err: apiError("ThrottlingException"), want: FailureUnavailable},
		{name: "unknown code", err: apiError("InternalFailure"), want: FailureUnknown},
		{name: "not an api error", err: context.DeadlineExceeded, want: FailureUnknown},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("operation error IAM: GetLoginProfile: %w", apiError("NoSuchEntity")),
			want: FailureNotFound,
		},
		{
			name: "override",
			err:  apiError("ValidationException"),
			opts: []Option{WithCodes(FailureUnavailable, "ValidationException")},
			want: FailureUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("op", tt.err, tt.opts...)
			assert.Equal(t, tt.want, KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassify_NilAndAlreadyClassified(t *testing.T) {
	assert.NoError(t, Classify("op", nil))

	first := Classify("inner", apiError("AccessDenied"))
	second := Classify("outer", fmt.Errorf("wrapped: %w", first), WithCodes(FailureNotFound, "AccessDenied"))
	assert.Equal(t, FailureAccessDenied, KindOf(second))
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, FailureUnknown, KindOf(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
	assert.True(t, IsNotFound(Classify("op", apiError("NoSuchTagSet"))))
}
