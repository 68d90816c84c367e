package s3

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient/awsmock"
)

func bundle(t *testing.T) *domain.EvidenceBundle {
	b := domain.NewEvidenceBundle()
	require.NoError(t, b.Add("anomaly-monitor", domain.Report{
		Control: "SOC2 CC9.2",
		Results: []domain.Finding{domain.NewFinding("anomaly-monitors", true, nil)},
		Summary: domain.Summary{"compliant": 1, "nonCompliant": 0},
		Passed:  true,
	}))
	return b
}

func TestNewSink_Validation(t *testing.T) {
	_, err := NewSink(nil, "bucket", "")
	assert.Error(t, err)

	_, err = NewSink(new(awsmock.S3), "", "")
	assert.Error(t, err)
}

func TestSink_Persist(t *testing.T) {
	client := new(awsmock.S3)
	var body []byte
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *awss3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "audit" && aws.ToString(in.Key) == "evidence/2025/billing-evidence.json"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*awss3.PutObjectInput)
		body, _ = io.ReadAll(in.Body)
	}).Return(&awss3.PutObjectOutput{}, nil)

	sink, err := NewSink(client, "audit", "evidence/2025")
	require.NoError(t, err)

	require.NoError(t, sink.Persist(context.Background(), "billing", bundle(t)))
	assert.Contains(t, string(body), `"anomaly-monitor": {`)
	client.AssertExpectations(t)
}

func TestSink_Persist_AccessDenied(t *testing.T) {
	client := new(awsmock.S3)
	client.On("PutObject", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"})

	sink, err := NewSink(client, "audit", "")
	require.NoError(t, err)
	assert.Equal(t, "billing-evidence.json", sink.Key("billing"))

	err = sink.Persist(context.Background(), "billing", bundle(t))
	require.Error(t, err)
	assert.Equal(t, accessor.FailureAccessDenied, accessor.KindOf(err))
}
