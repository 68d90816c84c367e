package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/store/file"
)

// Sink pushes each group bundle to s3://<bucket>/<prefix>/<group>-evidence.json.
type Sink struct {
	client awsclient.S3PutAPI
	bucket string
	prefix string
}

func NewSink(client awsclient.S3PutAPI, bucket, prefix string) (*Sink, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("evidence bucket is required")
	}
	return &Sink{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *Sink) Key(group string) string {
	return path.Join(s.prefix, file.ObjectName(group))
}

func (s *Sink) Persist(ctx context.Context, group string, bundle *domain.EvidenceBundle) error {
	data, err := file.Encode(bundle)
	if err != nil {
		return err
	}

	key := s.Key(group)
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return accessor.Classify("s3:PutObject", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("group", group).
		Str("bucket", s.bucket).
		Str("key", key).
		Msg("evidence uploaded")
	return nil
}
