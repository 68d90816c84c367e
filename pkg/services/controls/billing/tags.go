package billing

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
	"github.com/de-tools/evidence-atlas/pkg/services/controls/evaluate"
)

func TagCompliance(env controls.Env) *check.Check {
	required := env.RequiredTags
	clients := env.Clients

	tagEvaluator := func(present []string) (bool, domain.Evidence) {
		return evaluate.TagsCompliant(required, present), domain.Evidence{
			"missingTags": evaluate.MissingTags(required, present),
			"presentTags": present,
		}
	}

	ec2Family := check.Family[ec2types.Instance, struct{}]{
		Kind:           "ec2",
		AbsentEvidence: domain.Evidence{"reason": "No EC2 instances found"},
		List: func(ctx context.Context) ([]ec2types.Instance, error) {
			return awsclient.ListInstances(ctx, clients.EC2)
		},
		ID: func(i ec2types.Instance) string { return aws.ToString(i.InstanceId) },
		Evaluate: func(i ec2types.Instance, _ struct{}) (bool, domain.Evidence) {
			keys := make([]string, 0, len(i.Tags))
			for _, tag := range i.Tags {
				keys = append(keys, aws.ToString(tag.Key))
			}
			return tagEvaluator(keys)
		},
	}

	s3Family := check.Family[s3types.Bucket, []string]{
		Kind:           "s3",
		AbsentEvidence: domain.Evidence{"reason": "No S3 buckets found"},
		List: func(ctx context.Context) ([]s3types.Bucket, error) {
			return awsclient.ListBuckets(ctx, clients.S3)
		},
		ID: func(b s3types.Bucket) string { return aws.ToString(b.Name) },
		Detail: func(ctx context.Context, b s3types.Bucket) ([]string, error) {
			out, err := clients.S3.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: b.Name})
			if err != nil {
				err = accessor.Classify("s3:GetBucketTagging", err)
				// NoSuchTagSet: the bucket has no tags at all.
				if accessor.IsNotFound(err) {
					return []string{}, nil
				}
				return nil, err
			}
			keys := make([]string, 0, len(out.TagSet))
			for _, tag := range out.TagSet {
				keys = append(keys, aws.ToString(tag.Key))
			}
			return keys, nil
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(_ s3types.Bucket, keys []string) (bool, domain.Evidence) {
			return tagEvaluator(keys)
		},
	}

	rdsFamily := check.Family[rdstypes.DBInstance, struct{}]{
		Kind:           "rds",
		AbsentEvidence: domain.Evidence{"reason": "No RDS instances found"},
		List: func(ctx context.Context) ([]rdstypes.DBInstance, error) {
			return awsclient.ListDBInstances(ctx, clients.RDS)
		},
		ID: func(db rdstypes.DBInstance) string { return aws.ToString(db.DBInstanceIdentifier) },
		Evaluate: func(db rdstypes.DBInstance, _ struct{}) (bool, domain.Evidence) {
			keys := make([]string, 0, len(db.TagList))
			for _, tag := range db.TagList {
				keys = append(keys, aws.ToString(tag.Key))
			}
			return tagEvaluator(keys)
		},
	}

	return check.New(check.Meta{
		Name:        "tag-compliance",
		Control:     "CC4.1",
		Description: "Ensure all cloud resources are tagged with cost allocation fields",
		TotalKey:    "totalResources",
	}, ec2Family, s3Family, rdsFamily)
}
