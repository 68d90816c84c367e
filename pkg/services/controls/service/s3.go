package service

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

var publicGrantees = []string{"AllUsers", "AuthenticatedUsers"}

type bucketPosture struct {
	grants       []map[string]any
	publicGrant  bool
	policyPublic bool
	block        *s3types.PublicAccessBlockConfiguration
}

func S3NoPublicBuckets(env controls.Env) *check.Check {
	client := env.Clients.S3

	return check.New(check.Meta{
		Name:        "s3-no-public-buckets",
		Control:     "CC6.6",
		Description: "Ensure S3 buckets are not publicly accessible",
		TotalKey:    "totalBuckets",
		AbsentNote:  "No S3 buckets found",
	}, check.Family[s3types.Bucket, bucketPosture]{
		List: func(ctx context.Context) ([]s3types.Bucket, error) {
			return awsclient.ListBuckets(ctx, client)
		},
		ID: func(b s3types.Bucket) string { return aws.ToString(b.Name) },
		Detail: func(ctx context.Context, b s3types.Bucket) (bucketPosture, error) {
			return inspectBucket(ctx, client, b.Name)
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(_ s3types.Bucket, p bucketPosture) (bool, domain.Evidence) {
			blockAll := blocksAllPublicAccess(p.block)
			evidence := domain.Evidence{
				"aclGrants":         p.grants,
				"policyIsPublic":    p.policyPublic,
				"publicAccessBlock": nil,
			}
			if p.block != nil {
				evidence["publicAccessBlock"] = map[string]bool{
					"blockPublicAcls":       aws.ToBool(p.block.BlockPublicAcls),
					"ignorePublicAcls":      aws.ToBool(p.block.IgnorePublicAcls),
					"blockPublicPolicy":     aws.ToBool(p.block.BlockPublicPolicy),
					"restrictPublicBuckets": aws.ToBool(p.block.RestrictPublicBuckets),
				}
			}
			return !p.publicGrant && !p.policyPublic && blockAll, evidence
		},
	})
}

func inspectBucket(ctx context.Context, client awsclient.S3API, bucket *string) (bucketPosture, error) {
	posture := bucketPosture{grants: make([]map[string]any, 0)}

	acl, err := client.GetBucketAcl(ctx, &s3.GetBucketAclInput{Bucket: bucket})
	if err != nil {
		return posture, accessor.Classify("s3:GetBucketAcl", err)
	}
	for _, grant := range acl.Grants {
		entry := map[string]any{"permission": string(grant.Permission)}
		if grant.Grantee != nil {
			uri := aws.ToString(grant.Grantee.URI)
			entry["type"] = string(grant.Grantee.Type)
			if uri != "" {
				entry["uri"] = uri
			}
			if id := aws.ToString(grant.Grantee.ID); id != "" {
				entry["id"] = id
			}
			for _, public := range publicGrantees {
				if strings.Contains(uri, public) {
					posture.publicGrant = true
				}
			}
		}
		posture.grants = append(posture.grants, entry)
	}

	status, err := client.GetBucketPolicyStatus(ctx, &s3.GetBucketPolicyStatusInput{Bucket: bucket})
	switch err = accessor.Classify("s3:GetBucketPolicyStatus", err); {
	case accessor.IsNotFound(err):
		// no bucket policy
	case err != nil:
		return posture, err
	case status.PolicyStatus != nil:
		posture.policyPublic = aws.ToBool(status.PolicyStatus.IsPublic)
	}

	block, err := client.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: bucket})
	switch err = accessor.Classify("s3:GetPublicAccessBlock", err); {
	case accessor.IsNotFound(err):
		// no public access block configuration
	case err != nil:
		return posture, err
	default:
		posture.block = block.PublicAccessBlockConfiguration
	}

	return posture, nil
}

func blocksAllPublicAccess(c *s3types.PublicAccessBlockConfiguration) bool {
	if c == nil {
		return false
	}
	return aws.ToBool(c.BlockPublicAcls) &&
		aws.ToBool(c.IgnorePublicAcls) &&
		aws.ToBool(c.BlockPublicPolicy) &&
		aws.ToBool(c.RestrictPublicBuckets)
}
