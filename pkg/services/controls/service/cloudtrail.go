package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cttypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

func CloudTrailAllRegions(env controls.Env) *check.Check {
	client := env.Clients.CloudTrail

	return check.New(check.Meta{
		Name:        "cloudtrail-enabled-all-regions",
		Control:     "CC7.2",
		Description: "CloudTrail should be enabled in all AWS regions",
		TotalKey:    "totalTrails",
		Existence:   check.ExistenceRequired,
		AbsentNote:  "No CloudTrail trails found",
	}, check.Family[cttypes.Trail, struct{}]{
		Existence:      check.ExistenceRequired,
		AbsentEvidence: domain.Evidence{"reason": "No trail is configured for this account"},
		List: func(ctx context.Context) ([]cttypes.Trail, error) {
			out, err := client.DescribeTrails(ctx, &cloudtrail.DescribeTrailsInput{IncludeShadowTrails: aws.Bool(false)})
			if err != nil {
				return nil, accessor.Classify("cloudtrail:DescribeTrails", err)
			}
			return out.TrailList, nil
		},
		ID: func(t cttypes.Trail) string { return aws.ToString(t.Name) },
		Evaluate: func(t cttypes.Trail, _ struct{}) (bool, domain.Evidence) {
			multi := aws.ToBool(t.IsMultiRegionTrail)
			return multi, domain.Evidence{
				"homeRegion":    aws.ToString(t.HomeRegion),
				"isMultiRegion": multi,
			}
		},
	})
}
