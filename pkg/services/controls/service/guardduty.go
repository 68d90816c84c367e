package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	gdtypes "github.com/aws/aws-sdk-go-v2/service/guardduty/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

func GuardDutyEnabled(env controls.Env) *check.Check {
	client := env.Clients.GuardDuty

	return check.New(check.Meta{
		Name:        "guardduty-enabled",
		Control:     "CC7.1",
		Description: "Amazon GuardDuty must be enabled in the current AWS region",
		TotalKey:    "totalDetectors",
		Existence:   check.ExistenceRequired,
	}, check.Family[string, gdtypes.DetectorStatus]{
		Existence: check.ExistenceRequired,
		AbsentEvidence: domain.Evidence{
			"region":    env.Region,
			"detectors": []string{},
			"reason":    "GuardDuty is not enabled in this region.",
		},
		List: func(ctx context.Context) ([]string, error) {
			ids := make([]string, 0)
			p := guardduty.NewListDetectorsPaginator(client, &guardduty.ListDetectorsInput{})
			for p.HasMorePages() {
				page, err := p.NextPage(ctx)
				if err != nil {
					return nil, accessor.Classify("guardduty:ListDetectors", err)
				}
				ids = append(ids, page.DetectorIds...)
			}
			return ids, nil
		},
		ID: func(id string) string { return id },
		Detail: func(ctx context.Context, id string) (gdtypes.DetectorStatus, error) {
			out, err := client.GetDetector(ctx, &guardduty.GetDetectorInput{DetectorId: aws.String(id)})
			if err != nil {
				return "", accessor.Classify("guardduty:GetDetector", err)
			}
			return out.Status, nil
		},
		Evaluate: func(_ string, status gdtypes.DetectorStatus) (bool, domain.Evidence) {
			return status == gdtypes.DetectorStatusEnabled, domain.Evidence{"status": string(status)}
		},
	})
}
