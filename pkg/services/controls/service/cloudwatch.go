package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

// CriticalMetrics must each be covered by at least one metric alarm.
var CriticalMetrics = []string{"CPUUtilization", "StatusCheckFailed", "DiskReadOps", "DiskWriteOps"}

func CloudWatchAlarms(env controls.Env) *check.Check {
	client := env.Clients.CloudWatch

	return check.New(check.Meta{
		Name:        "cloudwatch-alarms",
		Control:     "CC7.2",
		Description: "CloudWatch alarms must be enabled for key metrics like CPU, disk, and health checks.",
		TotalKey:    "totalMetrics",
	}, check.CollectorFunc(func(ctx context.Context) ([]domain.Finding, error) {
		alarms := make([]cwtypes.MetricAlarm, 0)
		p := cloudwatch.NewDescribeAlarmsPaginator(client, &cloudwatch.DescribeAlarmsInput{})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, accessor.Classify("cloudwatch:DescribeAlarms", err)
			}
			alarms = append(alarms, page.MetricAlarms...)
		}

		findings := make([]domain.Finding, 0, len(CriticalMetrics))
		for _, metric := range CriticalMetrics {
			names := make([]string, 0)
			for _, alarm := range alarms {
				if aws.ToString(alarm.MetricName) == metric {
					names = append(names, aws.ToString(alarm.AlarmName))
				}
			}
			evidence := domain.Evidence{"alarms": names}
			if len(alarms) == 0 {
				evidence["reason"] = "No CloudWatch alarms found in the current region."
			}
			findings = append(findings, domain.NewFinding(metric, len(names) > 0, evidence))
		}
		return findings, nil
	}))
}
