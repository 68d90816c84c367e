package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

const accessLogsAttribute = "access_logs.s3.enabled"

func ELBAccessLogs(env controls.Env) *check.Check {
	client := env.Clients.ELB

	return check.New(check.Meta{
		Name:        "elb-access-logs",
		Control:     "CC7.2",
		Description: "All ALBs must have access logs enabled",
		TotalKey:    "totalALBs",
		AbsentNote:  "No Application Load Balancers (ALBs) found in this region",
	}, check.Family[elbtypes.LoadBalancer, map[string]string]{
		List: func(ctx context.Context) ([]elbtypes.LoadBalancer, error) {
			return awsclient.ListApplicationLoadBalancers(ctx, client)
		},
		ID: func(lb elbtypes.LoadBalancer) string { return aws.ToString(lb.LoadBalancerName) },
		Detail: func(ctx context.Context, lb elbtypes.LoadBalancer) (map[string]string, error) {
			out, err := client.DescribeLoadBalancerAttributes(ctx, &elb.DescribeLoadBalancerAttributesInput{
				LoadBalancerArn: lb.LoadBalancerArn,
			})
			if err != nil {
				return nil, accessor.Classify("elasticloadbalancing:DescribeLoadBalancerAttributes", err)
			}
			attributes := make(map[string]string, len(out.Attributes))
			for _, attr := range out.Attributes {
				attributes[aws.ToString(attr.Key)] = aws.ToString(attr.Value)
			}
			return attributes, nil
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(_ elbtypes.LoadBalancer, attributes map[string]string) (bool, domain.Evidence) {
			enabled := attributes[accessLogsAttribute] == "true"
			return enabled, domain.Evidence{
				"accessLogs": enabled,
				"attributes": attributes,
			}
		},
	})
}
