package billing

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
	"github.com/de-tools/evidence-atlas/pkg/services/controls/evaluate"
)

const (
	metricWindow = 7 * 24 * time.Hour
	metricPeriod = int32(24 * 60 * 60)
)

type metricQuery struct {
	namespace string
	metric    string
	dimension string
	statistic cwtypes.Statistic
}

var (
	ec2CPU      = metricQuery{namespace: "AWS/EC2", metric: "CPUUtilization", dimension: "InstanceId", statistic: cwtypes.StatisticAverage}
	rdsCPU      = metricQuery{namespace: "AWS/RDS", metric: "CPUUtilization", dimension: "DBInstanceIdentifier", statistic: cwtypes.StatisticAverage}
	albRequests = metricQuery{namespace: "AWS/ApplicationELB", metric: "RequestCount", dimension: "LoadBalancer", statistic: cwtypes.StatisticSum}
)

// series fetches the daily datapoints of one resource over the trailing window, oldest first.
func series(ctx context.Context, client awsclient.CloudWatchAPI, q metricQuery, value string, now time.Time) ([]float64, error) {
	out, err := client.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(q.namespace),
		MetricName: aws.String(q.metric),
		Dimensions: []cwtypes.Dimension{{Name: aws.String(q.dimension), Value: aws.String(value)}},
		StartTime:  aws.Time(now.Add(-metricWindow)),
		EndTime:    aws.Time(now),
		Period:     aws.Int32(metricPeriod),
		Statistics: []cwtypes.Statistic{q.statistic},
	})
	if err != nil {
		return nil, accessor.Classify("cloudwatch:GetMetricStatistics", err)
	}

	points := slices.Clone(out.Datapoints)
	slices.SortFunc(points, func(a, b cwtypes.Datapoint) int {
		return aws.ToTime(a.Timestamp).Compare(aws.ToTime(b.Timestamp))
	})

	values := make([]float64, 0, len(points))
	for _, p := range points {
		if q.statistic == cwtypes.StatisticSum {
			values = append(values, aws.ToFloat64(p.Sum))
		} else {
			values = append(values, aws.ToFloat64(p.Average))
		}
	}
	return values, nil
}

// LoadBalancerDimension turns an ALB ARN into the value of the CloudWatch
// "LoadBalancer" dimension: app/<name>/<id>.
func LoadBalancerDimension(arn string) string {
	const marker = "loadbalancer/"
	if i := strings.Index(arn, marker); i >= 0 {
		return arn[i+len(marker):]
	}
	return arn
}

func cpuEvidence(values []float64) (bool, domain.Evidence) {
	avg := evaluate.AverageDatapoints(values)
	return evaluate.CPUActive(avg), domain.Evidence{
		"averageCPU": avg,
		"dataPoints": values,
	}
}

func IdleResourceCleanup(env controls.Env) *check.Check {
	clients := env.Clients

	ec2Family := check.Family[ec2types.Instance, []float64]{
		Kind: "ec2",
		List: func(ctx context.Context) ([]ec2types.Instance, error) {
			return awsclient.ListInstances(ctx, clients.EC2)
		},
		ID: func(i ec2types.Instance) string { return aws.ToString(i.InstanceId) },
		Detail: func(ctx context.Context, i ec2types.Instance) ([]float64, error) {
			return series(ctx, clients.CloudWatch, ec2CPU, aws.ToString(i.InstanceId), env.Clock())
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(_ ec2types.Instance, values []float64) (bool, domain.Evidence) {
			return cpuEvidence(values)
		},
	}

	rdsFamily := check.Family[rdstypes.DBInstance, []float64]{
		Kind: "rds",
		List: func(ctx context.Context) ([]rdstypes.DBInstance, error) {
			return awsclient.ListDBInstances(ctx, clients.RDS)
		},
		ID: func(db rdstypes.DBInstance) string { return aws.ToString(db.DBInstanceIdentifier) },
		Detail: func(ctx context.Context, db rdstypes.DBInstance) ([]float64, error) {
			return series(ctx, clients.CloudWatch, rdsCPU, aws.ToString(db.DBInstanceIdentifier), env.Clock())
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(_ rdstypes.DBInstance, values []float64) (bool, domain.Evidence) {
			return cpuEvidence(values)
		},
	}

	albFamily := check.Family[elbtypes.LoadBalancer, []float64]{
		Kind: "alb",
		List: func(ctx context.Context) ([]elbtypes.LoadBalancer, error) {
			return awsclient.ListApplicationLoadBalancers(ctx, clients.ELB)
		},
		ID: func(lb elbtypes.LoadBalancer) string { return aws.ToString(lb.LoadBalancerArn) },
		Detail: func(ctx context.Context, lb elbtypes.LoadBalancer) ([]float64, error) {
			dimension := LoadBalancerDimension(aws.ToString(lb.LoadBalancerArn))
			return series(ctx, clients.CloudWatch, albRequests, dimension, env.Clock())
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(_ elbtypes.LoadBalancer, values []float64) (bool, domain.Evidence) {
			total := evaluate.SumDatapoints(values)
			return total > 0, domain.Evidence{
				"totalRequests": total,
				"dataPoints":    values,
			}
		},
	}

	return check.New(check.Meta{
		Name:        "idle-resource-cleanup",
		Control:     "CC3.3",
		Description: "Detects underutilized AWS resources for potential cleanup",
		TotalKey:    "totalResources",
	}, ec2Family, rdsFamily, albFamily)
}

func ReservedInstanceRecommendation(env controls.Env) *check.Check {
	client := env.Clients.EC2

	return check.New(check.Meta{
		Name:        "reserved-instance-recommendation",
		Control:     "RI.1",
		Description: "Identify EC2 instances eligible for Reserved Instance purchase",
		TotalKey:    "totalInstances",
		AbsentNote:  "No EC2 instances found",
		Summarize: func(findings []domain.Finding, summary domain.Summary) {
			eligible := 0
			for _, f := range findings {
				if f.ResourceExists && !f.Compliant {
					eligible++
				}
			}
			summary["eligibleForReservation"] = eligible
		},
	}, check.Family[ec2types.Instance, struct{}]{
		List: func(ctx context.Context) ([]ec2types.Instance, error) {
			return awsclient.ListInstances(ctx, client)
		},
		ID: func(i ec2types.Instance) string { return aws.ToString(i.InstanceId) },
		Evaluate: func(i ec2types.Instance, _ struct{}) (bool, domain.Evidence) {
			evidence := domain.Evidence{
				"instanceType": string(i.InstanceType),
				"region":       env.Region,
			}
			uptime := 0
			if i.LaunchTime != nil {
				uptime = int(env.Clock().Sub(*i.LaunchTime).Hours() / 24)
				evidence["launchTime"] = i.LaunchTime.UTC().Format(time.RFC3339)
			}
			evidence["uptimeDays"] = uptime
			return uptime < evaluate.ReservationUptimeDays, evidence
		},
	})
}
