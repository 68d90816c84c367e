package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
)

// Listings shared by both check groups. Errors are classified.

// ListInstances flattens the reservations of every page.
func ListInstances(ctx context.Context, client EC2API) ([]ec2types.Instance, error) {
	instances := make([]ec2types.Instance, 0)
	p := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, accessor.Classify("ec2:DescribeInstances", err)
		}
		for _, reservation := range page.Reservations {
			instances = append(instances, reservation.Instances...)
		}
	}
	return instances, nil
}

func ListDBInstances(ctx context.Context, client RDSAPI) ([]rdstypes.DBInstance, error) {
	instances := make([]rdstypes.DBInstance, 0)
	p := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, accessor.Classify("rds:DescribeDBInstances", err)
		}
		instances = append(instances, page.DBInstances...)
	}
	return instances, nil
}

func ListBuckets(ctx context.Context, client S3API) ([]s3types.Bucket, error) {
	out, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, accessor.Classify("s3:ListBuckets", err)
	}
	return out.Buckets, nil
}

// ListApplicationLoadBalancers skips network and gateway load balancers.
func ListApplicationLoadBalancers(ctx context.Context, client ELBAPI) ([]elbtypes.LoadBalancer, error) {
	lbs := make([]elbtypes.LoadBalancer, 0)
	p := elb.NewDescribeLoadBalancersPaginator(client, &elb.DescribeLoadBalancersInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, accessor.Classify("elasticloadbalancing:DescribeLoadBalancers", err)
		}
		for _, lb := range page.LoadBalancers {
			if lb.Type == elbtypes.LoadBalancerTypeEnumApplication {
				lbs = append(lbs, lb)
			}
		}
	}
	return lbs, nil
}
