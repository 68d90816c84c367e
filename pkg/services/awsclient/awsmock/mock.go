// Package awsmock provides testify mocks of the awsclient interfaces.
// Option functions passed to a call are ignored.
package awsmock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"
)

func result[T any](args mock.Arguments) (*T, error) {
	if v := args.Get(0); v != nil {
		return v.(*T), args.Error(1)
	}
	return nil, args.Error(1)
}

type IAM struct {
	mock.Mock
}

func (m *IAM) ListUsers(ctx context.Context, in *iam.ListUsersInput, _ ...func(*iam.Options)) (*iam.ListUsersOutput, error) {
	return result[iam.ListUsersOutput](m.Called(ctx, in))
}

func (m *IAM) ListMFADevices(ctx context.Context, in *iam.ListMFADevicesInput, _ ...func(*iam.Options)) (*iam.ListMFADevicesOutput, error) {
	return result[iam.ListMFADevicesOutput](m.Called(ctx, in))
}

func (m *IAM) GetLoginProfile(ctx context.Context, in *iam.GetLoginProfileInput, _ ...func(*iam.Options)) (*iam.GetLoginProfileOutput, error) {
	return result[iam.GetLoginProfileOutput](m.Called(ctx, in))
}

func (m *IAM) ListRoles(ctx context.Context, in *iam.ListRolesInput, _ ...func(*iam.Options)) (*iam.ListRolesOutput, error) {
	return result[iam.ListRolesOutput](m.Called(ctx, in))
}

func (m *IAM) ListRolePolicies(ctx context.Context, in *iam.ListRolePoliciesInput, _ ...func(*iam.Options)) (*iam.ListRolePoliciesOutput, error) {
	return result[iam.ListRolePoliciesOutput](m.Called(ctx, in))
}

func (m *IAM) GetRolePolicy(ctx context.Context, in *iam.GetRolePolicyInput, _ ...func(*iam.Options)) (*iam.GetRolePolicyOutput, error) {
	return result[iam.GetRolePolicyOutput](m.Called(ctx, in))
}

func (m *IAM) ListAttachedRolePolicies(ctx context.Context, in *iam.ListAttachedRolePoliciesInput, _ ...func(*iam.Options)) (*iam.ListAttachedRolePoliciesOutput, error) {
	return result[iam.ListAttachedRolePoliciesOutput](m.Called(ctx, in))
}

func (m *IAM) GetPolicy(ctx context.Context, in *iam.GetPolicyInput, _ ...func(*iam.Options)) (*iam.GetPolicyOutput, error) {
	return result[iam.GetPolicyOutput](m.Called(ctx, in))
}

func (m *IAM) GetPolicyVersion(ctx context.Context, in *iam.GetPolicyVersionInput, _ ...func(*iam.Options)) (*iam.GetPolicyVersionOutput, error) {
	return result[iam.GetPolicyVersionOutput](m.Called(ctx, in))
}

func (m *IAM) GetAccountSummary(ctx context.Context, in *iam.GetAccountSummaryInput, _ ...func(*iam.Options)) (*iam.GetAccountSummaryOutput, error) {
	return result[iam.GetAccountSummaryOutput](m.Called(ctx, in))
}

type CloudTrail struct {
	mock.Mock
}

func (m *CloudTrail) DescribeTrails(ctx context.Context, in *cloudtrail.DescribeTrailsInput, _ ...func(*cloudtrail.Options)) (*cloudtrail.DescribeTrailsOutput, error) {
	return result[cloudtrail.DescribeTrailsOutput](m.Called(ctx, in))
}

type S3 struct {
	mock.Mock
}

func (m *S3) ListBuckets(ctx context.Context, in *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return result[s3.ListBucketsOutput](m.Called(ctx, in))
}

func (m *S3) GetBucketAcl(ctx context.Context, in *s3.GetBucketAclInput, _ ...func(*s3.Options)) (*s3.GetBucketAclOutput, error) {
	return result[s3.GetBucketAclOutput](m.Called(ctx, in))
}

func (m *S3) GetBucketPolicyStatus(ctx context.Context, in *s3.GetBucketPolicyStatusInput, _ ...func(*s3.Options)) (*s3.GetBucketPolicyStatusOutput, error) {
	return result[s3.GetBucketPolicyStatusOutput](m.Called(ctx, in))
}

func (m *S3) GetPublicAccessBlock(ctx context.Context, in *s3.GetPublicAccessBlockInput, _ ...func(*s3.Options)) (*s3.GetPublicAccessBlockOutput, error) {
	return result[s3.GetPublicAccessBlockOutput](m.Called(ctx, in))
}

func (m *S3) GetBucketTagging(ctx context.Context, in *s3.GetBucketTaggingInput, _ ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	return result[s3.GetBucketTaggingOutput](m.Called(ctx, in))
}

func (m *S3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return result[s3.PutObjectOutput](m.Called(ctx, in))
}

type RDS struct {
	mock.Mock
}

func (m *RDS) DescribeDBInstances(ctx context.Context, in *rds.DescribeDBInstancesInput, _ ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	return result[rds.DescribeDBInstancesOutput](m.Called(ctx, in))
}

type EC2 struct {
	mock.Mock
}

func (m *EC2) DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return result[ec2.DescribeInstancesOutput](m.Called(ctx, in))
}

func (m *EC2) DescribeImages(ctx context.Context, in *ec2.DescribeImagesInput, _ ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	return result[ec2.DescribeImagesOutput](m.Called(ctx, in))
}

func (m *EC2) DescribeSecurityGroups(ctx context.Context, in *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return result[ec2.DescribeSecurityGroupsOutput](m.Called(ctx, in))
}

func (m *EC2) DescribeVolumes(ctx context.Context, in *ec2.DescribeVolumesInput, _ ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error) {
	return result[ec2.DescribeVolumesOutput](m.Called(ctx, in))
}

type GuardDuty struct {
	mock.Mock
}

func (m *GuardDuty) ListDetectors(ctx context.Context, in *guardduty.ListDetectorsInput, _ ...func(*guardduty.Options)) (*guardduty.ListDetectorsOutput, error) {
	return result[guardduty.ListDetectorsOutput](m.Called(ctx, in))
}

func (m *GuardDuty) GetDetector(ctx context.Context, in *guardduty.GetDetectorInput, _ ...func(*guardduty.Options)) (*guardduty.GetDetectorOutput, error) {
	return result[guardduty.GetDetectorOutput](m.Called(ctx, in))
}

type ELB struct {
	mock.Mock
}

func (m *ELB) DescribeLoadBalancers(ctx context.Context, in *elb.DescribeLoadBalancersInput, _ ...func(*elb.Options)) (*elb.DescribeLoadBalancersOutput, error) {
	return result[elb.DescribeLoadBalancersOutput](m.Called(ctx, in))
}

func (m *ELB) DescribeLoadBalancerAttributes(ctx context.Context, in *elb.DescribeLoadBalancerAttributesInput, _ ...func(*elb.Options)) (*elb.DescribeLoadBalancerAttributesOutput, error) {
	return result[elb.DescribeLoadBalancerAttributesOutput](m.Called(ctx, in))
}

type ACM struct {
	mock.Mock
}

func (m *ACM) ListCertificates(ctx context.Context, in *acm.ListCertificatesInput, _ ...func(*acm.Options)) (*acm.ListCertificatesOutput, error) {
	return result[acm.ListCertificatesOutput](m.Called(ctx, in))
}

func (m *ACM) DescribeCertificate(ctx context.Context, in *acm.DescribeCertificateInput, _ ...func(*acm.Options)) (*acm.DescribeCertificateOutput, error) {
	return result[acm.DescribeCertificateOutput](m.Called(ctx, in))
}

type CloudWatch struct {
	mock.Mock
}

func (m *CloudWatch) DescribeAlarms(ctx context.Context, in *cloudwatch.DescribeAlarmsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error) {
	return result[cloudwatch.DescribeAlarmsOutput](m.Called(ctx, in))
}

func (m *CloudWatch) GetMetricStatistics(ctx context.Context, in *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	return result[cloudwatch.GetMetricStatisticsOutput](m.Called(ctx, in))
}

type CloudFormation struct {
	mock.Mock
}

func (m *CloudFormation) ListStacks(ctx context.Context, in *cloudformation.ListStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.ListStacksOutput, error) {
	return result[cloudformation.ListStacksOutput](m.Called(ctx, in))
}

func (m *CloudFormation) DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	return result[cloudformation.DescribeStacksOutput](m.Called(ctx, in))
}

type CostExplorer struct {
	mock.Mock
}

func (m *CostExplorer) GetCostAndUsage(ctx context.Context, in *costexplorer.GetCostAndUsageInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	return result[costexplorer.GetCostAndUsageOutput](m.Called(ctx, in))
}

func (m *CostExplorer) GetAnomalyMonitors(ctx context.Context, in *costexplorer.GetAnomalyMonitorsInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetAnomalyMonitorsOutput, error) {
	return result[costexplorer.GetAnomalyMonitorsOutput](m.Called(ctx, in))
}

type Budgets struct {
	mock.Mock
}

func (m *Budgets) DescribeBudgets(ctx context.Context, in *budgets.DescribeBudgetsInput, _ ...func(*budgets.Options)) (*budgets.DescribeBudgetsOutput, error) {
	return result[budgets.DescribeBudgetsOutput](m.Called(ctx, in))
}

func (m *Budgets) DescribeBudget(ctx context.Context, in *budgets.DescribeBudgetInput, _ ...func(*budgets.Options)) (*budgets.DescribeBudgetOutput, error) {
	return result[budgets.DescribeBudgetOutput](m.Called(ctx, in))
}
