package awsclient

import (
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
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
)

// Clients holds one client per service, all built from the same configuration.
type Clients struct {
	Region string

	IAM            IAMAPI
	CloudTrail     CloudTrailAPI
	S3             S3API
	RDS            RDSAPI
	EC2            EC2API
	GuardDuty      GuardDutyAPI
	ELB            ELBAPI
	ACM            ACMAPI
	CloudWatch     CloudWatchAPI
	CloudFormation CloudFormationAPI
	CostExplorer   CostExplorerAPI
	Budgets        BudgetsAPI

	// EvidenceWriter uploads evidence documents; it shares the S3 client.
	EvidenceWriter S3PutAPI
}

func NewClients(cfg awssdk.Config) *Clients {
	global := func(o *budgets.Options) { o.Region = GlobalRegion }
	ceGlobal := func(o *costexplorer.Options) { o.Region = GlobalRegion }
	s3Client := s3.NewFromConfig(cfg)

	return &Clients{
		Region:         cfg.Region,
		IAM:            iam.NewFromConfig(cfg),
		CloudTrail:     cloudtrail.NewFromConfig(cfg),
		S3:             s3Client,
		RDS:            rds.NewFromConfig(cfg),
		EC2:            ec2.NewFromConfig(cfg),
		GuardDuty:      guardduty.NewFromConfig(cfg),
		ELB:            elb.NewFromConfig(cfg),
		ACM:            acm.NewFromConfig(cfg),
		CloudWatch:     cloudwatch.NewFromConfig(cfg),
		CloudFormation: cloudformation.NewFromConfig(cfg),
		CostExplorer:   costexplorer.NewFromConfig(cfg, ceGlobal),
		Budgets:        budgets.NewFromConfig(cfg, global),
		EvidenceWriter: s3Client,
	}
}
