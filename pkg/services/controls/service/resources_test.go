package service

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient/awsmock"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

func TestRDSBackupsEnabled(t *testing.T) {
	t.Run("no instances is a vacuous pass", func(t *testing.T) {
		m := new(awsmock.RDS)
		m.On("DescribeDBInstances", mock.Anything, mock.Anything).Return(&rds.DescribeDBInstancesOutput{}, nil)

		report, err := RDSBackupsEnabled(controls.Env{Clients: &awsclient.Clients{RDS: m}}).Run(context.Background())
		require.NoError(t, err)
		require.NoError(t, report.Validate())

		assert.True(t, report.Passed)
		assert.Equal(t, "No RDS instances found", report.Note)
		require.Len(t, report.Results, 1)
		assert.Nil(t, report.Results[0].ResourceID)
		assert.False(t, report.Results[0].ResourceExists)
		assert.True(t, report.Results[0].Compliant)
	})

	t.Run("retention period decides compliance", func(t *testing.T) {
		m := new(awsmock.RDS)
		m.On("DescribeDBInstances", mock.Anything, mock.Anything).Return(&rds.DescribeDBInstancesOutput{
			DBInstances: []rdstypes.DBInstance{
				{DBInstanceIdentifier: aws.String("orders"), BackupRetentionPeriod: aws.Int32(7)},
				{DBInstanceIdentifier: aws.String("scratch"), BackupRetentionPeriod: aws.Int32(0)},
			},
		}, nil)

		report, err := RDSBackupsEnabled(controls.Env{Clients: &awsclient.Clients{RDS: m}}).Run(context.Background())
		require.NoError(t, err)
		require.NoError(t, report.Validate())

		assert.False(t, report.Passed)
		assert.Equal(t, 2, report.Summary["totalDBInstances"])
		assert.Equal(t, 1, report.Summary["nonCompliant"])
		assert.True(t, findingByID(t, report, "orders").Compliant)

		scratch := findingByID(t, report, "scratch")
		assert.False(t, scratch.Compliant)
		assert.Equal(t, int32(0), scratch.Evidence["backupRetentionPeriod"])
	})
}

func TestELBAccessLogs(t *testing.T) {
	m := new(awsmock.ELB)
	m.On("DescribeLoadBalancers", mock.Anything, mock.Anything).Return(&elb.DescribeLoadBalancersOutput{
		LoadBalancers: []elbtypes.LoadBalancer{
			{LoadBalancerName: aws.String("web"), LoadBalancerArn: aws.String("arn:web"), Type: elbtypes.LoadBalancerTypeEnumApplication},
			{LoadBalancerName: aws.String("api"), LoadBalancerArn: aws.String("arn:api"), Type: elbtypes.LoadBalancerTypeEnumApplication},
			{LoadBalancerName: aws.String("tcp"), LoadBalancerArn: aws.String("arn:tcp"), Type: elbtypes.LoadBalancerTypeEnumNetwork},
		},
	}, nil)
	lb := func(arn string) interface{} {
		return named(arn, func(in *elb.DescribeLoadBalancerAttributesInput) *string { return in.LoadBalancerArn })
	}
	m.On("DescribeLoadBalancerAttributes", mock.Anything, lb("arn:web")).Return(&elb.DescribeLoadBalancerAttributesOutput{
		Attributes: []elbtypes.LoadBalancerAttribute{{Key: aws.String(accessLogsAttribute), Value: aws.String("true")}},
	}, nil)
	m.On("DescribeLoadBalancerAttributes", mock.Anything, lb("arn:api")).Return(&elb.DescribeLoadBalancerAttributesOutput{}, nil)

	report, err := ELBAccessLogs(controls.Env{Clients: &awsclient.Clients{ELB: m}, DetailConcurrency: 2}).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Validate())

	require.Len(t, report.Results, 2)
	assert.Equal(t, 2, report.Summary["totalALBs"])
	assert.False(t, report.Passed)
	assert.True(t, findingByID(t, report, "web").Compliant)

	api := findingByID(t, report, "api")
	assert.False(t, api.Compliant)
	assert.Equal(t, false, api.Evidence["accessLogs"])
	m.AssertNotCalled(t, "DescribeLoadBalancerAttributes", mock.Anything, lb("arn:tcp"))
}

func TestEBSEncryptionEnabled(t *testing.T) {
	m := new(awsmock.EC2)
	m.On("DescribeVolumes", mock.Anything, mock.Anything).Return(&ec2.DescribeVolumesOutput{
		Volumes: []ec2types.Volume{
			{VolumeId: aws.String("vol-enc"), Encrypted: aws.Bool(true), KmsKeyId: aws.String("arn:aws:kms:us-east-1:111122223333:key/abc")},
			{VolumeId: aws.String("vol-plain"), Encrypted: aws.Bool(false)},
		},
	}, nil)

	report, err := EBSEncryptionEnabled(controls.Env{Clients: &awsclient.Clients{EC2: m}}).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Validate())

	assert.False(t, report.Passed)
	assert.Equal(t, 2, report.Summary["totalVolumes"])

	enc := findingByID(t, report, "vol-enc")
	assert.True(t, enc.Compliant)
	assert.Equal(t, "arn:aws:kms:us-east-1:111122223333:key/abc", enc.Evidence["kmsKeyId"])

	plain := findingByID(t, report, "vol-plain")
	assert.False(t, plain.Compliant)
	assert.Contains(t, plain.Evidence, "kmsKeyId")
	assert.Nil(t, plain.Evidence["kmsKeyId"])
}

func TestSecurityGroupsOpenPorts(t *testing.T) {
	tests := []struct {
		name      string
		perms     []ec2types.IpPermission
		compliant bool
		open      []int32
	}{
		{
			name: "ssh open over ipv6",
			perms: []ec2types.IpPermission{{
				IpProtocol: aws.String("tcp"), FromPort: aws.Int32(22), ToPort: aws.Int32(22),
				Ipv6Ranges: []ec2types.Ipv6Range{{CidrIpv6: aws.String("::/0")}},
			}},
			compliant: false,
			open:      []int32{22},
		},
		{
			name: "all protocols open",
			perms: []ec2types.IpPermission{{
				IpProtocol: aws.String("-1"),
				IpRanges:   []ec2types.IpRange{{CidrIp: aws.String("0.0.0.0/0")}},
			}},
			compliant: false,
			open:      []int32{22, 3389},
		},
		{
			name: "internal only",
			perms: []ec2types.IpPermission{{
				IpProtocol: aws.String("-1"),
				IpRanges:   []ec2types.IpRange{{CidrIp: aws.String("10.0.0.0/8")}},
			}},
			compliant: true,
			open:      []int32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(awsmock.EC2)
			m.On("DescribeSecurityGroups", mock.Anything, mock.Anything).Return(&ec2.DescribeSecurityGroupsOutput{
				SecurityGroups: []ec2types.SecurityGroup{
					{GroupId: aws.String("sg-1"), GroupName: aws.String("edge"), IpPermissions: tt.perms},
				},
			}, nil)

			report, err := SecurityGroupsOpenPorts(controls.Env{Clients: &awsclient.Clients{EC2: m}}).Run(context.Background())
			require.NoError(t, err)
			require.NoError(t, report.Validate())

			assert.Equal(t, tt.compliant, report.Passed)
			sg := findingByID(t, report, "sg-1")
			assert.Equal(t, tt.compliant, sg.Compliant)
			assert.Equal(t, tt.open, sg.Evidence["openToWorldOnPorts"])
			assert.Equal(t, "edge", sg.Evidence["groupName"])
		})
	}
}

func TestEC2NoPublicAMI_ImageNotFound(t *testing.T) {
	m := new(awsmock.EC2)
	m.On("DescribeInstances", mock.Anything, mock.Anything).Return(&ec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{{Instances: []ec2types.Instance{
			{InstanceId: aws.String("i-gone"), ImageId: aws.String("ami-gone")},
			{InstanceId: aws.String("i-empty"), ImageId: aws.String("ami-empty")},
		}}},
	}, nil)
	image := func(id string) interface{} {
		return mock.MatchedBy(func(in *ec2.DescribeImagesInput) bool { return len(in.ImageIds) == 1 && in.ImageIds[0] == id })
	}
	m.On("DescribeImages", mock.Anything, image("ami-gone")).Return(nil, apiError("InvalidAMIID.NotFound"))
	m.On("DescribeImages", mock.Anything, image("ami-empty")).Return(&ec2.DescribeImagesOutput{}, nil)

	report, err := EC2NoPublicAMI(controls.Env{Clients: &awsclient.Clients{EC2: m}}).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Validate())

	for _, id := range []string{"i-gone", "i-empty"} {
		f := findingByID(t, report, id)
		assert.True(t, f.Compliant, id)
		assert.Equal(t, false, f.Evidence["imageFound"], id)
		assert.Equal(t, "image not found", f.Evidence["reason"], id)
	}
}
