package service

import (
	"context"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

var (
	adminPorts     = []int32{22, 3389}
	worldCIDRs     = []string{"0.0.0.0/0", "::/0"}
	publicAMIOwner = []string{"amazon", "aws-marketplace"}
)

func SecurityGroupsOpenPorts(env controls.Env) *check.Check {
	client := env.Clients.EC2

	return check.New(check.Meta{
		Name:        "security-groups-open-ports",
		Control:     "CC6.6",
		Description: "Security groups must not expose ports 22 or 3389 to the public internet",
		TotalKey:    "totalSecurityGroups",
		AbsentNote:  "No security groups found",
	}, check.Family[ec2types.SecurityGroup, struct{}]{
		List: func(ctx context.Context) ([]ec2types.SecurityGroup, error) {
			groups := make([]ec2types.SecurityGroup, 0)
			p := ec2.NewDescribeSecurityGroupsPaginator(client, &ec2.DescribeSecurityGroupsInput{})
			for p.HasMorePages() {
				page, err := p.NextPage(ctx)
				if err != nil {
					return nil, accessor.Classify("ec2:DescribeSecurityGroups", err)
				}
				groups = append(groups, page.SecurityGroups...)
			}
			return groups, nil
		},
		ID: func(sg ec2types.SecurityGroup) string { return aws.ToString(sg.GroupId) },
		Evaluate: func(sg ec2types.SecurityGroup, _ struct{}) (bool, domain.Evidence) {
			open := OpenAdminPorts(sg.IpPermissions)
			return len(open) == 0, domain.Evidence{
				"groupName":          aws.ToString(sg.GroupName),
				"openToWorldOnPorts": open,
			}
		},
	})
}

// OpenAdminPorts returns the administrative ports reachable from anywhere.
// A rule covers a port when its range includes it or it allows all protocols.
func OpenAdminPorts(permissions []ec2types.IpPermission) []int32 {
	open := make([]int32, 0)
	for _, port := range adminPorts {
		for _, perm := range permissions {
			if coversPort(perm, port) && openToWorld(perm) {
				open = append(open, port)
				break
			}
		}
	}
	return open
}

func coversPort(perm ec2types.IpPermission, port int32) bool {
	if aws.ToString(perm.IpProtocol) == "-1" {
		return true
	}
	if perm.FromPort == nil || perm.ToPort == nil {
		return false
	}
	return aws.ToInt32(perm.FromPort) <= port && port <= aws.ToInt32(perm.ToPort)
}

func openToWorld(perm ec2types.IpPermission) bool {
	for _, r := range perm.IpRanges {
		if slices.Contains(worldCIDRs, aws.ToString(r.CidrIp)) {
			return true
		}
	}
	for _, r := range perm.Ipv6Ranges {
		if slices.Contains(worldCIDRs, aws.ToString(r.CidrIpv6)) {
			return true
		}
	}
	return false
}

func EBSEncryptionEnabled(env controls.Env) *check.Check {
	client := env.Clients.EC2

	return check.New(check.Meta{
		Name:        "ebs-encryption-enabled",
		Control:     "CC6.4",
		Description: "All EBS volumes must be encrypted at rest",
		TotalKey:    "totalVolumes",
		AbsentNote:  "No EBS volumes found",
	}, check.Family[ec2types.Volume, struct{}]{
		List: func(ctx context.Context) ([]ec2types.Volume, error) {
			volumes := make([]ec2types.Volume, 0)
			p := ec2.NewDescribeVolumesPaginator(client, &ec2.DescribeVolumesInput{})
			for p.HasMorePages() {
				page, err := p.NextPage(ctx)
				if err != nil {
					return nil, accessor.Classify("ec2:DescribeVolumes", err)
				}
				volumes = append(volumes, page.Volumes...)
			}
			return volumes, nil
		},
		ID: func(v ec2types.Volume) string { return aws.ToString(v.VolumeId) },
		Evaluate: func(v ec2types.Volume, _ struct{}) (bool, domain.Evidence) {
			encrypted := aws.ToBool(v.Encrypted)
			evidence := domain.Evidence{"encrypted": encrypted, "kmsKeyId": nil}
			if v.KmsKeyId != nil {
				evidence["kmsKeyId"] = aws.ToString(v.KmsKeyId)
			}
			return encrypted, evidence
		},
	})
}

type amiOwner struct {
	found   bool
	alias   string
	ownerID string
}

func EC2NoPublicAMI(env controls.Env) *check.Check {
	client := env.Clients.EC2

	return check.New(check.Meta{
		Name:        "ec2-no-public-ami",
		Control:     "CC6.6",
		Description: "EC2 instances should not use public (Amazon/Marketplace) AMIs",
		TotalKey:    "totalInstances",
		AbsentNote:  "No EC2 instances found",
	}, check.Family[ec2types.Instance, amiOwner]{
		List: func(ctx context.Context) ([]ec2types.Instance, error) {
			return awsclient.ListInstances(ctx, client)
		},
		ID: func(i ec2types.Instance) string { return aws.ToString(i.InstanceId) },
		Detail: func(ctx context.Context, i ec2types.Instance) (amiOwner, error) {
			out, err := client.DescribeImages(ctx, &ec2.DescribeImagesInput{ImageIds: []string{aws.ToString(i.ImageId)}})
			if err != nil {
				err = accessor.Classify("ec2:DescribeImages", err)
				// Deregistered images can no longer be attributed to an owner.
				if accessor.IsNotFound(err) {
					return amiOwner{}, nil
				}
				return amiOwner{}, err
			}
			if len(out.Images) == 0 {
				return amiOwner{}, nil
			}
			return amiOwner{
				found:   true,
				alias:   aws.ToString(out.Images[0].ImageOwnerAlias),
				ownerID: aws.ToString(out.Images[0].OwnerId),
			}, nil
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(i ec2types.Instance, owner amiOwner) (bool, domain.Evidence) {
			evidence := domain.Evidence{
				"imageId":    aws.ToString(i.ImageId),
				"imageFound": owner.found,
				"ownerAlias": owner.alias,
				"ownerId":    owner.ownerID,
			}
			if !owner.found {
				evidence["reason"] = "image not found"
			}
			return !slices.Contains(publicAMIOwner, owner.alias), evidence
		},
	})
}
