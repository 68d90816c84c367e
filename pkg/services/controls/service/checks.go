// Package service holds the AWS service-configuration controls.
package service

import (
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

const Group = "service"

// Checks returns the service group in declared order.
func Checks(env controls.Env) []*check.Check {
	return []*check.Check{
		MFAEnabled(env),
		NoConsoleAccess(env),
		RoleWildcard(env),
		CloudTrailAllRegions(env),
		S3NoPublicBuckets(env),
		RDSBackupsEnabled(env),
		SecurityGroupsOpenPorts(env),
		GuardDutyEnabled(env),
		RootNoAccessKeys(env),
		EBSEncryptionEnabled(env),
		ELBAccessLogs(env),
		ACMCertNotExpired(env),
		EC2NoPublicAMI(env),
		CloudWatchAlarms(env),
		InfraViaIaC(env),
	}
}
