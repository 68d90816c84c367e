package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

func RDSBackupsEnabled(env controls.Env) *check.Check {
	client := env.Clients.RDS

	return check.New(check.Meta{
		Name:        "rds-backups-enabled",
		Control:     "CC10.1",
		Description: "Ensures RDS instances have automatic backups enabled",
		TotalKey:    "totalDBInstances",
		AbsentNote:  "No RDS instances found",
	}, check.Family[rdstypes.DBInstance, struct{}]{
		List: func(ctx context.Context) ([]rdstypes.DBInstance, error) {
			return awsclient.ListDBInstances(ctx, client)
		},
		ID: func(db rdstypes.DBInstance) string { return aws.ToString(db.DBInstanceIdentifier) },
		Evaluate: func(db rdstypes.DBInstance, _ struct{}) (bool, domain.Evidence) {
			retention := aws.ToInt32(db.BackupRetentionPeriod)
			return retention > 0, domain.Evidence{"backupRetentionPeriod": retention}
		},
	})
}
