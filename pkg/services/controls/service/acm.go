package service

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	acmtypes "github.com/aws/aws-sdk-go-v2/service/acm/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

func ACMCertNotExpired(env controls.Env) *check.Check {
	client := env.Clients.ACM

	return check.New(check.Meta{
		Name:        "acm-cert-not-expired",
		Control:     "CC6.7",
		Description: "All ACM certificates must be valid and not expired",
		TotalKey:    "totalCertificates",
		AbsentNote:  "No ACM certificates found",
	}, check.Family[acmtypes.CertificateSummary, *time.Time]{
		List: func(ctx context.Context) ([]acmtypes.CertificateSummary, error) {
			certs := make([]acmtypes.CertificateSummary, 0)
			p := acm.NewListCertificatesPaginator(client, &acm.ListCertificatesInput{})
			for p.HasMorePages() {
				page, err := p.NextPage(ctx)
				if err != nil {
					return nil, accessor.Classify("acm:ListCertificates", err)
				}
				certs = append(certs, page.CertificateSummaryList...)
			}
			return certs, nil
		},
		ID: func(c acmtypes.CertificateSummary) string { return aws.ToString(c.CertificateArn) },
		Detail: func(ctx context.Context, c acmtypes.CertificateSummary) (*time.Time, error) {
			out, err := client.DescribeCertificate(ctx, &acm.DescribeCertificateInput{CertificateArn: c.CertificateArn})
			if err != nil {
				return nil, accessor.Classify("acm:DescribeCertificate", err)
			}
			if out.Certificate == nil {
				return nil, nil
			}
			return out.Certificate.NotAfter, nil
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(c acmtypes.CertificateSummary, notAfter *time.Time) (bool, domain.Evidence) {
			evidence := domain.Evidence{
				"domainName": aws.ToString(c.DomainName),
				"notAfter":   nil,
			}
			if notAfter == nil {
				return false, evidence
			}
			evidence["notAfter"] = notAfter.UTC().Format(time.RFC3339)
			return notAfter.After(env.Clock()), evidence
		},
	})
}
