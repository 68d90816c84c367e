package billing

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

const (
	dateLayout    = "2006-01-02"
	costMetric    = "UnblendedCost"
	pendingNote   = "Cost Explorer data not yet available. This is expected if the service was just enabled."
	weeklyNote    = "Cost Explorer data is not yet available. If just enabled, wait up to 24 hours."
	disabledNote  = "Cost Explorer is not enabled for this account"
	reportWindow  = 7 * 24 * time.Hour
	ingestionKey  = "ingestionStatus"
	amountKey     = "amountUSD"
	servicesKey   = "services"
	dayLookback   = 24 * time.Hour
	serviceGroup  = "SERVICE"
	probeEvidence = "UnblendedCost for the previous day"
)

func CostExplorerEnabled(env controls.Env) *check.Check {
	client := env.Clients.CostExplorer

	return check.New(check.Meta{
		Name:            "cost-explorer-enabled",
		Control:         "SOC2 CC4.1",
		Description:     "Check if AWS Cost Explorer is enabled",
		UnavailableNote: disabledNote,
	}, check.CollectorFunc(func(ctx context.Context) ([]domain.Finding, error) {
		end := env.Clock().UTC()
		_, err := client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
			TimePeriod:  period(end.Add(-dayLookback), end),
			Granularity: cetypes.GranularityDaily,
			Metrics:     []string{costMetric},
		})
		if err != nil {
			// A rejected query on a fresh account means Cost Explorer was never enabled.
			return nil, accessor.Classify("ce:GetCostAndUsage", err,
				accessor.WithCodes(accessor.FailureUnavailable, "ValidationException"))
		}
		return []domain.Finding{
			domain.NewFinding("cost-explorer", true, domain.Evidence{"attemptedQuery": probeEvidence}),
		}, nil
	}))
}

func DailyCostThreshold(env controls.Env) *check.Check {
	client := env.Clients.CostExplorer
	threshold := env.DailyCostThreshold

	return check.New(check.Meta{
		Name:            "daily-cost-threshold",
		Control:         "COST-1",
		Description:     fmt.Sprintf("Ensure daily AWS cost is below $%.2f", threshold),
		UnavailableNote: pendingNote,
		Summarize: func(findings []domain.Finding, summary domain.Summary) {
			summary["thresholdUSD"] = threshold
			if len(findings) == 0 {
				summary[ingestionKey] = "pending"
				return
			}
			if amount, ok := findings[0].Evidence[amountKey].(float64); ok {
				summary["actualSpendUSD"] = amount
			}
		},
	}, check.CollectorFunc(func(ctx context.Context) ([]domain.Finding, error) {
		today := env.Clock().UTC()
		yesterday := today.Add(-dayLookback)

		out, err := client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
			TimePeriod:  period(yesterday, today),
			Granularity: cetypes.GranularityDaily,
			Metrics:     []string{costMetric},
		})
		if err != nil {
			return nil, accessor.Classify("ce:GetCostAndUsage", err)
		}

		var amount float64
		if len(out.ResultsByTime) > 0 {
			amount = parseAmount(out.ResultsByTime[0].Total[costMetric].Amount)
		}

		return []domain.Finding{
			domain.NewFinding(yesterday.Format(dateLayout), amount <= threshold, domain.Evidence{
				"actualSpendUSD": fmt.Sprintf("%.2f", amount),
				amountKey:        amount,
			}),
		}, nil
	}))
}

type serviceSpend struct {
	Service string  `json:"service"`
	Amount  float64 `json:"amount"`
}

func WeeklyCostReport(env controls.Env) *check.Check {
	client := env.Clients.CostExplorer

	return check.New(check.Meta{
		Name:            "weekly-cost-report",
		Control:         "CC9.2",
		Description:     "Weekly AWS cost report by service",
		TotalKey:        "totalDays",
		AbsentNote:      "No cost data reported for the last 7 days",
		UnavailableNote: weeklyNote,
		Summarize: func(findings []domain.Finding, summary domain.Summary) {
			services := map[string]struct{}{}
			var total float64
			for _, f := range findings {
				spend, _ := f.Evidence[servicesKey].([]serviceSpend)
				for _, s := range spend {
					services[s.Service] = struct{}{}
					total += s.Amount
				}
			}
			summary["uniqueServices"] = len(services)
			summary["totalSpend"] = math.Round(total*100) / 100
		},
	}, check.Family[cetypes.ResultByTime, struct{}]{
		List: func(ctx context.Context) ([]cetypes.ResultByTime, error) {
			end := env.Clock().UTC()
			return costByService(ctx, client, end.Add(-reportWindow), end)
		},
		ID: func(day cetypes.ResultByTime) string {
			if day.TimePeriod == nil {
				return ""
			}
			return aws.ToString(day.TimePeriod.Start)
		},
		Evaluate: func(day cetypes.ResultByTime, _ struct{}) (bool, domain.Evidence) {
			spend := make([]serviceSpend, 0, len(day.Groups))
			for _, g := range day.Groups {
				name := ""
				if len(g.Keys) > 0 {
					name = g.Keys[0]
				}
				spend = append(spend, serviceSpend{Service: name, Amount: parseAmount(g.Metrics[costMetric].Amount)})
			}
			return true, domain.Evidence{servicesKey: spend}
		},
	})
}

func costByService(ctx context.Context, client awsclient.CostExplorerAPI, start, end time.Time) ([]cetypes.ResultByTime, error) {
	in := &costexplorer.GetCostAndUsageInput{
		TimePeriod:  period(start, end),
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{costMetric},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String(serviceGroup)},
		},
	}

	days := make([]cetypes.ResultByTime, 0)
	for {
		out, err := client.GetCostAndUsage(ctx, in)
		if err != nil {
			return nil, accessor.Classify("ce:GetCostAndUsage", err)
		}
		days = append(days, out.ResultsByTime...)
		if aws.ToString(out.NextPageToken) == "" {
			return days, nil
		}
		in.NextPageToken = out.NextPageToken
	}
}

func AnomalyMonitor(env controls.Env) *check.Check {
	client := env.Clients.CostExplorer

	return check.New(check.Meta{
		Name:        "anomaly-monitor",
		Control:     "SOC2 CC9.2",
		Description: "Verify that at least one Cost Anomaly Monitor is set up",
		Existence:   check.ExistenceRequired,
		AbsentNote:  "No anomaly monitors found",
	}, check.CollectorFunc(func(ctx context.Context) ([]domain.Finding, error) {
		names := make([]string, 0)
		in := &costexplorer.GetAnomalyMonitorsInput{}
		for {
			out, err := client.GetAnomalyMonitors(ctx, in)
			if err != nil {
				return nil, accessor.Classify("ce:GetAnomalyMonitors", err)
			}
			for _, m := range out.AnomalyMonitors {
				names = append(names, aws.ToString(m.MonitorName))
			}
			if aws.ToString(out.NextPageToken) == "" {
				break
			}
			in.NextPageToken = out.NextPageToken
		}

		if len(names) == 0 {
			return []domain.Finding{
				domain.AbsentFinding(false, domain.Evidence{"reason": "No anomaly monitors found"}),
			}, nil
		}
		return []domain.Finding{
			domain.NewFinding("anomaly-monitors", true, domain.Evidence{"monitorNames": names}),
		}, nil
	}))
}

func period(start, end time.Time) *cetypes.DateInterval {
	return &cetypes.DateInterval{
		Start: aws.String(start.Format(dateLayout)),
		End:   aws.String(end.Format(dateLayout)),
	}
}

// parseAmount reads a Cost Explorer decimal string; malformed or missing amounts count as zero.
func parseAmount(amount *string) float64 {
	v, err := strconv.ParseFloat(aws.ToString(amount), 64)
	if err != nil {
		return 0
	}
	return v
}
