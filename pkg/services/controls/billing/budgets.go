package billing

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	budgettypes "github.com/aws/aws-sdk-go-v2/service/budgets/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
	"github.com/de-tools/evidence-atlas/pkg/services/controls/evaluate"
)

func BudgetExists(env controls.Env) *check.Check {
	client := env.Clients.Budgets

	return check.New(check.Meta{
		Name:        "budget-exists",
		Control:     "SOC2 CC9.1",
		Description: "Check if predefined budgets exist in AWS",
		Existence:   check.ExistenceRequired,
		AbsentNote:  "No budgets are defined for this account",
	}, check.CollectorFunc(func(ctx context.Context) ([]domain.Finding, error) {
		defined := make([]map[string]string, 0)
		in := &budgets.DescribeBudgetsInput{AccountId: aws.String(env.AccountID)}
		for {
			out, err := client.DescribeBudgets(ctx, in)
			if err != nil {
				err = accessor.Classify("budgets:DescribeBudgets", err)
				// Budgets answers NotFound when the account has none.
				if accessor.IsNotFound(err) {
					break
				}
				return nil, err
			}
			for _, b := range out.Budgets {
				defined = append(defined, map[string]string{
					"budgetName":  aws.ToString(b.BudgetName),
					"budgetLimit": formatSpend(b.BudgetLimit),
				})
			}
			if aws.ToString(out.NextToken) == "" {
				break
			}
			in.NextToken = out.NextToken
		}

		if len(defined) == 0 {
			return []domain.Finding{
				domain.AbsentFinding(false, domain.Evidence{"budgets": defined}),
			}, nil
		}
		return []domain.Finding{
			domain.NewFinding("budgets", true, domain.Evidence{"budgets": defined}),
		}, nil
	}))
}

func MonthlyBudgetThreshold(env controls.Env) *check.Check {
	client := env.Clients.Budgets
	name := env.MonthlyBudgetName

	return check.New(check.Meta{
		Name:        "monthly-budget-threshold",
		Control:     "SOC2 CC9.1",
		Description: fmt.Sprintf("Check if current monthly AWS spend is within budget (under %.0f%%)", evaluate.BudgetUsageLimit),
		TotalKey:    "totalBudgets",
		Summarize: func(findings []domain.Finding, summary domain.Summary) {
			existing := 0
			for _, f := range findings {
				if f.ResourceExists {
					existing++
				}
			}
			summary["totalBudgets"] = existing
		},
	}, check.CollectorFunc(func(ctx context.Context) ([]domain.Finding, error) {
		out, err := client.DescribeBudget(ctx, &budgets.DescribeBudgetInput{
			AccountId:  aws.String(env.AccountID),
			BudgetName: aws.String(name),
		})
		if err != nil {
			err = accessor.Classify("budgets:DescribeBudget", err)
			if accessor.IsNotFound(err) {
				return []domain.Finding{
					domain.AbsentFinding(true, domain.Evidence{
						"budgetName": name,
						"message":    fmt.Sprintf("Budget '%s' not found.", name),
					}),
				}, nil
			}
			return nil, err
		}

		compliant, evidence := evaluateBudgetUsage(out.Budget)
		return []domain.Finding{domain.NewFinding(name, compliant, evidence)}, nil
	}))
}

func evaluateBudgetUsage(b *budgettypes.Budget) (bool, domain.Evidence) {
	var limit, spend *budgettypes.Spend
	if b != nil {
		limit = b.BudgetLimit
		if b.CalculatedSpend != nil {
			spend = b.CalculatedSpend.ActualSpend
		}
	}

	usage := evaluate.BudgetUsagePercent(spendAmount(limit), spendAmount(spend))
	return usage < evaluate.BudgetUsageLimit, domain.Evidence{
		"budgetLimit":  formatSpend(limit),
		"actualSpend":  formatSpend(spend),
		"usagePercent": fmt.Sprintf("%.2f%%", usage),
	}
}

func spendAmount(s *budgettypes.Spend) float64 {
	if s == nil {
		return 0
	}
	return parseAmount(s.Amount)
}

func formatSpend(s *budgettypes.Spend) string {
	if s == nil {
		return ""
	}
	return aws.ToString(s.Unit) + aws.ToString(s.Amount)
}
