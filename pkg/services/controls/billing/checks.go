// Package billing holds the cost-governance controls.
package billing

import (
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

const Group = "billing"

// Checks returns the billing group in declared order.
func Checks(env controls.Env) []*check.Check {
	return []*check.Check{
		CostExplorerEnabled(env),
		BudgetExists(env),
		DailyCostThreshold(env),
		MonthlyBudgetThreshold(env),
		WeeklyCostReport(env),
		ReservedInstanceRecommendation(env),
		TagCompliance(env),
		IdleResourceCleanup(env),
		AnomalyMonitor(env),
	}
}
