package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

const noStacksNote = "No CloudFormation stacks found in the current region. Terraform usage not detected."

func InfraViaIaC(env controls.Env) *check.Check {
	client := env.Clients.CloudFormation

	return check.New(check.Meta{
		Name:        "infra-via-iac",
		Control:     "CC8.1",
		Description: "Infrastructure should be deployed via Infrastructure-as-Code (e.g., CloudFormation or Terraform).",
		TotalKey:    "totalStacks",
		Existence:   check.ExistenceRequired,
		AbsentNote:  noStacksNote,
	}, check.Family[cftypes.StackSummary, cftypes.Stack]{
		Existence:      check.ExistenceRequired,
		AbsentEvidence: domain.Evidence{"reason": noStacksNote},
		List: func(ctx context.Context) ([]cftypes.StackSummary, error) {
			stacks := make([]cftypes.StackSummary, 0)
			p := cloudformation.NewListStacksPaginator(client, &cloudformation.ListStacksInput{})
			for p.HasMorePages() {
				page, err := p.NextPage(ctx)
				if err != nil {
					return nil, accessor.Classify("cloudformation:ListStacks", err)
				}
				for _, s := range page.StackSummaries {
					if s.StackStatus != cftypes.StackStatusDeleteComplete {
						stacks = append(stacks, s)
					}
				}
			}
			return stacks, nil
		},
		ID: func(s cftypes.StackSummary) string { return aws.ToString(s.StackName) },
		Detail: func(ctx context.Context, s cftypes.StackSummary) (cftypes.Stack, error) {
			out, err := client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{StackName: s.StackName})
			if err != nil {
				return cftypes.Stack{}, accessor.Classify("cloudformation:DescribeStacks", err)
			}
			if len(out.Stacks) == 0 {
				return cftypes.Stack{}, fmt.Errorf("stack %s not described", aws.ToString(s.StackName))
			}
			return out.Stacks[0], nil
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(_ cftypes.StackSummary, stack cftypes.Stack) (bool, domain.Evidence) {
			tags := make(map[string]string, len(stack.Tags))
			for _, tag := range stack.Tags {
				tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
			}
			evidence := domain.Evidence{
				"status": string(stack.StackStatus),
				"tags":   tags,
			}
			if stack.CreationTime != nil {
				evidence["creationTime"] = stack.CreationTime.UTC().Format(time.RFC3339)
			}
			return true, evidence
		},
	})
}
