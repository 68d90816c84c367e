package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/accessor"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/check"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
	"github.com/de-tools/evidence-atlas/pkg/services/controls/evaluate"
)

func MFAEnabled(env controls.Env) *check.Check {
	client := env.Clients.IAM

	return check.New(check.Meta{
		Name:        "iam-mfa-enabled",
		Control:     "CC6.2",
		Description: "All IAM users must have MFA enabled",
		TotalKey:    "totalUsers",
		AbsentNote:  "No IAM users found",
	}, check.Family[iamtypes.User, []string]{
		List: func(ctx context.Context) ([]iamtypes.User, error) {
			return listUsers(ctx, client)
		},
		ID: func(u iamtypes.User) string { return aws.ToString(u.UserName) },
		Detail: func(ctx context.Context, u iamtypes.User) ([]string, error) {
			serials := make([]string, 0)
			p := iam.NewListMFADevicesPaginator(client, &iam.ListMFADevicesInput{UserName: u.UserName})
			for p.HasMorePages() {
				page, err := p.NextPage(ctx)
				if err != nil {
					return nil, accessor.Classify("iam:ListMFADevices", err)
				}
				for _, device := range page.MFADevices {
					serials = append(serials, aws.ToString(device.SerialNumber))
				}
			}
			return serials, nil
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(_ iamtypes.User, serials []string) (bool, domain.Evidence) {
			return len(serials) > 0, domain.Evidence{"mfaDevices": serials}
		},
	})
}

func NoConsoleAccess(env controls.Env) *check.Check {
	client := env.Clients.IAM

	return check.New(check.Meta{
		Name:        "iam-no-console-access",
		Control:     "CC6.2",
		Description: "IAM users should not have AWS Management Console access",
		TotalKey:    "totalUsers",
		AbsentNote:  "No IAM users found",
	}, check.Family[iamtypes.User, bool]{
		List: func(ctx context.Context) ([]iamtypes.User, error) {
			return listUsers(ctx, client)
		},
		ID: func(u iamtypes.User) string { return aws.ToString(u.UserName) },
		Detail: func(ctx context.Context, u iamtypes.User) (bool, error) {
			out, err := client.GetLoginProfile(ctx, &iam.GetLoginProfileInput{UserName: u.UserName})
			if err != nil {
				err = accessor.Classify("iam:GetLoginProfile", err)
				// A user without a login profile cannot sign in to the console.
				if accessor.IsNotFound(err) {
					return false, nil
				}
				return false, err
			}
			return out.LoginProfile != nil, nil
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(_ iamtypes.User, console bool) (bool, domain.Evidence) {
			return !console, domain.Evidence{"consoleAccess": console}
		},
	})
}

type roleFindings struct {
	wildcards []map[string]any
	errors    []string
}

func RoleWildcard(env controls.Env) *check.Check {
	client := env.Clients.IAM

	return check.New(check.Meta{
		Name:        "iam-role-wildcard",
		Control:     "CC6.1",
		Description: "IAM roles must not use wildcard '*' in actions or resources",
		TotalKey:    "totalRoles",
		AbsentNote:  "No IAM roles found",
	}, check.Family[iamtypes.Role, roleFindings]{
		List: func(ctx context.Context) ([]iamtypes.Role, error) {
			roles := make([]iamtypes.Role, 0)
			p := iam.NewListRolesPaginator(client, &iam.ListRolesInput{})
			for p.HasMorePages() {
				page, err := p.NextPage(ctx)
				if err != nil {
					return nil, accessor.Classify("iam:ListRoles", err)
				}
				roles = append(roles, page.Roles...)
			}
			return roles, nil
		},
		ID: func(r iamtypes.Role) string { return aws.ToString(r.RoleName) },
		Detail: func(ctx context.Context, r iamtypes.Role) (roleFindings, error) {
			return inspectRole(ctx, client, r.RoleName)
		},
		Concurrency: env.DetailConcurrency,
		Evaluate: func(_ iamtypes.Role, f roleFindings) (bool, domain.Evidence) {
			evidence := domain.Evidence{"wildcards": f.wildcards}
			if len(f.errors) > 0 {
				evidence["errors"] = f.errors
			}
			return len(f.wildcards) == 0 && len(f.errors) == 0, evidence
		},
	})
}

// inspectRole unions the wildcard statements of inline and attached managed policies.
// Failing to read a single attached policy is recorded and makes the role non-compliant.
func inspectRole(ctx context.Context, client awsclient.IAMAPI, roleName *string) (roleFindings, error) {
	found := roleFindings{wildcards: make([]map[string]any, 0)}

	collect := func(source, policyName, document string) {
		statements, err := evaluate.ParsePolicyDocument(document)
		if err != nil {
			found.errors = append(found.errors, policyName+": "+err.Error())
			return
		}
		for _, s := range statements {
			if evaluate.WildcardStatement(s) {
				found.wildcards = append(found.wildcards, map[string]any{
					"source":     source,
					"policyName": policyName,
					"statement":  s.Raw,
				})
			}
		}
	}

	inline := iam.NewListRolePoliciesPaginator(client, &iam.ListRolePoliciesInput{RoleName: roleName})
	for inline.HasMorePages() {
		page, err := inline.NextPage(ctx)
		if err != nil {
			return found, accessor.Classify("iam:ListRolePolicies", err)
		}
		for _, name := range page.PolicyNames {
			out, err := client.GetRolePolicy(ctx, &iam.GetRolePolicyInput{RoleName: roleName, PolicyName: aws.String(name)})
			if err != nil {
				found.errors = append(found.errors, accessor.Classify("iam:GetRolePolicy", err).Error())
				continue
			}
			collect("inline", name, aws.ToString(out.PolicyDocument))
		}
	}

	attached := iam.NewListAttachedRolePoliciesPaginator(client, &iam.ListAttachedRolePoliciesInput{RoleName: roleName})
	for attached.HasMorePages() {
		page, err := attached.NextPage(ctx)
		if err != nil {
			return found, accessor.Classify("iam:ListAttachedRolePolicies", err)
		}
		for _, policy := range page.AttachedPolicies {
			document, err := managedPolicyDocument(ctx, client, policy.PolicyArn)
			if err != nil {
				found.errors = append(found.errors, err.Error())
				continue
			}
			collect("managed", aws.ToString(policy.PolicyName), document)
		}
	}

	return found, nil
}

func managedPolicyDocument(ctx context.Context, client awsclient.IAMAPI, arn *string) (string, error) {
	meta, err := client.GetPolicy(ctx, &iam.GetPolicyInput{PolicyArn: arn})
	if err != nil {
		return "", accessor.Classify("iam:GetPolicy", err)
	}
	if meta.Policy == nil {
		return "", fmt.Errorf("policy %s has no metadata", aws.ToString(arn))
	}

	version, err := client.GetPolicyVersion(ctx, &iam.GetPolicyVersionInput{
		PolicyArn: arn,
		VersionId: meta.Policy.DefaultVersionId,
	})
	if err != nil {
		return "", accessor.Classify("iam:GetPolicyVersion", err)
	}
	if version.PolicyVersion == nil {
		return "", nil
	}
	return aws.ToString(version.PolicyVersion.Document), nil
}

func RootNoAccessKeys(env controls.Env) *check.Check {
	client := env.Clients.IAM

	return check.New(check.Meta{
		Name:        "root-no-access-keys",
		Control:     "CC6.3",
		Description: "Root account should not have any active access keys",
		Summarize: func(findings []domain.Finding, summary domain.Summary) {
			keys := 0
			for _, f := range findings {
				if n, ok := f.Evidence["accountAccessKeysPresent"].(int32); ok {
					keys += int(n)
				}
			}
			summary["totalKeys"] = keys
		},
	}, check.CollectorFunc(func(ctx context.Context) ([]domain.Finding, error) {
		out, err := client.GetAccountSummary(ctx, &iam.GetAccountSummaryInput{})
		if err != nil {
			return nil, accessor.Classify("iam:GetAccountSummary", err)
		}
		present := out.SummaryMap[string(iamtypes.SummaryKeyTypeAccountAccessKeysPresent)]
		return []domain.Finding{
			domain.NewFinding("root", present == 0, domain.Evidence{"accountAccessKeysPresent": present}),
		}, nil
	}))
}

func listUsers(ctx context.Context, client awsclient.IAMAPI) ([]iamtypes.User, error) {
	users := make([]iamtypes.User, 0)
	p := iam.NewListUsersPaginator(client, &iam.ListUsersInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, accessor.Classify("iam:ListUsers", err)
		}
		users = append(users, page.Users...)
	}
	return users, nil
}
