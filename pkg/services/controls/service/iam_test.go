package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient"
	"github.com/de-tools/evidence-atlas/pkg/services/awsclient/awsmock"
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
)

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code + " raised"}
}

// named matches an input whose selected field equals name.
func named[T any](name string, get func(T) *string) interface{} {
	return mock.MatchedBy(func(in T) bool { return aws.ToString(get(in)) == name })
}

func usersOutput(names ...string) *iam.ListUsersOutput {
	out := &iam.ListUsersOutput{}
	for _, n := range names {
		out.Users = append(out.Users, iamtypes.User{UserName: aws.String(n)})
	}
	return out
}

func iamEnv(m *awsmock.IAM) controls.Env {
	return controls.Env{Clients: &awsclient.Clients{IAM: m}, DetailConcurrency: 2}
}

func findingByID(t *testing.T, report domain.Report, id string) domain.Finding {
	t.Helper()
	for _, f := range report.Results {
		if f.ID() == id {
			return f
		}
	}
	require.Failf(t, "finding not found", "no finding for %s", id)
	return domain.Finding{}
}

func TestMFAEnabled(t *testing.T) {
	m := new(awsmock.IAM)
	m.On("ListUsers", mock.Anything, mock.Anything).Return(usersOutput("alice", "bob", "carol"), nil)

	mfaFor := func(name string) interface{} {
		return named(name, func(in *iam.ListMFADevicesInput) *string { return in.UserName })
	}
	m.On("ListMFADevices", mock.Anything, mfaFor("alice")).Return(&iam.ListMFADevicesOutput{
		MFADevices: []iamtypes.MFADevice{{SerialNumber: aws.String("arn:aws:iam::1:mfa/alice")}},
	}, nil)
	m.On("ListMFADevices", mock.Anything, mfaFor("bob")).Return(&iam.ListMFADevicesOutput{}, nil)
	m.On("ListMFADevices", mock.Anything, mfaFor("carol")).Return(nil, apiError("AccessDenied"))

	report, err := MFAEnabled(iamEnv(m)).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Validate())

	assert.False(t, report.Passed)
	assert.Equal(t, "CC6.2", report.Control)
	assert.Equal(t, 3, report.Summary["totalUsers"])
	assert.Equal(t, 2, report.Summary["nonCompliant"])

	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{report.Results[0].ID(), report.Results[1].ID(), report.Results[2].ID()})
	assert.True(t, report.Results[0].Compliant)
	assert.Equal(t, []string{"arn:aws:iam::1:mfa/alice"}, report.Results[0].Evidence["mfaDevices"])
	assert.False(t, report.Results[1].Compliant)
	assert.Contains(t, report.Results[2].Evidence, "error")
}

func TestMFAEnabled_ListDenied(t *testing.T) {
	m := new(awsmock.IAM)
	m.On("ListUsers", mock.Anything, mock.Anything).Return(nil, apiError("AccessDenied"))

	report, err := MFAEnabled(iamEnv(m)).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Passed)
	assert.Equal(t, domain.OutcomeDenied, report.Outcome)
	require.Len(t, report.Results, 1)
	assert.Nil(t, report.Results[0].ResourceID)
}

func TestNoConsoleAccess(t *testing.T) {
	m := new(awsmock.IAM)
	m.On("ListUsers", mock.Anything, mock.Anything).Return(usersOutput("svc", "human"), nil)

	profileFor := func(name string) interface{} {
		return named(name, func(in *iam.GetLoginProfileInput) *string { return in.UserName })
	}
	m.On("GetLoginProfile", mock.Anything, profileFor("svc")).Return(nil, apiError("NoSuchEntity"))
	m.On("GetLoginProfile", mock.Anything, profileFor("human")).Return(&iam.GetLoginProfileOutput{
		LoginProfile: &iamtypes.LoginProfile{UserName: aws.String("human")},
	}, nil)

	report, err := NoConsoleAccess(iamEnv(m)).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Validate())

	svc := findingByID(t, report, "svc")
	assert.True(t, svc.Compliant)
	assert.Equal(t, false, svc.Evidence["consoleAccess"])

	human := findingByID(t, report, "human")
	assert.False(t, human.Compliant)
	assert.False(t, report.Passed)
}

func TestRoleWildcard(t *testing.T) {
	wildcard := url.QueryEscape(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"*","Resource":"arn:aws:s3:::data"}]}`)
	scoped := url.QueryEscape(`{"Version":"2012-10-17","Statement":{"Effect":"Allow","Action":"s3:GetObject","Resource":"arn:aws:s3:::data/*"}}`)

	m := new(awsmock.IAM)
	m.On("ListRoles", mock.Anything, mock.Anything).Return(&iam.ListRolesOutput{Roles: []iamtypes.Role{
		{RoleName: aws.String("admin")},
		{RoleName: aws.String("reader")},
		{RoleName: aws.String("broken")},
	}}, nil)

	inlineFor := func(name string) interface{} {
		return named(name, func(in *iam.ListRolePoliciesInput) *string { return in.RoleName })
	}
	attachedFor := func(name string) interface{} {
		return named(name, func(in *iam.ListAttachedRolePoliciesInput) *string { return in.RoleName })
	}

	m.On("ListRolePolicies", mock.Anything, inlineFor("admin")).Return(&iam.ListRolePoliciesOutput{PolicyNames: []string{"everything"}}, nil)
	m.On("GetRolePolicy", mock.Anything, mock.Anything).Return(&iam.GetRolePolicyOutput{PolicyDocument: aws.String(wildcard)}, nil)
	m.On("ListAttachedRolePolicies", mock.Anything, attachedFor("admin")).Return(&iam.ListAttachedRolePoliciesOutput{}, nil)

	m.On("ListRolePolicies", mock.Anything, inlineFor("reader")).Return(&iam.ListRolePoliciesOutput{}, nil)
	m.On("ListAttachedRolePolicies", mock.Anything, attachedFor("reader")).Return(&iam.ListAttachedRolePoliciesOutput{
		AttachedPolicies: []iamtypes.AttachedPolicy{{PolicyName: aws.String("ReadData"), PolicyArn: aws.String("arn:read")}},
	}, nil)
	m.On("GetPolicy", mock.Anything, named("arn:read", func(in *iam.GetPolicyInput) *string { return in.PolicyArn })).
		Return(&iam.GetPolicyOutput{Policy: &iamtypes.Policy{DefaultVersionId: aws.String("v2")}}, nil)
	m.On("GetPolicyVersion", mock.Anything, mock.Anything).
		Return(&iam.GetPolicyVersionOutput{PolicyVersion: &iamtypes.PolicyVersion{Document: aws.String(scoped)}}, nil)

	m.On("ListRolePolicies", mock.Anything, inlineFor("broken")).Return(&iam.ListRolePoliciesOutput{}, nil)
	m.On("ListAttachedRolePolicies", mock.Anything, attachedFor("broken")).Return(&iam.ListAttachedRolePoliciesOutput{
		AttachedPolicies: []iamtypes.AttachedPolicy{{PolicyName: aws.String("Hidden"), PolicyArn: aws.String("arn:hidden")}},
	}, nil)
	m.On("GetPolicy", mock.Anything, named("arn:hidden", func(in *iam.GetPolicyInput) *string { return in.PolicyArn })).
		Return(nil, apiError("AccessDenied"))

	report, err := RoleWildcard(iamEnv(m)).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Validate())

	assert.False(t, report.Passed)
	assert.Equal(t, 3, report.Summary["totalRoles"])
	assert.Equal(t, 2, report.Summary["nonCompliant"])

	admin := findingByID(t, report, "admin")
	assert.False(t, admin.Compliant)
	wildcards := admin.Evidence["wildcards"].([]map[string]any)
	require.Len(t, wildcards, 1)
	assert.Equal(t, "inline", wildcards[0]["source"])
	assert.Equal(t, "everything", wildcards[0]["policyName"])
	assert.Equal(t, map[string]any{"Effect": "Allow", "Action": "*", "Resource": "arn:aws:s3:::data"}, wildcards[0]["statement"])

	assert.True(t, findingByID(t, report, "reader").Compliant)

	broken := findingByID(t, report, "broken")
	assert.False(t, broken.Compliant)
	assert.Len(t, broken.Evidence["errors"], 1)
}

func TestRootNoAccessKeys(t *testing.T) {
	tests := []struct {
		name       string
		keys       int32
		wantPassed bool
	}{
		{name: "no keys", keys: 0, wantPassed: true},
		{name: "keys present", keys: 1, wantPassed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(awsmock.IAM)
			m.On("GetAccountSummary", mock.Anything, mock.Anything).Return(&iam.GetAccountSummaryOutput{
				SummaryMap: map[string]int32{"AccountAccessKeysPresent": tt.keys, "Users": 4},
			}, nil)

			report, err := RootNoAccessKeys(iamEnv(m)).Run(context.Background())
			require.NoError(t, err)
			require.NoError(t, report.Validate())

			assert.Equal(t, tt.wantPassed, report.Passed)
			assert.Equal(t, int(tt.keys), report.Summary["totalKeys"])
			assert.Equal(t, "root", report.Results[0].ID())
		})
	}
}
