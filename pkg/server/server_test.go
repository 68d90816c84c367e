package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/evidence-atlas/pkg/models/api"
	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/models/store"
	"github.com/de-tools/evidence-atlas/pkg/store/duckdb/evidence"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) ListReports(ctx context.Context, group string) ([]store.ReportSummary, error) {
	args := m.Called(ctx, group)
	return args.Get(0).([]store.ReportSummary), args.Error(1)
}

func (m *mockReader) GetReport(ctx context.Context, group, check string) (*domain.Report, error) {
	args := m.Called(ctx, group, check)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var result T
		err := json.Unmarshal(data, &result)
		return result, err
	}
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	reader := new(mockReader)

	web := NewWebAPI(logger, Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies:    Dependencies{Evidence: reader},
	})
	testServer := httptest.NewServer(web.Handler())
	defer testServer.Close()

	collected := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		path           string
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name: "ListReports",
			path: "/api/v1/groups/billing/reports",
			setupMocks: func() {
				reader.On("ListReports", mock.Anything, "billing").Return([]store.ReportSummary{{
					Group: "billing", Check: "budget-exists", Control: "SOC2 CC9.1", Passed: true, CollectedAt: collected,
				}}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: api.GroupReports{Group: "billing", Reports: []api.ReportSummary{{
				Name: "budget-exists", Control: "SOC2 CC9.1", Passed: true, CollectedAt: collected,
			}}},
			parseResponse: unmarshalResponse[api.GroupReports](),
		},
		{
			name: "GetReport_NotFound",
			path: "/api/v1/groups/billing/reports/missing",
			setupMocks: func() {
				reader.On("GetReport", mock.Anything, "billing", "missing").
					Return(nil, fmt.Errorf("%w: billing/missing", evidence.ErrReportNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "report not found"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "UnknownRoute",
			path:           "/api/v1/workspaces",
			setupMocks:     func() {},
			expectedStatus: http.StatusNotFound,
			expected:       "404 page not found\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMocks()

			resp, err := http.Get(testServer.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			actual, err := tt.parseResponse(body)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}

	reader.AssertExpectations(t)
}
