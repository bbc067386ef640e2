package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"payoutrecon/internal/model"
	"payoutrecon/internal/reconcile"
	"payoutrecon/internal/service"
	serviceMocks "payoutrecon/internal/service/mocks"
	"payoutrecon/internal/shopify"
)

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func multipartBody(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if withFile {
		part, err := w.CreateFormFile("file", "payouts.csv")
		require.NoError(t, err)
		_, _ = part.Write([]byte("Date,Type,Order,Payout Status,Amount,Fee\n2024-03-10,charge,#1,paid,100,3\n"))
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRunDaily(t *testing.T) {
	mockSvc := new(serviceMocks.MockReconciliationService)
	app := fiber.New()
	app.Post("/reconciliations/daily", RunDaily(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"date": "2024-03-10", "timezone": "shop"}, true)
		runID := uuid.NewString()
		mockSvc.On("RunDaily", mock.Anything, mock.MatchedBy(func(r service.DailyRequest) bool {
			return r.Day == "2024-03-10" && r.Timezone == "shop" && r.PayoutFile == "payouts.csv" && r.PayoutCSV != nil
		})).Return(&model.Run{ID: runID, Mode: model.ModeDaily}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/reconciliations/daily", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var run model.Run
		json.NewDecoder(resp.Body).Decode(&run)
		assert.Equal(t, runID, run.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/reconciliations/daily", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	errorCases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: \"x\"", service.ErrInvalidDate), http.StatusBadRequest, "INVALID_DATE"},
		{service.ErrInvalidTimezone, http.StatusBadRequest, "INVALID_TIMEZONE"},
		{reconcile.ErrNoOrders, http.StatusUnprocessableEntity, "NO_ORDERS"},
		{fmt.Errorf("%w: %w", service.ErrInvalidPayouts, errors.New("no recognized date column")), http.StatusUnprocessableEntity, "INVALID_PAYOUT_FILE"},
		{fmt.Errorf("fetch orders: %w", &shopify.APIError{StatusCode: 401}), http.StatusBadGateway, "UPSTREAM_ERROR"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range errorCases {
		t.Run(tc.code, func(t *testing.T) {
			body, ct := multipartBody(t, map[string]string{"date": "2024-03-10"}, true)
			mockSvc.On("RunDaily", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/reconciliations/daily", body)
			req.Header.Set("Content-Type", ct)
			resp, _ := app.Test(req)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, resp).Error.Code)
		})
	}
}

func TestRunRange(t *testing.T) {
	mockSvc := new(serviceMocks.MockReconciliationService)
	app := fiber.New()
	app.Post("/reconciliations/range", RunRange(mockSvc))

	body, ct := multipartBody(t, nil, true)
	mockSvc.On("RunRange", mock.Anything, mock.MatchedBy(func(r service.RangeRequest) bool {
		return r.GroupBy == model.GroupByOrderDate
	})).Return(&model.Run{ID: uuid.NewString(), Mode: model.ModeRange}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/reconciliations/range", body)
	req.Header.Set("Content-Type", ct)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestListRuns(t *testing.T) {
	mockSvc := new(serviceMocks.MockReconciliationService)
	app := fiber.New()
	app.Get("/reconciliations", ListRuns(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 5, 10).
			Return(&service.RunListResult{Items: []model.Run{{ID: uuid.NewString()}}, Total: 11}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reconciliations?limit=5&offset=10", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res service.RunListResult
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Len(t, res.Items, 1)
		assert.Equal(t, 11, res.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid offset", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reconciliations?offset=x", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})
}

func TestGetRun(t *testing.T) {
	mockSvc := new(serviceMocks.MockReconciliationService)
	app := fiber.New()
	app.Get("/reconciliations/:id", GetRun(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Run{ID: id}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reconciliations/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reconciliations/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reconciliations/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})
}

func TestListDaysAndMismatches(t *testing.T) {
	mockSvc := new(serviceMocks.MockReconciliationService)
	app := fiber.New()
	app.Get("/reconciliations/:id/days", ListDays(mockSvc))
	app.Get("/reconciliations/:id/mismatches", GetMismatches(mockSvc))
	id := uuid.NewString()

	mockSvc.On("Days", mock.Anything, id).Return([]model.DailySummary{{Date: "2024-03-10"}}, nil).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reconciliations/"+id+"/days", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var days struct {
		Data  []model.DailySummary `json:"data"`
		Total int                  `json:"total"`
	}
	json.NewDecoder(resp.Body).Decode(&days)
	assert.Equal(t, 1, days.Total)

	mockSvc.On("Mismatches", mock.Anything, id).Return(&model.MismatchAnalysis{TotalDays: 4, MismatchDays: 1}, nil).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/reconciliations/"+id+"/mismatches", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var a model.MismatchAnalysis
	json.NewDecoder(resp.Body).Decode(&a)
	assert.Equal(t, 1, a.MismatchDays)

	mockSvc.AssertExpectations(t)
}

func TestDownloadReport(t *testing.T) {
	mockSvc := new(serviceMocks.MockReconciliationService)
	app := fiber.New()
	app.Get("/reconciliations/:id/reports/:kind", DownloadReport(mockSvc))
	id := uuid.NewString()

	t.Run("redirects", func(t *testing.T) {
		mockSvc.On("ReportURL", mock.Anything, id, model.ReportMismatches).Return("http://minio/signed", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reconciliations/"+id+"/reports/mismatches", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "http://minio/signed", resp.Header.Get("Location"))
	})

	t.Run("unknown kind", func(t *testing.T) {
		mockSvc.On("ReportURL", mock.Anything, id, "nope").Return("", service.ErrReportNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reconciliations/"+id+"/reports/nope", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "REPORT_NOT_FOUND", decodeError(t, resp).Error.Code)
	})
	mockSvc.AssertExpectations(t)
}

func TestDeleteRun(t *testing.T) {
	mockSvc := new(serviceMocks.MockReconciliationService)
	app := fiber.New()
	app.Delete("/reconciliations/:id", DeleteRun(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/reconciliations/"+id, nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(errors.New("delete storage: boom")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/reconciliations/"+id, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	mockSvc.AssertExpectations(t)
}

func TestAnalyzeRefunds(t *testing.T) {
	mockSvc := new(serviceMocks.MockReconciliationService)
	app := fiber.New()
	app.Get("/refunds/analysis", AnalyzeRefunds(mockSvc))

	mockSvc.On("AnalyzeRefunds", mock.Anything, "2024-03-01", "2024-03-31").
		Return(&model.RefundSummary{OrdersWithRefunds: 3}, nil).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/refunds/analysis?start=2024-03-01&end=2024-03-31", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mockSvc.On("AnalyzeRefunds", mock.Anything, "", "").Return(nil, service.ErrInvalidDate).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/refunds/analysis", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})
	mockSvc := new(serviceMocks.MockReconciliationService)
	RegisterRoutes(app, nil, mockSvc)

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("health without database", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("list is mounted on the group root", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(&service.RunListResult{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reconciliations", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}
