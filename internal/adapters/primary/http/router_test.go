package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	wsAdapter "github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/fleet-dashboard-backend/internal/auth"
	"github.com/lorrc/fleet-dashboard-backend/internal/config"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	apperrors "github.com/lorrc/fleet-dashboard-backend/internal/core/errors"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/mocks"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/services"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

type testServer struct {
	handler  stdhttp.Handler
	records  *mocks.MockRecordService
	stats    *mocks.MockStatsService
	vehicles *mocks.MockVehicleService
	hub      *wsAdapter.Hub
}

func newTestServer(t *testing.T, tm *auth.TokenManager, pingErr error) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := &testServer{
		records:  mocks.NewMockRecordService(),
		stats:    mocks.NewMockStatsService(),
		vehicles: mocks.NewMockVehicleService(),
		hub:      wsAdapter.NewHub(logger),
	}
	ts.handler = NewRouter(RouterDeps{
		Config: &config.Config{
			App:  config.AppConfig{Version: "test"},
			CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		},
		Logger:       logger,
		Records:      ts.records,
		Stats:        ts.stats,
		Vehicles:     ts.vehicles,
		Health:       fakePinger{err: pingErr},
		Hub:          ts.hub,
		TokenManager: tm,
	})
	return ts
}

func (ts *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestRecords_List(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	ts.records.On("ListRecords", mock.Anything, ports.ListRecordsParams{
		Kind:     domain.KindOrder,
		Criteria: domain.Criteria{"status": "pending", "name": "Li"},
	}).Return([]domain.Record{{"id": "O-1"}, {"id": "O-2"}, {"id": "O-3"}}, nil)

	rec := ts.do(stdhttp.MethodGet, "/api/v1/records/order?status=pending&name=Li&limit=2&offset=1", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	resp := decode[PaginatedResponse[domain.Record]](t, rec)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "O-2", resp.Data[0].ID())
	assert.Equal(t, "O-3", resp.Data[1].ID())
	assert.Equal(t, 3, resp.Pagination.TotalCount)
	assert.False(t, resp.Pagination.HasMore)
	ts.records.AssertExpectations(t)
}

func TestRecords_UnknownKind(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.records.On("ListRecords", mock.Anything, mock.Anything).Return(nil, apperrors.ErrUnknownRecordKind)

	rec := ts.do(stdhttp.MethodGet, "/api/v1/records/bogus", "")

	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_RECORD_KIND", decode[ErrorResponse](t, rec).Code)
}

func TestRecords_Get(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.records.On("GetRecord", mock.Anything, domain.KindTask, "T-1").Return(domain.Record{"id": "T-1", "title": "Inspect"}, nil)
	ts.records.On("GetRecord", mock.Anything, domain.KindTask, "T-9").Return(nil, apperrors.ErrRecordNotFound)

	rec := ts.do(stdhttp.MethodGet, "/api/v1/records/task/T-1", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "Inspect", decode[domain.Record](t, rec)["title"])

	rec = ts.do(stdhttp.MethodGet, "/api/v1/records/task/T-9", "")
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	assert.Equal(t, "RECORD_NOT_FOUND", decode[ErrorResponse](t, rec).Code)
}

func TestRecords_Match(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	ts.records.On("MatchRecords", mock.Anything, mock.MatchedBy(func(p ports.MatchRecordsParams) bool {
		return p.Kind == domain.KindOrder &&
			len(p.Records) == 2 &&
			p.Criteria["status"] == "pending"
	})).Return([]domain.Record{{"id": "A"}}, nil)

	body := `{"records":[{"id":"A","status":"pending"},7,{"id":"B","status":"done"}],"criteria":{"status":"pending"}}`
	rec := ts.do(stdhttp.MethodPost, "/api/v1/records/order/match", body)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	resp := decode[ListResponse[domain.Record]](t, rec)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "A", resp.Data[0].ID())
	ts.records.AssertExpectations(t)
}

func TestRecords_MatchMalformedBody(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(stdhttp.MethodPost, "/api/v1/records/order/match", `{"records":`)

	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	ts.records.AssertNotCalled(t, "MatchRecords", mock.Anything, mock.Anything)
}

func TestRecords_Upsert(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	t.Run("empty body is rejected", func(t *testing.T) {
		rec := ts.do(stdhttp.MethodPut, "/api/v1/records/route", `{"records":[]}`)
		assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("written count", func(t *testing.T) {
		ts.records.On("UpsertRecords", mock.Anything, domain.KindRoute, mock.Anything).Return(2, nil).Once()

		rec := ts.do(stdhttp.MethodPut, "/api/v1/records/route", `{"records":[{"id":"R1"},{"id":"R2"}]}`)
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, 2, decode[UpsertResponse](t, rec).Written)
	})

	t.Run("missing id", func(t *testing.T) {
		ts.records.On("UpsertRecords", mock.Anything, domain.KindRoute, mock.Anything).Return(0, apperrors.ErrRecordIDRequired).Once()

		rec := ts.do(stdhttp.MethodPut, "/api/v1/records/route", `{"records":[{"name":"x"}]}`)
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	})

	t.Run("too many records", func(t *testing.T) {
		ts.records.On("UpsertRecords", mock.Anything, domain.KindRoute, mock.MatchedBy(func(records []domain.Record) bool {
			return len(records) == services.MaxRecordsPerRequest+1
		})).Return(0, apperrors.ErrTooManyRecords).Once()

		rec := ts.do(stdhttp.MethodPut, "/api/v1/records/route", recordsBody(services.MaxRecordsPerRequest+1))
		require.Equal(t, stdhttp.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "TOO_MANY_RECORDS", decode[ErrorResponse](t, rec).Code)
	})
}

func TestRecords_MatchTooManyRecords(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	ts.records.On("MatchRecords", mock.Anything, mock.MatchedBy(func(p ports.MatchRecordsParams) bool {
		return len(p.Records) == services.MaxRecordsPerRequest+1
	})).Return(nil, apperrors.ErrTooManyRecords)

	rec := ts.do(stdhttp.MethodPost, "/api/v1/records/order/match", recordsBody(services.MaxRecordsPerRequest+1))
	assert.Equal(t, stdhttp.StatusRequestEntityTooLarge, rec.Code)
}

// recordsBody builds a {"records":[...]} body with n distinct records.
func recordsBody(n int) string {
	var b strings.Builder
	b.WriteString(`{"records":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"id":"R%d"}`, i)
	}
	b.WriteString(`]}`)
	return b.String()
}

func TestVehicles_List(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	updated := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	ts.vehicles.On("List", mock.Anything, domain.Criteria{"driver": "Chen"}).Return(domain.VehicleSnapshot{
		Vehicles:  []domain.Record{{"id": "V1", "driver": "Chen"}},
		UpdatedAt: updated,
		Stale:     true,
		LastError: "upstream timeout",
	}, nil)

	rec := ts.do(stdhttp.MethodGet, "/api/v1/vehicles?driver=Chen", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	resp := decode[domain.VehicleSnapshotPayload](t, rec)
	assert.Equal(t, 1, resp.Count)
	assert.True(t, resp.Stale)
	assert.Equal(t, "upstream timeout", resp.LastError)
	require.NotNil(t, resp.UpdatedAt)
	assert.Equal(t, "2024-03-01T08:00:00Z", *resp.UpdatedAt)
}

func TestVehicles_Refresh(t *testing.T) {
	t.Run("feed failure", func(t *testing.T) {
		ts := newTestServer(t, nil, nil)
		ts.vehicles.On("Refresh", mock.Anything).Return(errors.Join(apperrors.ErrFeedUnavailable, errors.New("dial tcp")))

		rec := ts.do(stdhttp.MethodPost, "/api/v1/vehicles/refresh", "")
		assert.Equal(t, stdhttp.StatusBadGateway, rec.Code)
		assert.Equal(t, "FEED_UNAVAILABLE", decode[ErrorResponse](t, rec).Code)
	})

	t.Run("not configured", func(t *testing.T) {
		ts := newTestServer(t, nil, nil)
		ts.vehicles.On("Refresh", mock.Anything).Return(apperrors.ErrFeedNotConfigured)

		rec := ts.do(stdhttp.MethodPost, "/api/v1/vehicles/refresh", "")
		assert.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
	})

	t.Run("success returns snapshot", func(t *testing.T) {
		ts := newTestServer(t, nil, nil)
		ts.vehicles.On("Refresh", mock.Anything).Return(nil)
		ts.vehicles.On("Snapshot", mock.Anything).Return(domain.VehicleSnapshot{
			Vehicles:  []domain.Record{{"id": "V1"}, {"id": "V2"}},
			UpdatedAt: time.Now(),
		})

		rec := ts.do(stdhttp.MethodPost, "/api/v1/vehicles/refresh", "")
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, 2, decode[domain.VehicleSnapshotPayload](t, rec).Count)
	})
}

func TestStats(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	summary := domain.NewStatsSummary(domain.KindOrder)
	summary.TotalCount = 4
	ts.stats.On("GetSummary", mock.Anything, domain.KindOrder).Return(summary, nil)
	ts.stats.On("GetTrend", mock.Anything, domain.KindOrder, domain.ModeDay).Return(&domain.Trend{
		Mode:        domain.ModeDay,
		Chosen:      []string{"", "", "2024-03-01", "", ""},
		TotalSeries: []float64{0, 0, 4, 0, 0},
		TypeSeries:  []domain.TypeSeries{},
	}, nil)
	ts.stats.On("GetTrend", mock.Anything, domain.KindOrder, domain.Mode("week")).Return(nil, apperrors.ErrInvalidMode)

	rec := ts.do(stdhttp.MethodGet, "/api/v1/stats/order", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.EqualValues(t, 4, decode[domain.StatsSummary](t, rec).TotalCount)

	// mode defaults to day
	rec = ts.do(stdhttp.MethodGet, "/api/v1/stats/order/trend", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	trend := decode[domain.Trend](t, rec)
	assert.Equal(t, []float64{0, 0, 4, 0, 0}, trend.TotalSeries)

	rec = ts.do(stdhttp.MethodGet, "/api/v1/stats/order/trend?mode=week", "")
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
}

func TestBuckets_Recent(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(stdhttp.MethodPost, "/api/v1/buckets/recent", `{"keys":["2024-03","2024-01","2024-02"]}`)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	assert.Equal(t, []string{"", "2024-01", "2024-02", "2024-03", ""}, decode[RecentBucketsResponse](t, rec).Chosen)
}

func TestAuthRequiredWhenEnabled(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	ts := newTestServer(t, tm, nil)
	ts.vehicles.On("List", mock.Anything, mock.Anything).Return(domain.VehicleSnapshot{}, nil)

	rec := ts.do(stdhttp.MethodGet, "/api/v1/vehicles", "")
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)

	token, err := tm.GenerateToken("ops", "viewer")
	require.NoError(t, err)

	rec = ts.do(stdhttp.MethodGet, "/api/v1/vehicles", "", "Authorization", "Bearer "+token)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	// Probes stay open.
	rec = ts.do(stdhttp.MethodGet, "/health/live", "")
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestWebSocket_TokenQueryParam(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	ts := newTestServer(t, tm, nil)

	rec := ts.do(stdhttp.MethodGet, "/api/v1/ws", "")
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)

	rec = ts.do(stdhttp.MethodGet, "/api/v1/ws?token=garbage", "")
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)

	// A valid token gets as far as the upgrade, which a plain GET fails.
	token, err := tm.GenerateToken("kiosk", "viewer")
	require.NoError(t, err)
	rec = ts.do(stdhttp.MethodGet, "/api/v1/ws?token="+token, "")
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		ts := newTestServer(t, nil, nil)
		rec := ts.do(stdhttp.MethodGet, "/health/ready", "")
		assert.Equal(t, stdhttp.StatusOK, rec.Code)
	})

	t.Run("database down", func(t *testing.T) {
		ts := newTestServer(t, nil, errors.New("connection refused"))
		rec := ts.do(stdhttp.MethodGet, "/health/ready", "")
		assert.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
	})

	t.Run("detailed reports a stale feed", func(t *testing.T) {
		ts := newTestServer(t, nil, nil)
		ts.vehicles.On("Snapshot", mock.Anything).Return(domain.VehicleSnapshot{
			UpdatedAt: time.Now().Add(-time.Minute),
			Stale:     true,
			LastError: "upstream timeout",
		})

		rec := ts.do(stdhttp.MethodGet, "/health", "")
		require.Equal(t, stdhttp.StatusOK, rec.Code)

		resp := decode[HealthResponse](t, rec)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "stale", resp.Checks["vehicle_feed"].Status)
		assert.Equal(t, "upstream timeout", resp.Checks["vehicle_feed"].Message)
		assert.Equal(t, "0 clients connected, 0 subscribed to vehicles", resp.Checks["realtime"].Message)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.do(stdhttp.MethodGet, "/health/live", "")

	rec := ts.do(stdhttp.MethodGet, "/metrics", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fleet_dashboard_http_requests_total")
}
