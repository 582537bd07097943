package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"daytrip-itinerary-service/internal/adapters/distance"
	"daytrip-itinerary-service/internal/adapters/repositories"
	"daytrip-itinerary-service/internal/api/dto"
	"daytrip-itinerary-service/internal/domain"
	"daytrip-itinerary-service/internal/ports"
	"daytrip-itinerary-service/internal/services"
)

type testServer struct {
	router   http.Handler
	repo     *repositories.SqlitePlanRepository
	provider *distance.MockDistanceProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repositories.InitSchema(db))

	repo := repositories.NewSqlitePlanRepository(db)
	provider := distance.NewMockDistanceProvider()
	gen := services.NewGenerator(repo, provider, 0)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testServer{
		router:   NewRouter(repo, gen, logger, nil),
		repo:     repo,
		provider: provider,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (ts *testServer) createPlan(t *testing.T) dto.PlanResponse {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/day-plans", dto.CreatePlanRequest{
		PlanDate:         "2026-09-12",
		Title:            "Lisbon day trip",
		DefaultTransport: "driving",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[dto.PlanResponse](t, rec)
}

// addStop creates a waypoint at the given latitude (lng 0).
func (ts *testServer) addStop(t *testing.T, planID uuid.UUID, name string, lat float64) dto.StopResponse {
	t.Helper()
	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/stops", planID), dto.StopRequest{
		Name:     name,
		Location: dto.LocationDTO{Lat: lat, Lng: 0},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[dto.StopResponse](t, rec)
}

// routeAllPairs registers driving routes between every pair of latitudes at
// 600 seconds and 1000 meters per unit.
func (ts *testServer) routeAllPairs(lats ...float64) {
	for _, a := range lats {
		for _, b := range lats {
			if a == b {
				continue
			}
			d := a - b
			if d < 0 {
				d = -d
			}
			ts.provider.SetRoute(
				domain.Location{Lat: a, Lng: 0},
				domain.Location{Lat: b, Lng: 0},
				domain.TransportDriving,
				ports.RouteResult{DistanceMeters: int(d * 1000), DurationSeconds: int(d * 600), Polyline: "enc"},
			)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreatePlanValidation(t *testing.T) {
	ts := newTestServer(t)

	t.Run("bad date", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/day-plans", dto.CreatePlanRequest{
			PlanDate: "09/12/2026", Title: "x",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeBody[dto.ErrorResponse](t, rec)
		assert.Equal(t, "validation_error", body.Error.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/day-plans", dto.CreatePlanRequest{PlanDate: "2026-09-12"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/day-plans", map[string]any{
			"plan_date": "2026-09-12", "title": "x", "bogus": true,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetPlanNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/day-plans/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody[dto.ErrorResponse](t, rec)
	assert.Equal(t, "not_found", body.Error.Code)

	rec = ts.do(t, http.MethodGet, "/day-plans/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlanLifecycle(t *testing.T) {
	ts := newTestServer(t)
	plan := ts.createPlan(t)

	rec := ts.do(t, http.MethodPatch, "/day-plans/"+plan.ID.String(),
		map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "confirmed", decodeBody[dto.PlanResponse](t, rec).Status)

	// Backward transitions are rejected.
	rec = ts.do(t, http.MethodPatch, "/day-plans/"+plan.ID.String(),
		map[string]any{"status": "draft"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/day-plans/"+plan.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/day-plans/"+plan.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStopEndpoints(t *testing.T) {
	ts := newTestServer(t)
	plan := ts.createPlan(t)

	a := ts.addStop(t, plan.ID, "a", 1)
	b := ts.addStop(t, plan.ID, "b", 2)
	assert.Equal(t, 0, a.Sequence)
	assert.Equal(t, 1, b.Sequence)

	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/day-plans/%s/stops", plan.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[dto.ListStopsResponse](t, rec)
	require.Len(t, list.Stops, 2)

	t.Run("invalid latitude", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/stops", plan.ID), dto.StopRequest{
			Name: "bad", Location: dto.LocationDTO{Lat: 91, Lng: 0},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, fmt.Sprintf("/day-plans/%s/stops/%s", plan.ID, a.ID), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = ts.do(t, http.MethodDelete, fmt.Sprintf("/day-plans/%s/stops/%s", plan.ID, a.ID), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGenerateAndAcceptFlow(t *testing.T) {
	ts := newTestServer(t)
	plan := ts.createPlan(t)
	ts.addStop(t, plan.ID, "a", 1)
	ts.addStop(t, plan.ID, "b", 2)
	ts.addStop(t, plan.ID, "c", 3)
	ts.routeAllPairs(1, 2, 3)

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/generate", plan.ID),
		dto.GenerateRequest{Optimize: false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	it := decodeBody[dto.ItineraryResponse](t, rec)
	require.Len(t, it.Legs, 2)
	assert.Equal(t, 1200, it.TotalDurationSeconds)
	assert.NotNil(t, it.Conflicts)

	// Generate alone persists nothing.
	rec = ts.do(t, http.MethodGet, "/day-plans/"+plan.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[dto.PlanResponse](t, rec).Legs)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/accept", plan.ID),
		dto.GenerateRequest{Optimize: false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/day-plans/"+plan.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decodeBody[dto.PlanResponse](t, rec)
	require.Len(t, stored.Legs, 2)
	assert.Equal(t, stored.Stops[0].ID, stored.Legs[0].FromStopID)
}

// Omitting the body entirely is the same as sending the defaults.
func TestGenerateAndAcceptAllowEmptyBody(t *testing.T) {
	ts := newTestServer(t)
	plan := ts.createPlan(t)
	ts.addStop(t, plan.ID, "a", 1)
	ts.addStop(t, plan.ID, "b", 2)
	ts.routeAllPairs(1, 2)

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/generate", plan.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 600, decodeBody[dto.ItineraryResponse](t, rec).TotalDurationSeconds)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/accept", plan.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUpdateStopKeepsOmittedFields(t *testing.T) {
	ts := newTestServer(t)
	plan := ts.createPlan(t)

	arrival := time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC)
	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/stops", plan.ID), dto.StopRequest{
		Name:             "museum",
		Location:         dto.LocationDTO{Lat: 1, Lng: 0},
		Source:           "calendar",
		ScheduledArrival: &arrival,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	stop := decodeBody[dto.StopResponse](t, rec)

	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("/day-plans/%s/stops/%s", plan.ID, stop.ID),
		map[string]any{"notes": "buy tickets ahead"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[dto.StopResponse](t, rec)
	assert.Equal(t, "buy tickets ahead", updated.Notes)
	assert.Equal(t, "museum", updated.Name)
	assert.Equal(t, "calendar", updated.Source)
	require.NotNil(t, updated.ScheduledArrival)
	assert.True(t, arrival.Equal(*updated.ScheduledArrival))

	t.Run("empty name rejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodPatch, fmt.Sprintf("/day-plans/%s/stops/%s", plan.ID, stop.ID),
			map[string]any{"name": "  "})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown stop", func(t *testing.T) {
		rec := ts.do(t, http.MethodPatch, fmt.Sprintf("/day-plans/%s/stops/%s", plan.ID, uuid.New()),
			map[string]any{"notes": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGenerateRoutingFailureMapsToBadGateway(t *testing.T) {
	ts := newTestServer(t)
	plan := ts.createPlan(t)
	ts.addStop(t, plan.ID, "a", 1)
	ts.addStop(t, plan.ID, "b", 2)
	// No routes registered: the provider reports routing unavailable.

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/generate", plan.ID),
		dto.GenerateRequest{})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody[dto.ErrorResponse](t, rec)
	assert.Equal(t, "routing_unavailable", body.Error.Code)
}

func TestGenerateSequencingErrorMapsToUnprocessable(t *testing.T) {
	ts := newTestServer(t)
	plan := ts.createPlan(t)

	for i, name := range []string{"start1", "start2"} {
		rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/stops", plan.ID), dto.StopRequest{
			Name:     name,
			Location: dto.LocationDTO{Lat: float64(i + 1), Lng: 0},
			StopType: "origin",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/generate", plan.ID),
		dto.GenerateRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[dto.ErrorResponse](t, rec)
	assert.Equal(t, "sequencing_error", body.Error.Code)
	assert.NotNil(t, body.Error.Details)
}

func TestReorderEndpoint(t *testing.T) {
	ts := newTestServer(t)
	plan := ts.createPlan(t)
	a := ts.addStop(t, plan.ID, "a", 1)
	b := ts.addStop(t, plan.ID, "b", 2)
	c := ts.addStop(t, plan.ID, "c", 3)
	ts.routeAllPairs(1, 2, 3)

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/stops/reorder", plan.ID),
		dto.ReorderRequest{StopIDs: []uuid.UUID{c.ID, a.ID, b.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[dto.ReorderResponse](t, rec)
	require.Len(t, res.Stops, 3)
	assert.Equal(t, c.ID, res.Stops[0].ID)
	require.Len(t, res.Legs, 2)

	t.Run("bad permutation", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/stops/reorder", plan.ID),
			dto.ReorderRequest{StopIDs: []uuid.UUID{a.ID}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, fmt.Sprintf("/day-plans/%s/stops/reorder", plan.ID),
			dto.ReorderRequest{})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestPreviewEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.routeAllPairs(1, 2)

	rec := ts.do(t, http.MethodPost, "/routes/preview", dto.PreviewRequest{
		Stops: []dto.PreviewStopDTO{
			{Location: dto.LocationDTO{Lat: 1}},
			{Location: dto.LocationDTO{Lat: 2}},
		},
		Mode: "driving",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[dto.PreviewResponse](t, rec)
	require.Len(t, res.Legs, 1)
	assert.Equal(t, 600, res.TotalDurationSeconds)

	t.Run("stop items carry nested locations", func(t *testing.T) {
		body := json.RawMessage(`{
			"stops": [
				{"id": "` + uuid.NewString() + `", "location": {"lat": 1, "lng": 0}},
				{"location": {"lat": 2, "lng": 0}}
			],
			"transport_mode": "driving"
		}`)
		rec := ts.do(t, http.MethodPost, "/routes/preview", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decodeBody[dto.PreviewResponse](t, rec)
		assert.Equal(t, 600, res.TotalDurationSeconds)
	})

	t.Run("too few stops", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/routes/preview", dto.PreviewRequest{
			Stops: []dto.PreviewStopDTO{{Location: dto.LocationDTO{Lat: 1}}},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("invalid mode", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/routes/preview", dto.PreviewRequest{
			Stops: []dto.PreviewStopDTO{
				{Location: dto.LocationDTO{Lat: 1}},
				{Location: dto.LocationDTO{Lat: 2}},
			},
			Mode: "teleport",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
