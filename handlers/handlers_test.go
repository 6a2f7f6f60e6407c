package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldnav-backend/config"
	"fieldnav-backend/models"
	"fieldnav-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	field, err := services.NewFieldMap(config.DefaultFieldConfig())
	require.NoError(t, err)
	world := services.NewWorldGenerator(3)
	world.Generate(3660, 4)

	Robots = NewRobotManager()
	InitField(field, services.NewSimulator(field, world, Manager.BroadcastMessage))
	services.CloseDatabase()

	app := fiber.New()
	RegisterRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestHealthAndMetrics(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["status"])

	status, _ = doJSON(t, app, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodGet, "/websocket/web", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}

func TestPathfindingFlow(t *testing.T) {
	app := setupTestApp(t)

	goal := PathfindingRequest{Goal: models.FieldXY{X: 900, Y: 0}, Planner: services.PlannerAStar}
	status, body := doJSON(t, app, http.MethodPost, "/api/pathfinding", goal)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["success"])

	status, body = doJSON(t, app, http.MethodPost, "/api/field/update", models.DetectionsMessage{
		RobotID: defaultRobotID,
		Pose:    &models.Pose{},
	})
	require.Equal(t, http.StatusOK, status)
	report := body["report"].(map[string]interface{})
	assert.Equal(t, true, report["pose_known"])

	status, body = doJSON(t, app, http.MethodPost, "/api/pathfinding", goal)
	require.Equal(t, http.StatusOK, status)
	path := body["path"].(map[string]interface{})
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(120), path["cost"])
	assert.Equal(t, services.PlannerAStar, path["planner"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/pathfinding",
		PathfindingRequest{Goal: models.FieldXY{X: 900}, Planner: "dijkstra"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/pathfinding/advance", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/pathfinding",
		PathfindingRequest{Goal: models.FieldXY{X: 900}, Planner: services.PlannerDLite})
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/pathfinding/advance", nil)
	require.Equal(t, http.StatusOK, status)
	path = body["path"].(map[string]interface{})
	assert.Equal(t, float64(120), path["cost"])
	assert.Equal(t, services.PlannerDLite, path["planner"])
}

func TestFieldEndpoints(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/field/grid", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["rows"], 48)
	assert.Nil(t, body["robot"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/field/update", models.DetectionsMessage{
		RobotID: "robot-7",
		Pose:    &models.Pose{X: 300, Y: -300},
	})
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/field/grid", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"row": float64(20), "col": float64(28)}, body["robot"])

	status, body = doJSON(t, app, http.MethodGet, "/api/field/recognitions", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])

	status, body = doJSON(t, app, http.MethodGet, "/api/robots", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	req := httptest.NewRequest(http.MethodPost, "/api/field/update", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFieldEndpointsWithoutField(t *testing.T) {
	app := setupTestApp(t)
	fieldMap = nil
	t.Cleanup(func() { fieldMap = nil })

	status, _ := doJSON(t, app, http.MethodGet, "/api/field/grid", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/pathfinding",
		PathfindingRequest{Goal: models.FieldXY{X: 900}})
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestSimulatorEndpoints(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/sim/step", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	simStatus := body["status"].(map[string]interface{})
	assert.Equal(t, float64(1), simStatus["steps"])

	status, body = doJSON(t, app, http.MethodGet, "/api/sim/status", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["running"])
	assert.Equal(t, float64(4), body["objects"])
}

func TestLogEndpointsWithoutDatabase(t *testing.T) {
	app := setupTestApp(t)

	for _, path := range []string{"/api/logs", "/api/logs?event_type=plan", "/api/logs/stats"} {
		status, _ := doJSON(t, app, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, status, path)
	}
}

func TestLogQueryValidation(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name string
		path string
	}{
		{"unknown event type", "/api/logs?event_type=agv_move"},
		{"unknown planner", "/api/logs?planner=rrt"},
		{"bad start", "/api/logs?start=yesterday"},
		{"end before start", "/api/logs?start=2026-01-02T00:00:00Z&end=2026-01-01T00:00:00Z"},
		{"bad since", "/api/logs/stats?since=today"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doJSON(t, app, http.MethodGet, tt.path, nil)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}

	_, body := doJSON(t, app, http.MethodGet, "/api/logs?event_type=agv_move", nil)
	assert.Len(t, body["event_types"], len(models.FieldEventTypes))
}

func TestLogQueryAndStats(t *testing.T) {
	app := setupTestApp(t)
	require.NoError(t, services.OpenDatabase(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared")))
	t.Cleanup(services.CloseDatabase)

	now := time.Now()
	entries := []models.FieldLog{
		{EventType: models.EventPlan, RobotID: defaultRobotID, Planner: services.PlannerAStar, PathFound: true, PathCost: 100, CreatedAt: now},
		{EventType: models.EventPlan, RobotID: defaultRobotID, Planner: services.PlannerAStar, PathFound: true, PathCost: 200, CreatedAt: now},
		{EventType: models.EventPlan, RobotID: defaultRobotID, Planner: services.PlannerDLite, PathFound: false, CreatedAt: now},
		{EventType: models.EventRecognitionInserted, RobotID: defaultRobotID, RecognitionID: "rec-1", CreatedAt: now},
		{EventType: models.EventRecognitionEvicted, RobotID: defaultRobotID, RecognitionID: "rec-1", CreatedAt: now},
		{EventType: models.EventTick, RobotID: "robot-002", CreatedAt: now},
		{EventType: models.EventTick, RobotID: defaultRobotID, CreatedAt: now.Add(-48 * time.Hour)},
	}
	require.NoError(t, services.GetDB().Create(&entries).Error)

	status, body := doJSON(t, app, http.MethodGet, "/api/logs?planner=astar", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, body = doJSON(t, app, http.MethodGet, "/api/logs?recognition_id=rec-1&event_type=recognition_evicted", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	status, body = doJSON(t, app, http.MethodGet, "/api/logs?limit=5000", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(len(entries)), body["count"])
	query := body["query"].(map[string]interface{})
	assert.Equal(t, float64(1000), query["limit"])

	status, body = doJSON(t, app, http.MethodGet, "/api/logs/stats?robot_id="+defaultRobotID, nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(5), stats["total"])
	assert.Equal(t, map[string]interface{}{"inserted": float64(1), "evicted": float64(1)}, stats["recognitions"])

	plans := stats["plans"].(map[string]interface{})
	astar := plans[services.PlannerAStar].(map[string]interface{})
	assert.Equal(t, float64(2), astar["found"])
	assert.Equal(t, float64(0), astar["not_found"])
	assert.InDelta(t, 150.0, astar["avg_cost"], 1e-9)
	dlite := plans[services.PlannerDLite].(map[string]interface{})
	assert.Equal(t, float64(0), dlite["found"])
	assert.Equal(t, float64(1), dlite["not_found"])
}
