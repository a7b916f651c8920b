package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/Univesp-PIs/pi4-back/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProject(t *testing.T, db *gorm.DB, name string, active bool, info model.Information) uint {
	t.Helper()

	project := model.Project{Name: name, Status: active}
	require.NoError(t, db.Create(&project).Error)
	require.NoError(t, db.Create(&model.Client{ProjectID: project.ID, Name: name, Email: name + "@test.com", Status: true}).Error)

	info.ProjectID = project.ID
	require.NoError(t, db.Create(&info).Error)
	return project.ID
}

func day(year int, month time.Month, d int) *time.Time {
	value := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &value
}

func cost(v float64) *float64 {
	return &v
}

func TestAverageProjectCostNoProjects(t *testing.T) {
	setupTestDB(t)

	rec := doRequest(t, AverageProjectCost, http.MethodGet, "/api/dashboard/average-cost", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, 0.0, body["average_cost_estimate"])
	assert.Equal(t, 0.0, body["average_current_cost"])
}

func TestAverageProjectCost(t *testing.T) {
	db := setupTestDB(t)
	seedProject(t, db, "a", true, model.Information{CostEstimate: cost(100), CurrentCost: cost(80)})
	seedProject(t, db, "b", true, model.Information{CostEstimate: cost(300), CurrentCost: cost(320)})
	// Inactive projects are excluded
	seedProject(t, db, "c", false, model.Information{CostEstimate: cost(1000), CurrentCost: cost(1000)})

	rec := doRequest(t, AverageProjectCost, http.MethodGet, "/api/dashboard/average-cost", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, 200.0, body["average_cost_estimate"])
	assert.Equal(t, 200.0, body["average_current_cost"])
}

func TestPercentageProjectsDelivered(t *testing.T) {
	db := setupTestDB(t)
	start := day(2024, time.January, 1)

	// current == start, delivered == start+10: on time
	seedProject(t, db, "ontime", true, model.Information{
		StartDate:     start,
		DeliveredDate: day(2024, time.January, 11),
		CurrentDate:   start,
	})
	// current == start+20, delivered == start+10: overrunning
	seedProject(t, db, "late", true, model.Information{
		StartDate:     start,
		DeliveredDate: day(2024, time.January, 11),
		CurrentDate:   day(2024, time.January, 21),
	})

	rec := doRequest(t, PercentageProjectsDelivered, http.MethodGet, "/api/dashboard/delivered-percentage", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50.0, decodeBody(t, rec)["percentage"])
}

func TestDeliveryProjects(t *testing.T) {
	db := setupTestDB(t)
	seedProject(t, db, "a", true, model.Information{DeliveredDate: day(2024, time.March, 5)})
	seedProject(t, db, "b", true, model.Information{DeliveredDate: day(2024, time.March, 20)})
	seedProject(t, db, "c", true, model.Information{DeliveredDate: day(2023, time.July, 1)})

	rec := doRequest(t, DeliveryProjects, http.MethodGet, "/api/dashboard/deliveries?year=2024", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, 2024.0, body["year"])

	deliveries := body["deliveries"].([]interface{})
	require.Len(t, deliveries, 1)
	march := deliveries[0].(map[string]interface{})
	assert.Equal(t, 3.0, march["month"])
	assert.Equal(t, 2.0, march["count"])
}

func TestDeliveryProjectsRequiresYear(t *testing.T) {
	setupTestDB(t)

	rec := doRequest(t, DeliveryProjects, http.MethodGet, "/api/dashboard/deliveries", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectCost(t *testing.T) {
	db := setupTestDB(t)
	a := seedProject(t, db, "a", true, model.Information{CostEstimate: cost(100), CurrentCost: cost(90)})
	b := seedProject(t, db, "b", true, model.Information{CostEstimate: cost(200), CurrentCost: cost(250)})

	rec := doRequest(t, ProjectCost, http.MethodPost, "/api/dashboard/cost", map[string]interface{}{
		"ids": []uint{a, b},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeList(t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, 100.0, list[0]["cost_estimate"])
	assert.Equal(t, 250.0, list[1]["current_cost"])
}

func TestProjectCostUnknownID(t *testing.T) {
	db := setupTestDB(t)
	a := seedProject(t, db, "a", true, model.Information{CostEstimate: cost(100)})

	rec := doRequest(t, ProjectCost, http.MethodPost, "/api/dashboard/cost", map[string]interface{}{
		"ids": []uint{a, 999},
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPercentageProjectCost(t *testing.T) {
	db := setupTestDB(t)
	seedProject(t, db, "under", true, model.Information{CostEstimate: cost(100), CurrentCost: cost(90)})
	seedProject(t, db, "over", true, model.Information{CostEstimate: cost(100), CurrentCost: cost(150)})
	// No costs set: ignored by the percentage
	seedProject(t, db, "empty", true, model.Information{})

	rec := doRequest(t, PercentageProjectCost, http.MethodGet, "/api/dashboard/cost-percentage", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50.0, decodeBody(t, rec)["percentage"])
}

func TestDashboardMergesMetrics(t *testing.T) {
	db := setupTestDB(t)
	seedProject(t, db, "a", true, model.Information{
		CostEstimate:  cost(100),
		CurrentCost:   cost(90),
		StartDate:     day(2024, time.January, 1),
		DeliveredDate: day(2024, time.January, 11),
		CurrentDate:   day(2024, time.January, 6),
	})

	rec := doRequest(t, Dashboard, http.MethodGet, "/api/dashboard?year=2024", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	for _, key := range []string{
		"delivery_projects",
		"cost",
		"percentage_project_cost",
		"average_project_cost",
		"average_time_project",
		"percentage_projects_delivered",
	} {
		assert.Contains(t, body, key)
	}

	averageCost := body["average_project_cost"].(map[string]interface{})
	assert.Equal(t, 100.0, averageCost["average_cost_estimate"])

	delivered := body["percentage_projects_delivered"].(map[string]interface{})
	assert.Equal(t, 100.0, delivered["percentage"])
}
