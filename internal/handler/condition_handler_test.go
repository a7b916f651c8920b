package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Univesp-PIs/pi4-back/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCondition(t *testing.T, name string) uint {
	t.Helper()
	rec := doRequest(t, CreateCondition, http.MethodPost, "/conditions", map[string]interface{}{
		"name": name,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	condition := decodeBody(t, rec)["condition"].(map[string]interface{})
	return uint(condition["id"].(float64))
}

func TestCreateConditionRequiresName(t *testing.T) {
	setupTestDB(t)

	rec := doRequest(t, CreateCondition, http.MethodPost, "/conditions", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCondition(t *testing.T) {
	setupTestDB(t)
	id := createCondition(t, "started")

	rec := doRequest(t, UpdateCondition, http.MethodPut, "/api/conditions", map[string]interface{}{
		"id":     id,
		"name":   "in progress",
		"status": false,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	condition := decodeBody(t, rec)["condition"].(map[string]interface{})
	assert.Equal(t, "in progress", condition["name"])
	assert.Equal(t, false, condition["status"])
}

func TestToggleConditionIsIdempotentOverTwoCalls(t *testing.T) {
	db := setupTestDB(t)
	id := createCondition(t, "started")

	var before model.Condition
	require.NoError(t, db.First(&before, id).Error)

	rec := doRequest(t, ToggleCondition, http.MethodPatch, "/api/conditions/1/toggle", nil, map[string]string{
		"id": fmt.Sprint(id),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, !before.Status, decodeBody(t, rec)["new_status"])

	rec = doRequest(t, ToggleCondition, http.MethodPatch, "/api/conditions/1/toggle", nil, map[string]string{
		"id": fmt.Sprint(id),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before.Status, decodeBody(t, rec)["new_status"])

	var after model.Condition
	require.NoError(t, db.First(&after, id).Error)
	assert.Equal(t, before.Status, after.Status)
}

func TestDisableCondition(t *testing.T) {
	db := setupTestDB(t)
	id := createCondition(t, "started")

	for i := 0; i < 2; i++ {
		rec := doRequest(t, DisableCondition, http.MethodPatch, "/api/conditions/1/disable", nil, map[string]string{
			"id": fmt.Sprint(id),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var condition model.Condition
		require.NoError(t, db.First(&condition, id).Error)
		assert.False(t, condition.Status)
	}
}

func TestDeleteCondition(t *testing.T) {
	setupTestDB(t)
	id := createCondition(t, "started")

	rec := doRequest(t, DeleteCondition, http.MethodDelete, "/api/conditions/1", nil, map[string]string{
		"id": fmt.Sprint(id),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, DeleteCondition, http.MethodDelete, "/api/conditions/1", nil, map[string]string{
		"id": fmt.Sprint(id),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCondition(t *testing.T) {
	setupTestDB(t)
	createCondition(t, "started")
	createCondition(t, "delivered")

	rec := doRequest(t, ListCondition, http.MethodGet, "/api/conditions", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeList(t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "started", list[0]["name"])
	assert.Equal(t, "delivered", list[1]["name"])
}
