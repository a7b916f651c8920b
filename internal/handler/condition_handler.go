package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Univesp-PIs/pi4-back/internal/model"
	"github.com/Univesp-PIs/pi4-back/pkg/database"
	"github.com/Univesp-PIs/pi4-back/pkg/logger"
	"github.com/Univesp-PIs/pi4-back/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateCondition adds a reusable status tag to the registry
func CreateCondition(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordConditionOperation("create")

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse condition creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"name": true,
		})})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	condition := model.Condition{Name: req.Name, Status: true}
	if result := database.GetDB().Create(&condition); result.Error != nil {
		log.Error("Failed to create condition", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "condition creation failed"})
	}

	log.Info("Condition created", zap.Uint("condition_id", condition.ID), zap.String("name", condition.Name))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "condition created successfully",
		"condition": echo.Map{
			"id":   condition.ID,
			"name": condition.Name,
		},
	})
}

// UpdateCondition overwrites a condition's name and status
func UpdateCondition(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordConditionOperation("update")

	var req struct {
		ID     uint   `json:"id"`
		Name   string `json:"name"`
		Status bool   `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse condition update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var condition model.Condition
	if result := database.GetDB().First(&condition, req.ID); result.Error != nil {
		log.Error("Condition not found", zap.Uint("condition_id", req.ID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "condition not found"})
	}

	condition.Name = req.Name
	condition.Status = req.Status
	if result := database.GetDB().Save(&condition); result.Error != nil {
		log.Error("Failed to update condition", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "condition update failed"})
	}

	log.Info("Condition updated", zap.Uint("condition_id", condition.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "condition updated successfully",
		"condition": echo.Map{
			"id":     condition.ID,
			"name":   condition.Name,
			"status": condition.Status,
		},
	})
}

// DeleteCondition removes a condition from the registry
func DeleteCondition(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordConditionOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid condition id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	var condition model.Condition
	if result := database.GetDB().First(&condition, uint(id)); result.Error != nil {
		log.Error("Condition not found", zap.Uint64("condition_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "condition not found"})
	}

	if result := database.GetDB().Delete(&condition); result.Error != nil {
		log.Error("Failed to delete condition", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "condition deletion failed"})
	}

	log.Info("Condition deleted", zap.Uint("condition_id", condition.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "condition deleted successfully"})
}

// DisableCondition forces a condition's status to false
func DisableCondition(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordConditionOperation("disable")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid condition id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var condition model.Condition
	if result := database.GetDB().First(&condition, uint(id)); result.Error != nil {
		log.Error("Condition not found", zap.Uint64("condition_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "condition not found"})
	}

	condition.Status = false
	if result := database.GetDB().Save(&condition); result.Error != nil {
		log.Error("Failed to disable condition", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "condition update failed"})
	}

	log.Info("Condition disabled", zap.Uint("condition_id", condition.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "condition disabled successfully"})
}

// ToggleCondition flips a condition's status and returns the new value
func ToggleCondition(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordConditionOperation("toggle")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid condition id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var condition model.Condition
	if result := database.GetDB().First(&condition, uint(id)); result.Error != nil {
		log.Error("Condition not found", zap.Uint64("condition_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "condition not found"})
	}

	condition.Status = !condition.Status
	if result := database.GetDB().Save(&condition); result.Error != nil {
		log.Error("Failed to toggle condition", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "condition update failed"})
	}

	log.Info("Condition toggled", zap.Uint("condition_id", condition.ID), zap.Bool("status", condition.Status))
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "condition status toggled successfully",
		"new_status": condition.Status,
	})
}

// ListCondition returns every condition in the registry
func ListCondition(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordConditionOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var conditions []model.Condition
	if result := database.GetDB().Find(&conditions); result.Error != nil {
		log.Error("Failed to list conditions", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve conditions"})
	}

	list := make([]echo.Map, 0, len(conditions))
	for _, condition := range conditions {
		list = append(list, echo.Map{
			"id":     condition.ID,
			"name":   condition.Name,
			"status": condition.Status,
		})
	}
	return c.JSON(http.StatusOK, list)
}
