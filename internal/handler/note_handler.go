package handler

import (
	"net/http"
	"time"

	"github.com/Univesp-PIs/pi4-back/internal/model"
	"github.com/Univesp-PIs/pi4-back/pkg/database"
	"github.com/Univesp-PIs/pi4-back/pkg/logger"
	"github.com/Univesp-PIs/pi4-back/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateNote creates a standalone note
func CreateNote(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse note creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"name": true,
		})})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	note := model.Note{Name: req.Name, Status: true}
	if result := database.GetDB().Create(&note); result.Error != nil {
		log.Error("Failed to create note", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "note creation failed"})
	}

	log.Info("Note created", zap.Uint("note_id", note.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "note created successfully",
		"note": echo.Map{
			"id":   note.ID,
			"name": note.Name,
		},
	})
}

// EditNote replaces a note's text by id
func EditNote(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		ID   uint   `json:"id"`
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse note edit request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var note model.Note
	if result := database.GetDB().First(&note, req.ID); result.Error != nil {
		log.Error("Note not found", zap.Uint("note_id", req.ID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}

	note.Name = req.Note
	if result := database.GetDB().Save(&note); result.Error != nil {
		log.Error("Failed to edit note", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "note update failed"})
	}

	log.Info("Note edited", zap.Uint("note_id", note.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "note edited successfully"})
}

// DeleteNote removes a note by id
func DeleteNote(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		ID uint `json:"id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse note deletion request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	var note model.Note
	if result := database.GetDB().First(&note, req.ID); result.Error != nil {
		log.Error("Note not found", zap.Uint("note_id", req.ID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}

	if result := database.GetDB().Delete(&note); result.Error != nil {
		log.Error("Failed to delete note", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "note deletion failed"})
	}

	log.Info("Note deleted", zap.Uint("note_id", note.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "note deleted successfully"})
}
