package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Univesp-PIs/pi4-back/internal/dashboard"
	"github.com/Univesp-PIs/pi4-back/internal/model"
	"github.com/Univesp-PIs/pi4-back/pkg/database"
	"github.com/Univesp-PIs/pi4-back/pkg/logger"
	"github.com/Univesp-PIs/pi4-back/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Request payloads for the project aggregate. Dates travel as DD/MM/YYYY
// strings; a zero condition or ranking id means "create new".
type conditionPayload struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type rankingPayload struct {
	ID          uint             `json:"id"`
	Rank        string           `json:"rank"`
	LastUpdate  *string          `json:"last_update"`
	Note        *string          `json:"note"`
	Description *string          `json:"description"`
	Delete      bool             `json:"delete"`
	Condition   conditionPayload `json:"condition"`
}

type timelineItem struct {
	Ranking rankingPayload `json:"ranking"`
}

type projectPayload struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type clientPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type informationPayload struct {
	CostEstimate  *float64 `json:"cost_estimate"`
	CurrentCost   *float64 `json:"current_cost"`
	StartDate     *string  `json:"start_date"`
	DeliveredDate *string  `json:"delivered_date"`
	CurrentDate   *string  `json:"current_date"`
}

type projectRequest struct {
	Project     *projectPayload     `json:"project"`
	Client      *clientPayload      `json:"client"`
	Information *informationPayload `json:"information"`
	Timeline    []timelineItem      `json:"timeline"`
}

// CreateProject creates the full aggregate: project with a fresh lookup
// key, client, information row and one ranking per timeline item, all in a
// single transaction.
func CreateProject(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProjectOperation("create")

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse project creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Project == nil || req.Client == nil || len(req.Timeline) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"project":  req.Project == nil,
			"client":   req.Client == nil,
			"timeline": len(req.Timeline) == 0,
		})})
	}

	information, err := parseInformation(req.Information)
	if err != nil {
		log.Error("Invalid information dates", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	project := model.Project{
		Name:   req.Project.Name,
		Status: true,
	}
	if result := tx.Create(&project); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create project", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project creation failed"})
	}

	client := model.Client{
		ProjectID: project.ID,
		Name:      req.Client.Name,
		Email:     req.Client.Email,
		Status:    true,
	}
	if result := tx.Create(&client); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create client", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project creation failed"})
	}

	information.ProjectID = project.ID
	if result := tx.Create(information); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create information", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project creation failed"})
	}

	for _, item := range req.Timeline {
		rankingData := item.Ranking

		condition, err := resolveCondition(tx, rankingData.Condition)
		if err != nil {
			tx.Rollback()
			log.Error("Failed to resolve condition", zap.Uint("condition_id", rankingData.Condition.ID), zap.Error(err))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "condition not found"})
		}

		lastUpdate, err := model.ParseDatePtr(rankingData.LastUpdate)
		if err != nil {
			tx.Rollback()
			log.Error("Invalid ranking date", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		ranking := model.Ranking{
			ProjectID:   project.ID,
			ConditionID: condition.ID,
			Rank:        rankingData.Rank,
			LastUpdate:  lastUpdate,
			Note:        rankingData.Note,
			Description: rankingData.Description,
			Status:      true,
		}
		if result := tx.Create(&ranking); result.Error != nil {
			tx.Rollback()
			log.Error("Failed to create ranking", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project creation failed"})
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project creation failed"})
	}

	log.Info("Project created",
		zap.Uint("project_id", project.ID),
		zap.String("name", project.Name),
		zap.Int("timeline_items", len(req.Timeline)))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "project created successfully",
		"project": echo.Map{
			"id":   project.ID,
			"name": project.Name,
			"key":  project.Key,
		},
	})
}

// UpdateProject overwrites the aggregate and reconciles the timeline: new
// rankings are created, flagged ones deleted, the rest fully overwritten.
func UpdateProject(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProjectOperation("update")

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse project update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Project == nil || req.Client == nil || len(req.Timeline) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"project":  req.Project == nil,
			"client":   req.Client == nil,
			"timeline": len(req.Timeline) == 0,
		})})
	}

	information, err := parseInformation(req.Information)
	if err != nil {
		log.Error("Invalid information dates", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var project model.Project
	if result := database.GetDB().First(&project, req.Project.ID); result.Error != nil {
		log.Error("Project not found", zap.Uint("project_id", req.Project.ID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}

	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Model(&project).Update("name", req.Project.Name); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to update project", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project update failed"})
	}

	var client model.Client
	if result := tx.Where("project_id = ?", project.ID).First(&client); result.Error != nil {
		tx.Rollback()
		log.Error("Client not found", zap.Uint("project_id", project.ID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}
	client.Name = req.Client.Name
	client.Email = req.Client.Email
	if result := tx.Save(&client); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to update client", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project update failed"})
	}

	var existing model.Information
	if result := tx.Where("project_id = ?", project.ID).First(&existing); result.Error != nil {
		tx.Rollback()
		log.Error("Information not found", zap.Uint("project_id", project.ID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "information not found"})
	}
	existing.CostEstimate = information.CostEstimate
	existing.CurrentCost = information.CurrentCost
	existing.StartDate = information.StartDate
	existing.DeliveredDate = information.DeliveredDate
	existing.CurrentDate = information.CurrentDate
	if result := tx.Save(&existing); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to update information", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project update failed"})
	}

	for _, item := range req.Timeline {
		if err := reconcileRanking(tx, &project, item.Ranking); err != nil {
			tx.Rollback()
			log.Error("Failed to reconcile timeline item", zap.Uint("ranking_id", item.Ranking.ID), zap.Error(err))
			if err == gorm.ErrRecordNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "ranking not found"})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project update failed"})
	}

	log.Info("Project updated", zap.Uint("project_id", project.ID), zap.String("name", req.Project.Name))
	return c.JSON(http.StatusOK, echo.Map{"message": "project updated successfully"})
}

// DeleteProject removes the project and everything it owns. Conditions are
// shared and survive.
func DeleteProject(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProjectOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	var project model.Project
	if result := database.GetDB().First(&project, uint(id)); result.Error != nil {
		log.Error("Project not found", zap.Uint64("project_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}

	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Where("project_id = ?", project.ID).Delete(&model.Ranking{}); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to delete rankings", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project deletion failed"})
	}
	if result := tx.Where("project_id = ?", project.ID).Delete(&model.Information{}); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to delete information", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project deletion failed"})
	}
	if result := tx.Where("project_id = ?", project.ID).Delete(&model.Client{}); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to delete client", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project deletion failed"})
	}
	if result := tx.Delete(&project); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to delete project", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project deletion failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project deletion failed"})
	}

	log.Info("Project deleted", zap.Uint("project_id", project.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "project, client and rankings deleted successfully"})
}

// InfoProject returns one project's full assembly by internal id
func InfoProject(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProjectOperation("info")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var project model.Project
	if result := database.GetDB().First(&project, uint(id)); result.Error != nil {
		log.Error("Project not found", zap.Uint64("project_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}

	payload, err := assembleProject(database.GetDB(), &project)
	if err != nil {
		log.Error("Failed to assemble project", zap.Uint("project_id", project.ID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}
	return c.JSON(http.StatusOK, payload)
}

// SearchProject returns one project's full assembly by its shareable key.
// This is the only project read that needs no authentication.
func SearchProject(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProjectOperation("search")

	key := c.Param("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project key"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var project model.Project
	if result := database.GetDB().Where("key = ?", key).First(&project); result.Error != nil {
		log.Error("Project not found", zap.String("key", key))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}

	payload, err := assembleProject(database.GetDB(), &project)
	if err != nil {
		log.Error("Failed to assemble project", zap.Uint("project_id", project.ID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}
	return c.JSON(http.StatusOK, payload)
}

// ListProject returns the full assembly of every active project
func ListProject(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProjectOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var projects []model.Project
	if result := database.GetDB().Where("status = ?", true).Find(&projects); result.Error != nil {
		log.Error("Failed to list projects", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve projects"})
	}
	prometheus.UpdateActiveProjects(len(projects))

	list := make([]echo.Map, 0, len(projects))
	for i := range projects {
		payload, err := assembleProject(database.GetDB(), &projects[i])
		if err != nil {
			log.Error("Failed to assemble project", zap.Uint("project_id", projects[i].ID), zap.Error(err))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		list = append(list, payload)
	}

	return c.JSON(http.StatusOK, list)
}

// parseInformation converts the wire payload into a model row. A nil
// payload still yields a row; every project owns exactly one.
func parseInformation(payload *informationPayload) (*model.Information, error) {
	info := &model.Information{}
	if payload == nil {
		return info, nil
	}

	info.CostEstimate = payload.CostEstimate
	info.CurrentCost = payload.CurrentCost

	var err error
	if info.StartDate, err = model.ParseDatePtr(payload.StartDate); err != nil {
		return nil, err
	}
	if info.DeliveredDate, err = model.ParseDatePtr(payload.DeliveredDate); err != nil {
		return nil, err
	}
	if info.CurrentDate, err = model.ParseDatePtr(payload.CurrentDate); err != nil {
		return nil, err
	}
	return info, nil
}

// resolveCondition returns the referenced condition, creating a new one
// when the id is the zero sentinel
func resolveCondition(tx *gorm.DB, payload conditionPayload) (*model.Condition, error) {
	if payload.ID == 0 {
		condition := model.Condition{Name: payload.Name, Status: true}
		if result := tx.Create(&condition); result.Error != nil {
			return nil, result.Error
		}
		return &condition, nil
	}

	var condition model.Condition
	if result := tx.First(&condition, payload.ID); result.Error != nil {
		return nil, result.Error
	}
	return &condition, nil
}

func reconcileRanking(tx *gorm.DB, project *model.Project, payload rankingPayload) error {
	if payload.ID == 0 {
		condition, err := resolveCondition(tx, payload.Condition)
		if err != nil {
			return err
		}
		lastUpdate, err := model.ParseDatePtr(payload.LastUpdate)
		if err != nil {
			return err
		}
		ranking := model.Ranking{
			ProjectID:   project.ID,
			ConditionID: condition.ID,
			Rank:        payload.Rank,
			LastUpdate:  lastUpdate,
			Note:        payload.Note,
			Description: payload.Description,
			Status:      true,
		}
		return tx.Create(&ranking).Error
	}

	var ranking model.Ranking
	if result := tx.First(&ranking, payload.ID); result.Error != nil {
		return result.Error
	}

	if payload.Delete {
		return tx.Delete(&ranking).Error
	}

	condition, err := resolveCondition(tx, payload.Condition)
	if err != nil {
		return err
	}
	lastUpdate, err := model.ParseDatePtr(payload.LastUpdate)
	if err != nil {
		return err
	}

	ranking.ConditionID = condition.ID
	ranking.Rank = payload.Rank
	ranking.LastUpdate = lastUpdate
	ranking.Note = payload.Note
	ranking.Description = payload.Description
	return tx.Save(&ranking).Error
}

// assembleProject builds the shared project + client + information +
// timeline response, with the mean day-delta between consecutive dated
// timeline entries as average_time.
func assembleProject(db *gorm.DB, project *model.Project) (echo.Map, error) {
	var client model.Client
	if result := db.Where("project_id = ?", project.ID).First(&client); result.Error != nil {
		return nil, result.Error
	}

	var information *model.Information
	var info model.Information
	if result := db.Where("project_id = ?", project.ID).First(&info); result.Error == nil {
		information = &info
	}

	var rankings []model.Ranking
	if result := db.Preload("Condition").Where("project_id = ?", project.ID).Order("id").Find(&rankings); result.Error != nil {
		return nil, result.Error
	}

	timeline := make([]echo.Map, 0, len(rankings))
	dates := make([]*time.Time, 0, len(rankings))
	for _, ranking := range rankings {
		dates = append(dates, ranking.LastUpdate)
		timeline = append(timeline, echo.Map{
			"ranking": echo.Map{
				"id":          ranking.ID,
				"rank":        ranking.Rank,
				"last_update": model.FormatDatePtr(ranking.LastUpdate),
				"note":        ranking.Note,
				"description": ranking.Description,
				"condition": echo.Map{
					"id":   ranking.Condition.ID,
					"name": ranking.Condition.Name,
				},
			},
		})
	}

	payload := echo.Map{
		"project": echo.Map{
			"id":   project.ID,
			"name": project.Name,
			"key":  project.Key,
		},
		"client": echo.Map{
			"id":    client.ID,
			"name":  client.Name,
			"email": client.Email,
		},
		"timeline":     timeline,
		"average_time": dashboard.TimelineAverageDays(dates),
	}

	if information != nil {
		payload["information"] = echo.Map{
			"id":             information.ID,
			"cost_estimate":  information.CostEstimate,
			"current_cost":   information.CurrentCost,
			"start_date":     model.FormatDatePtr(information.StartDate),
			"delivered_date": model.FormatDatePtr(information.DeliveredDate),
			"current_date":   model.FormatDatePtr(information.CurrentDate),
		}
	}

	return payload, nil
}
