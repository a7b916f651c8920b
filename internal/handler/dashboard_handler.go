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

// activeInformations loads the information rows of every active project
func activeInformations(db *gorm.DB) ([]model.Information, error) {
	var projects []model.Project
	if result := db.Where("status = ?", true).Find(&projects); result.Error != nil {
		return nil, result.Error
	}
	prometheus.UpdateActiveProjects(len(projects))

	if len(projects) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(projects))
	for _, project := range projects {
		ids = append(ids, project.ID)
	}

	var infos []model.Information
	if result := db.Where("project_id IN ?", ids).Find(&infos); result.Error != nil {
		return nil, result.Error
	}
	return infos, nil
}

// DeliveryProjects returns per-month delivery counts for one year
func DeliveryProjects(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDashboardQuery("delivery_projects")

	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	infos, err := activeInformations(database.GetDB())
	if err != nil {
		log.Error("Failed to load project information", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute deliveries"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"year":       year,
		"deliveries": dashboard.DeliveriesByMonth(infos, year),
	})
}

// ProjectCost returns the cost pair of each requested project, failing on
// the first id that does not exist
func ProjectCost(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDashboardQuery("cost")

	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse cost request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": requiredFieldErrors(map[string]bool{
			"ids": true,
		})})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	costs, err := projectCosts(database.GetDB(), req.IDs)
	if err != nil {
		log.Error("Project not found for cost report", zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}

	return c.JSON(http.StatusOK, costs)
}

func projectCosts(db *gorm.DB, ids []uint) ([]echo.Map, error) {
	costs := make([]echo.Map, 0, len(ids))
	for _, id := range ids {
		var project model.Project
		if result := db.First(&project, id); result.Error != nil {
			return nil, result.Error
		}

		var info model.Information
		entry := echo.Map{
			"project": echo.Map{
				"id":   project.ID,
				"name": project.Name,
			},
			"cost_estimate": nil,
			"current_cost":  nil,
		}
		if result := db.Where("project_id = ?", project.ID).First(&info); result.Error == nil {
			entry["cost_estimate"] = info.CostEstimate
			entry["current_cost"] = info.CurrentCost
		}
		costs = append(costs, entry)
	}
	return costs, nil
}

// PercentageProjectCost returns the share of active projects on budget
func PercentageProjectCost(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDashboardQuery("percentage_project_cost")

	defer prometheus.TrackDBOperation("query")(time.Now())
	infos, err := activeInformations(database.GetDB())
	if err != nil {
		log.Error("Failed to load project information", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute cost percentage"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"percentage": dashboard.OnBudgetPercentage(infos),
	})
}

// AverageProjectCost returns the mean estimate and current cost
func AverageProjectCost(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDashboardQuery("average_project_cost")

	defer prometheus.TrackDBOperation("query")(time.Now())
	infos, err := activeInformations(database.GetDB())
	if err != nil {
		log.Error("Failed to load project information", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute average cost"})
	}

	avgEstimate, avgCurrent := dashboard.AverageCosts(infos)
	return c.JSON(http.StatusOK, echo.Map{
		"average_cost_estimate": avgEstimate,
		"average_current_cost":  avgCurrent,
	})
}

// AverageTimeProject returns mean planned and elapsed durations in days
func AverageTimeProject(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDashboardQuery("average_time_project")

	defer prometheus.TrackDBOperation("query")(time.Now())
	infos, err := activeInformations(database.GetDB())
	if err != nil {
		log.Error("Failed to load project information", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute average time"})
	}

	avgDelivery, avgElapsed := dashboard.AverageTimes(infos)
	return c.JSON(http.StatusOK, echo.Map{
		"average_delivery_days": avgDelivery,
		"average_elapsed_days":  avgElapsed,
	})
}

// PercentageProjectsDelivered returns the share of active projects still on
// schedule
func PercentageProjectsDelivered(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDashboardQuery("percentage_projects_delivered")

	defer prometheus.TrackDBOperation("query")(time.Now())
	infos, err := activeInformations(database.GetDB())
	if err != nil {
		log.Error("Failed to load project information", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute delivery percentage"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"percentage": dashboard.OnSchedulePercentage(infos),
	})
}

// Dashboard merges every metric into one object keyed by metric name. The
// delivery grouping defaults to the current year unless ?year= is given.
func Dashboard(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDashboardQuery("dashboard")

	year := time.Now().Year()
	if param := c.QueryParam("year"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
		}
		year = parsed
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	db := database.GetDB()
	infos, err := activeInformations(db)
	if err != nil {
		log.Error("Failed to load project information", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute dashboard"})
	}

	ids := make([]uint, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ProjectID)
	}
	costs, err := projectCosts(db, ids)
	if err != nil {
		log.Error("Failed to load project costs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute dashboard"})
	}

	avgEstimate, avgCurrent := dashboard.AverageCosts(infos)
	avgDelivery, avgElapsed := dashboard.AverageTimes(infos)

	return c.JSON(http.StatusOK, echo.Map{
		"delivery_projects": echo.Map{
			"year":       year,
			"deliveries": dashboard.DeliveriesByMonth(infos, year),
		},
		"cost": costs,
		"percentage_project_cost": echo.Map{
			"percentage": dashboard.OnBudgetPercentage(infos),
		},
		"average_project_cost": echo.Map{
			"average_cost_estimate": avgEstimate,
			"average_current_cost":  avgCurrent,
		},
		"average_time_project": echo.Map{
			"average_delivery_days": avgDelivery,
			"average_elapsed_days":  avgElapsed,
		},
		"percentage_projects_delivered": echo.Map{
			"percentage": dashboard.OnSchedulePercentage(infos),
		},
	})
}
