package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hrops-platform/scheduling-service/pkg/api"
	"github.com/hrops-platform/scheduling-service/pkg/kafka"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
	"github.com/hrops-platform/scheduling-service/pkg/metrics"
	"github.com/hrops-platform/scheduling-service/pkg/middleware"
	"github.com/hrops-platform/scheduling-service/pkg/mongodb"

	"github.com/hrops-platform/scheduling-service/internal/application"
	"github.com/hrops-platform/scheduling-service/internal/domain"
)

const serviceName = "scheduling-service"

// actorRoleHeader carries the caller's role, resolved upstream by the
// API gateway after authentication.
const actorRoleHeader = "X-Actor-Role"

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8011"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "scheduling_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerGroup: "scheduling-service",
			ClientID:      "scheduling-service",
			BatchSize:     100,
			BatchTimeout:  10 * time.Millisecond,
			RequiredAcks:  -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// actorRole resolves the caller's role from the request header. Unknown
// or missing values fall back to the lowest privilege.
func actorRole(c *gin.Context) domain.Role {
	role := domain.Role(strings.ToLower(c.GetHeader(actorRoleHeader)))
	if !role.IsValid() {
		return domain.RoleEmployee
	}
	return role
}

// weekParam parses the ?week= query parameter and normalizes it to the
// Monday of that week. A missing value defaults to the current week.
func weekParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("week")
	if raw == "" {
		return domain.WeekStart(time.Now()), true
	}
	week, err := domain.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week parameter, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return domain.WeekStart(week), true
}

func dateParam(c *gin.Context, raw, name string) (time.Time, bool) {
	date, err := domain.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ", expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func registerRoutes(
	router *gin.Engine,
	scheduling *application.SchedulingApplicationService,
	hourBank *application.HourBankApplicationService,
	reporting *application.ReportingApplicationService,
	hrSync *application.HRSyncApplicationService,
	m *metrics.Metrics,
	logger *logging.Logger,
) {
	apiV1 := router.Group("/api/v1")

	employees := apiV1.Group("/employees")
	{
		employees.POST("", createEmployeeHandler(scheduling, logger))
		employees.GET("", listEmployeesHandler(scheduling, logger))
		employees.GET("/:employeeId", getEmployeeHandler(scheduling, logger))
		employees.PUT("/:employeeId", updateEmployeeHandler(scheduling, logger))
		employees.DELETE("/:employeeId", deactivateEmployeeHandler(scheduling, logger))
		employees.POST("/sync", syncEmployeesHandler(hrSync, logger))
		employees.GET("/:employeeId/compliance", complianceHandler(scheduling, m, logger))
		employees.GET("/:employeeId/hour-bank", employeeReportHandler(hourBank, logger))
	}

	stores := apiV1.Group("/stores")
	{
		stores.POST("", createStoreHandler(scheduling, logger))
		stores.GET("", listStoresHandler(scheduling, logger))
		stores.GET("/:storeId", getStoreHandler(scheduling, logger))
		stores.PUT("/:storeId", updateStoreHandler(scheduling, logger))
		stores.GET("/:storeId/requirements", listRequirementsHandler(scheduling, logger))
		stores.POST("/:storeId/requirements", saveRequirementHandler(scheduling, logger))
		stores.POST("/:storeId/requirements/duplicate", duplicateRequirementsHandler(scheduling, logger))
		stores.GET("/:storeId/coverage", coverageHandler(scheduling, m, logger))
		stores.GET("/:storeId/validation-report", validationReportHandler(reporting, logger))
		stores.GET("/:storeId/hour-bank/summary", storeSummaryHandler(hourBank, logger))
	}

	events := apiV1.Group("/weighting-events")
	{
		events.POST("", createWeightingEventHandler(scheduling, logger))
		events.GET("", listWeightingEventsHandler(scheduling, logger))
	}

	shifts := apiV1.Group("/shifts")
	{
		shifts.POST("", createShiftHandler(scheduling, m, logger))
		shifts.GET("", listShiftsHandler(scheduling, logger))
		shifts.GET("/:shiftId", getShiftHandler(scheduling, logger))
		shifts.PUT("/:shiftId", updateShiftHandler(scheduling, logger))
		shifts.DELETE("/:shiftId", deleteShiftHandler(scheduling, logger))
		shifts.POST("/:shiftId/transition", transitionShiftHandler(scheduling, m, logger))
		shifts.POST("/transition", bulkTransitionHandler(scheduling, m, logger))
	}

	bank := apiV1.Group("/hour-bank")
	{
		bank.POST("/calculate", calculateHourBankHandler(hourBank, m, logger))
		bank.POST("/recalculate", recalculateHourBankHandler(hourBank, logger))
		bank.GET("/statistics", statisticsHandler(hourBank, logger))
		bank.POST("/requests", createRecoveryRequestHandler(hourBank, m, logger))
		bank.POST("/requests/:requestId/decide", decideRecoveryRequestHandler(hourBank, m, logger))
		bank.POST("/requests/:requestId/use", useRecoveryRequestHandler(hourBank, m, logger))
		bank.DELETE("/reset", resetHourBankHandler(hourBank, logger))
	}
}

func createEmployeeHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			EmployeeID    string  `json:"employeeId" binding:"required,employee_id"`
			Name          string  `json:"name" binding:"required"`
			Email         string  `json:"email" binding:"omitempty,email"`
			Position      string  `json:"position"`
			Role          string  `json:"role" binding:"omitempty,role"`
			ContractHours float64 `json:"contractHours" binding:"required,gt=0"`
			FixedHours    float64 `json:"fixedHours" binding:"gte=0"`
			StoreID       string  `json:"storeId"`
		}
		if appErr := api.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.CreateEmployeeCommand{
			EmployeeID:    req.EmployeeID,
			Name:          req.Name,
			Email:         req.Email,
			Position:      req.Position,
			Role:          domain.Role(req.Role),
			ContractHours: req.ContractHours,
			FixedHours:    req.FixedHours,
			StoreID:       req.StoreID,
		}

		employee, err := service.CreateEmployee(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, employee)
	}
}

func listEmployeesHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		page := api.ParsePagination(c)
		query := application.ListEmployeesQuery{
			StoreID: c.Query("storeId"),
			Limit:   int(page.GetLimit()),
			Offset:  int(page.GetOffset()),
		}

		employees, err := service.ListEmployees(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, employees)
	}
}

func getEmployeeHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		employeeID := c.Param("employeeId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"employee.id": employeeID,
		})

		employee, err := service.GetEmployee(c.Request.Context(), application.GetEmployeeQuery{EmployeeID: employeeID})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, employee)
	}
}

func updateEmployeeHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Name          string  `json:"name"`
			ContractHours float64 `json:"contractHours"`
			FixedHours    float64 `json:"fixedHours"`
			StoreID       string  `json:"storeId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.UpdateEmployeeCommand{
			EmployeeID:    c.Param("employeeId"),
			Name:          req.Name,
			ContractHours: req.ContractHours,
			FixedHours:    req.FixedHours,
			StoreID:       req.StoreID,
		}

		employee, err := service.UpdateEmployee(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, employee)
	}
}

func deactivateEmployeeHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetEmployeeQuery{EmployeeID: c.Param("employeeId")}
		if err := service.DeactivateEmployee(c.Request.Context(), query); err != nil {
			responder.RespondWithError(err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func syncEmployeesHandler(service *application.HRSyncApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		result, err := service.SyncEmployees(c.Request.Context(), application.SyncEmployeesCommand{ActorRole: actorRole(c)})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func complianceHandler(service *application.SchedulingApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		week, ok := weekParam(c)
		if !ok {
			return
		}

		query := application.ComplianceQuery{
			EmployeeID: c.Param("employeeId"),
			WeekStart:  week,
		}
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"employee.id": query.EmployeeID,
			"week.start":  week.Format("2006-01-02"),
		})

		start := time.Now()
		report, err := service.GetCompliance(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		m.RecordValidationRun("compliance", string(report.Status), time.Since(start))
		for _, v := range report.Violations {
			m.RecordViolation(string(v.Rule), string(v.Severity))
		}

		c.JSON(http.StatusOK, report)
	}
}

func employeeReportHandler(service *application.HourBankApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.EmployeeReportQuery{
			EmployeeID: c.Param("employeeId"),
			StoreID:    c.Query("storeId"),
		}

		report, err := service.GetEmployeeReport(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

func createStoreHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			StoreID      string              `json:"storeId" binding:"required,store_id"`
			Name         string              `json:"name" binding:"required"`
			OpeningHours domain.OpeningHours `json:"openingHours"`
			IsDefault    bool                `json:"isDefault"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.CreateStoreCommand{
			StoreID:      req.StoreID,
			Name:         req.Name,
			OpeningHours: req.OpeningHours,
			IsDefault:    req.IsDefault,
		}

		store, err := service.CreateStore(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, store)
	}
}

func listStoresHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		page := api.ParsePagination(c)
		stores, err := service.ListStores(c.Request.Context(), application.ListStoresQuery{
			Limit:  int(page.GetLimit()),
			Offset: int(page.GetOffset()),
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, stores)
	}
}

func getStoreHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		store, err := service.GetStore(c.Request.Context(), application.GetStoreQuery{StoreID: c.Param("storeId")})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, store)
	}
}

func updateStoreHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Name         string               `json:"name"`
			OpeningHours domain.OpeningHours  `json:"openingHours"`
			WeekOverride *domain.WeekOverride `json:"weekOverride"`
			ClosureDay   *domain.ClosureDay   `json:"closureDay"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.UpdateStoreCommand{
			StoreID:      c.Param("storeId"),
			Name:         req.Name,
			OpeningHours: req.OpeningHours,
			WeekOverride: req.WeekOverride,
			ClosureDay:   req.ClosureDay,
		}

		store, err := service.UpdateStore(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, store)
	}
}

func listRequirementsHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		reqs, err := service.ListRequirements(c.Request.Context(), application.GetStoreQuery{StoreID: c.Param("storeId")})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, reqs)
	}
}

func saveRequirementHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			RequirementID string                   `json:"requirementId"`
			DayOfWeek     string                   `json:"dayOfWeek" binding:"required"`
			Roles         []domain.RoleRequirement `json:"roles" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.SaveRequirementCommand{
			RequirementID: req.RequirementID,
			StoreID:       c.Param("storeId"),
			DayOfWeek:     strings.ToLower(req.DayOfWeek),
			Roles:         req.Roles,
		}

		requirement, err := service.SaveRequirement(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, requirement)
	}
}

func duplicateRequirementsHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			SourceDay  string   `json:"sourceDay" binding:"required"`
			TargetDays []string `json:"targetDays" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		targets := make([]string, 0, len(req.TargetDays))
		for _, day := range req.TargetDays {
			targets = append(targets, strings.ToLower(day))
		}

		cmd := application.DuplicateRequirementsCommand{
			StoreID:    c.Param("storeId"),
			SourceDay:  strings.ToLower(req.SourceDay),
			TargetDays: targets,
		}

		reqs, err := service.DuplicateRequirements(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, reqs)
	}
}

func coverageHandler(service *application.SchedulingApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		week, ok := weekParam(c)
		if !ok {
			return
		}

		query := application.CoverageQuery{
			StoreID:   c.Param("storeId"),
			WeekStart: week,
		}
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"store.id":   query.StoreID,
			"week.start": week.Format("2006-01-02"),
		})

		start := time.Now()
		report, err := service.GetCoverage(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		m.RecordValidationRun("coverage", report.Grade, time.Since(start))
		middleware.GetEnrichedLogger(c, logger).Debug("Coverage evaluated",
			"storeId", query.StoreID, "grade", report.Grade, "score", report.Score)

		c.JSON(http.StatusOK, report)
	}
}

func validationReportHandler(service *application.ReportingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		week, ok := weekParam(c)
		if !ok {
			return
		}

		query := application.ValidationReportQuery{
			StoreID:   c.Param("storeId"),
			WeekStart: week,
		}

		report, err := service.BuildValidationReport(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

func storeSummaryHandler(service *application.HourBankApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		summary, err := service.GetStoreSummary(c.Request.Context(), application.StoreSummaryQuery{StoreID: c.Param("storeId")})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}

func createWeightingEventHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Name       string   `json:"name" binding:"required"`
			StartDate  string   `json:"startDate" binding:"required,iso_date"`
			EndDate    string   `json:"endDate" binding:"required,iso_date"`
			Multiplier float64  `json:"multiplier" binding:"required,gte=0.1,lte=3.0"`
			DaysOfWeek []string `json:"daysOfWeek"`
			StoreIDs   []string `json:"storeIds"`
		}
		if appErr := api.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		startDate, ok := dateParam(c, req.StartDate, "startDate")
		if !ok {
			return
		}
		endDate, ok := dateParam(c, req.EndDate, "endDate")
		if !ok {
			return
		}

		cmd := application.CreateWeightingEventCommand{
			Name:       req.Name,
			StartDate:  startDate,
			EndDate:    endDate,
			Multiplier: req.Multiplier,
			DaysOfWeek: req.DaysOfWeek,
			StoreIDs:   req.StoreIDs,
		}

		event, err := service.CreateWeightingEvent(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, event)
	}
}

func listWeightingEventsHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		week, ok := weekParam(c)
		if !ok {
			return
		}

		events, err := service.ListWeightingEvents(c.Request.Context(), c.Query("storeId"), week, week.AddDate(0, 0, 6))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, events)
	}
}

func createShiftHandler(service *application.SchedulingApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			EmployeeID   string `json:"employeeId" binding:"required,employee_id"`
			StoreID      string `json:"storeId"`
			RoleName     string `json:"roleName"`
			Date         string `json:"date" binding:"required,iso_date"`
			StartTime    string `json:"startTime" binding:"required,clock_time"`
			EndTime      string `json:"endTime" binding:"required,clock_time"`
			BreakMinutes int    `json:"breakMinutes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		date, ok := dateParam(c, req.Date, "date")
		if !ok {
			return
		}

		cmd := application.CreateShiftCommand{
			EmployeeID:   req.EmployeeID,
			StoreID:      req.StoreID,
			RoleName:     req.RoleName,
			Date:         date,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			BreakMinutes: req.BreakMinutes,
			ActorRole:    actorRole(c),
		}

		shift, err := service.CreateShift(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		m.RecordShiftCreated(shift.StoreID)

		c.JSON(http.StatusCreated, shift)
	}
}

func listShiftsHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		week, ok := weekParam(c)
		if !ok {
			return
		}

		query := application.ListShiftsQuery{
			StoreID:   c.Query("storeId"),
			WeekStart: week,
		}

		shifts, err := service.ListShifts(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, shifts)
	}
}

func getShiftHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		shift, err := service.GetShift(c.Request.Context(), c.Param("shiftId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, shift)
	}
}

func updateShiftHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			StartTime    string `json:"startTime" binding:"required,clock_time"`
			EndTime      string `json:"endTime" binding:"required,clock_time"`
			BreakMinutes int    `json:"breakMinutes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.UpdateShiftCommand{
			ShiftID:      c.Param("shiftId"),
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			BreakMinutes: req.BreakMinutes,
			ActorRole:    actorRole(c),
		}

		shift, err := service.UpdateShift(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, shift)
	}
}

func deleteShiftHandler(service *application.SchedulingApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.DeleteShiftCommand{
			ShiftID:   c.Param("shiftId"),
			ActorRole: actorRole(c),
		}
		if err := service.DeleteShift(c.Request.Context(), cmd); err != nil {
			responder.RespondWithError(err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func transitionShiftHandler(service *application.SchedulingApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Target string `json:"target" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		shiftID := c.Param("shiftId")

		// Fetched before the transition so the metric can carry the
		// source state.
		var fromState string
		if current, err := service.GetShift(c.Request.Context(), shiftID); err == nil {
			fromState = current.ValidationStatus
		}

		cmd := application.TransitionShiftCommand{
			ShiftID:   shiftID,
			Target:    domain.ValidationStatus(req.Target),
			ActorRole: actorRole(c),
		}

		shift, err := service.TransitionShift(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		m.RecordWorkflowTransition(fromState, req.Target)

		c.JSON(http.StatusOK, shift)
	}
}

func bulkTransitionHandler(service *application.SchedulingApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			StoreID   string `json:"storeId" binding:"required,store_id"`
			WeekStart string `json:"weekStart" binding:"required,iso_date"`
			Target    string `json:"target" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		weekStart, ok := dateParam(c, req.WeekStart, "weekStart")
		if !ok {
			return
		}

		cmd := application.BulkTransitionCommand{
			StoreID:   req.StoreID,
			WeekStart: domain.WeekStart(weekStart),
			Target:    domain.ValidationStatus(req.Target),
			ActorRole: actorRole(c),
		}

		shifts, err := service.BulkTransition(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		for range shifts {
			m.RecordWorkflowTransition("bulk", req.Target)
		}

		c.JSON(http.StatusOK, shifts)
	}
}

func calculateHourBankHandler(service *application.HourBankApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			StoreID          string   `json:"storeId"`
			EmployeeIDs      []string `json:"employeeIds"`
			From             string   `json:"from" binding:"required,iso_date"`
			To               string   `json:"to" binding:"required,iso_date"`
			OnlyLockedShifts bool     `json:"onlyLockedShifts"`
			Statuses         []string `json:"statuses" binding:"omitempty,dive,oneof=scheduled confirmed completed cancelled"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		from, ok := dateParam(c, req.From, "from")
		if !ok {
			return
		}
		to, ok := dateParam(c, req.To, "to")
		if !ok {
			return
		}

		statuses := make([]domain.ShiftStatus, 0, len(req.Statuses))
		for _, s := range req.Statuses {
			statuses = append(statuses, domain.ShiftStatus(s))
		}

		cmd := application.CalculateHourBankCommand{
			StoreID:          req.StoreID,
			EmployeeIDs:      req.EmployeeIDs,
			From:             from,
			To:               to,
			OnlyLockedShifts: req.OnlyLockedShifts,
			Statuses:         statuses,
			ActorRole:        actorRole(c),
		}

		result, err := service.Calculate(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		for i := 0; i < result.EntriesCreated; i++ {
			m.RecordHourBankEntry("weekly")
		}

		c.JSON(http.StatusOK, result)
	}
}

func recalculateHourBankHandler(service *application.HourBankApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			StoreID string `json:"storeId"`
			To      string `json:"to" binding:"required,iso_date"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		to, ok := dateParam(c, req.To, "to")
		if !ok {
			return
		}

		cmd := application.RecalculateAllCommand{
			StoreID:   req.StoreID,
			To:        to,
			ActorRole: actorRole(c),
		}

		result, err := service.RecalculateAll(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func statisticsHandler(service *application.HourBankApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		stats, err := service.GetStatistics(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func createRecoveryRequestHandler(service *application.HourBankApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			EmployeeID     string  `json:"employeeId" binding:"required,employee_id"`
			StoreID        string  `json:"storeId" binding:"required,store_id"`
			RequestedHours float64 `json:"requestedHours" binding:"required,gt=0"`
			ScheduledDate  string  `json:"scheduledDate" binding:"required,iso_date"`
			Reason         string  `json:"reason"`
		}
		if appErr := api.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		scheduledDate, ok := dateParam(c, req.ScheduledDate, "scheduledDate")
		if !ok {
			return
		}

		cmd := application.CreateRecoveryRequestCommand{
			EmployeeID:     req.EmployeeID,
			StoreID:        req.StoreID,
			RequestedHours: req.RequestedHours,
			ScheduledDate:  scheduledDate,
			Reason:         req.Reason,
		}

		request, err := service.CreateRecoveryRequest(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		m.RecordRecoveryRequest(request.Status)

		c.JSON(http.StatusCreated, request)
	}
}

func decideRecoveryRequestHandler(service *application.HourBankApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Approve   bool   `json:"approve"`
			DecidedBy string `json:"decidedBy" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.DecideRecoveryRequestCommand{
			RequestID: c.Param("requestId"),
			Approve:   req.Approve,
			DecidedBy: req.DecidedBy,
			ActorRole: actorRole(c),
		}

		request, err := service.DecideRecoveryRequest(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		m.RecordRecoveryRequest(request.Status)

		c.JSON(http.StatusOK, request)
	}
}

func useRecoveryRequestHandler(service *application.HourBankApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.UseRecoveryRequestCommand{
			RequestID: c.Param("requestId"),
			ActorRole: actorRole(c),
		}

		request, err := service.UseRecoveryRequest(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		m.RecordRecoveryRequest(request.Status)

		c.JSON(http.StatusOK, request)
	}
}

func resetHourBankHandler(service *application.HourBankApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.ResetHourBankCommand{
			StoreID:   c.Query("storeId"),
			ActorRole: actorRole(c),
		}

		result, err := service.Reset(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
