package handlers

import (
	"log"
	"time"

	"droptrack/internal/middleware"
	"droptrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProgressHandler handles the dashboard and weekly-progress routes.
type ProgressHandler struct {
	progressService *services.ProgressService
	accountService  *services.AccountService
	caseService     *services.CaseService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(
	progressService *services.ProgressService,
	accountService *services.AccountService,
	caseService *services.CaseService,
) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		accountService:  accountService,
		caseService:     caseService,
	}
}

// RegisterRoutes registers the dashboard and progress routes. All of them
// require a session.
func (h *ProgressHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleDashboard)
	router.Post("/add_progress", h.HandleAddProgress)
	router.Post("/update_progress/:id", h.HandleUpdateProgress)
	router.Get("/get_week_data", h.HandleGetWeekData)
}

// HandleDashboard returns the current and previous week views plus the data
// backing the account and case dropdowns.
func (h *ProgressHandler) HandleDashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	currentWeek := services.MostRecentWeekStart(time.Now())
	lastWeek := services.PreviousWeekStart(currentWeek)

	currentView, err := h.progressService.BuildWeekView(user.ID, currentWeek)
	if err != nil {
		log.Printf("Error building current week view for user %s: %v", user.ID, err)
		return errorResponse(c, err)
	}
	lastView, err := h.progressService.BuildWeekView(user.ID, lastWeek)
	if err != nil {
		log.Printf("Error building last week view for user %s: %v", user.ID, err)
		return errorResponse(c, err)
	}

	accounts, err := h.accountService.ListAccounts(user.ID)
	if err != nil {
		log.Printf("Error listing accounts for user %s: %v", user.ID, err)
		return errorResponse(c, err)
	}
	accountsForDropdown := make([]fiber.Map, 0, len(accounts))
	for _, acc := range accounts {
		accountsForDropdown = append(accountsForDropdown, fiber.Map{
			"_id":  acc.ID,
			"name": acc.AccountName,
		})
	}

	cases, err := h.caseService.ListCasesByReleaseDate()
	if err != nil {
		log.Printf("Error listing cases: %v", err)
		return errorResponse(c, err)
	}
	casesForDropdown := make([]fiber.Map, 0, len(cases))
	for _, item := range cases {
		casesForDropdown = append(casesForDropdown, fiber.Map{
			"name": item.CaseName,
		})
	}

	return c.JSON(fiber.Map{
		"current_week_start":        currentView.WeekStart,
		"current_week_data":         currentView.Rows,
		"current_week_total_value":  currentView.TotalValue,
		"last_week_start":           lastView.WeekStart,
		"last_week_data":            lastView.Rows,
		"last_week_total_value":     lastView.TotalValue,
		"user_accounts_for_dropdown": accountsForDropdown,
		"cases":                     casesForDropdown,
	})
}

// ProgressRequest is the body for /add_progress.
type ProgressRequest struct {
	AccountDocID   string `json:"account_doc_id" form:"account_doc_id"`
	WeekStart      string `json:"week_start" form:"week_start"`
	DropFarmed     string `json:"drop_farmed" form:"drop_farmed"`
	CaseName       string `json:"case_name" form:"case_name"`
	AdditionalDrop string `json:"additional_drop" form:"additional_drop"`
}

// checkboxOn interprets an HTML checkbox value.
func checkboxOn(v string) bool {
	return v == "on" || v == "true" || v == "1"
}

// HandleAddProgress upserts the week's progress for one account.
func (h *ProgressHandler) HandleAddProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing progress request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if req.AccountDocID == "" || req.WeekStart == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing required fields (Account or Week Start)",
		})
	}

	weekStart, err := services.ParseWeekStart(req.WeekStart)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid Date format. Please use YYYY-MM-DD.",
		})
	}

	outcome, entry, err := h.progressService.SaveProgress(
		user.ID, req.AccountDocID, weekStart,
		checkboxOn(req.DropFarmed), req.CaseName, req.AdditionalDrop,
	)
	if err != nil {
		log.Printf("Error saving progress for user %s: %v", user.ID, err)
		return errorResponse(c, err)
	}

	switch outcome {
	case services.OutcomeCreated:
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":     "Progress saved successfully.",
			"progress_id": entry.ID,
		})
	case services.OutcomeUpdated:
		return c.JSON(fiber.Map{
			"message":     "Progress updated successfully.",
			"progress_id": entry.ID,
		})
	default:
		return c.JSON(fiber.Map{
			"message":     "Progress already recorded with this information.",
			"progress_id": entry.ID,
		})
	}
}

// UpdateProgressRequest is the body for /update_progress/:id.
type UpdateProgressRequest struct {
	DropFarmed     string `json:"edit_drop_farmed" form:"edit_drop_farmed"`
	CaseName       string `json:"edit_case_name" form:"edit_case_name"`
	AdditionalDrop string `json:"edit_additional_drop" form:"edit_additional_drop"`
}

// HandleUpdateProgress edits an existing progress entry by row id.
func (h *ProgressHandler) HandleUpdateProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	progressID := c.Params("id")

	var req UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update progress request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	outcome, err := h.progressService.UpdateProgressByID(
		user.ID, progressID,
		checkboxOn(req.DropFarmed), req.CaseName, req.AdditionalDrop,
	)
	if err != nil {
		log.Printf("Error updating progress %s for user %s: %v", progressID, user.ID, err)
		return errorResponse(c, err)
	}

	if outcome == services.OutcomeUnchanged {
		return c.JSON(fiber.Map{
			"message": "No changes detected in progress.",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Progress updated successfully.",
	})
}

// HandleGetWeekData returns the aggregated view for an arbitrary week.
func (h *ProgressHandler) HandleGetWeekData(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	dateStr := c.Query("date")
	if dateStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Date parameter is required",
		})
	}

	weekStart, err := services.ParseWeekStart(dateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date format. Use YYYY-MM-DD.",
		})
	}

	view, err := h.progressService.BuildWeekView(user.ID, weekStart)
	if err != nil {
		log.Printf("Error fetching week data for %q for user %s: %v", dateStr, user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch data",
		})
	}

	return c.JSON(fiber.Map{
		"progress":    view.Rows,
		"total_value": view.TotalValue,
	})
}
