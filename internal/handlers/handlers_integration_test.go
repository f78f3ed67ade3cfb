package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"droptrack/internal/handlers"
	"droptrack/internal/middleware"
	"droptrack/internal/models"
	"droptrack/internal/repositories"
	"droptrack/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testInviteCode = "friends2024"

// setupApp builds the full route tree over a fresh in-memory database,
// mirroring the wiring in main.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.TrackedAccount{},
		&models.CaseItem{},
		&models.ProgressEntry{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	accountRepo := repositories.NewGORMAccountRepository(db)
	caseRepo := repositories.NewGORMCaseRepository(db)
	progressRepo := repositories.NewGORMProgressRepository(db)

	authService := services.NewAuthService(userRepo, "test_secret", []string{testInviteCode})
	accountService := services.NewAccountService(accountRepo)
	caseService := services.NewCaseService(caseRepo)
	progressService := services.NewProgressService(progressRepo, accountRepo, caseRepo, nil)

	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(accountService)
	progressHandler := handlers.NewProgressHandler(progressService, accountService, caseService)
	adminHandler := handlers.NewAdminHandler(caseService)

	app := fiber.New()
	authHandler.RegisterRoutes(app)

	protected := app.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protected)
	accountHandler.RegisterRoutes(protected)
	progressHandler.RegisterRoutes(protected)

	admin := protected.Group("", middleware.RoleRequired(models.RoleAdmin))
	adminHandler.RegisterRoutes(admin)

	return app, db
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", raw, err)
	}
	return body
}

// registerAndLogin creates a user through the public routes and returns the
// session cookie to attach to subsequent requests.
func registerAndLogin(t *testing.T, app *fiber.App, username string) *http.Cookie {
	t.Helper()

	resp, err := app.Test(formRequest("POST", "/register", url.Values{
		"username":         {username},
		"password":         {"password123"},
		"confirm_password": {"password123"},
		"invite_code":      {testInviteCode},
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(formRequest("POST", "/login", url.Values{
		"username": {username},
		"password": {"password123"},
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := setupApp(t)

	t.Run("Register rejects a bad invite code", func(t *testing.T) {
		resp, err := app.Test(formRequest("POST", "/register", url.Values{
			"username":         {"alice"},
			"password":         {"password123"},
			"confirm_password": {"password123"},
			"invite_code":      {"wrong"},
		}), -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Register rejects mismatched passwords", func(t *testing.T) {
		resp, err := app.Test(formRequest("POST", "/register", url.Values{
			"username":         {"alice"},
			"password":         {"password123"},
			"confirm_password": {"different1"},
			"invite_code":      {testInviteCode},
		}), -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Register then login succeeds", func(t *testing.T) {
		resp, err := app.Test(formRequest("POST", "/register", url.Values{
			"username":         {"alice"},
			"password":         {"password123"},
			"confirm_password": {"password123"},
			"invite_code":      {testInviteCode},
		}), -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		resp, err = app.Test(formRequest("POST", "/login", url.Values{
			"username": {"alice"},
			"password": {"password123"},
		}), -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Welcome back, alice!", body["message"])
	})

	t.Run("Register rejects a taken username", func(t *testing.T) {
		resp, err := app.Test(formRequest("POST", "/register", url.Values{
			"username":         {"alice"},
			"password":         {"password123"},
			"confirm_password": {"password123"},
			"invite_code":      {testInviteCode},
		}), -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("Login rejects a wrong password", func(t *testing.T) {
		resp, err := app.Test(formRequest("POST", "/login", url.Values{
			"username": {"alice"},
			"password": {"wrongpassword"},
		}), -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Login and register redirect when already authenticated", func(t *testing.T) {
		cookie := registerAndLogin(t, app, "bob")

		req := formRequest("POST", "/login", url.Values{
			"username": {"bob"},
			"password": {"password123"},
		})
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))

		req = formRequest("POST", "/register", url.Values{})
		req.AddCookie(cookie)
		resp, err = app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	})

	t.Run("Logout clears the session cookie", func(t *testing.T) {
		cookie := registerAndLogin(t, app, "carol")

		req := httptest.NewRequest("GET", "/logout", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		cleared := false
		for _, c := range resp.Cookies() {
			if c.Name == middleware.SessionCookieName && c.Value == "" {
				cleared = true
			}
		}
		assert.True(t, cleared)
	})
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app, _ := setupApp(t)

	for _, route := range []struct {
		method string
		target string
	}{
		{"GET", "/"},
		{"GET", "/manage_accounts"},
		{"POST", "/add_tracked_account"},
		{"POST", "/update_account_order"},
		{"POST", "/add_progress"},
		{"GET", "/get_week_data?date=2024-06-05"},
		{"GET", "/admin/cases"},
	} {
		resp, err := app.Test(httptest.NewRequest(route.method, route.target, nil), -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.target)
	}
}

func TestAccountLifecycle(t *testing.T) {
	app, _ := setupApp(t)
	cookie := registerAndLogin(t, app, "alice")

	addAccount := func(name, steamID string) *http.Response {
		req := formRequest("POST", "/add_tracked_account", url.Values{
			"account_name": {name},
			"steamid":      {steamID},
		})
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		return resp
	}

	listAccounts := func() []models.TrackedAccount {
		req := httptest.NewRequest("GET", "/manage_accounts", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		assert.NoError(t, err)
		var body struct {
			Accounts []models.TrackedAccount `json:"accounts"`
		}
		assert.NoError(t, json.Unmarshal(raw, &body))
		return body.Accounts
	}

	resp := addAccount("Main", "76561198000000001")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Account 'Main' added successfully.", body["message"])

	resp = addAccount("Alt", "76561198000000002")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	t.Run("Duplicate steamid is rejected", func(t *testing.T) {
		resp := addAccount("Main again", "76561198000000001")
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("Malformed steamid is rejected", func(t *testing.T) {
		resp := addAccount("Bad", "12345")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	accounts := listAccounts()
	assert.Len(t, accounts, 2)
	assert.Equal(t, "Main", accounts[0].AccountName)
	assert.Equal(t, "Alt", accounts[1].AccountName)

	t.Run("Reorder swaps the display order", func(t *testing.T) {
		req := jsonRequest("POST", "/update_account_order", fiber.Map{
			"ordered_ids": []string{accounts[1].ID, accounts[0].ID},
		})
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(2), body["matched"])
		assert.Equal(t, float64(2), body["submitted"])

		reordered := listAccounts()
		assert.Equal(t, "Alt", reordered[0].AccountName)
		assert.Equal(t, "Main", reordered[1].AccountName)
	})

	t.Run("Reorder without ordered_ids is a bad request", func(t *testing.T) {
		req := jsonRequest("POST", "/update_account_order", fiber.Map{})
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid data format received.", body["error"])
	})

	t.Run("Reorder with a malformed id is a bad request", func(t *testing.T) {
		req := jsonRequest("POST", "/update_account_order", fiber.Map{
			"ordered_ids": []string{"not-a-uuid"},
		})
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Edit renames an account", func(t *testing.T) {
		req := formRequest("POST", "/edit_tracked_account/"+accounts[0].ID, url.Values{
			"account_name": {"Renamed"},
			"steamid":      {"76561198000000001"},
		})
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Another user's account is invisible", func(t *testing.T) {
		otherCookie := registerAndLogin(t, app, "mallory")

		req := formRequest("POST", "/edit_tracked_account/"+accounts[0].ID, url.Values{
			"account_name": {"Hijacked"},
			"steamid":      {"76561198000000009"},
		})
		req.AddCookie(otherCookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		req = httptest.NewRequest("POST", "/delete_tracked_account/"+accounts[0].ID, nil)
		req.AddCookie(otherCookie)
		resp, err = app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("Delete removes the account", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/delete_tracked_account/"+accounts[1].ID, nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		assert.Len(t, listAccounts(), 1)
	})
}

func TestProgressFlow(t *testing.T) {
	app, db := setupApp(t)
	cookie := registerAndLogin(t, app, "alice")

	caseRepo := repositories.NewGORMCaseRepository(db)
	assert.NoError(t, caseRepo.Create(&models.CaseItem{CaseName: "Recoil Case", CasePrice: 1.23}))

	req := formRequest("POST", "/add_tracked_account", url.Values{
		"account_name": {"Main"},
		"steamid":      {"76561198000000001"},
	})
	req.AddCookie(cookie)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var addBody struct {
		Account models.TrackedAccount `json:"account"`
	}
	raw, _ := io.ReadAll(resp.Body)
	assert.NoError(t, json.Unmarshal(raw, &addBody))
	accountID := addBody.Account.ID
	assert.NotEmpty(t, accountID)

	saveProgress := func(form url.Values) *http.Response {
		req := formRequest("POST", "/add_progress", form)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		return resp
	}

	progressForm := url.Values{
		"account_doc_id": {accountID},
		"week_start":     {"2024-06-05"},
		"drop_farmed":    {"on"},
		"case_name":      {"Recoil Case"},
	}

	t.Run("First save creates", func(t *testing.T) {
		resp := saveProgress(progressForm)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Progress saved successfully.", body["message"])
	})

	t.Run("Identical save reports unchanged", func(t *testing.T) {
		resp := saveProgress(progressForm)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Progress already recorded with this information.", body["message"])
	})

	t.Run("Changed save reports updated", func(t *testing.T) {
		changed := url.Values{
			"account_doc_id":  {accountID},
			"week_start":      {"2024-06-05"},
			"drop_farmed":     {"on"},
			"case_name":       {"Recoil Case"},
			"additional_drop": {"Sticker capsule"},
		}
		resp := saveProgress(changed)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Progress updated successfully.", body["message"])
	})

	t.Run("Missing account or week start is a bad request", func(t *testing.T) {
		resp := saveProgress(url.Values{"week_start": {"2024-06-05"}})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Missing required fields (Account or Week Start)", body["message"])
	})

	t.Run("Week data sums farmed case values", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/get_week_data?date=2024-06-05", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, _ := io.ReadAll(resp.Body)
		var body struct {
			Progress   []models.WeekViewRow `json:"progress"`
			TotalValue float64              `json:"total_value"`
		}
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.Len(t, body.Progress, 1)
		assert.Equal(t, "Recoil Case", body.Progress[0].CaseName)
		assert.Equal(t, "Sticker capsule", body.Progress[0].AdditionalDrop)
		assert.InDelta(t, 1.23, body.Progress[0].CaseValue, 0.0001)
		assert.InDelta(t, 1.23, body.TotalValue, 0.0001)
	})

	t.Run("Week data for an empty week still lists every account", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/get_week_data?date=2024-05-29", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, _ := io.ReadAll(resp.Body)
		var body struct {
			Progress   []models.WeekViewRow `json:"progress"`
			TotalValue float64              `json:"total_value"`
		}
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.Len(t, body.Progress, 1)
		assert.Nil(t, body.Progress[0].ProgressID)
		assert.Equal(t, "N/A", body.Progress[0].CaseName)
		assert.Equal(t, "-", body.Progress[0].AdditionalDrop)
		assert.Zero(t, body.TotalValue)
	})

	t.Run("Week data without a date is a bad request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/get_week_data", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Date parameter is required", body["error"])
	})

	t.Run("Week data with a malformed date is a bad request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/get_week_data?date=06-05-2024", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Invalid date format. Use YYYY-MM-DD.", body["error"])
	})

	t.Run("Dashboard includes dropdown data", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		accounts, ok := body["user_accounts_for_dropdown"].([]interface{})
		assert.True(t, ok)
		assert.Len(t, accounts, 1)
		cases, ok := body["cases"].([]interface{})
		assert.True(t, ok)
		assert.Len(t, cases, 1)
		assert.NotEmpty(t, body["current_week_start"])
		assert.NotEmpty(t, body["last_week_start"])
	})

	t.Run("Saving against another user's account is rejected", func(t *testing.T) {
		otherCookie := registerAndLogin(t, app, "mallory")

		req := formRequest("POST", "/add_progress", progressForm)
		req.AddCookie(otherCookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAdminRoutes(t *testing.T) {
	app, db := setupApp(t)
	cookie := registerAndLogin(t, app, "alice")

	caseRepo := repositories.NewGORMCaseRepository(db)
	item := &models.CaseItem{CaseName: "Recoil Case", CasePrice: 0}
	assert.NoError(t, caseRepo.Create(item))

	t.Run("Regular users are forbidden", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/cases", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	// Promote the user directly in the database; there is no promotion route.
	err := db.Model(&models.User{}).Where("username = ?", "alice").Update("role", models.RoleAdmin).Error
	assert.NoError(t, err)

	t.Run("Admins can list cases", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/cases", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, _ := io.ReadAll(resp.Body)
		var body struct {
			Cases []models.CaseItem `json:"cases"`
		}
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.Len(t, body.Cases, 1)
		assert.Equal(t, "Recoil Case", body.Cases[0].CaseName)
	})

	t.Run("Price form updates prices", func(t *testing.T) {
		req := formRequest("POST", "/admin/cases", url.Values{
			"price_" + item.ID: {"1.23"},
			"unrelated_field":  {"ignored"},
		})
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		after, err := caseRepo.GetByID(item.ID)
		assert.NoError(t, err)
		assert.InDelta(t, 1.23, after.CasePrice, 0.0001)
	})

	t.Run("Unparseable prices store zero", func(t *testing.T) {
		req := formRequest("POST", "/admin/cases", url.Values{
			"price_" + item.ID: {"not-a-price"},
		})
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		after, err := caseRepo.GetByID(item.ID)
		assert.NoError(t, err)
		assert.Zero(t, after.CasePrice)
	})

	t.Run("Unknown case ids are skipped", func(t *testing.T) {
		req := formRequest("POST", "/admin/cases", url.Values{
			"price_" + uuid.NewString(): {"9.99"},
		})
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
