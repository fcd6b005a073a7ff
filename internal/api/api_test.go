package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"sprout/internal/api"
	"sprout/internal/auth"
	"sprout/internal/clock"
	"sprout/internal/database"
	"sprout/internal/demo"
	"sprout/internal/models"
	"sprout/internal/planner"
	"sprout/internal/species"
	"sprout/internal/store"

	"github.com/gofiber/fiber/v2"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func init() {
	if err := auth.Configure(auth.Settings{Secret: "test-secret-test-secret-test-secret"}); err != nil {
		panic(err)
	}
}

func setupTestDB(t *testing.T) *sql.DB {
	db, err := database.Initialize(":memory:", "")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func setupTestApp(db *sql.DB) *fiber.App {
	clk := clock.NewFixed(testNow)
	st := store.New(db)
	sp, _ := species.New("", "", 0, 0)
	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	app.Use(api.RequestID())
	api.SetupRoutes(app, &api.Deps{
		DB:      db,
		Store:   st,
		Planner: planner.New(st, clk, nil, planner.Settings{}),
		Demo:    demo.New(clk),
		Species: sp,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func register(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/api/auth/register", "", models.RegisterRequest{
		Username: username,
		Password: "password123",
	})
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d: %s", resp.StatusCode, body)
	}
	var authResp models.AuthResponse
	json.Unmarshal(body, &authResp)
	if authResp.Token == "" {
		t.Fatal("Expected token in response")
	}
	return authResp.Token
}

func createPlant(t *testing.T, app *fiber.App, token string, req models.CreatePlantRequest) models.Plant {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/api/plants/", token, req)
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d: %s", resp.StatusCode, body)
	}
	var p models.Plant
	json.Unmarshal(body, &p)
	return p
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)

	register(t, app, "testuser")

	resp, body := doJSON(t, app, "POST", "/api/auth/login", "", models.LoginRequest{
		Username: "testuser",
		Password: "password123",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var loginResp models.AuthResponse
	json.Unmarshal(body, &loginResp)
	if loginResp.Token == "" {
		t.Fatal("Expected token in response")
	}

	var refresh *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			refresh = c
		}
	}
	if refresh == nil {
		t.Fatal("Expected refresh cookie")
	}
	req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refresh.Name, Value: refresh.Value})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected refresh status 200, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "POST", "/api/auth/login", "", models.LoginRequest{
		Username: "testuser",
		Password: "wrong",
	})
	if resp.StatusCode != 401 {
		t.Fatalf("Expected status 401, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)

	resp, body := doJSON(t, app, "GET", "/api/plants", "", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("Expected status 401, got %d", resp.StatusCode)
	}
	var e map[string]any
	json.Unmarshal(body, &e)
	if e["error"] == nil {
		t.Fatalf("Expected error body, got %s", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("Expected request id header")
	}
}

func TestPlantLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := register(t, app, "testuser")

	resp, _ := doJSON(t, app, "POST", "/api/plants/", token, models.CreatePlantRequest{})
	if resp.StatusCode != 400 {
		t.Fatalf("Expected 400 for missing nickname, got %d", resp.StatusCode)
	}

	p := createPlant(t, app, token, models.CreatePlantRequest{Nickname: "Fern", WaterEvery: "7 days"})
	if p.ID == 0 || p.WaterEvery != "7 days" {
		t.Fatalf("Unexpected plant %+v", p)
	}

	fert := "2 weeks"
	resp, body := doJSON(t, app, "PUT", "/api/plants/"+strconv.Itoa(p.ID), token, models.UpdatePlantRequest{FertEvery: &fert})
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	var updated models.Plant
	json.Unmarshal(body, &updated)
	if updated.FertEvery != "2 weeks" || updated.Nickname != "Fern" {
		t.Fatalf("Unexpected update %+v", updated)
	}

	// Another user cannot see it.
	other := register(t, app, "neighbour")
	resp, _ = doJSON(t, app, "GET", "/api/plants/"+strconv.Itoa(p.ID), other, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("Expected 404 for foreign plant, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/plants/"+strconv.Itoa(p.ID), token, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200 on archive, got %d", resp.StatusCode)
	}
	_, body = doJSON(t, app, "GET", "/api/plants", token, nil)
	var plants []models.Plant
	json.Unmarshal(body, &plants)
	if len(plants) != 0 {
		t.Fatalf("Archived plant still listed: %+v", plants)
	}
}

func TestEventsAndTimeline(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := register(t, app, "testuser")
	p := createPlant(t, app, token, models.CreatePlantRequest{Nickname: "Fern", WaterEvery: "3 days"})

	resp, _ := doJSON(t, app, "POST", "/api/plants/"+strconv.Itoa(p.ID)+"/events", token, models.CreateEventRequest{Type: "repot"})
	if resp.StatusCode != 400 {
		t.Fatalf("Expected 400 for unknown type, got %d", resp.StatusCode)
	}
	resp, body := doJSON(t, app, "POST", "/api/plants/"+strconv.Itoa(p.ID)+"/events", token, models.CreateEventRequest{Type: "water"})
	if resp.StatusCode != 201 {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, body)
	}
	var ev models.CareEvent
	json.Unmarshal(body, &ev)

	_, body = doJSON(t, app, "GET", "/api/plants/"+strconv.Itoa(p.ID)+"/timeline", token, nil)
	var timeline []models.CareEvent
	json.Unmarshal(body, &timeline)
	if len(timeline) != 2 || timeline[0].Type != "water due" || !timeline[0].Synthetic {
		t.Fatalf("Unexpected timeline %+v", timeline)
	}
	if !timeline[0].CreatedAt.Equal(testNow.AddDate(0, 0, 3)) {
		t.Fatalf("Marker at %v", timeline[0].CreatedAt)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/events/"+strconv.Itoa(ev.ID), token, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200 on delete, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "DELETE", "/api/events/"+strconv.Itoa(ev.ID), token, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("Expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestTaskFlow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := register(t, app, "testuser")
	p := createPlant(t, app, token, models.CreatePlantRequest{Nickname: "Fern", WaterEvery: "3 days"})
	doJSON(t, app, "POST", "/api/plants/"+strconv.Itoa(p.ID)+"/events", token, models.CreateEventRequest{Type: "water"})

	resp, body := doJSON(t, app, "POST", "/api/tasks/generate", token, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	var gen struct {
		Created []models.Task `json:"created"`
	}
	json.Unmarshal(body, &gen)
	if len(gen.Created) != 4 || gen.Created[0].Due != "2024-01-13" || gen.Created[3].Due != "2024-01-22" {
		t.Fatalf("Unexpected generated tasks %+v", gen.Created)
	}

	_, body = doJSON(t, app, "POST", "/api/tasks/generate", token, nil)
	json.Unmarshal(body, &gen)
	if len(gen.Created) != 0 {
		t.Fatalf("Second run created %d tasks", len(gen.Created))
	}

	_, body = doJSON(t, app, "GET", "/api/tasks", token, nil)
	var tasks []models.Task
	json.Unmarshal(body, &tasks)
	if len(tasks) != 4 || tasks[0].PlantName != "Fern" {
		t.Fatalf("Unexpected task list %+v", tasks)
	}

	resp, _ = doJSON(t, app, "POST", "/api/tasks/"+strconv.Itoa(tasks[0].ID)+"/complete", token, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200 on complete, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "POST", "/api/tasks/"+strconv.Itoa(tasks[0].ID)+"/complete", token, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("Expected 404 on second complete, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, app, "POST", "/api/tasks/"+strconv.Itoa(tasks[1].ID)+"/snooze", token, map[string]any{"days": 1, "reason": "away"})
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200 on snooze, got %d: %s", resp.StatusCode, body)
	}
	var snoozed models.Task
	json.Unmarshal(body, &snoozed)
	if snoozed.Due != "2024-01-17" || snoozed.SnoozeReason != "away" {
		t.Fatalf("Unexpected snoozed task %+v", snoozed)
	}
	_, body = doJSON(t, app, "GET", "/api/plants/"+strconv.Itoa(p.ID), token, nil)
	var plant models.Plant
	json.Unmarshal(body, &plant)
	if plant.WaterEvery != "4 days" {
		t.Fatalf("Expected widened cadence, got %q", plant.WaterEvery)
	}

	_, body = doJSON(t, app, "GET", "/api/tasks?status=all", token, nil)
	json.Unmarshal(body, &tasks)
	completed := 0
	for _, task := range tasks {
		if task.CompletedAt != nil {
			completed++
		}
	}
	if completed != 1 {
		t.Fatalf("Expected one completed task, got %d", completed)
	}
}

func TestForecastAndDashboard(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := register(t, app, "testuser")
	p := createPlant(t, app, token, models.CreatePlantRequest{Nickname: "Fern", WaterEvery: "2 days"})
	doJSON(t, app, "POST", "/api/plants/"+strconv.Itoa(p.ID)+"/events", token, models.CreateEventRequest{Type: "water"})

	resp, body := doJSON(t, app, "GET", "/api/forecast", token, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var days []models.DayForecast
	json.Unmarshal(body, &days)
	if len(days) != 7 || days[0].Date != "2024-01-10" || len(days[2].Tasks) != 1 {
		t.Fatalf("Unexpected forecast %+v", days)
	}

	resp, body = doJSON(t, app, "GET", "/api/dashboard", token, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var dash models.Dashboard
	json.Unmarshal(body, &dash)
	if dash.Plants != 1 || dash.Completion != 100 || dash.Streak != 1 || len(dash.Hist) != 7 {
		t.Fatalf("Unexpected dashboard %+v", dash)
	}
}

func TestDemoDashboardIsPublic(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)

	resp, body := doJSON(t, app, "GET", "/api/demo/dashboard", "", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var dash models.Dashboard
	json.Unmarshal(body, &dash)
	if dash.Plants == 0 || len(dash.Hist) != 7 {
		t.Fatalf("Unexpected demo dashboard %+v", dash)
	}
}

func TestOptionalProvidersDegrade(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := register(t, app, "testuser")
	p := createPlant(t, app, token, models.CreatePlantRequest{Nickname: "Fern"})

	resp, body := doJSON(t, app, "GET", "/api/species?q=monstera", token, nil)
	if resp.StatusCode != 200 || string(body) != "[]" {
		t.Fatalf("Expected empty species list, got %d %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, "POST", "/api/plants/"+strconv.Itoa(p.ID)+"/careplan?apply=true", token, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var out struct {
		Plan    *models.CarePlan `json:"plan"`
		Applied bool             `json:"applied"`
	}
	json.Unmarshal(body, &out)
	if out.Plan != nil || out.Applied {
		t.Fatalf("Expected no plan, got %s", body)
	}
}

func TestLocationAndProfile(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := register(t, app, "testuser")

	resp, _ := doJSON(t, app, "PUT", "/api/user/location", token, map[string]any{"latitude": 52.37})
	if resp.StatusCode != 400 {
		t.Fatalf("Expected 400 for half a location, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "PUT", "/api/user/location", token, map[string]any{"latitude": 52.37, "longitude": 4.89})
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	_, body := doJSON(t, app, "GET", "/api/user/profile", token, nil)
	var profile map[string]any
	json.Unmarshal(body, &profile)
	if profile["username"] != "testuser" || profile["latitude"] != 52.37 {
		t.Fatalf("Unexpected profile %s", body)
	}
}

func TestStorageOutageIsRetryable(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(db)
	token := register(t, app, "testuser")
	db.Close()

	resp, body := doJSON(t, app, "GET", "/api/plants", token, nil)
	if resp.StatusCode != 503 {
		t.Fatalf("Expected 503, got %d", resp.StatusCode)
	}
	var e map[string]any
	json.Unmarshal(body, &e)
	if e["retryable"] != true {
		t.Fatalf("Expected retryable flag, got %s", body)
	}
}

func TestMigrateAddColumns(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	// A database created before archiving and locations existed.
	_, err = db.Exec(`
		CREATE TABLE users (id INTEGER PRIMARY KEY, username TEXT, password_hash TEXT);
		CREATE TABLE plants (id INTEGER PRIMARY KEY, user_id INTEGER, nickname TEXT);
		CREATE TABLE tasks (id INTEGER PRIMARY KEY, plant_id INTEGER, type TEXT, due_date TEXT);
		CREATE TABLE refresh_tokens (id INTEGER PRIMARY KEY, user_id INTEGER, token_hash TEXT);
	`)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := api.MigrateAddColumns(db); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if _, err := db.Exec("UPDATE plants SET archived_at = CURRENT_TIMESTAMP"); err != nil {
		t.Fatalf("archived_at missing: %v", err)
	}
	if _, err := db.Exec("UPDATE users SET latitude = 1, longitude = 2"); err != nil {
		t.Fatalf("location columns missing: %v", err)
	}
}

func TestMigrateNormalizeCareTypes(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	db.Exec("INSERT INTO users (id, username, password_hash) VALUES (1, 'u', 'x')")
	db.Exec("INSERT INTO plants (id, user_id, nickname) VALUES (1, 1, 'Fern')")
	db.Exec("INSERT INTO care_events (plant_id, type, created_at) VALUES (1, 'Water', CURRENT_TIMESTAMP)")

	if err := api.MigrateNormalizeCareTypes(db); err != nil {
		t.Fatal(err)
	}
	var typ string
	db.QueryRow("SELECT type FROM care_events").Scan(&typ)
	if typ != "water" {
		t.Fatalf("Expected normalised type, got %q", typ)
	}
}
