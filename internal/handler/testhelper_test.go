package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/appiumctl/api/internal/catalog"
	"github.com/appiumctl/api/internal/engine"
	"github.com/appiumctl/api/internal/logger"
	"github.com/appiumctl/api/internal/scheduler"
	"github.com/appiumctl/api/internal/service"
	ws "github.com/appiumctl/api/internal/websocket"
)

const stepDelay = 1400 * time.Millisecond

// testApp holds the app and the clock driving its engine
type testApp struct {
	app   *fiber.App
	clock *scheduler.ManualClock
}

// setupApp wires the same graph as the server, on a manual clock.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	clock := scheduler.NewManualClock(time.Date(2026, 1, 31, 16, 40, 0, 0, time.UTC))
	seq := 0
	cat := catalog.Default()
	registry := engine.NewRegistry(cat,
		engine.WithNow(clock.Now),
		engine.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("job-%d", seq)
		}),
	)

	hub := ws.NewHub(logger.Nop())
	go hub.Run()
	t.Cleanup(hub.Stop)

	controller := engine.NewController(registry, scheduler.New(stepDelay, scheduler.WithClock(clock)),
		engine.WithNotifier(hub),
	)
	t.Cleanup(controller.Close)

	validate := validator.New()

	// Services
	models := service.NewModelService()
	devices := service.NewDeviceService(service.DefaultDevices()...)
	jobs := service.NewJobService(registry, controller, models, devices)
	stats := service.NewStatsService(registry, devices)

	app := fiber.New()
	Register(app, &Handlers{
		Jobs:      NewJobHandler(jobs, validate),
		Devices:   NewDeviceHandler(devices, validate),
		Models:    NewModelHandler(models),
		Dashboard: NewDashboardHandler(cat, stats),
	}, hub, nil)

	return &testApp{app: app, clock: clock}
}

// tick advances the engine by n step delays.
func (ta *testApp) tick(n int) {
	for i := 0; i < n; i++ {
		ta.clock.Advance(stepDelay)
	}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return app.Test(req, -1)
}

// mustRequest fails the test when the request itself cannot be made.
func mustRequest(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	resp, err := doRequest(app, method, path, body)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// assertErrorCode checks the code of an error envelope.
func assertErrorCode(t *testing.T, resp *http.Response, code string) {
	t.Helper()
	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}
