package handler

import (
	"net/http"
	"testing"
)

const validJobBody = `{
	"modelId": "model-sara",
	"profile": {
		"job": "Content Creator",
		"university": "UT Dallas",
		"dob": "2001-04-16",
		"snapchat": "snap.ava",
		"state": "Texas",
		"city": "Dallas",
		"deviceId": "device-201"
	}
}`

func createJob(t *testing.T, ta *testApp) string {
	t.Helper()
	resp := mustRequest(t, ta.app, http.MethodPost, "/api/jobs", validJobBody)
	assertStatus(t, resp, http.StatusCreated)
	result := parseJSON(t, resp)
	id, _ := result["id"].(string)
	if id == "" {
		t.Fatalf("expected job id in response, got %v", result)
	}
	return id
}

func logMessages(t *testing.T, ta *testApp, path string) []string {
	t.Helper()
	resp := mustRequest(t, ta.app, http.MethodGet, path, "")
	assertStatus(t, resp, http.StatusOK)
	result := parseJSON(t, resp)
	logs, _ := result["logs"].([]interface{})
	out := make([]string, len(logs))
	for i, l := range logs {
		out[i], _ = l.(map[string]interface{})["message"].(string)
	}
	return out
}

func TestCreateJob_Success(t *testing.T) {
	ta := setupApp(t)

	resp := mustRequest(t, ta.app, http.MethodPost, "/api/jobs", validJobBody)
	assertStatus(t, resp, http.StatusCreated)

	result := parseJSON(t, resp)
	if result["model"] != "Sara" {
		t.Errorf("expected model 'Sara', got %v", result["model"])
	}
	if result["status"] != "in-progress" || result["playback"] != "play" {
		t.Errorf("unexpected state %v/%v", result["status"], result["playback"])
	}
	if result["progressIndex"] != float64(-1) {
		t.Errorf("expected progressIndex -1, got %v", result["progressIndex"])
	}
	if steps, _ := result["steps"].([]interface{}); len(steps) != 7 {
		t.Errorf("expected 7 steps, got %d", len(steps))
	}
	logs, _ := result["logs"].([]interface{})
	if len(logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs))
	}
	if msg := logs[0].(map[string]interface{})["message"]; msg != "Job created at 16:40" {
		t.Errorf("unexpected creation log %v", msg)
	}
}

func TestCreateJob_MissingCity(t *testing.T) {
	ta := setupApp(t)

	body := `{"modelId": "model-sara", "profile": {"state": "Texas"}}`
	resp := mustRequest(t, ta.app, http.MethodPost, "/api/jobs", body)
	assertStatus(t, resp, http.StatusBadRequest)

	result := parseJSON(t, resp)
	details, _ := result["error"].(map[string]interface{})["details"].(map[string]interface{})
	if details["City"] != "required" {
		t.Errorf("expected City required, got %v", details)
	}
}

func TestCreateJob_BadDOB(t *testing.T) {
	ta := setupApp(t)

	body := `{"modelId": "model-sara", "profile": {"state": "Texas", "city": "Dallas", "dob": "16/04/2001"}}`
	resp := mustRequest(t, ta.app, http.MethodPost, "/api/jobs", body)
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestCreateJob_BlankLocation(t *testing.T) {
	ta := setupApp(t)

	body := `{"modelId": "model-sara", "profile": {"state": " ", "city": " "}}`
	resp := mustRequest(t, ta.app, http.MethodPost, "/api/jobs", body)
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestCreateJob_UnknownModel(t *testing.T) {
	ta := setupApp(t)

	body := `{"modelId": "model-nobody", "profile": {"state": "Texas", "city": "Dallas"}}`
	resp := mustRequest(t, ta.app, http.MethodPost, "/api/jobs", body)
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestCreateJob_UnknownDevice(t *testing.T) {
	ta := setupApp(t)

	body := `{"modelId": "model-sara", "profile": {"state": "Texas", "city": "Dallas", "deviceId": "device-999"}}`
	resp := mustRequest(t, ta.app, http.MethodPost, "/api/jobs", body)
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestCreateJob_NoDevice(t *testing.T) {
	ta := setupApp(t)

	body := `{"modelId": "model-hailey", "profile": {"state": "Ohio", "city": "Columbus"}}`
	resp := mustRequest(t, ta.app, http.MethodPost, "/api/jobs", body)
	assertStatus(t, resp, http.StatusCreated)
}

func TestCreateJob_InvalidBody(t *testing.T) {
	ta := setupApp(t)

	resp := mustRequest(t, ta.app, http.MethodPost, "/api/jobs", `{"modelId": `)
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestListJobs_MostRecentFirst(t *testing.T) {
	ta := setupApp(t)

	first := createJob(t, ta)
	second := createJob(t, ta)

	resp := mustRequest(t, ta.app, http.MethodGet, "/api/jobs", "")
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["total"] != float64(2) {
		t.Fatalf("expected total 2, got %v", result["total"])
	}
	jobs := result["jobs"].([]interface{})
	if jobs[0].(map[string]interface{})["id"] != second || jobs[1].(map[string]interface{})["id"] != first {
		t.Errorf("expected [%s %s], got %v", second, first, jobs)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	ta := setupApp(t)

	resp := mustRequest(t, ta.app, http.MethodGet, "/api/jobs/job-missing", "")
	assertStatus(t, resp, http.StatusNotFound)
	assertErrorCode(t, resp, "NOT_FOUND")
}

func TestControls_NotFound(t *testing.T) {
	ta := setupApp(t)

	for _, op := range []string{"play", "pause", "stop"} {
		resp := mustRequest(t, ta.app, http.MethodPost, "/api/jobs/job-missing/"+op, "")
		assertStatus(t, resp, http.StatusNotFound)
	}
}

func TestJobLifecycle(t *testing.T) {
	ta := setupApp(t)
	id := createJob(t, ta)

	ta.tick(3)

	resp := mustRequest(t, ta.app, http.MethodGet, "/api/jobs/"+id, "")
	assertStatus(t, resp, http.StatusOK)
	job := parseJSON(t, resp)
	if job["progressIndex"] != float64(2) {
		t.Fatalf("expected progressIndex 2, got %v", job["progressIndex"])
	}

	// Pause freezes the job
	resp = mustRequest(t, ta.app, http.MethodPost, "/api/jobs/"+id+"/pause", "")
	assertStatus(t, resp, http.StatusOK)
	if got := parseJSON(t, resp)["playback"]; got != "pause" {
		t.Errorf("expected playback pause, got %v", got)
	}
	ta.tick(2)
	if logs := logMessages(t, ta, "/api/jobs/"+id+"/logs"); len(logs) != 4 {
		t.Errorf("expected 4 logs while paused, got %v", logs)
	}

	// Resume picks up at the next step without a log line
	resp = mustRequest(t, ta.app, http.MethodPost, "/api/jobs/"+id+"/play", "")
	assertStatus(t, resp, http.StatusOK)
	ta.tick(1)
	logs := logMessages(t, ta, "/api/jobs/"+id+"/logs")
	if len(logs) != 5 || logs[4] != "Phone number received" {
		t.Errorf("unexpected logs after resume: %v", logs)
	}

	// Stop then play restarts from the first step
	resp = mustRequest(t, ta.app, http.MethodPost, "/api/jobs/"+id+"/stop", "")
	assertStatus(t, resp, http.StatusOK)
	stopped := parseJSON(t, resp)
	if stopped["status"] != "pending" || stopped["playback"] != "stop" || stopped["progressIndex"] != float64(-1) {
		t.Errorf("unexpected stopped state %v", stopped)
	}

	resp = mustRequest(t, ta.app, http.MethodPost, "/api/jobs/"+id+"/play", "")
	assertStatus(t, resp, http.StatusOK)
	ta.tick(1)

	logs = logMessages(t, ta, "/api/jobs/"+id+"/logs")
	tail := logs[len(logs)-3:]
	want := []string{"Job stopped", "Job restarted", "Generating proxy for Dallas, Texas"}
	for i := range want {
		if tail[i] != want[i] {
			t.Errorf("log tail[%d] = %q, want %q", i, tail[i], want[i])
		}
	}
}

func TestJobRunsToCompletion(t *testing.T) {
	ta := setupApp(t)
	id := createJob(t, ta)

	ta.tick(8)

	resp := mustRequest(t, ta.app, http.MethodGet, "/api/jobs/"+id, "")
	job := parseJSON(t, resp)
	if job["status"] != "done" || job["playback"] != "stop" {
		t.Errorf("expected done/stop, got %v/%v", job["status"], job["playback"])
	}
	logs := logMessages(t, ta, "/api/jobs/"+id+"/logs")
	if len(logs) != 9 || logs[8] != "Job complete" {
		t.Errorf("unexpected logs %v", logs)
	}
}

func TestJobLogs_StepFilter(t *testing.T) {
	ta := setupApp(t)
	id := createJob(t, ta)
	ta.tick(2)

	logs := logMessages(t, ta, "/api/jobs/"+id+"/logs?step=generating%20proxy")
	if len(logs) != 1 || logs[0] != "Generating proxy for Dallas, Texas" {
		t.Errorf("unexpected step logs %v", logs)
	}

	logs = logMessages(t, ta, "/api/jobs/"+id+"/logs?step=system")
	if len(logs) != 1 || logs[0] != "Job created at 16:40" {
		t.Errorf("unexpected system logs %v", logs)
	}

	resp := mustRequest(t, ta.app, http.MethodGet, "/api/jobs/"+id+"/logs?step=bogus", "")
	assertStatus(t, resp, http.StatusBadRequest)
}
