package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"clipd/internal/api"
	"clipd/internal/cliprecord"
	"clipd/internal/controller"
	"clipd/internal/daemon"
	"clipd/internal/executor"
	"clipd/internal/testsupport"
)

func startDaemon(t *testing.T) (*daemon.Daemon, *executor.FakeLauncher, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	records, err := cliprecord.Open(cfg)
	if err != nil {
		t.Fatalf("cliprecord.Open: %v", err)
	}
	t.Cleanup(func() { records.Close() })

	launcher := executor.NewFakeLauncher()
	ctrl := controller.New(cfg, store, records, launcher, nil)
	d, err := daemon.New(cfg, store, records, ctrl, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)

	addr := d.APIAddr()
	if addr == "" {
		t.Fatal("expected api server to be listening")
	}
	return d, launcher, "http://" + addr
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var value T
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return value
}

func TestDaemonJobLifecycleOverHTTP(t *testing.T) {
	_, launcher, base := startDaemon(t)

	req := api.SubmitRequest{
		ClipID:      "e2e-0001",
		GameID:      "game-1",
		VideoID:     "video-1",
		SourcePath:  "broadcast/game-1/video-1_recording.mp4",
		StartOffset: "0:10",
		EndOffset:   "0:25",
	}

	resp := postJSON(t, base+"/api/jobs", req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d, want 201", resp.StatusCode)
	}
	submitted := decodeJSON[api.SubmitResponse](t, resp)
	if submitted.Job.Phase != "Pending" && submitted.Job.Phase != "Running" {
		t.Fatalf("unexpected phase %q", submitted.Job.Phase)
	}

	// Resubmitting the same clip resolves to the existing job.
	resp = postJSON(t, base+"/api/jobs", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resubmit status = %d, want 200", resp.StatusCode)
	}
	resubmitted := decodeJSON[api.SubmitResponse](t, resp)
	if resubmitted.Created || resubmitted.Job.Name != submitted.Job.Name {
		t.Fatalf("expected idempotent resubmit, got %#v", resubmitted)
	}

	// The controller should pick the job up and launch its unit.
	unit := executor.UnitName(submitted.Job.Name)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if launcher.LaunchCount(unit) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if launcher.LaunchCount(unit) == 0 {
		t.Fatal("controller never launched the unit")
	}

	// Finish the unit and wait for the job to converge to Succeeded.
	launcher.Finish(unit, executor.StateSucceeded, 0, "")
	var described api.JobView
	for time.Now().Before(deadline) {
		getResp, err := http.Get(base + "/api/jobs/" + submitted.Job.Name)
		if err != nil {
			t.Fatalf("GET job: %v", err)
		}
		described = decodeJSON[api.JobView](t, getResp)
		if described.Phase == "Succeeded" {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if described.Phase != "Succeeded" {
		t.Fatalf("job never succeeded, last phase %q", described.Phase)
	}

	listResp, err := http.Get(base + "/api/jobs?phase=Succeeded")
	if err != nil {
		t.Fatalf("GET jobs: %v", err)
	}
	listed := decodeJSON[api.JobListResponse](t, listResp)
	if len(listed.Jobs) != 1 {
		t.Fatalf("expected one succeeded job, got %d", len(listed.Jobs))
	}

	statusResp, err := http.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	status := decodeJSON[api.StatusResponse](t, statusResp)
	if !status.Running || status.Jobs["Succeeded"] != 1 {
		t.Fatalf("unexpected status: %#v", status)
	}

	delReq, err := http.NewRequest(http.MethodDelete, base+"/api/jobs/"+submitted.Job.Name, nil)
	if err != nil {
		t.Fatalf("build DELETE: %v", err)
	}
	delResp, err := http.DefaultClient.Do(delReq)
	if err != nil {
		t.Fatalf("DELETE job: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", delResp.StatusCode)
	}

	getResp, err := http.Get(base + "/api/jobs/" + submitted.Job.Name)
	if err != nil {
		t.Fatalf("GET deleted job: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted job, got %d", getResp.StatusCode)
	}
}

func TestDaemonRejectsInvalidSubmission(t *testing.T) {
	_, _, base := startDaemon(t)

	resp := postJSON(t, base+"/api/jobs", api.SubmitRequest{
		ClipID:      "bad-0001",
		GameID:      "game-1",
		VideoID:     "video-1",
		SourcePath:  "broadcast/game-1/video-1_recording.mp4",
		StartOffset: "1:00",
		EndOffset:   "0:30",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	records, err := cliprecord.Open(cfg)
	if err != nil {
		t.Fatalf("cliprecord.Open: %v", err)
	}
	t.Cleanup(func() { records.Close() })

	newDaemon := func() *daemon.Daemon {
		launcher := executor.NewFakeLauncher()
		ctrl := controller.New(cfg, store, records, launcher, nil)
		d, err := daemon.New(cfg, store, records, ctrl, nil)
		if err != nil {
			t.Fatalf("daemon.New: %v", err)
		}
		return d
	}

	first := newDaemon()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	t.Cleanup(first.Stop)

	second := newDaemon()
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second daemon start to fail while lock held")
	} else if !contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func contains(haystack, needle string) bool {
	return bytes.Contains([]byte(haystack), []byte(needle))
}
