package trigger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sgtmajorsays/springest/internal/config"
)

func testServer(run Runner) *Server {
	return NewServer(&config.RunConfig{
		AdminPassword: "hunter2",
		CronSecret:    "cron-token",
		TriggerAddr:   ":0",
	}, run)
}

func post(t *testing.T, handler http.Handler, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIngestWithPassword(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	ran := false
	srv := testServer(func() error { ran = true; wg.Done(); return nil })

	rec := post(t, srv.Handler(), `{"password":"hunter2"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["message"] != "started" {
		t.Errorf("message = %q", resp["message"])
	}
	wg.Wait()
	if !ran {
		t.Error("runner did not run")
	}
}

func TestIngestWithCronSecret(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	srv := testServer(func() error { wg.Done(); return nil })

	rec := post(t, srv.Handler(), "", "cron-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	wg.Wait()
}

func TestIngestRejectsBadCredentials(t *testing.T) {
	srv := testServer(func() error { t.Error("runner must not run"); return nil })

	for _, tc := range []struct{ body, bearer string }{
		{`{"password":"wrong"}`, ""},
		{"", "bad-token"},
		{"", ""},
		{`not json`, ""},
	} {
		rec := post(t, srv.Handler(), tc.body, tc.bearer)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("body %q bearer %q: status = %d, want 401", tc.body, tc.bearer, rec.Code)
		}
	}
}

func TestIngestRejectsUnsetCredentials(t *testing.T) {
	// With no credentials configured, nothing gets in.
	srv := NewServer(&config.RunConfig{}, func() error { t.Error("runner must not run"); return nil })
	rec := post(t, srv.Handler(), `{"password":""}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestIngestMethodNotAllowed(t *testing.T) {
	srv := testServer(func() error { return nil })
	req := httptest.NewRequest(http.MethodGet, "/ingest", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestIngestRefusesConcurrentRuns(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	srv := testServer(func() error {
		started <- struct{}{}
		<-release
		return nil
	})

	first := post(t, srv.Handler(), "", "cron-token")
	if first.Code != http.StatusOK {
		t.Fatalf("first trigger status = %d", first.Code)
	}
	<-started

	second := post(t, srv.Handler(), "", "cron-token")
	if second.Code != http.StatusConflict {
		t.Fatalf("second trigger status = %d, want 409", second.Code)
	}
	close(release)

	// The guard resets once the run finishes.
	deadline := time.After(2 * time.Second)
	for {
		rec := post(t, srv.Handler(), "", "cron-token")
		if rec.Code == http.StatusOK {
			break
		}
		select {
		case <-deadline:
			t.Fatal("guard never reset after the run finished")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}
