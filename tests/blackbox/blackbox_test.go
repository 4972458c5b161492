package blackbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trackd/internal/demo"
	"trackd/internal/httpapi"
	"trackd/internal/track"
	"trackd/pkg/types"
)

// Full-stack flow: demo sources feeding a mediator, observed over the HTTP
// surface exactly the way an external presentation client would.
func TestDemoVisibleOverHTTP(t *testing.T) {
	m := track.NewMediator()
	runner, err := demo.New(m, demo.Config{Tick: time.Millisecond, UpdateInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("demo.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = runner.Run(ctx)
	}()

	srv := httptest.NewServer(httpapi.NewMux(m))
	defer srv.Close()

	// let the simulation publish a few frames
	time.Sleep(50 * time.Millisecond)

	var list types.TrackablesResponse
	mustGet(t, srv.URL+"/trackables", &list)
	if _, ok := list.Trackables["player"]; !ok {
		t.Fatalf("player missing from registry: %v", list.Trackables)
	}
	if _, ok := list.Trackables["vars"]; !ok {
		t.Fatalf("vars missing from registry: %v", list.Trackables)
	}

	// the counter should be advancing
	var a1, a2 types.AttributeResponse
	mustGet(t, srv.URL+"/trackables/vars/attrs/timer2", &a1)
	time.Sleep(30 * time.Millisecond)
	mustGet(t, srv.URL+"/trackables/vars/attrs/timer2", &a2)
	if a1.Value == nil || a2.Value == nil {
		t.Fatalf("timer2 never published: %v %v", a1.Value, a2.Value)
	}
	if a2.Value.(float64) <= a1.Value.(float64) {
		t.Fatalf("timer2 not advancing: %v -> %v", a1.Value, a2.Value)
	}

	// user edit pushed back into the running object
	body := strings.NewReader(`{"value": 390}`)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/trackables/player/attrs/X", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status %d", resp.StatusCode)
	}

	// tracked method invocation is counted
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/trackables/player/methods/Jump", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST status %d", resp.StatusCode)
	}
	var methods types.MethodsResponse
	mustGet(t, srv.URL+"/methods", &methods)
	if methods.Methods["player"]["Jump"] != 1 {
		t.Fatalf("Jump not counted: %v", methods.Methods["player"])
	}
	if methods.Methods["player"]["Move"] == 0 {
		t.Fatalf("Move never counted: %v", methods.Methods["player"])
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("demo loop did not stop")
	}
}

func mustGet(t *testing.T, url string, dst any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
