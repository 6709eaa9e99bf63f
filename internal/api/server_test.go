package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"mediaextract/internal/api"
	"mediaextract/internal/pipeline"
	"mediaextract/internal/testsupport"
)

func startServer(t *testing.T, opts ...testsupport.ConfigOption) (*api.Server, string) {
	t.Helper()
	upstream := testsupport.NewUpstream(t)
	upstream.LLMContent = `[{"kind":"movie","title":"Heat"}]`
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithUpstream(upstream)}, opts...)...)

	p, _, err := pipeline.NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}
	srv, err := api.NewServer(cfg, p, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown() })
	return srv, "http://" + srv.Addr()
}

func TestServerServesExtraction(t *testing.T) {
	_, base := startServer(t, testsupport.WithServerAPIKey("secret"))

	req, err := http.NewRequest(http.MethodPost, base+"/extract?query=heat", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"title":"Heat"`) || !strings.Contains(string(body), `"type":"movie"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestServerRejectsSecondInstance(t *testing.T) {
	first, _ := startServer(t)

	cfg := testsupport.NewConfig(t)
	cfg.Server.LockPath = lockPathOf(t, first)
	second, err := api.NewServer(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	err = second.Start(context.Background())
	if !errors.Is(err, api.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestServerShutdownReleasesLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	srv, err := api.NewServer(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := srv.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if srv.Addr() != "" {
		t.Fatal("expected no listener after shutdown")
	}

	again, err := api.NewServer(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := again.Start(context.Background()); err != nil {
		t.Fatalf("restart after shutdown: %v", err)
	}
	_ = again.Shutdown()
}

func lockPathOf(t *testing.T, srv *api.Server) string {
	t.Helper()
	path := srv.LockPath()
	if path == "" {
		t.Fatal("server has no lock path")
	}
	return path
}
