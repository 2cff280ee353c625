package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type runResult struct {
	stdout string
	stderr string
	code   int
}

func impactedBin(t *testing.T) string {
	t.Helper()
	bin := strings.TrimSpace(os.Getenv("IMPACTED_E2E_BIN"))
	if bin == "" {
		t.Skip("IMPACTED_E2E_BIN not set; build ./cmd/impacted and point it at the binary")
	}
	abs, err := filepath.Abs(bin)
	if err != nil {
		t.Fatalf("resolve bin path: %v", err)
	}
	if _, err := os.Stat(abs); err != nil {
		t.Fatalf("impacted binary not found at %s (set IMPACTED_E2E_BIN): %v", abs, err)
	}
	return abs
}

func runImpacted(t *testing.T, dir string, env map[string]string, args ...string) runResult {
	t.Helper()
	cmd := exec.Command(impactedBin(t), args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = hermeticEnv(env)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := runResult{stdout: stdout.String(), stderr: stderr.String()}
	if exitErr, ok := err.(*exec.ExitError); ok {
		res.code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("run impacted %v: %v", args, err)
	}
	return res
}

// hermeticEnv drops every upload variable from the inherited environment.
func hermeticEnv(env map[string]string) []string {
	drop := map[string]bool{
		"API_TOKEN": true, "REPOSITORY": true, "TARGET_BRANCH": true,
		"PR_NUMBER": true, "PR_SHA": true, "IMPACTED_TARGETS_FILE": true,
		"IMPACTS_ALL_DETECTED": true, "API_URL": true, "ACTOR": true,
	}
	out := make([]string, 0, len(os.Environ())+len(env))
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if drop[key] {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}

func runCmd(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("run %s %v failed: %v\n%s", name, args, err, string(out))
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func setupRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	repoRoot := filepath.Join(t.TempDir(), "repo")
	if err := os.MkdirAll(repoRoot, 0o755); err != nil {
		t.Fatalf("mkdir repo: %v", err)
	}
	runCmd(t, repoRoot, "git", "init")
	runCmd(t, repoRoot, "git", "checkout", "-B", "main")
	runCmd(t, repoRoot, "git", "config", "user.email", "e2e@example.test")
	runCmd(t, repoRoot, "git", "config", "user.name", "Impacted E2E")
	writeFile(t, repoRoot, "README.md", "root\n")
	writeFile(t, repoRoot, "src/a.py", "print(1)\n")
	runCmd(t, repoRoot, "git", "add", ".")
	runCmd(t, repoRoot, "git", "commit", "-m", "init")
	return repoRoot
}

type capturedUpload struct {
	mu     sync.Mutex
	calls  int
	token  string
	body   map[string]any
	status int
}

func (c *capturedUpload) snapshot() (int, string, map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls, c.token, c.body
}

func uploadServer(t *testing.T, status int) (*httptest.Server, *capturedUpload) {
	t.Helper()
	captured := &capturedUpload{status: status}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(data, &body)
		captured.mu.Lock()
		captured.calls++
		captured.token = r.Header.Get("x-api-token")
		captured.body = body
		captured.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestDetectWritesImpactedFolders(t *testing.T) {
	repo := setupRepo(t)
	writeFile(t, repo, "src/a.py", "print(2)\n")
	writeFile(t, repo, "docs/new/guide.md", "new\n")

	res := runImpacted(t, repo, nil, "detect", "--no-color")
	if res.code != 0 {
		t.Fatalf("detect exited %d: %s", res.code, res.stderr)
	}
	data, err := os.ReadFile(filepath.Join(repo, "impacted_targets_json_tmp"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got := string(data); got != `["docs/new","src"]` {
		t.Fatalf("unexpected output %s", got)
	}
	if !strings.Contains(res.stdout, "Found 2 modified files") {
		t.Fatalf("missing narration in %q", res.stdout)
	}
}

func TestDetectCheckGitRepoOutsideRepo(t *testing.T) {
	dir := t.TempDir()
	res := runImpacted(t, dir, map[string]string{"GIT_CEILING_DIRECTORIES": filepath.Dir(dir)}, "detect", "--check-git-repo")
	if res.code != 1 {
		t.Fatalf("expected exit 1, got %d", res.code)
	}
	if strings.TrimSpace(res.stderr) != "Error: Not in a git repository" {
		t.Fatalf("unexpected stderr %q", res.stderr)
	}
}

func TestDetectThenUpload(t *testing.T) {
	repo := setupRepo(t)
	writeFile(t, repo, "src/a.py", "print(2)\n")
	writeFile(t, repo, "lib/b.go", "package lib\n")
	targets := filepath.Join(t.TempDir(), "targets.txt")

	res := runImpacted(t, repo, nil, "detect", "-q", "--format", "lines", "-o", targets)
	if res.code != 0 {
		t.Fatalf("detect exited %d: %s", res.code, res.stderr)
	}

	server, captured := uploadServer(t, http.StatusOK)
	res = runImpacted(t, repo, map[string]string{
		"API_TOKEN":             "tok",
		"REPOSITORY":            "acme/widgets",
		"TARGET_BRANCH":         "main",
		"PR_NUMBER":             "42",
		"PR_SHA":                "abc123",
		"IMPACTED_TARGETS_FILE": targets,
		"API_URL":               server.URL,
	}, "upload")
	if res.code != 0 {
		t.Fatalf("upload exited %d: %s%s", res.code, res.stdout, res.stderr)
	}
	if strings.TrimSpace(res.stdout) != "✨ Uploaded 2 impacted targets for 42 @ abc123" {
		t.Fatalf("unexpected stdout %q", res.stdout)
	}

	calls, token, body := captured.snapshot()
	if calls != 1 || token != "tok" {
		t.Fatalf("expected one request with token, got %d %q", calls, token)
	}
	got, _ := json.Marshal(body["impactedTargets"])
	if string(got) != `["lib","src"]` {
		t.Fatalf("unexpected impactedTargets %s", got)
	}
}

func TestUploadMissingConfig(t *testing.T) {
	server, captured := uploadServer(t, http.StatusOK)
	res := runImpacted(t, "", map[string]string{"API_URL": server.URL, "REPOSITORY": "acme/widgets"}, "upload")
	if res.code != 2 {
		t.Fatalf("expected exit 2, got %d", res.code)
	}
	if strings.TrimSpace(res.stderr) != "Missing required environment variable: API_TOKEN" {
		t.Fatalf("unexpected stderr %q", res.stderr)
	}
	if calls, _, _ := captured.snapshot(); calls != 0 {
		t.Fatalf("expected no request, got %d", calls)
	}
}

func TestUploadServerRejects(t *testing.T) {
	server, _ := uploadServer(t, http.StatusUnauthorized)
	targets := filepath.Join(t.TempDir(), "targets.txt")
	writeFile(t, filepath.Dir(targets), "targets.txt", "//a\n")

	res := runImpacted(t, "", map[string]string{
		"API_TOKEN":             "tok",
		"REPOSITORY":            "acme/widgets",
		"TARGET_BRANCH":         "main",
		"PR_NUMBER":             "42",
		"PR_SHA":                "abc123",
		"IMPACTED_TARGETS_FILE": targets,
		"API_URL":               server.URL,
		"ACTOR":                 "renovate[bot]",
	}, "upload")
	if res.code != 1 {
		t.Fatalf("expected exit 1, got %d", res.code)
	}
	if !strings.Contains(res.stdout, "verify that this bot has access") {
		t.Fatalf("unexpected stdout %q", res.stdout)
	}
}
