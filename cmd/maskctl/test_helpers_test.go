package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"maskctl/internal/config"
	"maskctl/internal/jmap"
	"maskctl/internal/maskedemail"
	"maskctl/internal/testsupport"
)

// fakeFastmail serves a JMAP session and the MaskedEmail get/set methods
// over an in-memory record set.
type fakeFastmail struct {
	t       *testing.T
	server  *httptest.Server
	mu      sync.Mutex
	records []maskedemail.Record
	sets    []map[string]maskedemail.FieldMap
}

func newFakeFastmail(t *testing.T, records []maskedemail.Record) *fakeFastmail {
	t.Helper()
	f := &fakeFastmail{t: t, records: records}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeFastmail) sessionURL() string {
	return f.server.URL + "/jmap/session"
}

func (f *fakeFastmail) setCalls() []map[string]maskedemail.FieldMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]maskedemail.FieldMap(nil), f.sets...)
}

func (f *fakeFastmail) serve(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch r.URL.Path {
	case "/jmap/session":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"apiUrl":          f.server.URL + "/jmap/api",
			"primaryAccounts": map[string]string{jmap.CoreURI: "u1", jmap.MaskedEmailURI: "u1"},
		})
	case "/jmap/api":
		body, _ := io.ReadAll(r.Body)
		var req jmap.Request
		if err := json.Unmarshal(body, &req); err != nil || len(req.MethodCalls) != 1 {
			f.t.Errorf("bad request %s: %v", body, err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		call := req.MethodCalls[0]
		var result any
		switch call.Name {
		case "MaskedEmail/get":
			f.mu.Lock()
			result = map[string]any{"accountId": "u1", "list": f.records, "notFound": []string{}}
			f.mu.Unlock()
		case "MaskedEmail/set":
			var args struct {
				Update map[string]maskedemail.FieldMap `json:"update"`
			}
			if err := json.Unmarshal(call.Arguments, &args); err != nil {
				f.t.Errorf("decode set: %v", err)
			}
			f.mu.Lock()
			f.sets = append(f.sets, args.Update)
			f.mu.Unlock()
			updated := map[string]any{}
			for id := range args.Update {
				updated[id] = nil
			}
			result = map[string]any{"accountId": "u1", "updated": updated}
		default:
			f.t.Errorf("unexpected method %s", call.Name)
		}
		inv, _ := jmap.NewInvocation(call.Name, result, call.CallID)
		_ = json.NewEncoder(w).Encode(jmap.Response{MethodResponses: []jmap.Invocation{inv}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type cliTestEnv struct {
	cfg        *config.Config
	fastmail   *fakeFastmail
	configPath string
	baseDir    string
}

func sampleRecords() []maskedemail.Record {
	return []maskedemail.Record{
		{ID: "m1", Email: "alpha@fastmail.test", Description: "old", ForDomain: "shop.test", State: "enabled"},
		{ID: "m2", Email: "beta@fastmail.test", Description: "news", ForDomain: "news.test", URL: maskedemail.String("https://news.test"), State: "disabled"},
	}
}

// setupCLITestEnv writes a config pointing at a fake Fastmail server. The
// editor is a shell script applying sedScript to the staged file; an empty
// script leaves the file untouched.
func setupCLITestEnv(t *testing.T, sedScript string) *cliTestEnv {
	t.Helper()

	fastmail := newFakeFastmail(t, sampleRecords())
	cfg := testsupport.NewConfig(t, testsupport.WithSessionURL(fastmail.sessionURL()))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("FASTMAIL_API_TOKEN", "")

	cfg.Git.Binary = "maskctl-test-no-git"
	cfg.Editor.Command = writeEditorScript(t, base, sedScript)

	configPath := filepath.Join(base, "maskctl.toml")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{cfg: cfg, fastmail: fastmail, configPath: configPath, baseDir: base}
}

func writeEditorScript(t *testing.T, dir, sedScript string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-editor.sh")
	script := "#!/bin/sh\nexit 0\n"
	if sedScript != "" {
		script = "#!/bin/sh\nset -e\ntmp=\"$1.tmp\"\nsed '" + sedScript + "' \"$1\" > \"$tmp\"\nmv \"$tmp\" \"$1\"\n"
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write editor script: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
