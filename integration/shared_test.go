//go:build basic || database

// Package integration contains end-to-end tests for the trendline CLI.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// With database containers: go test -tags database ./integration
package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedTrendlinePath holds the path to a shared trendline binary built once for all tests.
	sharedTrendlinePath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

const rulesFixture = `rules:
  - key: squid:AvoidCycle
    name: Avoid cycles between packages
    severity: MAJOR
  - key: squid:NoSonar
    name: Avoid NOSONAR
    severity: INFO
`

// reportFixture returns a struts report dated date with the given violations.
func reportFixture(date, version string, violations int, issueKeys ...string) string {
	var issues bytes.Buffer
	for _, k := range issueKeys {
		fmt.Fprintf(&issues, `  - key: %s
    rule: squid:AvoidCycle
    component: struts:core:Action.java
    severity: MAJOR
    message: Cycle detected
`, k)
	}
	return fmt.Sprintf(`project:
  key: struts
  uuid: p-struts
  name: Struts
version: "%s"
date: "%s"
components:
  - {uuid: m-core, key: "struts:core", qualifier: BRC}
  - {uuid: f-action, key: "struts:core:Action.java", qualifier: FIL, parent: m-core}
issues:
%smeasures:
  - {component: struts, metric: violations, value: %d}
`, version, date, issues.String(), violations)
}

// writeFixture writes content to a file in dir and returns its path.
func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runTrendline runs the CLI with env and returns its stdout.
func runTrendline(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getTrendlineBinary(), args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
		return stdout.String(), err
	}
	return stdout.String(), nil
}

// getTrendlineBinary returns the path to the trendline binary, building it once if needed.
func getTrendlineBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "trendline-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		trendlinePath := filepath.Join(tempDir, "trendline")
		buildCmd := exec.Command("go", "build", "-o", trendlinePath, "./cmd/trendline")
		buildCmd.Dir = ".." // Build from project root
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build trendline: %v", err))
		}

		sharedTrendlinePath = trendlinePath
	})

	return sharedTrendlinePath
}

// exerciseBackend stores two analyses and checks the trends the CLI reports.
func exerciseBackend(t *testing.T, env []string) {
	t.Helper()
	dir := t.TempDir()
	rules := writeFixture(t, dir, "rules.yaml", rulesFixture)
	first := writeFixture(t, dir, "first.yaml", reportFixture("2013-01-01", "1.0", 3, "k1", "k2", "k3"))
	second := writeFixture(t, dir, "second.yaml", reportFixture("2013-03-01", "1.1", 1, "k1"))

	_, err := runTrendline(t, env, "db", "clear")
	require.NoError(t, err)
	_, err = runTrendline(t, env, "rules", "import", rules)
	require.NoError(t, err)
	_, err = runTrendline(t, env, "analyze", first)
	require.NoError(t, err)
	_, err = runTrendline(t, env, "analyze", second)
	require.NoError(t, err)

	measures, err := runTrendline(t, env, "measures", "struts", "--metrics", "violations", "--trends", "--output", "csv")
	require.NoError(t, err)
	require.Contains(t, measures, "struts,violations,1.0,-2.0")

	issues, err := runTrendline(t, env, "issues", "struts", "--output", "csv")
	require.NoError(t, err)
	require.Contains(t, issues, "k2,squid:AvoidCycle")
	require.Contains(t, issues, "CLOSED,FIXED")

	changelog, err := runTrendline(t, env, "changelog", "k2", "--output", "csv")
	require.NoError(t, err)
	require.Contains(t, changelog, "resolution,,FIXED")

	_, err = runTrendline(t, env, "db", "status")
	require.NoError(t, err)
}
