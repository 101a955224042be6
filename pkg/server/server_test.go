package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillctl/skillctl/pkg/lint"
	"github.com/skillctl/skillctl/pkg/skill"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	corpus := t.TempDir()
	writeTestSkill(t, corpus, "schema-design", `---
name: schema-design
description: Relational schema design practices
metadata:
  category: data
---

# Schema Design
`)
	writeTestSkill(t, corpus, "incident-response", `---
name: incident-response
description: Incident response playbooks
metadata:
  category: operations
---

# Incident Response

See `+"`references/missing.md`"+`.
`)

	discovery, err := skill.NewDiscovery(skill.WithSkillDirs(corpus))
	require.NoError(t, err)

	s, err := New(&Config{Host: "localhost", Port: 8080}, discovery, lint.New())
	require.NoError(t, err)
	return s, corpus
}

func writeTestSkill(t *testing.T, corpus, name, content string) {
	t.Helper()
	dir := filepath.Join(corpus, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Host: "localhost", Port: 8080}, false},
		{"empty host", Config{Host: "", Port: 8080}, true},
		{"port too low", Config{Host: "localhost", Port: 0}, true},
		{"port too high", Config{Host: "localhost", Port: 70000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestListSkills(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Skills []skillSummary `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Skills, 2)
	assert.Equal(t, "incident-response", body.Skills[0].Name)
	assert.Equal(t, "schema-design", body.Skills[1].Name)
}

func TestListSkillsByCategory(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills?category=data", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Skills []skillSummary `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Skills, 1)
	assert.Equal(t, "schema-design", body.Skills[0].Name)
}

func TestGetSkill(t *testing.T) {
	s, corpus := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/schema-design", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail skillDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "schema-design", detail.Name)
	assert.Equal(t, filepath.Join(corpus, "schema-design"), detail.Directory)
	assert.Contains(t, detail.Content, "# Schema Design")
}

func TestGetSkillNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLintEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lint", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report lint.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Scanned)

	// incident-response references a missing file
	var rules []string
	for _, f := range report.Findings {
		rules = append(rules, f.Rule)
	}
	assert.Contains(t, rules, lint.RuleRefMissing)
}

func TestLintSkillEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/incident-response/lint", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report lint.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Scanned)

	var rules []string
	for _, f := range report.Findings {
		rules = append(rules, f.Rule)
	}
	assert.Contains(t, rules, lint.RuleRefMissing)
}

func TestLintSkillEndpointClean(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/schema-design/lint", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report lint.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Empty(t, report.Findings)
}

func TestLintSkillEndpointNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/nope/lint", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthzUnderAPI(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/skills", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
