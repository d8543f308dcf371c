package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePlan(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write plan file: %v", err)
	}
	return path
}

func TestLoadPlanDocumentYAML(t *testing.T) {
	content := `
version: 1
cred: prod
steps:
  - op: mkdirs
    path: /srv/incoming/reports
  - op: upload
    local_path: ./report.pdf
    remote_path: /srv/incoming/reports/report.pdf
    chunk_size: 65536
  - op: list
    path: /srv/incoming
    with_info: true
    types: [regular, directory]
    exclude: "*.tmp"
`
	doc, err := loadPlanDocument(writePlan(t, "plan.yaml", content))
	if err != nil {
		t.Fatalf("load plan: %v", err)
	}
	if doc.Credential != "prod" {
		t.Fatalf("expected cred prod, got %q", doc.Credential)
	}
	if len(doc.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(doc.Steps))
	}
	if doc.Steps[1].ChunkSize != 65536 {
		t.Fatalf("expected chunk size 65536, got %d", doc.Steps[1].ChunkSize)
	}
	// Scalar exclude decodes as a one-element list.
	if len(doc.Steps[2].Exclude) != 1 || doc.Steps[2].Exclude[0] != "*.tmp" {
		t.Fatalf("unexpected exclude list: %v", doc.Steps[2].Exclude)
	}
	if len(doc.Steps[2].Types) != 2 {
		t.Fatalf("unexpected types list: %v", doc.Steps[2].Types)
	}
}

func TestLoadPlanDocumentJSON(t *testing.T) {
	content := `{
  "version": 1,
  "cred": "staging",
  "steps": [
    {"op": "download", "remote_path": "/logs/app.log", "local_path": "./app.log"},
    {"op": "remove", "path": "/logs/old"}
  ]
}`
	doc, err := loadPlanDocument(writePlan(t, "plan.json", content))
	if err != nil {
		t.Fatalf("load plan: %v", err)
	}
	if doc.Credential != "staging" || len(doc.Steps) != 2 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Steps[0].Op != "download" || doc.Steps[0].RemotePath != "/logs/app.log" {
		t.Fatalf("unexpected first step: %+v", doc.Steps[0])
	}
}

func TestLoadPlanDocumentValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing cred",
			content: "steps:\n  - op: mkdirs\n    path: /a\n",
			wantErr: "missing cred",
		},
		{
			name:    "no steps",
			content: "cred: prod\n",
			wantErr: "no steps",
		},
		{
			name:    "unknown op",
			content: "cred: prod\nsteps:\n  - op: teleport\n    path: /a\n",
			wantErr: "unknown op",
		},
		{
			name:    "mkdirs without path",
			content: "cred: prod\nsteps:\n  - op: mkdirs\n",
			wantErr: "missing path",
		},
		{
			name:    "upload without remote path",
			content: "cred: prod\nsteps:\n  - op: upload\n    local_path: ./a\n",
			wantErr: "missing remote_path",
		},
		{
			name:    "bad version",
			content: "version: 2\ncred: prod\nsteps:\n  - op: mkdirs\n    path: /a\n",
			wantErr: "unsupported plan version",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadPlanDocument(writePlan(t, "plan.yaml", tc.content))
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
