package scan_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforesight/foresight/internal/domain"
	"github.com/codeforesight/foresight/internal/fixture"
	"github.com/codeforesight/foresight/internal/redaction"
	"github.com/codeforesight/foresight/internal/usecase/scan"
)

type fakeWriter struct {
	artifacts []scan.ReportArtifact
	err       error
}

func (w *fakeWriter) Write(ctx context.Context, artifact scan.ReportArtifact) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.artifacts = append(w.artifacts, artifact)
	return filepath.Join(artifact.OutputDir, "report"), nil
}

type fakeStore struct {
	runs     []scan.RunRecord
	findings [][]domain.Finding
	err      error
}

func (s *fakeStore) RecordRun(ctx context.Context, run scan.RunRecord, findings []domain.Finding) error {
	if s.err != nil {
		return s.err
	}
	s.runs = append(s.runs, run)
	s.findings = append(s.findings, findings)
	return nil
}

func (s *fakeStore) Close() error { return nil }

type fakeLogger struct {
	infos    []string
	warnings []string
}

func (l *fakeLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.infos = append(l.infos, message)
}

func (l *fakeLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.warnings = append(l.warnings, message)
}

func writeFixtureFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("full run reports all stages", func(t *testing.T) {
		path := writeFixtureFile(t, "demo_vuln.c", fixture.Vulnerable())
		pipeline := scan.NewPipeline(scan.Deps{})

		report, err := pipeline.Run(ctx, scan.Request{Path: path})
		require.NoError(t, err)

		require.NotNil(t, report.Stage1)
		require.NotNil(t, report.Stage2)
		require.NotNil(t, report.Stage3)
		assert.Equal(t, path, report.Input)
		assert.NotEmpty(t, report.Stage1.Findings)
		assert.Len(t, report.Stage2.Findings, 2)
		assert.Greater(t, report.Stage3.Score, 0.0)
	})

	t.Run("stage selection limits the report", func(t *testing.T) {
		path := writeFixtureFile(t, "demo_vuln.c", fixture.Vulnerable())
		pipeline := scan.NewPipeline(scan.Deps{})

		report, err := pipeline.Run(ctx, scan.Request{Path: path, Stage: scan.StageKnown})
		require.NoError(t, err)

		assert.NotNil(t, report.Stage1)
		assert.Nil(t, report.Stage2)
		assert.Nil(t, report.Stage3)
	})

	t.Run("stage 3 selection still consumes earlier stages", func(t *testing.T) {
		path := writeFixtureFile(t, "demo_vuln.c", fixture.Vulnerable())
		pipeline := scan.NewPipeline(scan.Deps{})

		report, err := pipeline.Run(ctx, scan.Request{Path: path, Stage: scan.StageFuture})
		require.NoError(t, err)

		require.NotNil(t, report.Stage3)
		assert.Greater(t, report.Stage3.Score, 0.0, "forecast must see stage 1/2 findings")
	})

	t.Run("source override skips disk access", func(t *testing.T) {
		pipeline := scan.NewPipeline(scan.Deps{})

		report, err := pipeline.Run(ctx, scan.Request{
			Path:   "virtual/demo_vuln.c",
			Source: fixture.Vulnerable(),
		})
		require.NoError(t, err)

		assert.NotEmpty(t, report.Stage1.Findings)
	})

	t.Run("missing input is an error", func(t *testing.T) {
		pipeline := scan.NewPipeline(scan.Deps{})

		_, err := pipeline.Run(ctx, scan.Request{Path: filepath.Join(t.TempDir(), "absent.c")})

		assert.Error(t, err)
	})

	t.Run("writers receive the artifact when an output dir is set", func(t *testing.T) {
		path := writeFixtureFile(t, "demo_vuln.c", fixture.Vulnerable())
		jsonWriter := &fakeWriter{}
		sarifWriter := &fakeWriter{}
		logger := &fakeLogger{}
		pipeline := scan.NewPipeline(scan.Deps{JSON: jsonWriter, SARIF: sarifWriter, Logger: logger})

		_, err := pipeline.Run(ctx, scan.Request{Path: path, OutputDir: t.TempDir()})
		require.NoError(t, err)

		assert.Len(t, jsonWriter.artifacts, 1)
		assert.Len(t, sarifWriter.artifacts, 1)
		assert.Contains(t, logger.infos, "artifact written")
	})

	t.Run("format selection narrows the writers", func(t *testing.T) {
		path := writeFixtureFile(t, "demo_vuln.c", fixture.Vulnerable())
		jsonWriter := &fakeWriter{}
		sarifWriter := &fakeWriter{}
		markdownWriter := &fakeWriter{}
		pipeline := scan.NewPipeline(scan.Deps{JSON: jsonWriter, SARIF: sarifWriter, Markdown: markdownWriter})

		_, err := pipeline.Run(ctx, scan.Request{
			Path:      path,
			OutputDir: t.TempDir(),
			Formats:   []scan.Format{scan.FormatSARIF, scan.FormatMarkdown},
		})
		require.NoError(t, err)

		assert.Empty(t, jsonWriter.artifacts)
		assert.Len(t, sarifWriter.artifacts, 1)
		assert.Len(t, markdownWriter.artifacts, 1)
	})

	t.Run("writer failure aborts the run", func(t *testing.T) {
		path := writeFixtureFile(t, "demo_vuln.c", fixture.Vulnerable())
		pipeline := scan.NewPipeline(scan.Deps{JSON: &fakeWriter{err: errors.New("disk full")}})

		_, err := pipeline.Run(ctx, scan.Request{Path: path, OutputDir: t.TempDir()})

		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("runs are recorded in the store", func(t *testing.T) {
		path := writeFixtureFile(t, "demo_vuln.c", fixture.Vulnerable())
		store := &fakeStore{}
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		pipeline := scan.NewPipeline(scan.Deps{Store: store, Now: func() time.Time { return now }})

		_, err := pipeline.Run(ctx, scan.Request{Path: path})
		require.NoError(t, err)

		require.Len(t, store.runs, 1)
		run := store.runs[0]
		assert.NotEmpty(t, run.RunID)
		assert.Equal(t, now, run.Timestamp)
		assert.Equal(t, "c", run.Language)
		assert.Greater(t, run.FindingCount, 0)
		assert.NotEmpty(t, store.findings[0])
	})

	t.Run("store failure is logged but not fatal", func(t *testing.T) {
		path := writeFixtureFile(t, "demo_vuln.c", fixture.Vulnerable())
		logger := &fakeLogger{}
		pipeline := scan.NewPipeline(scan.Deps{
			Store:  &fakeStore{err: errors.New("locked")},
			Logger: logger,
		})

		_, err := pipeline.Run(ctx, scan.Request{Path: path})

		require.NoError(t, err)
		assert.Contains(t, logger.warnings, "failed to record run")
	})

	t.Run("snippets are redacted before reporting", func(t *testing.T) {
		path := writeFixtureFile(t, "demo_vuln.c", fixture.Vulnerable())
		pipeline := scan.NewPipeline(scan.Deps{Redactor: redaction.NewEngine()})

		report, err := pipeline.Run(ctx, scan.Request{Path: path})
		require.NoError(t, err)

		for _, f := range report.Stage1.Findings {
			assert.NotContains(t, f.Snippet, "P@ssw0rd!", "hardcoded secret leaked into report")
		}
	})
}

func TestParseFormats(t *testing.T) {
	t.Run("empty value selects every format", func(t *testing.T) {
		formats, err := scan.ParseFormats("")
		require.NoError(t, err)

		assert.Nil(t, formats)
	})

	t.Run("splits a comma list, trimming and lowercasing", func(t *testing.T) {
		formats, err := scan.ParseFormats(" SARIF, markdown ")
		require.NoError(t, err)

		assert.Equal(t, []scan.Format{scan.FormatSARIF, scan.FormatMarkdown}, formats)
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		_, err := scan.ParseFormats("json,xml")

		assert.ErrorContains(t, err, `unknown format "xml"`)
	})
}
