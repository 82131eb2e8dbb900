package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/codeforesight/foresight/internal/domain"
)

// Stage selects which part of the pipeline a request runs.
type Stage int

const (
	// StageAll runs every stage and reports all of them.
	StageAll Stage = iota
	// StageKnown reports only the rule scan.
	StageKnown
	// StageLogic reports only the business-logic heuristics.
	StageLogic
	// StageFuture reports only the risk forecast.
	StageFuture
)

// String returns the report label for a stage.
func (s Stage) String() string {
	switch s {
	case StageKnown:
		return "stage1"
	case StageLogic:
		return "stage2"
	case StageFuture:
		return "stage3"
	default:
		return "all"
	}
}

// Format names one artifact writer a request can select.
type Format string

const (
	FormatJSON     Format = "json"
	FormatSARIF    Format = "sarif"
	FormatMarkdown Format = "markdown"
)

// ParseFormats splits a comma-separated format list. An empty value
// selects every format.
func ParseFormats(value string) ([]Format, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	formats := make([]Format, 0, 3)
	for _, part := range strings.Split(value, ",") {
		format := Format(strings.ToLower(strings.TrimSpace(part)))
		switch format {
		case FormatJSON, FormatSARIF, FormatMarkdown:
			formats = append(formats, format)
		default:
			return nil, fmt.Errorf("unknown format %q (want json, sarif, or markdown)", strings.TrimSpace(part))
		}
	}
	return formats, nil
}

// ReportArtifact carries a finished report to an output writer.
type ReportArtifact struct {
	OutputDir string
	Input     string
	Report    domain.Report
}

// JSONWriter persists a report as a JSON artifact.
type JSONWriter interface {
	Write(ctx context.Context, artifact ReportArtifact) (string, error)
}

// SARIFWriter persists a report in SARIF 2.1.0 form.
type SARIFWriter interface {
	Write(ctx context.Context, artifact ReportArtifact) (string, error)
}

// MarkdownWriter renders a report for human review.
type MarkdownWriter interface {
	Write(ctx context.Context, artifact ReportArtifact) (string, error)
}

// RunRecord summarizes one pipeline run for the history store.
type RunRecord struct {
	RunID        string
	Timestamp    time.Time
	Input        string
	Language     string
	Stage        string
	FindingCount int
	RiskScore    float64
}

// Store persists run history and findings.
type Store interface {
	RecordRun(ctx context.Context, run RunRecord, findings []domain.Finding) error
	Close() error
}

// Logger receives structured pipeline events.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Redactor scrubs secrets from snippets before they leave the pipeline.
type Redactor interface {
	Redact(input string) string
}

// Request describes one pipeline invocation.
type Request struct {
	// Path of the input; used for language detection and reporting.
	Path string
	// Source overrides reading Path from disk when non-empty. Branch
	// scans supply blob contents directly.
	Source string
	// OutputDir enables artifact writing when non-empty.
	OutputDir string
	// Formats selects which artifact writers run; empty selects all.
	Formats []Format
	// Stage selects a single stage; StageAll runs everything.
	Stage Stage
}

func (req Request) wantsFormat(format Format) bool {
	if len(req.Formats) == 0 {
		return true
	}
	for _, want := range req.Formats {
		if want == format {
			return true
		}
	}
	return false
}

// Deps captures the pipeline collaborators. Writers, store, logger, and
// redactor are each optional; a nil dependency disables that concern.
type Deps struct {
	JSON     JSONWriter
	SARIF    SARIFWriter
	Markdown MarkdownWriter
	Store    Store
	Logger   Logger
	Redactor Redactor
	Now      func() time.Time
}

// Pipeline orchestrates the staged analysis over one input.
type Pipeline struct {
	scanner *Scanner
	deps    Deps
}

// NewPipeline constructs a pipeline with the supplied collaborators.
func NewPipeline(deps Deps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{scanner: NewScanner(), deps: deps}
}

// Run executes the requested stages and returns the report. Stage 1 and 2
// always execute internally because the forecast consumes their output;
// the report only includes the requested stages.
func (p *Pipeline) Run(ctx context.Context, req Request) (domain.Report, error) {
	code := req.Source
	if code == "" {
		raw, err := os.ReadFile(req.Path)
		if err != nil {
			return domain.Report{}, fmt.Errorf("read input %s: %w", req.Path, err)
		}
		code = string(raw)
	}

	language := DetectLanguage(req.Path, code)

	stage1 := p.scanner.Scan(code, req.Path)
	stage2 := AnalyzeLogic(code)
	stage3 := Forecast(stage1.Findings, stage2.Findings)

	p.redact(&stage1, &stage2)

	report := domain.Report{Input: req.Path}
	switch req.Stage {
	case StageKnown:
		report.Stage1 = &stage1
	case StageLogic:
		report.Stage2 = &stage2
	case StageFuture:
		report.Stage3 = &stage3
	default:
		report.Stage1 = &stage1
		report.Stage2 = &stage2
		report.Stage3 = &stage3
	}

	if err := p.writeArtifacts(ctx, req, report); err != nil {
		return domain.Report{}, err
	}

	if p.deps.Store != nil {
		run := RunRecord{
			RunID:        runID(req.Path, p.deps.Now()),
			Timestamp:    p.deps.Now(),
			Input:        req.Path,
			Language:     language,
			Stage:        req.Stage.String(),
			FindingCount: stage1.Count + len(stage2.Findings),
			RiskScore:    stage3.Score,
		}
		if err := p.deps.Store.RecordRun(ctx, run, stage1.Findings); err != nil {
			// History is best-effort; a full report still reaches the caller.
			p.warn(ctx, "failed to record run", map[string]interface{}{"error": err.Error()})
		}
	}

	p.info(ctx, "scan complete", map[string]interface{}{
		"input":    req.Path,
		"language": language,
		"stage":    req.Stage.String(),
		"findings": stage1.Count,
		"logic":    len(stage2.Findings),
		"risk":     stage3.Score,
	})

	return report, nil
}

func (p *Pipeline) redact(stage1 *domain.Stage1Result, stage2 *domain.Stage2Result) {
	if p.deps.Redactor == nil {
		return
	}
	for i := range stage1.Findings {
		stage1.Findings[i].Snippet = p.deps.Redactor.Redact(stage1.Findings[i].Snippet)
	}
	for i := range stage2.Findings {
		stage2.Findings[i].Snippet = p.deps.Redactor.Redact(stage2.Findings[i].Snippet)
	}
}

func (p *Pipeline) writeArtifacts(ctx context.Context, req Request, report domain.Report) error {
	if req.OutputDir == "" {
		return nil
	}
	artifact := ReportArtifact{OutputDir: req.OutputDir, Input: req.Path, Report: report}

	if p.deps.JSON != nil && req.wantsFormat(FormatJSON) {
		path, err := p.deps.JSON.Write(ctx, artifact)
		if err != nil {
			return fmt.Errorf("write json artifact: %w", err)
		}
		p.info(ctx, "artifact written", map[string]interface{}{"format": "json", "path": path})
	}
	if p.deps.SARIF != nil && req.wantsFormat(FormatSARIF) {
		path, err := p.deps.SARIF.Write(ctx, artifact)
		if err != nil {
			return fmt.Errorf("write sarif artifact: %w", err)
		}
		p.info(ctx, "artifact written", map[string]interface{}{"format": "sarif", "path": path})
	}
	if p.deps.Markdown != nil && req.wantsFormat(FormatMarkdown) {
		path, err := p.deps.Markdown.Write(ctx, artifact)
		if err != nil {
			return fmt.Errorf("write markdown artifact: %w", err)
		}
		p.info(ctx, "artifact written", map[string]interface{}{"format": "markdown", "path": path})
	}
	return nil
}

func (p *Pipeline) info(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.deps.Logger != nil {
		p.deps.Logger.LogInfo(ctx, msg, fields)
	}
}

func (p *Pipeline) warn(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.deps.Logger != nil {
		p.deps.Logger.LogWarning(ctx, msg, fields)
	}
}

// runID derives a short stable identifier from the input path and run time.
func runID(path string, at time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", path, at.UnixNano())))
	return hex.EncodeToString(sum[:])[:12]
}
