package scan

import (
	"context"
	"fmt"

	"github.com/codeforesight/foresight/internal/domain"
)

// ChangedFile is one file that differs between two refs, with its content
// taken from the target side.
type ChangedFile struct {
	Path    string
	Content string
}

// FileSource resolves the files a branch scan should analyze.
type FileSource interface {
	ChangedFiles(ctx context.Context, baseRef, targetRef string) ([]ChangedFile, error)
	CurrentBranch(ctx context.Context) (string, error)
}

// BranchRequest describes a scan over the files changed on a branch.
type BranchRequest struct {
	BaseRef   string
	TargetRef string
	OutputDir string
	Formats   []Format
	Stage     Stage
}

// RunBranch scans every file changed between the request refs and returns
// one report per file. An empty target ref resolves to the checked-out
// branch.
func (p *Pipeline) RunBranch(ctx context.Context, source FileSource, req BranchRequest) ([]domain.Report, error) {
	target := req.TargetRef
	if target == "" {
		resolved, err := source.CurrentBranch(ctx)
		if err != nil {
			return nil, fmt.Errorf("detect target branch: %w", err)
		}
		target = resolved
	}

	files, err := source.ChangedFiles(ctx, req.BaseRef, target)
	if err != nil {
		return nil, fmt.Errorf("resolve changed files: %w", err)
	}

	reports := make([]domain.Report, 0, len(files))
	for _, file := range files {
		if file.Content == "" {
			continue
		}
		report, err := p.Run(ctx, Request{
			Path:      file.Path,
			Source:    file.Content,
			OutputDir: req.OutputDir,
			Formats:   req.Formats,
			Stage:     req.Stage,
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", file.Path, err)
		}
		reports = append(reports, report)
	}

	return reports, nil
}
