package scan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforesight/foresight/internal/fixture"
	"github.com/codeforesight/foresight/internal/usecase/scan"
)

type fakeFileSource struct {
	files     []scan.ChangedFile
	branch    string
	filesErr  error
	branchErr error

	requestedBase   string
	requestedTarget string
}

func (s *fakeFileSource) ChangedFiles(ctx context.Context, baseRef, targetRef string) ([]scan.ChangedFile, error) {
	s.requestedBase = baseRef
	s.requestedTarget = targetRef
	return s.files, s.filesErr
}

func (s *fakeFileSource) CurrentBranch(ctx context.Context) (string, error) {
	return s.branch, s.branchErr
}

func TestPipelineRunBranch(t *testing.T) {
	ctx := context.Background()

	t.Run("scans every changed file", func(t *testing.T) {
		source := &fakeFileSource{files: []scan.ChangedFile{
			{Path: "src/demo_vuln.c", Content: fixture.Vulnerable()},
			{Path: "src/clean.c", Content: "int main(void) { return 0; }\n"},
		}}
		pipeline := scan.NewPipeline(scan.Deps{})

		reports, err := pipeline.RunBranch(ctx, source, scan.BranchRequest{
			BaseRef:   "main",
			TargetRef: "feature",
		})
		require.NoError(t, err)

		require.Len(t, reports, 2)
		assert.Equal(t, "src/demo_vuln.c", reports[0].Input)
		assert.NotEmpty(t, reports[0].Stage1.Findings)
		assert.Empty(t, reports[1].Stage1.Findings)
		assert.Equal(t, "main", source.requestedBase)
		assert.Equal(t, "feature", source.requestedTarget)
	})

	t.Run("empty target resolves the checked-out branch", func(t *testing.T) {
		source := &fakeFileSource{branch: "feature"}
		pipeline := scan.NewPipeline(scan.Deps{})

		_, err := pipeline.RunBranch(ctx, source, scan.BranchRequest{BaseRef: "main"})
		require.NoError(t, err)

		assert.Equal(t, "feature", source.requestedTarget)
	})

	t.Run("branch detection failure surfaces", func(t *testing.T) {
		source := &fakeFileSource{branchErr: errors.New("detached HEAD")}
		pipeline := scan.NewPipeline(scan.Deps{})

		_, err := pipeline.RunBranch(ctx, source, scan.BranchRequest{BaseRef: "main"})

		assert.ErrorContains(t, err, "detached HEAD")
	})

	t.Run("changed file errors surface", func(t *testing.T) {
		source := &fakeFileSource{filesErr: errors.New("unable to resolve ref")}
		pipeline := scan.NewPipeline(scan.Deps{})

		_, err := pipeline.RunBranch(ctx, source, scan.BranchRequest{BaseRef: "main", TargetRef: "feature"})

		assert.ErrorContains(t, err, "unable to resolve ref")
	})

	t.Run("empty files are skipped", func(t *testing.T) {
		source := &fakeFileSource{files: []scan.ChangedFile{{Path: "empty.c"}}}
		pipeline := scan.NewPipeline(scan.Deps{})

		reports, err := pipeline.RunBranch(ctx, source, scan.BranchRequest{BaseRef: "main", TargetRef: "feature"})
		require.NoError(t, err)

		assert.Empty(t, reports)
	})
}
