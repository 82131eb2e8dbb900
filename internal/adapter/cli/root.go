package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeforesight/foresight/internal/domain"
	"github.com/codeforesight/foresight/internal/fixture"
	"github.com/codeforesight/foresight/internal/usecase/scan"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ErrGateFailed indicates a CI gate did not pass; the host maps it to exit code 1.
var ErrGateFailed = errors.New("gate failed")

// ErrUsage indicates an invalid invocation; the host maps it to exit code 2.
var ErrUsage = errors.New("usage error")

// Pipeline defines the scanning dependency for the scan and gate commands.
type Pipeline interface {
	Run(ctx context.Context, req scan.Request) (domain.Report, error)
	RunBranch(ctx context.Context, source scan.FileSource, req scan.BranchRequest) ([]domain.Report, error)
}

// History defines the store dependency for the history command.
type History interface {
	ListRuns(ctx context.Context, limit int) ([]scan.RunRecord, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Pipeline         Pipeline
	FileSource       func(repoDir string) (scan.FileSource, error)
	History          History
	Args             Arguments
	DefaultOutput    string
	DefaultRepoDir   string
	DefaultThreshold float64
	Getenv           func(string) string
	IsTerminal       func() bool
	Version          string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.IsTerminal == nil {
		deps.IsTerminal = scan.IsOutputTerminal
	}

	root := &cobra.Command{
		Use:   "foresight",
		Short: "Staged vulnerability scanner CLI",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(scanCommand(deps))
	root.AddCommand(gateCommand(deps))
	root.AddCommand(demoCommand(deps))
	root.AddCommand(historyCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

// usageArgs maps positional argument validation failures to ErrUsage so
// the host exits with the usage code.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}

// stageFlags registers the mutually exclusive stage selection flags.
type stageFlags struct {
	stage1 bool
	stage2 bool
	stage3 bool
}

func (f *stageFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.stage1, "stage1", false, "Select the known-pattern rule scan")
	cmd.Flags().BoolVar(&f.stage2, "stage2", false, "Select the business-logic heuristics")
	cmd.Flags().BoolVar(&f.stage3, "stage3", false, "Select the future-risk forecast")
}

// resolve returns the selected stage. More than one selection is a usage
// error; none selects all stages.
func (f *stageFlags) resolve() (scan.Stage, error) {
	selected := 0
	stage := scan.StageAll
	if f.stage1 {
		selected++
		stage = scan.StageKnown
	}
	if f.stage2 {
		selected++
		stage = scan.StageLogic
	}
	if f.stage3 {
		selected++
		stage = scan.StageFuture
	}
	if selected > 1 {
		return scan.StageAll, fmt.Errorf("%w: --stage1, --stage2, and --stage3 are mutually exclusive", ErrUsage)
	}
	return stage, nil
}

func scanCommand(deps Dependencies) *cobra.Command {
	var outputDir string
	var formatList string
	var pretty bool
	var stages stageFlags

	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Run the staged analysis over a source file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := stages.resolve()
			if err != nil {
				return err
			}
			formats, err := scan.ParseFormats(formatList)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrUsage, err)
			}

			report, err := deps.Pipeline.Run(cmd.Context(), scan.Request{
				Path:      args[0],
				OutputDir: outputDir,
				Formats:   formats,
				Stage:     stage,
			})
			if err != nil {
				return err
			}

			usePretty := pretty
			if !cmd.Flags().Changed("pretty") {
				usePretty = deps.IsTerminal()
			}
			if usePretty {
				printReport(cmd.OutOrStdout(), report)
				return nil
			}
			return encodeJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&outputDir, "out", deps.DefaultOutput, "Directory to write report artifacts; empty disables artifacts")
	cmd.Flags().StringVar(&formatList, "format", "", "Comma-separated artifact formats to write (json, sarif, markdown); empty writes all")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Human-readable summary instead of JSON (default on terminals)")
	stages.register(cmd)

	cmd.AddCommand(branchCommand(deps))

	return cmd
}

func branchCommand(deps Dependencies) *cobra.Command {
	var baseRef string
	var repoDir string
	var outputDir string
	var formatList string
	var pretty bool
	var stages stageFlags

	cmd := &cobra.Command{
		Use:   "branch [target]",
		Short: "Scan the files changed between a base ref and a branch",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := stages.resolve()
			if err != nil {
				return err
			}
			formats, err := scan.ParseFormats(formatList)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrUsage, err)
			}

			targetRef := ""
			if len(args) > 0 {
				targetRef = args[0]
			}

			source, err := deps.FileSource(repoDir)
			if err != nil {
				return fmt.Errorf("open repository: %w", err)
			}

			reports, err := deps.Pipeline.RunBranch(cmd.Context(), source, scan.BranchRequest{
				BaseRef:   baseRef,
				TargetRef: targetRef,
				OutputDir: outputDir,
				Formats:   formats,
				Stage:     stage,
			})
			if err != nil {
				return err
			}

			usePretty := pretty
			if !cmd.Flags().Changed("pretty") {
				usePretty = deps.IsTerminal()
			}
			if usePretty {
				for _, report := range reports {
					printReport(cmd.OutOrStdout(), report)
				}
				if len(reports) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No changed files to scan.")
				}
				return nil
			}
			return encodeJSON(cmd.OutOrStdout(), reports)
		},
	}

	cmd.Flags().StringVar(&baseRef, "base", "main", "Base reference to diff against")
	cmd.Flags().StringVar(&repoDir, "repo", deps.DefaultRepoDir, "Repository directory")
	cmd.Flags().StringVar(&outputDir, "out", deps.DefaultOutput, "Directory to write report artifacts; empty disables artifacts")
	cmd.Flags().StringVar(&formatList, "format", "", "Comma-separated artifact formats to write (json, sarif, markdown); empty writes all")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Human-readable summary instead of JSON (default on terminals)")
	stages.register(cmd)

	return cmd
}

func gateCommand(deps Dependencies) *cobra.Command {
	var threshold float64
	var stages stageFlags

	cmd := &cobra.Command{
		Use:   "gate [file]",
		Short: "Gate a CI run on one analysis stage",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := stages.resolve()
			if err != nil {
				return err
			}
			if stage == scan.StageAll {
				return fmt.Errorf("%w: gate requires exactly one of --stage1, --stage2, --stage3", ErrUsage)
			}

			report, err := deps.Pipeline.Run(cmd.Context(), scan.Request{
				Path:  args[0],
				Stage: stage,
			})
			if err != nil {
				return err
			}

			result, err := scan.EvaluateGate(report, stage, threshold)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrUsage, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Reason)
			if !result.Passed {
				return ErrGateFailed
			}
			return nil
		},
	}

	if deps.DefaultThreshold == 0 {
		deps.DefaultThreshold = scan.DefaultStage3Threshold
	}
	cmd.Flags().Float64Var(&threshold, "stage3-threshold", deps.DefaultThreshold, "Risk score at which the stage 3 gate fails")
	stages.register(cmd)

	return cmd
}

func demoCommand(deps Dependencies) *cobra.Command {
	var fixtureName string

	cmd := &cobra.Command{
		Use:   "demo [input]",
		Short: "Run the embedded demo program or print a fixture source",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch fixtureName {
			case "":
			case "vulnerable":
				fmt.Fprint(cmd.OutOrStdout(), fixture.Vulnerable())
				return nil
			case "fixed":
				fmt.Fprint(cmd.OutOrStdout(), fixture.Stage1Fixed())
				return nil
			default:
				return fmt.Errorf("%w: unknown fixture %q (want vulnerable or fixed)", ErrUsage, fixtureName)
			}

			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			fixture.NewDemo(cmd.OutOrStdout(), deps.Getenv).Run(input)
			return nil
		},
	}

	cmd.Flags().StringVar(&fixtureName, "fixture", "", "Print an embedded fixture source (vulnerable or fixed) instead of running the demo")

	return cmd
}

func historyCommand(deps Dependencies) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scan runs",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.History == nil {
				return fmt.Errorf("history is unavailable: store is disabled")
			}

			runs, err := deps.History.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
				return nil
			}

			for _, run := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-8s  %s  findings=%d  risk=%.2f\n",
					run.RunID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Stage,
					run.Input,
					run.FindingCount,
					run.RiskScore,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")

	return cmd
}

func encodeJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// printReport renders a compact human summary of one report.
func printReport(out io.Writer, report domain.Report) {
	fmt.Fprintf(out, "Input: %s\n", report.Input)

	if report.Stage1 != nil {
		fmt.Fprintf(out, "Stage 1 (known patterns): %d findings\n", report.Stage1.Count)
		for _, finding := range report.Stage1.Findings {
			fmt.Fprintf(out, "  [%s] %s %s:%d %s\n",
				finding.Severity, finding.RuleID, finding.File, finding.Line, finding.Name)
		}
	}
	if report.Stage2 != nil {
		fmt.Fprintf(out, "Stage 2 (logic flaws): %d findings\n", len(report.Stage2.Findings))
		for _, finding := range report.Stage2.Findings {
			fmt.Fprintf(out, "  [%s] line %d: %s\n", finding.Severity, finding.Line, finding.Issue)
		}
	}
	if report.Stage3 != nil {
		fmt.Fprintf(out, "Stage 3 (future risk): score %.2f, timeline %s\n",
			report.Stage3.Score, report.Stage3.Timeline)
		for _, likely := range report.Stage3.LikelyCWE {
			fmt.Fprintf(out, "  %s %s\n", likely.CWE, likely.Name)
		}
	}
	fmt.Fprintln(out)
}
