package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/engine"
	"github.com/shaiso/supercon/internal/namelist"
	"github.com/shaiso/supercon/internal/steps"
)

// NewSpecCmd создаёт группу команд для файлов WorkflowSpec.
func NewSpecCmd(outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Validate and convert workflow specs",
	}

	cmd.AddCommand(
		newSpecValidateCmd(outputFn),
		newSpecConvertCmd(outputFn),
		newSpecJobsCmd(outputFn),
	)

	return cmd
}

func newSpecValidateCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a workflow can be built from the spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := domain.LoadSpecFile(args[0])
			if err != nil {
				return err
			}
			if err := engine.ValidateSpec(spec); err != nil {
				return err
			}

			out := outputFn()
			if out.jsonMode {
				out.JSON(spec.ToMap())
				return nil
			}

			k, _ := spec.KPoints.First()
			q, _ := spec.QPoints.First()
			out.Table([]string{"FIELD", "VALUE"}, [][]string{
				{"Atoms", fmt.Sprint(spec.Atoms.NumAtoms())},
				{"Species", fmt.Sprint(spec.Atoms.Species())},
				{"K-points", fmt.Sprint(k)},
				{"Q-points", fmt.Sprint(q)},
				{"Relax mode", spec.RelaxMode},
				{"Engine", spec.EngineCommand},
			})
			out.Success("Spec is valid")
			return nil
		},
	}
}

func newSpecConvertCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "convert SRC DST",
		Short: "Normalize a spec (YAML or JSON) into a YAML file with defaults",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := domain.LoadSpecFile(args[0])
			if err != nil {
				return err
			}
			if err := domain.SaveSpecFile(args[1], spec); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Spec written to %s", args[1]))
			return nil
		},
	}
}

// JobView — задание стадии в выводе spec jobs.
type JobView struct {
	Stage      string                    `json:"stage"`
	Name       string                    `json:"name"`
	Command    string                    `json:"command"`
	InputFile  string                    `json:"input_file"`
	OutputFile string                    `json:"output_file"`
	Config     map[string]map[string]any `json:"config"`
}

func newSpecJobsCmd(outputFn func() *Output) *cobra.Command {
	var pseudoDir string

	cmd := &cobra.Command{
		Use:   "jobs FILE",
		Short: "Show the engine jobs built from the spec without running them",
		Long: `Build the job of every engine stage from the spec and print the
command, files and namelist sections. All stages use the input structure,
since the relaxed one is only known after relax.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := domain.LoadSpecFile(args[0])
			if err != nil {
				return err
			}
			spec = spec.WithDefaults()

			if pseudoDir == "" {
				pseudoDir = os.Getenv("QE_PSPDIR")
			}

			jobs, err := steps.DefaultPipeline().Jobs(steps.NewRequest(spec, spec.Atoms, pseudoDir))
			if err != nil {
				return err
			}

			views := make([]JobView, len(jobs))
			rows := make([][]string, len(jobs))
			for i, job := range jobs {
				views[i] = JobView{
					Stage:      string(job.Stage),
					Name:       job.Name,
					Command:    job.Command,
					InputFile:  job.InputFile,
					OutputFile: job.OutputFile,
					Config:     job.Config.Map(),
				}
				rows[i] = []string{
					string(job.Stage),
					job.Command,
					job.InputFile,
					job.OutputFile,
					namelistSummary(job.Config),
				}
			}

			outputFn().Print([]string{"STAGE", "COMMAND", "INPUT", "OUTPUT", "NAMELISTS"}, rows, views)
			return nil
		},
	}

	cmd.Flags().StringVar(&pseudoDir, "pseudo-dir", "", "pseudopotential directory (default: $QE_PSPDIR)")

	return cmd
}

// namelistSummary: "control(7) system(9)".
func namelistSummary(cfg namelist.Config) string {
	sections := cfg.Sections()
	parts := make([]string, len(sections))
	for i, name := range sections {
		parts[i] = fmt.Sprintf("%s(%d)", name, len(cfg.Keys(name)))
	}
	return strings.Join(parts, " ")
}
