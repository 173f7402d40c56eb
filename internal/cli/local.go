package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/elph"
	"github.com/shaiso/supercon/internal/orchestrator"
)

// OrchestratorFactory создаёт Orchestrator для локального запуска.
type OrchestratorFactory func(cfg orchestrator.Config) *orchestrator.Orchestrator

var tcHeaders = []string{"BROADENING", "LAMBDA", "WLOG", "TC"}

func tcRows(results []TcResult) [][]string {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{formatFloat(r.Broadening), formatFloat(r.Lambda), formatFloat(r.Wlog), formatFloat(r.Tc)}
	}
	return rows
}

func toTcResults(results []domain.TcResult) []TcResult {
	out := make([]TcResult, len(results))
	for i, r := range results {
		out[i] = TcResult(r)
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// NewRunCmd создаёт команду локального запуска workflow.
// newOrch == nil — orchestrator.New.
func NewRunCmd(outputFn func() *Output, newOrch OrchestratorFactory) *cobra.Command {
	if newOrch == nil {
		newOrch = orchestrator.New
	}

	var file, workDir, pseudoDir string
	var mu float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the Tc workflow locally",
		Long: `Run relax, scf, phonon, force-constant and interpolation stages
in the work directory, then parse the lambda file and compute Tc.
The work directory is not cleaned afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := domain.LoadSpecFile(file)
			if err != nil {
				return err
			}

			if pseudoDir == "" {
				pseudoDir = os.Getenv("QE_PSPDIR")
			}

			orch := newOrch(orchestrator.Config{
				PseudoDir: pseudoDir,
				Mu:        &mu,
				Logger:    slog.Default(),
			})

			results, err := orch.RunWorkflow(cmd.Context(), spec, workDir)
			if err != nil {
				return err
			}

			out := outputFn()
			if len(results) == 0 {
				out.Warn("coupling file has no records")
			}
			tc := toTcResults(results)
			out.Print(tcHeaders, tcRows(tc), tc)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to workflow spec (YAML or JSON)")
	cmd.Flags().StringVar(&workDir, "workdir", ".", "Work directory for engine files")
	cmd.Flags().StringVar(&pseudoDir, "pseudo-dir", "", "Pseudopotential directory (default: $QE_PSPDIR)")
	cmd.Flags().Float64Var(&mu, "mu", elph.DefaultMu, "Coulomb pseudopotential mu*")
	cmd.MarkFlagRequired("file")

	return cmd
}

// NewTcCmd создаёт команду вычисления Tc по формуле Allen-Dynes.
func NewTcCmd(outputFn func() *Output) *cobra.Command {
	var wlog, lambda, mu float64

	cmd := &cobra.Command{
		Use:   "tc",
		Short: "Compute Tc with the Allen-Dynes formula",
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := elph.CalcTc(wlog, lambda, mu)
			if err != nil {
				return err
			}

			res := []TcResult{{Wlog: wlog, Lambda: lambda, Tc: tc}}
			outputFn().Print([]string{"LAMBDA", "WLOG", "MU", "TC"},
				[][]string{{formatFloat(lambda), formatFloat(wlog), formatFloat(mu), formatFloat(tc)}},
				res[0])
			return nil
		},
	}

	cmd.Flags().Float64Var(&wlog, "wlog", 0, "Logarithmic average phonon frequency (K)")
	cmd.Flags().Float64Var(&lambda, "lambda", 0, "Electron-phonon coupling constant")
	cmd.Flags().Float64Var(&mu, "mu", elph.DefaultMu, "Coulomb pseudopotential mu*")
	cmd.MarkFlagRequired("wlog")
	cmd.MarkFlagRequired("lambda")

	return cmd
}

// NewLambdaCmd создаёт команду разбора файла lambda.
func NewLambdaCmd(outputFn func() *Output) *cobra.Command {
	var mu float64

	cmd := &cobra.Command{
		Use:   "lambda FILE",
		Short: "Parse a lambda file and compute Tc for each broadening",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := elph.ParseCouplingFile(args[0])
			if err != nil {
				return err
			}

			results, err := elph.Evaluate(records, mu)
			if err != nil {
				return err
			}

			out := outputFn()
			if len(results) == 0 {
				out.Warn("coupling file has no records")
			}
			tc := toTcResults(results)
			out.Print(tcHeaders, tcRows(tc), tc)
			return nil
		},
	}

	cmd.Flags().Float64Var(&mu, "mu", elph.DefaultMu, "Coulomb pseudopotential mu*")

	return cmd
}

// NewCleanCmd создаёт команду очистки рабочей директории.
func NewCleanCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [DIR]",
		Short: "Remove engine files from a work directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			removed, err := orchestrator.CleanWorkDir(dir)
			out := outputFn()
			for _, path := range removed {
				out.Success("removed " + path)
			}
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Removed %d entries from %s", len(removed), dir))
			return nil
		},
	}
}
