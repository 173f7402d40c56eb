package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRunsCmd создаёт группу команд для runs на сервере.
func NewRunsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage runs on the API server",
	}

	cmd.AddCommand(
		newRunsSubmitCmd(clientFn, outputFn),
		newRunsListCmd(clientFn, outputFn),
		newRunsShowCmd(clientFn, outputFn),
		newRunsStagesCmd(clientFn, outputFn),
	)

	return cmd
}

var runHeaders = []string{"ID", "STATUS", "FAILED_STAGE", "RESULTS", "CREATED"}

func runRow(r RunResponse) []string {
	return []string{r.ID, r.Status, r.FailedStage, strconv.Itoa(len(r.Results)), r.CreatedAt}
}

func newRunsSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a workflow spec for execution",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			run, err := clientFn().SubmitRun(data)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Run submitted: %s", run.ID))
			out.Print(runHeaders, [][]string{runRow(*run)}, run)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to workflow spec (YAML or JSON)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newRunsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var status string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, total, err := clientFn().ListRuns(ListRunsOpts{
				Status: status,
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = runRow(r)
			}

			out := outputFn()
			out.Print(runHeaders, rows, runs)
			if len(runs) < total {
				out.Success(fmt.Sprintf("Showing %d of %d runs", len(runs), total))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, SUCCEEDED, FAILED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of runs to skip")

	return cmd
}

func newRunsShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show run details and Tc results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := clientFn().GetRun(args[0])
			if err != nil {
				return err
			}

			out := outputFn()
			if out.jsonMode {
				out.JSON(run)
				return nil
			}

			fields := [][]string{
				{"ID", run.ID},
				{"Status", run.Status},
				{"Work dir", run.WorkDir},
				{"Created", run.CreatedAt},
			}
			if run.StartedAt != "" {
				fields = append(fields, []string{"Started", run.StartedAt})
			}
			if run.FinishedAt != "" {
				fields = append(fields, []string{"Finished", run.FinishedAt})
				fields = append(fields, []string{"Duration", fmt.Sprintf("%dms", run.DurationMs)})
			}
			if run.FailedStage != "" {
				fields = append(fields, []string{"Failed stage", run.FailedStage})
			}
			if run.Error != "" {
				fields = append(fields, []string{"Error", run.Error})
			}
			out.Table([]string{"FIELD", "VALUE"}, fields)

			if len(run.Results) > 0 {
				fmt.Fprintln(out.w)
				out.Table(tcHeaders, tcRows(run.Results))
			}
			return nil
		},
	}
}

func newRunsStagesCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stages RUN_ID",
		Short: "List stages of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := clientFn().ListStages(args[0])
			if err != nil {
				return err
			}

			headers := []string{"STAGE", "STATUS", "COMMAND", "DURATION", "ERROR"}
			rows := make([][]string, len(stages))
			for i, s := range stages {
				rows[i] = []string{s.Stage, s.Status, s.Command, fmt.Sprintf("%dms", s.DurationMs), s.Error}
			}

			outputFn().Print(headers, rows, stages)
			return nil
		},
	}
}
