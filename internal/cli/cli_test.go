package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/elph"
	"github.com/shaiso/supercon/internal/orchestrator"
	"github.com/shaiso/supercon/internal/worker"
)

const specDoc = `atoms:
  lattice_mat: [[3.3, 0, 0], [0, 3.3, 0], [0, 0, 3.3]]
  coords: [[0, 0, 0]]
  elements: [Nb]
  cartesian: false
kp:
  kpoints: [[8, 8, 8]]
qp:
  kpoints: [[2, 2, 2]]
qe_cmd: pw.x
relax_calc: vc-relax
`

const lambdaData = "Broadening   0.0050 lambda       0.5500 dos(Ef)   2.1000 omega_ln [K]   450.2000\n" +
	"Broadening   0.0100 lambda       1.0000 dos(Ef)   2.3000 omega_ln [K]   300.0000\n"

// execute запускает команду и возвращает stdout и stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

var stdout, stderr bytes.Buffer

func testOutput(jsonMode bool) func() *Output {
	stdout.Reset()
	stderr.Reset()
	return func() *Output { return NewOutputTo(&stdout, &stderr, jsonMode) }
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- Local commands ---

func TestTcCmd(t *testing.T) {
	out, _, err := execute(t, NewTcCmd(testOutput(false)), "--wlog", "450.2", "--lambda", "0.55")
	if err != nil {
		t.Fatalf("tc error = %v", err)
	}
	if !strings.Contains(out, "10.1533") {
		t.Errorf("output = %q, want Tc 10.1533", out)
	}
}

func TestTcCmd_JSON(t *testing.T) {
	out, _, err := execute(t, NewTcCmd(testOutput(true)), "--wlog", "300", "--lambda", "1", "--mu", "0.1")
	if err != nil {
		t.Fatalf("tc error = %v", err)
	}

	var res TcResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res.Tc < 24.39 || res.Tc > 24.40 {
		t.Errorf("Tc = %v, want ~24.3935", res.Tc)
	}
}

func TestTcCmd_DomainError(t *testing.T) {
	if _, _, err := execute(t, NewTcCmd(testOutput(false)), "--wlog", "300", "--lambda", "0.05"); err == nil {
		t.Error("expected domain error for lambda < mu")
	}
}

func TestLambdaCmd(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lambda", lambdaData)

	out, _, err := execute(t, NewLambdaCmd(testOutput(true)), path)
	if err != nil {
		t.Fatalf("lambda error = %v", err)
	}

	var results []TcResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Broadening != 0.005 || results[1].Lambda != 1 {
		t.Errorf("results = %+v", results)
	}
}

func TestLambdaCmd_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lambda", "")

	_, errOut, err := execute(t, NewLambdaCmd(testOutput(false)), path)
	if err != nil {
		t.Fatalf("lambda error = %v", err)
	}
	if !strings.Contains(errOut, "no records") {
		t.Errorf("stderr = %q, want warning", errOut)
	}
}

func TestCleanCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "relax.in", "x")
	writeFile(t, dir, "relax.out", "x")
	writeFile(t, dir, "notes.txt", "keep")

	if _, _, err := execute(t, NewCleanCmd(testOutput(false)), dir); err != nil {
		t.Fatalf("clean error = %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "notes.txt" {
		t.Errorf("remaining entries = %v, want [notes.txt]", entries)
	}
}

func TestSpecValidateCmd(t *testing.T) {
	path := writeFile(t, t.TempDir(), "spec.yaml", specDoc)

	out, _, err := execute(t, NewSpecCmd(testOutput(false)), "validate", path)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(out, "vc-relax") {
		t.Errorf("output = %q", out)
	}
}

func TestSpecValidateCmd_UnknownElement(t *testing.T) {
	path := writeFile(t, t.TempDir(), "spec.yaml", strings.Replace(specDoc, "[Nb]", "[Xx]", 1))

	if _, _, err := execute(t, NewSpecCmd(testOutput(false)), "validate", path); err == nil {
		t.Error("expected validation error")
	}
}

func TestSpecConvertCmd(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "spec.yaml", specDoc)
	dst := filepath.Join(dir, "normalized.yaml")

	if _, _, err := execute(t, NewSpecCmd(testOutput(false)), "convert", src, dst); err != nil {
		t.Fatalf("convert error = %v", err)
	}

	want, _ := domain.LoadSpecFile(src)
	got, err := domain.LoadSpecFile(dst)
	if err != nil {
		t.Fatalf("LoadSpecFile(dst) error = %v", err)
	}
	if got.RelaxMode != want.RelaxMode || got.Atoms.NumAtoms() != want.Atoms.NumAtoms() {
		t.Errorf("converted spec = %+v, want %+v", got, want)
	}
}

// --- Run (local workflow) ---

type stubReader struct{ structure domain.Structure }

func (r stubReader) ReadStructure(string) (domain.Structure, error) {
	return r.structure, nil
}

func fakeEngine(lambda string) worker.ExecutorFunc {
	return func(_ context.Context, workDir string, job *domain.Job) (*domain.JobResult, error) {
		if job.Stage == domain.StageInterpolation {
			if err := os.WriteFile(filepath.Join(workDir, "lambda"), []byte(lambda), 0o644); err != nil {
				return nil, err
			}
		}
		return &domain.JobResult{Stage: job.Stage, Name: job.Name}, nil
	}
}

func TestSpecJobsCmd(t *testing.T) {
	path := writeFile(t, t.TempDir(), "spec.yaml", specDoc)

	out, _, err := execute(t, NewSpecCmd(testOutput(true)), "jobs", path, "--pseudo-dir", "/pseudo")
	if err != nil {
		t.Fatalf("jobs error = %v", err)
	}

	var jobs []JobView
	if err := json.Unmarshal([]byte(out), &jobs); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}

	want := []string{"relax", "scf", "phonon", "force-constant", "interpolation"}
	if len(jobs) != len(want) {
		t.Fatalf("got %d jobs, want %d", len(jobs), len(want))
	}
	for i, stage := range want {
		if jobs[i].Stage != stage {
			t.Errorf("jobs[%d].Stage = %s, want %s", i, jobs[i].Stage, stage)
		}
	}

	ph := jobs[2]
	if ph.Command != "ph.x" {
		t.Errorf("phonon command = %q, want ph.x", ph.Command)
	}
	if nq1, _ := ph.Config["inputph"]["nq1"].(float64); nq1 != 2 {
		t.Errorf("inputph.nq1 = %v, want 2", ph.Config["inputph"]["nq1"])
	}
}

func TestSpecJobsCmd_Table(t *testing.T) {
	path := writeFile(t, t.TempDir(), "spec.yaml", specDoc)

	out, _, err := execute(t, NewSpecCmd(testOutput(false)), "jobs", path, "--pseudo-dir", "/pseudo")
	if err != nil {
		t.Fatalf("jobs error = %v", err)
	}
	for _, want := range []string{"NAMELISTS", "inputph(", "force-constant"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestSpecJobsCmd_NoPseudoDir(t *testing.T) {
	t.Setenv("QE_PSPDIR", "")
	path := writeFile(t, t.TempDir(), "spec.yaml", specDoc)

	if _, _, err := execute(t, NewSpecCmd(testOutput(false)), "jobs", path); err == nil {
		t.Error("expected error without pseudopotential directory")
	}
}

func TestRunCmd(t *testing.T) {
	specPath := writeFile(t, t.TempDir(), "spec.yaml", specDoc)
	workDir := t.TempDir()

	spec, err := domain.LoadSpecFile(specPath)
	if err != nil {
		t.Fatal(err)
	}

	factory := func(cfg orchestrator.Config) *orchestrator.Orchestrator {
		cfg.Executor = fakeEngine(lambdaData)
		cfg.Reader = stubReader{structure: spec.Atoms}
		return orchestrator.New(cfg)
	}

	out, _, err := execute(t, NewRunCmd(testOutput(true), factory),
		"-f", specPath, "--workdir", workDir, "--pseudo-dir", "/pseudo")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	var results []TcResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Tc < 10.15 || results[0].Tc > 10.16 {
		t.Errorf("Tc[0] = %v, want ~10.1533", results[0].Tc)
	}

	if _, err := os.Stat(filepath.Join(workDir, "lambda")); err != nil {
		t.Errorf("work dir was cleaned: %v", err)
	}
}

func TestRunCmd_MuZero(t *testing.T) {
	specPath := writeFile(t, t.TempDir(), "spec.yaml", specDoc)

	spec, err := domain.LoadSpecFile(specPath)
	if err != nil {
		t.Fatal(err)
	}

	factory := func(cfg orchestrator.Config) *orchestrator.Orchestrator {
		cfg.Executor = fakeEngine(lambdaData)
		cfg.Reader = stubReader{structure: spec.Atoms}
		return orchestrator.New(cfg)
	}

	out, _, err := execute(t, NewRunCmd(testOutput(true), factory),
		"-f", specPath, "--workdir", t.TempDir(), "--pseudo-dir", "/pseudo", "--mu", "0")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	var results []TcResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// Совпадает с elph.CalcTc при mu=0, как в командах tc и lambda.
	want, err := elph.CalcTc(450.2, 0.55, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(results[0].Tc-want) > 1e-9 {
		t.Errorf("Tc[0] = %v, want %v for mu=0", results[0].Tc, want)
	}
}

func TestRunCmd_StageFailure(t *testing.T) {
	specPath := writeFile(t, t.TempDir(), "spec.yaml", specDoc)

	factory := func(cfg orchestrator.Config) *orchestrator.Orchestrator {
		cfg.Executor = worker.ExecutorFunc(func(_ context.Context, _ string, job *domain.Job) (*domain.JobResult, error) {
			return nil, worker.ErrNonZeroExit
		})
		return orchestrator.New(cfg)
	}

	_, _, err := execute(t, NewRunCmd(testOutput(false), factory),
		"-f", specPath, "--workdir", t.TempDir(), "--pseudo-dir", "/pseudo")
	if err == nil {
		t.Fatal("expected error")
	}
	if stage := orchestrator.FailedStage(err); stage != domain.StageRelax {
		t.Errorf("FailedStage = %q, want relax", stage)
	}
}

// --- Remote commands ---

func newTestServer(t *testing.T, handler http.HandlerFunc) func() *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return func() *Client { return NewClient(srv.URL) }
}

func TestRunsSubmitCmd(t *testing.T) {
	specPath := writeFile(t, t.TempDir(), "spec.yaml", specDoc)

	var gotBody string
	var gotType string
	clientFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/runs" {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"id":"run-1","status":"PENDING","created_at":"2026-10-01T12:00:00Z"}}`)
	})

	out, errOut, err := execute(t, NewRunsCmd(clientFn, testOutput(false)), "submit", "-f", specPath)
	if err != nil {
		t.Fatalf("submit error = %v", err)
	}
	if gotBody != specDoc {
		t.Errorf("body = %q, want spec document", gotBody)
	}
	if gotType != "application/yaml" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if !strings.Contains(errOut, "run-1") || !strings.Contains(out, "PENDING") {
		t.Errorf("stdout = %q, stderr = %q", out, errOut)
	}
}

func TestRunsListCmd(t *testing.T) {
	var query string
	clientFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		io.WriteString(w, `{"data":[{"id":"run-1","status":"FAILED","failed_stage":"phonon","created_at":"x"}],"total":3}`)
	})

	out, errOut, err := execute(t, NewRunsCmd(clientFn, testOutput(false)), "list", "--status", "FAILED", "--limit", "1")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if query != "limit=1&status=FAILED" {
		t.Errorf("query = %q", query)
	}
	if !strings.Contains(out, "phonon") {
		t.Errorf("output = %q, want failed stage", out)
	}
	if !strings.Contains(errOut, "1 of 3") {
		t.Errorf("stderr = %q, want pagination hint", errOut)
	}
}

func TestRunsShowCmd(t *testing.T) {
	clientFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/runs/run-1" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"code":"not_found","message":"run not found"}}`)
			return
		}
		io.WriteString(w, `{"data":{"id":"run-1","status":"SUCCEEDED","created_at":"x",
			"results":[{"broadening":0.005,"wlog":450.2,"lambda":0.55,"tc":10.153}]}}`)
	})

	out, _, err := execute(t, NewRunsCmd(clientFn, testOutput(false)), "show", "run-1")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(out, "SUCCEEDED") || !strings.Contains(out, "10.1530") {
		t.Errorf("output = %q", out)
	}

	_, _, err = execute(t, NewRunsCmd(clientFn, testOutput(false)), "show", "missing")
	if err == nil || !strings.Contains(err.Error(), "not_found") {
		t.Errorf("error = %v, want not_found", err)
	}
}

func TestRunsStagesCmd(t *testing.T) {
	clientFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[
			{"id":"s1","run_id":"run-1","stage":"relax","status":"SUCCEEDED","duration_ms":1200},
			{"id":"s2","run_id":"run-1","stage":"scf","status":"FAILED","error":"exit status 1"}
		],"total":2}`)
	})

	out, _, err := execute(t, NewRunsCmd(clientFn, testOutput(false)), "stages", "run-1")
	if err != nil {
		t.Fatalf("stages error = %v", err)
	}
	if !strings.Contains(out, "1200ms") || !strings.Contains(out, "exit status 1") {
		t.Errorf("output = %q", out)
	}
}
