package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, клиент не импортирует internal/api) ---

// TcResult — значение Tc для одного уширения.
type TcResult struct {
	Broadening float64 `json:"broadening"`
	Wlog       float64 `json:"wlog"`
	Lambda     float64 `json:"lambda"`
	Tc         float64 `json:"tc"`
}

// RunResponse — run из API.
type RunResponse struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Spec        map[string]any `json:"spec,omitempty"`
	WorkDir     string         `json:"work_dir,omitempty"`
	Results     []TcResult     `json:"results,omitempty"`
	FailedStage string         `json:"failed_stage,omitempty"`
	StartedAt   string         `json:"started_at,omitempty"`
	FinishedAt  string         `json:"finished_at,omitempty"`
	DurationMs  int64          `json:"duration_ms,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

// StageResponse — запись стадии из API.
type StageResponse struct {
	ID         string `json:"id"`
	RunID      string `json:"run_id"`
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	Command    string `json:"command,omitempty"`
	InputFile  string `json:"input_file,omitempty"`
	OutputFile string `json:"output_file,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ListRunsOpts — параметры фильтрации runs.
type ListRunsOpts struct {
	Status string
	Limit  int
	Offset int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Supercon API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SubmitRun отправляет WorkflowSpec (YAML или JSON) и возвращает созданный run.
func (c *Client) SubmitRun(spec []byte) (*RunResponse, error) {
	resp, err := c.do(http.MethodPost, "/api/v1/runs", "application/yaml", bytes.NewReader(spec))
	if err != nil {
		return nil, err
	}
	var run RunResponse
	if err := decodeData(resp, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns возвращает список runs и общее количество.
func (c *Client) ListRuns(opts ListRunsOpts) ([]RunResponse, int, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	var runs []RunResponse
	total, err := c.list("/api/v1/runs", params, &runs)
	return runs, total, err
}

// GetRun возвращает run по ID.
func (c *Client) GetRun(id string) (*RunResponse, error) {
	resp, err := c.do(http.MethodGet, "/api/v1/runs/"+url.PathEscape(id), "", nil)
	if err != nil {
		return nil, err
	}
	var run RunResponse
	if err := decodeData(resp, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListStages возвращает стадии run.
func (c *Client) ListStages(runID string) ([]StageResponse, error) {
	var stages []StageResponse
	_, err := c.list("/api/v1/runs/"+url.PathEscape(runID)+"/stages", nil, &stages)
	return stages, err
}

// --- HTTP helpers ---

func (c *Client) list(path string, params url.Values, result any) (int, error) {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, "", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := checkError(resp); err != nil {
		return 0, err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return lr.Total, json.Unmarshal(lr.Data, result)
}

func (c *Client) do(method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.httpClient.Do(req)
}

func decodeData(resp *http.Response, result any) error {
	defer resp.Body.Close()

	if err := checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return json.Unmarshal(dr.Data, result)
}

func checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
