// Package client is a Go client for the carelog HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// FieldError is a single invalid field reported by the server.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a problem response (RFC 7807) returned by the server.
type Error struct {
	StatusCode int          `json:"status"`
	Type       string       `json:"type"`
	Title      string       `json:"title"`
	Detail     string       `json:"detail"`
	Errors     []FieldError `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("carelog: %d %s: %s", e.StatusCode, e.Title, e.Detail)
	}
	return fmt.Sprintf("carelog: %d %s", e.StatusCode, e.Title)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is a 409 from the server.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

func hasStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == status
}

// Client talks to one carelog server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Health checks connectivity and returns server statistics.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListElders returns every elder.
func (c *Client) ListElders(ctx context.Context) ([]Elder, error) {
	var out []Elder
	if err := c.do(ctx, http.MethodGet, "/elders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateElder registers an elder.
func (c *Client) CreateElder(ctx context.Context, in NewElder) (*Elder, error) {
	var out Elder
	if err := c.do(ctx, http.MethodPost, "/elders", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateQuestion adds a question. A duplicate text is a conflict.
func (c *Client) CreateQuestion(ctx context.Context, text string) (*Question, error) {
	var out Question
	if err := c.do(ctx, http.MethodPost, "/questions", NewQuestion{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FollowUpQuestion asks the server for a question based on earlier answers.
func (c *Client) FollowUpQuestion(ctx context.Context, req FollowUpRequest) (*FollowUpResponse, error) {
	var out FollowUpResponse
	if err := c.do(ctx, http.MethodPost, "/questions/generate_follow_up", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ManualAnswer stores a typed answer.
func (c *Client) ManualAnswer(ctx context.Context, in NewAnswer) (*Answer, error) {
	var out Answer
	if err := c.do(ctx, http.MethodPost, "/answers/manual", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AudioAnswer uploads a recorded answer for transcription.
func (c *Client) AudioAnswer(ctx context.Context, elderID, questionID int64, filename string, audio io.Reader) (*Answer, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("elder_id", strconv.FormatInt(elderID, 10))
	mw.WriteField("question_id", strconv.FormatInt(questionID, 10))
	fw, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/answers", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Answer
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRecord assembles a record from the elder's latest answers.
func (c *Client) CreateRecord(ctx context.Context, req CreateRecordRequest) (*Record, error) {
	var out Record
	if err := c.do(ctx, http.MethodPost, "/records", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ElderRecords lists an elder's records.
func (c *Client) ElderRecords(ctx context.Context, elderID int64) ([]Record, error) {
	var out []Record
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/records/user/%d", elderID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateGuide creates an activity guide over existing questions.
func (c *Client) CreateGuide(ctx context.Context, req CreateGuideRequest) (*ActivityGuide, error) {
	var out ActivityGuide
	if err := c.do(ctx, http.MethodPost, "/guides/create_with_questions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FinishGuide marks a guide as studied.
func (c *Client) FinishGuide(ctx context.Context, id int64) (*ActivityGuide, error) {
	var out ActivityGuide
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/guides/finish/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WeeklyTasks recomputes every elder's task for the week.
func (c *Client) WeeklyTasks(ctx context.Context, year, week int) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, http.MethodGet, "/tasks?"+weekQuery(year, week).Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ThisWeekTasks recomputes every elder's task for the current week.
func (c *Client) ThisWeekTasks(ctx context.Context) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, http.MethodGet, "/tasks/this_week", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ElderTask recomputes one elder's task for the week.
func (c *Client) ElderTask(ctx context.Context, elderID int64, year, week int) (*Task, error) {
	var out Task
	path := fmt.Sprintf("/tasks/elders/%d?%s", elderID, weekQuery(year, week).Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BuildReport builds or rebuilds an elder's weekly report.
func (c *Client) BuildReport(ctx context.Context, elderID int64, year, week int) (*Report, error) {
	var out Report
	if err := c.do(ctx, http.MethodPost, reportPath(elderID, year, week), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report fetches a stored weekly report.
func (c *Client) Report(ctx context.Context, elderID int64, year, week int) (*Report, error) {
	var out Report
	if err := c.do(ctx, http.MethodGet, reportPath(elderID, year, week), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func weekQuery(year, week int) url.Values {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("week_number", strconv.Itoa(week))
	return q
}

func reportPath(elderID int64, year, week int) string {
	q := weekQuery(year, week)
	q.Set("elder_id", strconv.FormatInt(elderID, 10))
	return "/reports?" + q.Encode()
}

// do sends a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// decodeError builds an *Error from a problem response, falling back to the
// status line when the body is not a problem document.
func decodeError(resp *http.Response) error {
	e := &Error{StatusCode: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return e
	}
	if json.Unmarshal(data, e) != nil {
		e.Detail = strings.TrimSpace(string(data))
	}
	e.StatusCode = resp.StatusCode
	return e
}
