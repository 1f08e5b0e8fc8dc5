// Package api is the gateway to the CourseWork Lite REST service.
//
// A single shared http.Client carries the cross-cutting behaviour (bearer
// attachment, forced teardown on 401) in its transport; the typed methods
// below are thin wrappers over the endpoints in the service contract.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"courseterm/internal/model"
	"courseterm/internal/tokenstore"
)

const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client whose requests all flow through the shared middleware
// transport. onUnauthorized runs (after the token store is cleared) whenever
// any response comes back 401; pass nil if no teardown hook is needed.
func New(baseURL string, tokens tokenstore.Store, onUnauthorized func()) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &transport{tokens: tokens, onUnauthorized: onUnauthorized},
		},
	}
}

// Credentials is the login form. The API follows the OAuth2 password-grant
// shape: the identifier (an email) travels in the `username` field, and the
// body is form-encoded, not JSON.
type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate mirrors the server's constraints so bad input never leaves the client.
func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 0)),
	)
}

// User is the created-user representation returned by registration.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token. The token is returned, not
// persisted; session ownership (storing it, flipping state) stays with the
// session controller.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}
	form := url.Values{}
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)

	var tok tokenResponse
	err := c.do(ctx, http.MethodPost, "/users/login",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &tok)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, reg Registration) (User, error) {
	if err := reg.Validate(); err != nil {
		return User{}, err
	}
	var u User
	if err := c.doJSON(ctx, http.MethodPost, "/users/register", reg, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

type CourseDraft struct {
	CourseName string `json:"courseName"`
	CourseCode string `json:"courseCode,omitempty"`
	ColorTag   string `json:"colorTag"`
}

func (d CourseDraft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.CourseName, validation.Required),
	)
}

type TaskDraft struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	CourseID    string         `json:"courseId"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	Priority    model.Priority `json:"priority"`
	Status      model.Status   `json:"status"`
}

func (d TaskDraft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required, validation.Length(3, 0)),
		validation.Field(&d.CourseID, validation.Required),
		validation.Field(&d.Priority, validation.In(model.PriorityLow, model.PriorityMedium, model.PriorityHigh)),
		validation.Field(&d.Status, validation.In(model.StatusActive, model.StatusComplete)),
	)
}

func (c *Client) ListCourses(ctx context.Context) ([]model.Course, error) {
	var out []model.Course
	if err := c.do(ctx, http.MethodGet, "/courses/", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCourse(ctx context.Context, draft CourseDraft) (model.Course, error) {
	if err := draft.Validate(); err != nil {
		return model.Course{}, err
	}
	var out model.Course
	if err := c.doJSON(ctx, http.MethodPost, "/courses/", draft, &out); err != nil {
		return model.Course{}, err
	}
	return out, nil
}

func (c *Client) UpdateCourse(ctx context.Context, id string, draft CourseDraft) (model.Course, error) {
	if err := draft.Validate(); err != nil {
		return model.Course{}, err
	}
	var out model.Course
	if err := c.doJSON(ctx, http.MethodPut, "/courses/"+url.PathEscape(id), draft, &out); err != nil {
		return model.Course{}, err
	}
	return out, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), "", nil, nil)
}

// ListTasks fetches the user's tasks. courseID narrows the fetch server-side;
// pass "" (or model.AllCourses) for everything.
func (c *Client) ListTasks(ctx context.Context, courseID string) ([]model.Task, error) {
	path := "/tasks/"
	if courseID != "" && courseID != model.AllCourses {
		path += "?course_id=" + url.QueryEscape(courseID)
	}
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, draft TaskDraft) (model.Task, error) {
	if draft.Priority == "" {
		draft.Priority = model.PriorityMedium
	}
	if draft.Status == "" {
		draft.Status = model.StatusActive
	}
	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}
	var out model.Task
	if err := c.doJSON(ctx, http.MethodPost, "/tasks/", draft, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, draft TaskDraft) (model.Task, error) {
	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}
	var out model.Task
	if err := c.doJSON(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), draft, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), "", nil, nil)
}

// ToggleTaskStatus flips a task between active and complete, leaving every
// other field as-is.
func (c *Client) ToggleTaskStatus(ctx context.Context, t model.Task) (model.Task, error) {
	draft := TaskDraft{
		Title:       t.Title,
		Description: t.Description,
		CourseID:    t.CourseID,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status.Toggled(),
	}
	return c.UpdateTask(ctx, t.ID, draft)
}

type emailChange struct {
	NewEmail string `json:"new_email"`
	Password string `json:"password"`
}

type passwordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateEmail changes the account email; the current password re-confirms identity.
func (c *Client) UpdateEmail(ctx context.Context, newEmail, password string) error {
	body := emailChange{NewEmail: newEmail, Password: password}
	if err := validation.ValidateStruct(&body,
		validation.Field(&body.NewEmail, validation.Required, is.Email),
		validation.Field(&body.Password, validation.Required),
	); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPut, "/users/me/email", body, nil)
}

func (c *Client) UpdatePassword(ctx context.Context, current, newPassword string) error {
	body := passwordChange{CurrentPassword: current, NewPassword: newPassword}
	if err := validation.ValidateStruct(&body,
		validation.Field(&body.CurrentPassword, validation.Required),
		validation.Field(&body.NewPassword, validation.Required, validation.Length(8, 0)),
	); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPut, "/users/me/password", body, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, "application/json", bytes.NewReader(b), out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(b) > 0 {
		var payload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(b, &payload) == nil {
			apiErr.Detail = strings.TrimSpace(payload.Detail)
		}
	}
	return apiErr
}
