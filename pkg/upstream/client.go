// Package upstream is the outbound side of the relay: one HTTP call per tool
// call or resource read, against the remote app.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/theapemachine/grok-agent-mcp/core"
)

// Remote routes.
const (
	PathAgent          = "/api/agent"
	PathReview         = "/api/review"
	PathProcessPage    = "/api/process_page"
	PathProjectHistory = "/api/project/history"
	PathProjectContext = "/api/project/context"
)

// Credential is the optional bearer token attached to every outbound call.
type Credential struct {
	Token string
}

// Apply sets the Authorization header when a token is present.
func (credential Credential) Apply(req *http.Request) {
	if credential.Token != "" {
		req.Header.Set("Authorization", "Bearer "+credential.Token)
	}
}

// Client talks to the remote app.
type Client struct {
	baseURL    string
	credential Credential
	http       *http.Client
}

// NewClient returns a Client for baseURL. A nil httpClient means
// http.DefaultClient.
func NewClient(baseURL string, credential Credential, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		credential: credential,
		http:       httpClient,
	}
}

// BaseURL returns the remote app's base URL.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// QueryAgent forwards a prompt and returns the agent's reply verbatim.
func (client *Client) QueryAgent(ctx context.Context, prompt, contextText string) (string, error) {
	var reply AgentReply
	if err := client.postJSON(ctx, PathAgent, AgentRequest{Prompt: prompt, Context: contextText}, &reply); err != nil {
		return "", err
	}

	return reply.Response, nil
}

// ReviewDiff sends a diff as plain text and returns the suggested commit
// message and review.
func (client *Client) ReviewDiff(ctx context.Context, diff string) (*ReviewReply, error) {
	body, err := client.do(ctx, http.MethodPost, PathReview, "text/plain", strings.NewReader(diff))
	if err != nil {
		return nil, err
	}

	var reply ReviewReply
	if err := decode(body, &reply); err != nil {
		return nil, err
	}

	return &reply, nil
}

// ProcessPage asks the remote app to summarize, extract from, or analyze a page.
func (client *Client) ProcessPage(ctx context.Context, request PageRequest) (*PageReply, error) {
	var reply PageReply
	if err := client.postJSON(ctx, PathProcessPage, request, &reply); err != nil {
		return nil, err
	}

	return &reply, nil
}

// ProjectHistory returns the raw JSON body of the history endpoint.
func (client *Client) ProjectHistory(ctx context.Context) (json.RawMessage, error) {
	return client.getJSON(ctx, PathProjectHistory)
}

// ProjectContext returns the raw JSON body of the context endpoint.
func (client *Client) ProjectContext(ctx context.Context) (json.RawMessage, error) {
	return client.getJSON(ctx, PathProjectContext)
}

func (client *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	body, err := client.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(buf))
	if err != nil {
		return err
	}

	return decode(body, out)
}

func (client *Client) getJSON(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := client.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s did not return JSON", core.ErrSchemaMismatch, path)
	}

	return json.RawMessage(body), nil
}

// do issues a single request and returns the body of a 2xx reply.
func (client *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: err}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(ContractVersionHeader, ContractVersion)
	client.credential.Apply(req)

	resp, err := client.http.Do(req)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var reply ErrorReply
		_ = json.Unmarshal(data, &reply)

		return nil, &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    reply.Error,
		}
	}

	return data, nil
}

// decode unmarshals a reply and, for contract replies, checks that every
// required field is present.
func decode(body []byte, out any) error {
	if reply, ok := out.(contractReply); ok {
		if err := checkFields(body, reply.requiredFields()); err != nil {
			return err
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSchemaMismatch, err)
	}
	return nil
}
