package upstream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/theapemachine/grok-agent-mcp/core"
)

// ContractVersion is sent on every request and echoed by the remote service.
const (
	ContractVersion       = "1"
	ContractVersionHeader = "X-Contract-Version"
)

// Actions accepted by process_page.
const (
	ActionSummarize = "summarize"
	ActionExtract   = "extract"
	ActionAnalyze   = "analyze"
)

// Actions lists the allowed process_page actions in schema order.
var Actions = []string{ActionSummarize, ActionExtract, ActionAnalyze}

// ValidAction reports whether action is one of Actions.
func ValidAction(action string) bool {
	for _, a := range Actions {
		if a == action {
			return true
		}
	}
	return false
}

type AgentRequest struct {
	Prompt  string `json:"prompt" jsonschema:"required" jsonschema_description:"The query or prompt to send to the agent"`
	Context string `json:"context" jsonschema_description:"Optional context or code snippet to include"`
}

type AgentReply struct {
	Response  string    `json:"response" jsonschema:"required"`
	Timestamp time.Time `json:"timestamp"`
}

type ReviewReply struct {
	CommitMessage string   `json:"commitMessage" jsonschema:"required"`
	Review        string   `json:"review"`
	Suggestions   []string `json:"suggestions"`
}

type PageRequest struct {
	URL     string `json:"url" jsonschema:"required" jsonschema_description:"URL to process"`
	Content string `json:"content,omitempty" jsonschema_description:"Optional page content; scraped when absent"`
	Action  string `json:"action" jsonschema:"required,enum=summarize,enum=extract,enum=analyze"`
}

type PageReply struct {
	URL         string    `json:"url"`
	Action      string    `json:"action"`
	Result      string    `json:"result" jsonschema:"required"`
	ProcessedAt time.Time `json:"processedAt"`
}

type Commit struct {
	Hash    string    `json:"hash"`
	Author  string    `json:"author"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

type ProjectHistory struct {
	RecentChanges []string  `json:"recentChanges"`
	LastUpdated   time.Time `json:"lastUpdated"`
	Commits       []Commit  `json:"commits"`
	Files         []string  `json:"files"`
}

type ProjectContext struct {
	Preferences map[string]any `json:"preferences"`
	Notes       []string       `json:"notes"`
	Conventions []string       `json:"conventions"`
	TeamInfo    map[string]any `json:"teamInfo"`
}

// ErrorReply is the body of every non-2xx response from the remote service.
type ErrorReply struct {
	Error string `json:"error"`
}

// contractReply names the fields a reply must carry as JSON strings. An
// empty string is a valid value; an absent key or null is not.
type contractReply interface {
	requiredFields() []string
}

func (*AgentReply) requiredFields() []string  { return []string{"response"} }
func (*ReviewReply) requiredFields() []string { return []string{"commitMessage"} }
func (*PageReply) requiredFields() []string   { return []string{"result"} }

func checkFields(body []byte, names []string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSchemaMismatch, err)
	}

	for _, name := range names {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			return missingField(name)
		}

		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("%w: %q field is not a string", core.ErrSchemaMismatch, name)
		}
	}

	return nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing %q field", core.ErrSchemaMismatch, name)
}

func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	var v T
	return reflector.Reflect(v)
}

// Contract describes every request and reply exchanged with the remote service.
type Contract struct {
	Version string                        `json:"version"`
	Schemas map[string]*jsonschema.Schema `json:"schemas"`
}

func NewContract() Contract {
	return Contract{
		Version: ContractVersion,
		Schemas: map[string]*jsonschema.Schema{
			"AgentRequest":   GenerateSchema[AgentRequest](),
			"AgentReply":     GenerateSchema[AgentReply](),
			"ReviewReply":    GenerateSchema[ReviewReply](),
			"PageRequest":    GenerateSchema[PageRequest](),
			"PageReply":      GenerateSchema[PageReply](),
			"ProjectHistory": GenerateSchema[ProjectHistory](),
			"ProjectContext": GenerateSchema[ProjectContext](),
			"ErrorReply":     GenerateSchema[ErrorReply](),
		},
	}
}
