package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/grok-agent-mcp/core"
	"github.com/theapemachine/grok-agent-mcp/pkg/agent"
	"github.com/theapemachine/grok-agent-mcp/pkg/scrape"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

// HistorySource reads recent commits, usually from the local git repository.
type HistorySource interface {
	History(ctx context.Context, limit int) (*upstream.ProjectHistory, error)
}

// Project is the static context served by /api/project/context.
type Project struct {
	Preferences map[string]any
	Notes       []string
	Conventions []string
	Team        map[string]any
}

// Service does the work behind every remote route. It satisfies both the tool
// backend and the resource source, so the /api/mcp mirror reuses it directly.
type Service struct {
	agent    agent.Agent
	scraper  scrape.Scraper
	history  HistorySource
	project  Project
	maxChars int
	log      *log.Logger
	now      func() time.Time
}

// ServiceOptions wires a Service. Nil History yields empty history documents.
type ServiceOptions struct {
	Agent    agent.Agent
	Scraper  scrape.Scraper
	History  HistorySource
	Project  Project
	MaxChars int
	Logger   *log.Logger
}

func NewService(opts ServiceOptions) *Service {
	if opts.Agent == nil {
		opts.Agent = agent.Placeholder{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Scraper == nil {
		opts.Scraper = scrape.NewHTTPScraper(nil, opts.Logger)
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = 1000
	}

	return &Service{
		agent:    opts.Agent,
		scraper:  opts.Scraper,
		history:  opts.History,
		project:  opts.Project,
		maxChars: opts.MaxChars,
		log:      opts.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (service *Service) QueryAgent(ctx context.Context, prompt, contextText string) (string, error) {
	if prompt == "" {
		return "", required("Prompt is required")
	}

	response, err := service.agent.Complete(ctx, agent.Prompt{Text: prompt, Context: contextText})
	if err != nil {
		return "", classify(core.ErrUpstream, err)
	}

	return response, nil
}

const commitPrompt = `Write a single-line conventional commit message (type: summary) for this diff.
Reply with the message only.

%s`

func (service *Service) ReviewDiff(ctx context.Context, diff string) (*upstream.ReviewReply, error) {
	if diff == "" {
		return nil, required("Git diff is required")
	}

	additions, deletions := countChanges(diff)

	message := heuristicCommitMessage(diff)
	if !agent.IsPlaceholder(service.agent) {
		out, err := service.agent.Complete(ctx, agent.Prompt{Text: fmt.Sprintf(commitPrompt, diff)})
		if err != nil {
			return nil, classify(core.ErrUpstream, err)
		}
		if line := firstLine(out); line != "" {
			message = line
		}
	}

	return &upstream.ReviewReply{
		CommitMessage: message,
		Review:        fmt.Sprintf("Changes: %d additions, %d deletions", additions, deletions),
		Suggestions:   []string{},
	}, nil
}

func (service *Service) ProcessPage(ctx context.Context, request upstream.PageRequest) (*upstream.PageReply, error) {
	if request.URL == "" {
		return nil, required("URL is required")
	}

	if request.Action == "" {
		request.Action = upstream.ActionSummarize
	}
	if !upstream.ValidAction(request.Action) {
		return nil, classify(core.ErrInvalidArgument, fmt.Errorf(
			"action must be one of %s", strings.Join(upstream.Actions, ", "),
		))
	}

	content := request.Content
	if content == "" {
		scraped, err := service.scraper.Scrape(ctx, request.URL)
		if err != nil {
			return nil, classify(core.ErrUpstream, err)
		}
		content = scraped
	}

	prompt := fmt.Sprintf("Action: %s\nURL: %s\nContent: %s...",
		request.Action, request.URL, scrape.Truncate(content, service.maxChars))

	result := fmt.Sprintf("Processed %s for content", request.Action)
	if !agent.IsPlaceholder(service.agent) {
		out, err := service.agent.Complete(ctx, agent.Prompt{Text: prompt})
		if err != nil {
			return nil, classify(core.ErrUpstream, err)
		}
		result = out
	}

	return &upstream.PageReply{
		URL:         request.URL,
		Action:      request.Action,
		Result:      result,
		ProcessedAt: service.now(),
	}, nil
}

// History returns the latest commits, or empty lists without a source.
func (service *Service) History(ctx context.Context) (*upstream.ProjectHistory, error) {
	if service.history == nil {
		return &upstream.ProjectHistory{
			RecentChanges: []string{},
			LastUpdated:   service.now(),
			Commits:       []upstream.Commit{},
			Files:         []string{},
		}, nil
	}

	return service.history.History(ctx, 0)
}

func (service *Service) Context(_ context.Context) *upstream.ProjectContext {
	out := &upstream.ProjectContext{
		Preferences: service.project.Preferences,
		Notes:       service.project.Notes,
		Conventions: service.project.Conventions,
		TeamInfo:    service.project.Team,
	}

	if out.Preferences == nil {
		out.Preferences = map[string]any{}
	}
	if out.Notes == nil {
		out.Notes = []string{}
	}
	if out.Conventions == nil {
		out.Conventions = []string{}
	}
	if out.TeamInfo == nil {
		out.TeamInfo = map[string]any{}
	}

	return out
}

func (service *Service) ProjectHistory(ctx context.Context) (json.RawMessage, error) {
	history, err := service.History(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(history)
}

func (service *Service) ProjectContext(ctx context.Context) (json.RawMessage, error) {
	return json.Marshal(service.Context(ctx))
}

// countChanges counts added and removed lines, ignoring file headers.
func countChanges(diff string) (additions, deletions int) {
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			additions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}
	return additions, deletions
}

func heuristicCommitMessage(diff string) string {
	switch {
	case strings.Contains(diff, "feat"), strings.Contains(diff, "add"):
		return "feat: add new feature"
	case strings.Contains(diff, "fix"):
		return "fix: resolve issue"
	case strings.Contains(diff, "refactor"):
		return "refactor: improve code structure"
	}
	return "chore: update code"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.Trim(strings.TrimSpace(line), "`\"")
}
