package api

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
	"github.com/theapemachine/grok-agent-mcp/core"
	"github.com/theapemachine/grok-agent-mcp/pkg/agent"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

func TestServiceQueryAgent(t *testing.T) {
	Convey("Given a service with the placeholder agent", t, func() {
		service := NewService(ServiceOptions{Logger: quietLogger()})

		Convey("It should answer with the canned reply", func() {
			out, err := service.QueryAgent(context.Background(), "hello", "")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "Processed query: hello")
		})

		Convey("It should require a prompt", func() {
			_, err := service.QueryAgent(context.Background(), "", "ctx")
			So(errors.Is(err, core.ErrMissingRequiredField), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "Prompt is required")
		})
	})

	Convey("Given a failing agent", t, func() {
		model := &MockAgent{}
		model.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("rate limited"))
		service := NewService(ServiceOptions{Agent: model, Logger: quietLogger()})

		_, err := service.QueryAgent(context.Background(), "hello", "")

		So(errors.Is(err, core.ErrUpstream), ShouldBeTrue)
		So(statusFor(err), ShouldEqual, 502)
	})
}

func TestServiceReviewDiff(t *testing.T) {
	diff := strings.Join([]string{
		"diff --git a/main.go b/main.go",
		"--- a/main.go",
		"+++ b/main.go",
		"@@ -1,2 +1,3 @@",
		"-old line",
		"+fix the bug",
		"+another line",
	}, "\n")

	Convey("Given a service with the placeholder agent", t, func() {
		service := NewService(ServiceOptions{Logger: quietLogger()})

		Convey("It should count changes and pick a heuristic message", func() {
			reply, err := service.ReviewDiff(context.Background(), diff)
			So(err, ShouldBeNil)
			So(reply.CommitMessage, ShouldEqual, "fix: resolve issue")
			So(reply.Review, ShouldEqual, "Changes: 2 additions, 1 deletions")
			So(reply.Suggestions, ShouldNotBeNil)
			So(reply.Suggestions, ShouldBeEmpty)
		})

		Convey("It should require a diff", func() {
			_, err := service.ReviewDiff(context.Background(), "")
			So(err.Error(), ShouldEqual, "Git diff is required")
			So(statusFor(err), ShouldEqual, 400)
		})
	})

	Convey("Given the commit message heuristic", t, func() {
		So(heuristicCommitMessage("+added a thing"), ShouldEqual, "feat: add new feature")
		So(heuristicCommitMessage("+fix"), ShouldEqual, "fix: resolve issue")
		So(heuristicCommitMessage("+refactor"), ShouldEqual, "refactor: improve code structure")
		So(heuristicCommitMessage("+x"), ShouldEqual, "chore: update code")
	})

	Convey("Given a real agent", t, func() {
		model := &MockAgent{}
		model.On("Complete", mock.Anything, mock.MatchedBy(func(p agent.Prompt) bool {
			return strings.Contains(p.Text, "+fix the bug")
		})).Return("`fix(main): handle nil input`\n\nextra", nil)

		service := NewService(ServiceOptions{Agent: model, Logger: quietLogger()})

		reply, err := service.ReviewDiff(context.Background(), diff)

		So(err, ShouldBeNil)
		So(reply.CommitMessage, ShouldEqual, "fix(main): handle nil input")
		model.AssertExpectations(t)
	})
}

func TestServiceProcessPage(t *testing.T) {
	Convey("Given a service with a scraper", t, func() {
		model := &MockAgent{}
		scraper := &MockScraper{}
		service := NewService(ServiceOptions{
			Agent:    model,
			Scraper:  scraper,
			MaxChars: 5,
			Logger:   quietLogger(),
		})
		service.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

		Convey("It should scrape when content is missing and truncate the prompt", func() {
			scraper.On("Scrape", mock.Anything, "https://go.dev").Return("Go is expressive", nil)
			model.On("Complete", mock.Anything, agent.Prompt{
				Text: "Action: summarize\nURL: https://go.dev\nContent: Go is...",
			}).Return("a summary", nil)

			reply, err := service.ProcessPage(context.Background(), upstream.PageRequest{URL: "https://go.dev"})

			So(err, ShouldBeNil)
			So(reply.Action, ShouldEqual, "summarize")
			So(reply.Result, ShouldEqual, "a summary")
			So(reply.ProcessedAt, ShouldEqual, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		})

		Convey("It should use supplied content without scraping", func() {
			model.On("Complete", mock.Anything, mock.Anything).Return("facts", nil)

			_, err := service.ProcessPage(context.Background(), upstream.PageRequest{
				URL: "https://go.dev", Content: "text", Action: "extract",
			})

			So(err, ShouldBeNil)
			scraper.AssertNotCalled(t, "Scrape", mock.Anything, mock.Anything)
		})

		Convey("It should require a URL", func() {
			_, err := service.ProcessPage(context.Background(), upstream.PageRequest{})
			So(err.Error(), ShouldEqual, "URL is required")
		})

		Convey("It should reject unknown actions", func() {
			_, err := service.ProcessPage(context.Background(), upstream.PageRequest{URL: "https://go.dev", Action: "translate"})
			So(errors.Is(err, core.ErrInvalidArgument), ShouldBeTrue)
			model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		})

		Convey("It should report scrape failures as upstream errors", func() {
			scraper.On("Scrape", mock.Anything, mock.Anything).Return("", errors.New("dns"))
			_, err := service.ProcessPage(context.Background(), upstream.PageRequest{URL: "https://nowhere.invalid"})
			So(statusFor(err), ShouldEqual, 502)
		})
	})
}

func TestServiceProcessPagePlaceholder(t *testing.T) {
	Convey("Given a service with the placeholder agent", t, func() {
		scraper := &MockScraper{}
		service := NewService(ServiceOptions{Scraper: scraper, Logger: quietLogger()})

		Convey("It should give the canned page reply for the action", func() {
			scraper.On("Scrape", mock.Anything, "https://go.dev").Return("Go is expressive", nil)

			reply, err := service.ProcessPage(context.Background(), upstream.PageRequest{
				URL: "https://go.dev", Action: upstream.ActionExtract,
			})

			So(err, ShouldBeNil)
			So(reply.Result, ShouldEqual, "Processed extract for content")
			scraper.AssertExpectations(t)
		})
	})
}

func TestServiceProject(t *testing.T) {
	Convey("Given a service without a history source", t, func() {
		service := NewService(ServiceOptions{
			Project: Project{Preferences: map[string]any{"language": "go"}},
			Logger:  quietLogger(),
		})

		Convey("History should be empty lists", func() {
			raw, err := service.ProjectHistory(context.Background())
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"recentChanges":[]`)
			So(string(raw), ShouldContainSubstring, `"commits":[]`)
		})

		Convey("Context should fill missing sections", func() {
			raw, err := service.ProjectContext(context.Background())
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"preferences":{"language":"go"},"notes":[],"conventions":[],"teamInfo":{}}`)
		})
	})

	Convey("Given a history source", t, func() {
		history := &MockHistory{}
		history.On("History", mock.Anything, 0).Return(&upstream.ProjectHistory{
			RecentChanges: []string{"feat: first"},
		}, nil)

		service := NewService(ServiceOptions{History: history, Logger: quietLogger()})

		out, err := service.History(context.Background())
		So(err, ShouldBeNil)
		So(out.RecentChanges, ShouldResemble, []string{"feat: first"})
	})
}
