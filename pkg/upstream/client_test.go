package upstream

import (
	"context"
	"errors"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/grok-agent-mcp/core"
)

func TestQueryAgent(t *testing.T) {
	Convey("Given a remote that answers the agent route", t, func() {
		remote := newFakeRemote(http.StatusOK, `{"response":"hi there","timestamp":"2025-01-01T00:00:00Z"}`)
		defer remote.Close()

		client := NewClient(remote.URL+"/", Credential{}, nil)

		Convey("It should issue exactly one POST with the prompt and an empty context", func() {
			reply, err := client.QueryAgent(context.Background(), "x", "")
			So(err, ShouldBeNil)
			So(reply, ShouldEqual, "hi there")

			requests := remote.Requests()
			So(requests, ShouldHaveLength, 1)
			So(requests[0].Method, ShouldEqual, http.MethodPost)
			So(requests[0].Path, ShouldEqual, PathAgent)
			So(requests[0].Body, ShouldEqual, `{"prompt":"x","context":""}`)
			So(requests[0].Header.Get("Content-Type"), ShouldEqual, "application/json")
			So(requests[0].Header.Get(ContractVersionHeader), ShouldEqual, ContractVersion)
		})

		Convey("It should not send an Authorization header without a token", func() {
			_, err := client.QueryAgent(context.Background(), "x", "")
			So(err, ShouldBeNil)
			So(remote.Requests()[0].Header.Get("Authorization"), ShouldBeEmpty)
		})

		Convey("It should send the bearer token when configured", func() {
			client = NewClient(remote.URL, Credential{Token: "s3cret"}, nil)
			_, err := client.QueryAgent(context.Background(), "x", "ctx")
			So(err, ShouldBeNil)
			So(remote.Requests()[0].Header.Get("Authorization"), ShouldEqual, "Bearer s3cret")
			So(remote.Requests()[0].Body, ShouldEqual, `{"prompt":"x","context":"ctx"}`)
		})
	})

	Convey("Given a remote whose reply lacks the response field", t, func() {
		remote := newFakeRemote(http.StatusOK, `{"message":"legacy shape"}`)
		defer remote.Close()

		_, err := NewClient(remote.URL, Credential{}, nil).QueryAgent(context.Background(), "x", "")

		Convey("It should fail loudly with a schema mismatch", func() {
			So(errors.Is(err, core.ErrSchemaMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `"response"`)
		})
	})

	Convey("Given a remote that replies with an empty response", t, func() {
		remote := newFakeRemote(http.StatusOK, `{"response":"","timestamp":"2025-01-01T00:00:00Z"}`)
		defer remote.Close()

		response, err := NewClient(remote.URL, Credential{}, nil).QueryAgent(context.Background(), "x", "")

		Convey("It should return the empty reply verbatim", func() {
			So(err, ShouldBeNil)
			So(response, ShouldEqual, "")
		})
	})

	Convey("Given a remote whose response field is null or not a string", t, func() {
		for _, body := range []string{`{"response":null}`, `{"response":42}`} {
			remote := newFakeRemote(http.StatusOK, body)

			_, err := NewClient(remote.URL, Credential{}, nil).QueryAgent(context.Background(), "x", "")
			remote.Close()

			So(errors.Is(err, core.ErrSchemaMismatch), ShouldBeTrue)
		}
	})

	Convey("Given a remote that fails with HTTP 500", t, func() {
		remote := newFakeRemote(http.StatusInternalServerError, `{"error":"boom"}`)
		defer remote.Close()

		_, err := NewClient(remote.URL, Credential{}, nil).QueryAgent(context.Background(), "x", "")

		Convey("It should surface an upstream error carrying the status code", func() {
			So(errors.Is(err, core.ErrUpstream), ShouldBeTrue)

			var upstreamErr *Error
			So(errors.As(err, &upstreamErr), ShouldBeTrue)
			So(upstreamErr.StatusCode, ShouldEqual, http.StatusInternalServerError)
			So(err.Error(), ShouldEqual, "API error: 500 Internal Server Error: boom")
		})
	})

	Convey("Given an unreachable remote", t, func() {
		remote := newFakeRemote(http.StatusOK, `{}`)
		remote.Close()

		_, err := NewClient(remote.URL, Credential{}, nil).QueryAgent(context.Background(), "x", "")

		Convey("It should report a network failure as an upstream error", func() {
			So(errors.Is(err, core.ErrUpstream), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, "request failed: POST /api/agent")
		})
	})
}

func TestReviewDiff(t *testing.T) {
	Convey("Given a remote that answers the review route", t, func() {
		remote := newFakeRemote(http.StatusOK, `{"commitMessage":"fix: resolve issue","review":"Changes: 1 additions, 0 deletions","suggestions":[]}`)
		defer remote.Close()

		reply, err := NewClient(remote.URL, Credential{}, nil).ReviewDiff(context.Background(), "+fix\n")

		Convey("It should post the diff as plain text", func() {
			So(err, ShouldBeNil)
			So(reply.CommitMessage, ShouldEqual, "fix: resolve issue")
			So(reply.Review, ShouldEqual, "Changes: 1 additions, 0 deletions")

			requests := remote.Requests()
			So(requests, ShouldHaveLength, 1)
			So(requests[0].Path, ShouldEqual, PathReview)
			So(requests[0].Body, ShouldEqual, "+fix\n")
			So(requests[0].Header.Get("Content-Type"), ShouldEqual, "text/plain")
		})
	})
}

func TestProcessPage(t *testing.T) {
	Convey("Given a remote that answers the process_page route", t, func() {
		remote := newFakeRemote(http.StatusOK, `{"url":"https://go.dev","action":"summarize","result":"a summary","processedAt":"2025-01-01T00:00:00Z"}`)
		defer remote.Close()

		reply, err := NewClient(remote.URL, Credential{}, nil).ProcessPage(context.Background(), PageRequest{
			URL:    "https://go.dev",
			Action: ActionSummarize,
		})

		Convey("It should return the result field and omit absent content", func() {
			So(err, ShouldBeNil)
			So(reply.Result, ShouldEqual, "a summary")
			So(remote.Requests()[0].Body, ShouldEqual, `{"url":"https://go.dev","action":"summarize"}`)
		})
	})
}

func TestEmptyContractFields(t *testing.T) {
	Convey("Given remotes that reply with present but empty contract fields", t, func() {
		Convey("An empty commit message should be accepted", func() {
			remote := newFakeRemote(http.StatusOK, `{"commitMessage":"","review":"","suggestions":[]}`)
			defer remote.Close()

			reply, err := NewClient(remote.URL, Credential{}, nil).ReviewDiff(context.Background(), "+x\n")
			So(err, ShouldBeNil)
			So(reply.CommitMessage, ShouldEqual, "")
		})

		Convey("An empty result should be accepted", func() {
			remote := newFakeRemote(http.StatusOK, `{"url":"https://go.dev","action":"extract","result":""}`)
			defer remote.Close()

			reply, err := NewClient(remote.URL, Credential{}, nil).ProcessPage(context.Background(), PageRequest{
				URL:    "https://go.dev",
				Action: ActionExtract,
			})
			So(err, ShouldBeNil)
			So(reply.Result, ShouldEqual, "")
		})

		Convey("A missing result should still be a schema mismatch", func() {
			remote := newFakeRemote(http.StatusOK, `{"url":"https://go.dev","action":"extract"}`)
			defer remote.Close()

			_, err := NewClient(remote.URL, Credential{}, nil).ProcessPage(context.Background(), PageRequest{
				URL:    "https://go.dev",
				Action: ActionExtract,
			})
			So(errors.Is(err, core.ErrSchemaMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `"result"`)
		})
	})
}

func TestProjectResources(t *testing.T) {
	Convey("Given a remote serving project data", t, func() {
		remote := newFakeRemote(http.StatusOK, `{"preferences":{},"notes":[]}`)
		defer remote.Close()

		client := NewClient(remote.URL, Credential{Token: "t"}, nil)

		Convey("It should GET the context route with credentials", func() {
			body, err := client.ProjectContext(context.Background())
			So(err, ShouldBeNil)
			So(string(body), ShouldEqual, `{"preferences":{},"notes":[]}`)

			requests := remote.Requests()
			So(requests[0].Method, ShouldEqual, http.MethodGet)
			So(requests[0].Path, ShouldEqual, PathProjectContext)
			So(requests[0].Header.Get("Authorization"), ShouldEqual, "Bearer t")
		})

		Convey("It should GET the history route", func() {
			_, err := client.ProjectHistory(context.Background())
			So(err, ShouldBeNil)
			So(remote.Requests()[0].Path, ShouldEqual, PathProjectHistory)
		})
	})

	Convey("Given a remote that returns something other than JSON", t, func() {
		remote := newFakeRemote(http.StatusOK, `<html>`)
		defer remote.Close()

		_, err := NewClient(remote.URL, Credential{}, nil).ProjectHistory(context.Background())

		Convey("It should report a schema mismatch", func() {
			So(errors.Is(err, core.ErrSchemaMismatch), ShouldBeTrue)
		})
	})
}

func TestContract(t *testing.T) {
	Convey("Given the published contract", t, func() {
		contract := NewContract()

		Convey("It should carry the version and every schema", func() {
			So(contract.Version, ShouldEqual, ContractVersion)
			So(contract.Schemas, ShouldContainKey, "AgentRequest")
			So(contract.Schemas, ShouldContainKey, "PageReply")
			So(contract.Schemas["AgentReply"].Required, ShouldResemble, []string{"response"})
			So(contract.Schemas["PageRequest"].Required, ShouldResemble, []string{"url", "action"})
		})
	})

	Convey("Given process_page actions", t, func() {
		So(ValidAction("summarize"), ShouldBeTrue)
		So(ValidAction("translate"), ShouldBeFalse)
	})
}
