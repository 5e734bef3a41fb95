package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/grok-agent-mcp/core"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

const GitReviewName = "git_review_and_commit"

var (
	ErrNoChanges    = errors.New("no changes to review")
	ErrNoDiffSource = errors.New("no diff provided and no local repository configured")
)

// GitReviewTool asks the agent for a commit message and review of a diff,
// reading the working tree diff when none is given.
type GitReviewTool struct {
	BaseTool
	backend Backend
	diffs   DiffSource
}

// NewGitReviewTool returns the tool. diffs may be nil, in which case the diff
// argument becomes mandatory in practice.
func NewGitReviewTool(backend Backend, diffs DiffSource) core.Tool {
	return &GitReviewTool{
		BaseTool: NewBaseTool(mcp.NewTool(
			GitReviewName,
			mcp.WithDescription("Generate smart commit message from git diff using agent analysis"),
			mcp.WithString("diff", mcp.Description("Git diff to analyze (optional, will fetch if not provided)")),
		)),
		backend: backend,
		diffs:   diffs,
	}
}

func (tool *GitReviewTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diff, err := optionalString(request, "diff")
	if err != nil {
		return nil, err
	}

	if diff == "" {
		if diff, err = tool.localDiff(ctx); err != nil {
			return nil, fmt.Errorf("Failed to review git diff: %w", err)
		}
	}

	reply, err := tool.backend.ReviewDiff(ctx, diff)
	if err != nil {
		return nil, fmt.Errorf("Failed to review git diff: %w", err)
	}

	return mcp.NewToolResultText(FormatReview(reply)), nil
}

func (tool *GitReviewTool) localDiff(ctx context.Context) (string, error) {
	if tool.diffs == nil {
		return "", ErrNoDiffSource
	}

	diff, err := tool.diffs.Diff(ctx)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(diff) == "" {
		return "", ErrNoChanges
	}

	return diff, nil
}

// FormatReview renders a review reply as the text block returned to callers.
func FormatReview(reply *upstream.ReviewReply) string {
	var out strings.Builder

	fmt.Fprintf(&out, "Suggested commit message:\n\n%s\n\n", reply.CommitMessage)

	if reply.Review != "" {
		out.WriteString("Review:\n")
		out.WriteString(reply.Review)
		if len(reply.Suggestions) > 0 {
			out.WriteString("\n\n")
		}
	}

	if len(reply.Suggestions) > 0 {
		out.WriteString("Suggestions:\n")
		for _, suggestion := range reply.Suggestions {
			out.WriteString("- ")
			out.WriteString(suggestion)
			out.WriteString("\n")
		}
	}

	return out.String()
}
