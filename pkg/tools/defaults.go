package tools

// NewDefaultRegistry registers the three relay tools in their published order.
func NewDefaultRegistry(backend Backend, diffs DiffSource) *Registry {
	return NewRegistry(
		NewQueryAgentTool(backend),
		NewGitReviewTool(backend, diffs),
		NewBrowserContentTool(backend),
	)
}
