// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"
	"testing"
)

var allIds = []Id{
	WorkspaceNotFoundId,
	WorkspaceInvalidId,
	DependencyCycleId,
	UnknownDependencyId,
	ConfigLoadFailedId,
	CacheNotFoundId,
	KeyringLoadFailedId,
}

func TestIssuesMapCompleteness(t *testing.T) {
	t.Parallel()

	for _, id := range allIds {
		issue := Get(id)
		if issue == nil {
			t.Errorf("Issue with ID %d is not in the issues map", id)
			continue
		}
		if issue.Id() != id {
			t.Errorf("issue.Id() = %d, want %d", issue.Id(), id)
		}
		if strings.TrimSpace(string(issue.MarkdownMsg())) == "" {
			t.Errorf("Issue %d has empty MarkdownMsg", id)
		}
	}

	if Get(0) != nil {
		t.Error("Get(0) should return nil")
	}
	if WorkspaceNotFoundId != 1 {
		t.Errorf("WorkspaceNotFoundId = %d, want 1", WorkspaceNotFoundId)
	}
}

func TestValues_SortedById(t *testing.T) {
	t.Parallel()

	values := Values()
	got := make([]Id, len(values))
	for i, v := range values {
		got[i] = v.Id()
	}
	if !slices.Equal(got, allIds) {
		t.Errorf("Values() ids = %v, want %v", got, allIds)
	}
}

func TestIssue_DocLinksClone(t *testing.T) {
	t.Parallel()

	i := &Issue{id: 99, mdMsg: "# x", docLinks: []HttpLink{"https://example.com/a"}}
	links := i.DocLinks()
	links[0] = "changed"
	if i.DocLinks()[0] != "https://example.com/a" {
		t.Error("DocLinks() should return a clone")
	}
}

// Not parallel: replaces the package-level render function.
func TestIssue_Render_WithLinks(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	i := &Issue{id: 99, mdMsg: "# Title", docLinks: []HttpLink{"https://example.com/docs"}}
	out, err := i.Render("dark")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if gotStyle != "dark" {
		t.Errorf("style = %q, want dark", gotStyle)
	}
	if !strings.Contains(out, "## See also") || !strings.Contains(out, "<https://example.com/docs>") {
		t.Errorf("rendered output missing links section:\n%s", out)
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	t.Parallel()

	for _, issue := range Values() {
		rendered, err := issue.Render("notty")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", issue.Id(), err)
		}
		if strings.TrimSpace(rendered) == "" {
			t.Errorf("Issue %d rendered to empty string", issue.Id())
		}
	}
}
