// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Id identifies a catalog entry. The zero value means "no entry".
type Id int

const (
	WorkspaceNotFoundId Id = iota + 1
	WorkspaceInvalidId
	DependencyCycleId
	UnknownDependencyId
	ConfigLoadFailedId
	CacheNotFoundId
	KeyringLoadFailedId
)

type (
	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the Markdown help with the given glamour style ("dark",
// "light", "notty", or a path to a style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	workspaceNotFoundIssue = &Issue{
		id: WorkspaceNotFoundId,
		mdMsg: `
# Workspace not found!

clonescan needs a workspace description listing the modules to analyze.

## Search order
1. The path given on the command line (a file, or a directory)
2. ` + "`clonescan.cue`" + `, ` + "`clonescan.yaml`" + ` or ` + "`clonescan.yml`" + ` inside that directory

## Things you can try
- Point clonescan at the file directly:
~~~
$ clonescan analyze ./build/clonescan.cue
~~~

- Create a minimal workspace:
~~~cue
modules: [
	{name: "Core", target: "net8.0", output: "bin/Core.jsonl"},
]
~~~`,
	}

	workspaceInvalidIssue = &Issue{
		id: WorkspaceInvalidId,
		mdMsg: `
# Invalid workspace description!

The workspace file was found but does not match the expected schema.

## Common issues
- A module without ` + "`name`" + ` or ` + "`project`" + `
- Missing ` + "`target`" + ` or ` + "`output`" + `
- Two modules with the same name
- Unknown field names (the schema is closed)

## Things you can try
- Check the field path in the error message above
- Run with ` + "`--verbose`" + ` to see the full error chain`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Module dependency cycle!

The modules listed above depend on each other in a loop, so no module in the
loop can be analyzed before the others.

## Things you can try
- Remove one of the ` + "`depends_on`" + ` entries in the cycle
- Split the shared code into a module both sides can depend on`,
	}

	unknownDependencyIssue = &Issue{
		id: UnknownDependencyId,
		mdMsg: `
# Unknown module dependency!

A module's ` + "`depends_on`" + ` list names a module the workspace does not declare.

## Things you can try
- Check the spelling; module names are case-sensitive
- When a module only has a ` + "`project`" + `, its name is the project file name without extension`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try
- Show where clonescan looks for its configuration:
~~~
$ clonescan config path
~~~

- Compare with the defaults:
~~~
$ clonescan config show
~~~

- Recreate a default configuration file:
~~~
$ clonescan config init
~~~`,
	}

	cacheNotFoundIssue = &Issue{
		id: CacheNotFoundId,
		mdMsg: `
# Package cache not found!

References are resolved against a local package cache laid out as
` + "`<root>/<library>/<version>/<library>.<version>.nupkg`" + `.

## Things you can try
- Set ` + "`cache_dir`" + ` in your configuration, or pass ` + "`--cache-dir`" + `
- Set ` + "`NUGET_PACKAGES`" + ` to the cache location
- Restore the packages once so the cache gets populated`,
	}

	keyringLoadFailedIssue = &Issue{
		id: KeyringLoadFailedId,
		mdMsg: `
# Failed to load the trust keyring!

With ` + "`trust.keyring`" + ` set, every cached archive must carry a detached
OpenPGP signature (` + "`.asc`" + `) made by one of the keyring's keys.

## Things you can try
- Export the public keys in armored or binary form:
~~~
$ gpg --export --armor KEYID > keyring.asc
~~~

- Clear ` + "`trust.keyring`" + ` to disable signature checks`,
	}

	issues = map[Id]*Issue{
		workspaceNotFoundIssue.Id(): workspaceNotFoundIssue,
		workspaceInvalidIssue.Id():  workspaceInvalidIssue,
		dependencyCycleIssue.Id():   dependencyCycleIssue,
		unknownDependencyIssue.Id(): unknownDependencyIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		cacheNotFoundIssue.Id():     cacheNotFoundIssue,
		keyringLoadFailedIssue.Id(): keyringLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	ids := maps.Keys(issues)
	slices.Sort(ids)
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
