package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `storyverse manages story universes, their remixes, favorites and creator analytics.

Core concepts:
- Universe: a story world owned by a creator. Status is draft, published or archived. Rating is 0..5.
- Remix: a derivative of a universe. parent_universe_id is a soft reference and may outlive the parent.
- Favorite: a bookmarked universe, keyed by universe id. Favorites survive restarts.
- Notification: a transient message. Most expire on their own; dismiss the rest.
- Report: a creator's metrics and daily series. Each fetch replaces the previous report.

Workflow:
1) Browse with list_universes or search. Search matches titles, descriptions, creators, tags and stories.
2) Write with create_universe / update_universe / delete_universe. update_universe only touches fields you pass.
3) Use add_favorite / remove_favorite to bookmark; add_favorite is idempotent.
4) Call fetch_analytics for a creator before quoting numbers.

Writes go through a simulated network: they take time and may fail with UNAVAILABLE after retries.

Docs:
- storyverse://docs/index
- storyverse://docs/search
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "storyverse://docs/index",
		Name:        "docs_index",
		Title:       "storyverse docs index",
		Description: "Tool catalog and error codes.",
		Content: `# storyverse: Agent Docs Index

## Tools

| Tool | Purpose |
|---|---|
| create_universe | create a universe (draft by default) |
| list_universes | list universes; filter by creator_id, genre, status |
| update_universe | patch top-level fields; omitted fields are kept |
| delete_universe | delete a universe |
| search | substring search across universes, creators, tags, stories |
| add_favorite / remove_favorite / list_favorites | manage favorites |
| list_notifications / dismiss_notification | read and clear notifications |
| get_tip | companion tip for a screen context |
| fetch_analytics | recompute a creator report |
| create_remix / list_remixes | remix universes |

## Error codes

- UNIVERSE_NOT_FOUND, REMIX_NOT_FOUND, FAVORITE_NOT_FOUND: the id does not exist (or was removed concurrently).
- INVALID_INPUT: a required field is missing or an enum value is unknown.
- INVALID_FILTER: a search filter is outside the vocabulary.
- UNAVAILABLE: the backend kept failing; nothing was changed.
- CANCELED: the request was canceled before it settled.

Concurrent writes to the same entity resolve last-writer-wins in completion order.
`,
	},
	{
		URI:         "storyverse://docs/search",
		Name:        "docs_search",
		Title:       "Search semantics",
		Description: "How search matches, filters and sorts.",
		Content: `# Search

Matching is a case-insensitive substring test.

- universe: title, description or any tag
- creator: name or specialty
- tag: each distinct matching tag once, with the number of universes carrying it
- story: remixes of type story, by title or description

Results come in that order unless sort_by is set:

- relevance: scan order
- views: most viewed first
- rating: highest rated first
- new: newest first, undated results last

genre and min_rating apply to universe results only. types restricts result types.
An empty query returns no results.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
