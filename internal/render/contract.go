package render

// DocumentContract describes the exported document format. It is served to
// MCP clients so they can read published notes without guessing the layout.
const DocumentContract = `# Selene Exported Note Format

Every exported note is one Markdown file with YAML frontmatter, published as
identical copies under four views of the Selene folder:

    Timeline/<YYYY>/<MM>/<date>-<slug>.md
    By-Concept/<first concept | uncategorized>/<date>-<slug>.md
    By-Theme/<primary theme | uncategorized>/<date>-<slug>.md
    By-Energy/<energy level | uncategorized>/<date>-<slug>.md

Concept hubs live at Concepts/<concept>.md. They are created once and never
overwritten, so edits made in the vault are kept.

## Frontmatter

| Field | Type | Notes |
|-------|------|-------|
| title | string | always double-quoted |
| date | YYYY-MM-DD | note creation date |
| time | "HH:MM" | note creation time |
| day | string | weekday name |
| theme | string | primary theme |
| energy | string | high, medium, low |
| mood | string | emotional tone |
| sentiment | string | positive, negative, neutral, mixed |
| sentiment_score | float | 0..1, 0.5 when unknown |
| concepts | list | in analysis order |
| tags | list | themes, own tags, energy-/mood-/sentiment- tags, marker tags |
| adhd_markers | map | overwhelm, hyperfocus, executive_dysfunction |
| stress | bool | |
| action_items | int | number of extracted items |
| reading_time | int | minutes at 200 words per minute |
| word_count | int | |
| source | string | always Selene |
| automated | bool | always true |

## Body sections, in order

1. Title heading and "Status at a Glance" table
2. Theme and concept backlinks, creation time, quick context box
3. "Action Items Detected" checklist (omitted when there are none)
4. "Full Content", the note text verbatim
5. "ADHD Insights": brain state, key emotions, context clues
6. "Processing Metadata" footer with the processing date
`
