package mcpserver

// DocumentFormat describes the path-keyed document that LLM consumers read
// from get_taxonomy and submit to validate_document.
const DocumentFormat = `# Taxonomy Document Format

The taxonomy is edited as one document mapping a **path** to an **entry**.
The same structure is used in TOML, JSON and YAML.

## Keys

- A path is one or more identifiers joined by ` + "`/`" + `, root first:
  ` + "`design/web-design/css`" + `.
- The last segment is the entry's own identifier; the one before it is its parent.
- A single-segment path is a root entry.
- Intermediate paths need not have their own entry.
- An identifier may appear as the last segment of only one path.

## Identifiers

- Non-empty kebab-case: lowercase letters and digits in words joined by ` + "`-`" + `.
- Valid: ` + "`web-design`, `html5`, `css`" + `. Invalid: ` + "`WebDesign`, `web_design`, `a/b`" + `.

## Entry fields

| Field | Type | Notes |
|---|---|---|
| ` + "`class_name`" + ` | string | free-form classification label |
| ` + "`synonyms`" + ` | list of strings | may be empty |
| ` + "`title`" + ` | string | display title; no leading or trailing whitespace |

All three fields are required on every entry; a missing field or a null
entry is rejected. Unknown fields are rejected too. Titles that are not in title case are accepted
with a warning suggesting the title-cased form.

## Example (TOML)

` + "```" + `toml
[design]
class_name = "category"
synonyms = ["ux"]
title = "Design"

["design/web-design"]
class_name = "skill"
synonyms = []
title = "Web Design"

["design/web-design/css"]
class_name = "skill"
synonyms = ["stylesheets"]
title = "CSS"
` + "```" + `

Storing a document replaces the whole stored taxonomy. An empty document
is refused unless the store is explicitly told to allow it.
`
