package mcpserver

// PostFormatContract describes the post source format that LLM clients
// should follow when drafting posts.
const PostFormatContract = `# Post Format Contract

A post is one file in the content directory, named ` + "`<slug>.mdx`" + `.

## Structure

` + "```" + `markdown
---
title: "Post title"                # defaults to the slug
date: "2025-12-05"                 # YYYY-MM-DD; posts sort newest first
tags: ["nextjs", "react"]          # list or comma-separated string
excerpt: "One-line summary"        # optional; derived from the body when absent
---

Body in Markdown. Component tags are allowed but are stripped from
excerpts and word counts.
` + "```" + `

## Rules

1. The front matter block must open the file.
2. Slugs use lowercase letters, digits and hyphens only.
3. Tags are matched exactly and case-sensitively. ` + "`React`" + ` and ` + "`react`" + ` are different tags.
4. Use zero-padded ISO dates. Other formats are accepted but may sort unexpectedly.
5. Reading time is estimated at 500 characters per minute of cleaned body text.
6. Auto excerpts keep the first 150 characters of cleaned text, cut at a word boundary, followed by "...".

## Example

` + "```" + `markdown
---
title: "Hello World"
date: "2025-12-01"
tags: ["nextjs", "react"]
---

# Hello

This is the first post.
` + "```" + `
`
