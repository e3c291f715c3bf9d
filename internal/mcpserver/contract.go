package mcpserver

// MarkGuide describes the conventions that LLM consumers should follow
// when creating trails and marks.
const MarkGuide = `# Clawmarks Guide

Clawmarks records *why* code locations matter. A **trail** is one thread of
exploration (a bug hunt, a refactor survey, an onboarding tour); a **mark** is
an annotated pointer to a single source location on that trail.

## Trails

- Create a trail before adding marks; every mark belongs to exactly one trail.
- Name trails after the question being answered, e.g. ` + "`" + `Why does checkout double-charge?` + "`" + `,
  not after the files being visited.
- Archive a trail when the exploration is done. Archiving is one-way and keeps
  all marks readable; delete only when the whole thread is worthless.
- Deleting a trail deletes its marks permanently.

## Marks

- ` + "`" + `file` + "`" + ` is a path relative to the project root, forward slashes only.
- ` + "`" + `line` + "`" + ` is 1-indexed; ` + "`" + `column` + "`" + ` is optional and only worth setting when the
  line holds more than one candidate expression.
- The **annotation** is the payload. Write what a future reader cannot see in
  the code itself: the suspicion, the constraint, the decision. One or two
  sentences, present tense.
- Line numbers are a snapshot, not tracked across edits. Quote a short code
  fragment in the annotation so the mark stays findable after the file moves.

## Mark types

| type           | use for                                                 |
|----------------|---------------------------------------------------------|
| ` + "`" + `decision` + "`" + `     | a choice that was made here, and why                    |
| ` + "`" + `question` + "`" + `     | something not yet understood                            |
| ` + "`" + `change_needed` + "`" + `| a concrete edit this location requires                  |
| ` + "`" + `reference` + "`" + `    | a plain landmark worth returning to (the default)       |
| ` + "`" + `alternative` + "`" + `  | a rejected or competing approach                        |
| ` + "`" + `dependency` + "`" + `   | code this trail depends on but does not change          |

## Tags

- Tags are stored with a leading ` + "`" + `#` + "`" + `; you may pass them with or without it.
- Keep tags lowercase and kebab-case after the hash: ` + "`" + `#auth` + "`" + `, ` + "`" + `#perf-hotspot` + "`" + `.
- Tags cut across trails; use them for themes (` + "`" + `#tech-debt` + "`" + `), not for trail
  names that already exist.

## References

- ` + "`" + `link_marks` + "`" + ` adds a one-way edge from a source mark to a target mark. Use it
  to say "this location explains / causes / contradicts that one"; record the
  nature of the relation in the source mark's annotation.
- Links are not symmetric. ` + "`" + `get_references` + "`" + ` shows both directions.
- Deleting a mark removes it from every other mark's references.
`
