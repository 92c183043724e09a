package mcpserver

import "github.com/starford/sgk/internal/grounding"

// GroundingContract tells LLM consumers how to use textbook context.
const GroundingContract = `# SGK Grounding Contract

Answers about textbook (SGK) content MUST be grounded in context returned by
the ` + "`" + `build_context` + "`" + ` tool.

## Rules

1. Call ` + "`" + `build_context` + "`" + ` with the user's question before answering.
2. If it returns a failure (` + "`" + `NOT_READY` + "`" + `, ` + "`" + `NO_SGK` + "`" + `, ` + "`" + `NO_MATCH` + "`" + `), do **not** answer from
   general knowledge. Relay the returned guidance to the user instead.
   The only exception is ` + "`" + `mode: "partial"` + "`" + ` with ` + "`" + `NO_MATCH` + "`" + `, reserved for generic,
   non-factual replies such as greetings.
3. Prepend the directive below and the returned context to your instruction.
4. Every factual statement carries a citation tag copied verbatim from the
   context: ` + "`" + `[SGK:<bookId>:L<start>-L<end>:<headingPath>]` + "`" + `.
5. Do not invent tags, line numbers or book ids.

## Directive

` + "```" + `
` + grounding.Directive + `
` + "```" + `
`
