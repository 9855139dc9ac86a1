// Package lang parses the survey module markup language.
//
// A module is free-form text in which question blocks, repeatable loop blocks
// and tabular grid blocks are embedded:
//
//	Welcome to the survey.
//	// authoring notes are ignored by boundary detection
//	[Q1 displayif=equals(AGE,1)] How many meals did you eat today?
//	[1] One
//	[2] Two or more
//	<grid id="G1">
//	[G1A] Breakfast
//	[G1B] Lunch
//	</grid>
//	<loop id="MEALS">
//	[L1] Where did you eat meal #?
//	[L2] With whom?
//	</loop>
//	[Q3] Thank you.
//
// # Grammar
//
// Informal EBNF:
//
//	Module    → Preamble Sep* (Item Sep*)* Remainder
//	Item      → Question | Grid | Loop
//	Question  → '[' <text without ']'> ']' Body
//	Grid      → Tag(grid) <text> '</grid>'
//	Loop      → Tag(loop) (Sep* Item)* '</loop>'
//	Tag(name) → '<' ' '* name <text without '>'> '>'
//	Body      → <text up to the next boundary>
//	Sep       → '//' <line> | <whitespace>+
//
// A boundary is an opening bracket followed by an uppercase letter, or '<'
// followed by exactly "loop" or "grid". A bracket followed by anything else,
// such as the numbered answer options "[1]" above, is ordinary body text.
//
// # Comments
//
// A line comment starts at "//" and runs through the next newline. Comments
// are never removed from stored text: inside a body they only suspend
// boundary detection, so a header-looking "[Q9]" in a comment does not start
// a new question. Between items they are skipped as separators. Callers must
// not strip comments before parsing.
//
// # Items
//
// [Item] is a closed sum type implemented by [*Question], [*Grid] and
// [*Loop]. Grid bodies are opaque; loop bodies are kept verbatim and also
// parsed with the same item grammar, so loops may nest up to the configured
// [WithMaxDepth].
//
// # Errors
//
// The grammar is strict. Once an item has opened (a '[' or a recognized tag),
// a missing terminator aborts the whole parse with a [*ParseError] whose kind
// is one of the sentinel errors ([ErrUnterminatedHeader], [ErrUnterminatedTag],
// [ErrUnterminatedGroup], [ErrMaxDepthExceeded]). Text that matches no item
// simply stops the item sequence; it is returned in [Module.Remainder], and it
// is an [ErrTrailingText] error only when [WithStrict] is enabled.
//
// # Concurrency
//
// Parsing is a pure function of its input. A [*Module] is never modified
// after it is returned, so modules, including those shared through the
// [ParseReader] cache, are safe for concurrent readers.
package lang
