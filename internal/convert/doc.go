// Package convert rewrites Trac wiki markup into Markdown.
//
// Conversion is a fixed sequence of stages. Each stage holds small
// transformers that each handle one construct; inside a stage the
// transformers are ordered by their declared dependencies. Code, existing
// Markdown, escapes and resolved links are moved into a vault of
// placeholders as soon as they are recognized, so later stages cannot
// reinterpret them. The postprocess stage puts them back.
package convert
