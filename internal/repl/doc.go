// Package repl is the interactive front end. Lines are read until every IF,
// CASE and VAR block is closed; the whole session source is then translated
// again with a fresh Translator and only the new rungs and diagnostics are
// printed.
//
// Commands: :quit, :reset, :map, :source, :help.
package repl
