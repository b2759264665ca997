// Package diag defines the diagnostic model shared by all compiler phases.
//
// # Taxonomy
//
//   - Message: informational, shown only with verbosity >= 1.
//   - Warning: non-fatal, hidden with verbosity < 0.
//   - Error: recoverable: recorded, processing continues.
//   - Fatal: fatal and internal errors; abort the compiler instance at once.
//
// Every diagnostic points to a source.Loc (module + line) taken from the
// offending symbol's declaration site. Notes add secondary locations, e.g. the
// first declaration in a conflict.
//
// # Abort path
//
// Budget counts errors; the error that reaches the ceiling (DefaultMaxErrors)
// is recorded and then the instance unwinds by panicking with *Abort. Only
// Catch recovers it, so a hosting process maps the abort to a structured
// result instead of crashing.
//
// # Emitting diagnostics
//
// Phases receive a Reporter. ReportError / ReportWarning / ReportFatal build a
// diagnostic, WithNote attaches extra sites, Emit forwards it exactly once.
// BagReporter collects into a Bag in report order; DedupReporter drops
// repeated reports before they reach the Budget.
package diag
