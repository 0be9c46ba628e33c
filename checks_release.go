//go:build chunkvec_release

package chunkvec

// DebugChecks reports whether iterator validity checks are compiled in.
const DebugChecks = false
