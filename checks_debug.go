//go:build !chunkvec_release

package chunkvec

// DebugChecks reports whether iterator validity checks are compiled in.
// Build with -tags chunkvec_release to remove them.
const DebugChecks = true
