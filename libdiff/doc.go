// Package libdiff computes line diffs of rendered documents.
package libdiff
