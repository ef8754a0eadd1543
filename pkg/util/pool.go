package util

import "runtime"

// GetOptimalPoolSize returns the pool size used for CPU-bound work.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Shared by:
//   - the tree-sitter parser pool (parsers per grammar)
//   - the workspace scanner (concurrent file extractions)
//
// Both sides must agree, otherwise scan workers block waiting for parsers.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when it is positive and
// GetOptimalPoolSize() otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
