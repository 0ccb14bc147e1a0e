// Package optimizer is the rewrite point between compilation and planning.
// It performs no transformations today; the contract exists so a future
// rewrite pass has somewhere to live without disturbing the executor
// (spec §4.4).
package optimizer

import "github.com/freeeve/minidb/internal/compiler"

// Optimize accepts a compiled Statement and returns an optimized
// replacement, or the same Statement unchanged when there is nothing to
// rewrite.
func Optimize(stmt compiler.Statement) compiler.Statement {
	return stmt
}
