// Package shared holds helpers used by more than one internal package.
//
// The testutil subpackage provides baby-names fixtures (per-year source files
// written into a temporary directory) and a buffered slog handler for
// asserting on log output:
//
//	func TestLoad(t *testing.T) {
//	    fx := testutil.NewNamesFixtures(t)
//	    fx.WriteSample()
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
//
// Nothing in this package carries business logic.
package shared
