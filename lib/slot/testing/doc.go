// Package testing provides standardised tests and benchmarks for host
// providers that satisfy the slot.Provider interface.
//
// The package contains:
//   - testing: A test suite validating the slot.Host and slot.Provider contract
//   - benchmark: Performance tests for the slot operations a record store issues
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func(t testing.TB) slot.Provider {
//		return NewMyProvider()
//	}
//
//	// Running the standard test suite
//	slottesting.RunHostTests(t, "MyProvider", factory)
//
//	// Running performance benchmarks
//	slottesting.RunHostBenchmarks(b, "MyProvider", factory)
package testing
