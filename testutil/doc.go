// Package testutil provides testing utilities for chunkvec.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source, a slice-backed reference model of
// vector contents and iterator validity, and a random operation generator
// for differential tests.
//
// # Random Operations
//
//	rng := testutil.NewRNG(seed)
//	model := testutil.NewModel()
//	for i := 0; i < 1000; i++ {
//		op := rng.NextOp(model.Len())
//		model.Apply(op)
//		// apply op to the vector under test and compare
//	}
//
// # Validity Oracle
//
//	gen := model.Generation()
//	model.Apply(op)
//	ok := model.IsValid(gen, pos)
package testutil
