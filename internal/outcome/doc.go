// Package outcome computes course grades, learning-outcome attainment and
// program-outcome achievement from an in-memory snapshot of scores and weights.
//
// Everything here is a pure function of its inputs: nothing is written back,
// and running a pass twice over the same snapshot yields identical results.
// A Snapshot is built once per request from bulk-fetched rows so that the
// nested student × course × outcome × component iteration never touches the
// database.
package outcome
