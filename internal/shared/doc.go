// Package shared holds helpers used across econviz packages.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and builders for indicator snapshots written to disk:
//
//	logger, logs := testutil.NewTestLogger(t)
//	path := testutil.WriteSnapshotCSV(t, t.TempDir(), "combined.csv", testutil.SmallSnapshot())
package shared
