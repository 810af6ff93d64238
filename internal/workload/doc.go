// Package workload implements the editor workload and creative-distribution
// engine. It keeps the assignment ledger, enforces the distribution invariant
// (units assigned across editors never exceed what a request asked for),
// derives each editor's load percentage and capacity status from the ledger,
// and raises alerts when thresholds are crossed.
//
// Load and status are a materialized cache of a pure function over the
// ledger: every ledger mutation recomputes the affected editor inside the
// same transaction, so readers never observe a ledger change without its
// recomputed load.
package workload
