// Package audit implements the MAWB billing audit core: it turns one
// freight-billing line-item export plus an optional MAWB→ETA mapping into
// a complete multi-dimensional financial audit.
//
// # Architecture
//
// The package is organized around a single state-free pipeline:
//
//  1. Resolver: locates the right sheet and binds heterogeneous headers
//     to logical fields via ordered alias tables (resolve.go)
//  2. Normalizers: MAWB canonicalization and list parsing (mawb.go),
//     fallback date parsing (eta.go)
//  3. Parser: decodes workbook rows into normalized billing lines and the
//     arrival-date mapping (parser.go)
//  4. Aggregator: join, per-MAWB rollup, Open/Closed classification,
//     exception taxonomy, dimensional rollups and bucket views
//     (aggregate.go)
//  5. KPI: headline counts, amounts and ratios (kpi.go)
//
// All defaulting conventions (UNKNOWN categoricals, zero-denominator
// ratios, percent rendering) live on the Policy type so the pipeline has
// one declared contract instead of scattered literals.
//
// # Usage
//
// End-to-end over uploaded workbook bytes, with memoization:
//
//	runner, err := audit.NewRunner(logger, audit.DefaultPolicy(), 0)
//	result, err := runner.Run(ctx, audit.Request{
//	    Billing:       billingBytes,
//	    ETA:           etaBytes,
//	    FilterText:    "999-34022122 99934022133",
//	    LowThreshold:  0.30,
//	    HighThreshold: 0.80,
//	})
//
// # Error Handling
//
// Unresolvable required columns are a hard input error before any
// aggregation; unparsable ETA values and filtered-but-absent MAWBs are
// non-fatal advisories carried on the result; numeric and categorical
// coercion failures silently take documented defaults.
package audit
