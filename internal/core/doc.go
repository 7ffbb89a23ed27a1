// Package core provides the migration engine that moves the movies catalog
// from an embedded SQLite file into PostgreSQL and proves the copy is faithful.
//
// The package has no CLI dependencies and can be driven by the command-line
// tools, tests, or any other caller that owns the two store handles.
//
// # Architecture
//
// The engine is a straight pipeline plus an independent verification pass:
//
//   - Catalog: each entity table is registered via [Register] with its
//     dependency rank, source table, destination table, and field specs.
//   - Extractor: streams a source table as lazy, fixed-size [Batch] values.
//   - Transform: converts one raw [Row] into a typed [Record], coercing
//     SQLite's loosely typed values into the destination's strict types.
//   - Loader: inserts one batch per transaction with ON CONFLICT (id) DO NOTHING,
//     so re-running a migration never duplicates rows.
//   - Verifier: re-reads both stores ordered by id and compares row counts and
//     canonicalised values.
//
// [Migrator] drives the pipeline table by table in dependency order.
//
// # Table Catalog
//
// Tables are registered at init time from the tables package:
//
//	core.Register(core.TableDefinition{
//	    Kind:        core.KindGenre,
//	    Rank:        1,
//	    SourceTable: "genre",
//	    DestTable:   "genre",
//	    FieldSpecs: []core.FieldSpec{
//	        {Column: "id", Type: core.FieldUUID},
//	        {Column: "name", Type: core.FieldText},
//	    },
//	    Build: buildGenre,
//	})
//
// # Error Handling
//
// Failures are typed: [SourceReadError], [TransformError] and
// [DestinationWriteError] wrap the underlying cause, while value and count
// discrepancies are reported as [VerificationMismatch] entries in a [Report].
// [Describe] maps any of them to a support code for log output.
package core
