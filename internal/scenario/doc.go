// Package scenario defines the regression scenarios the harness can run and
// the catalog that names them.
//
// A Scenario yields an ordered list of steps when prepared against a data
// directory. Steps form a closed set:
//
//   - Deliver: copy a message from the data directory into the ingest
//     directory, optionally tagging and rewriting it
//   - Checkpoint: block until the operator answers y or n
//   - Sleep: wait a fixed wall-clock duration
//   - Note: print operator guidance
//
// # Catalog Format
//
// Catalogs are YAML documents validated against an embedded CUE schema
// before they are decoded:
//
//	scenarios:
//	  - name: TriggerHighScenario
//	    expected: "The trigger message interrupts the high suite."
//	    steps:
//	      - deliver: scheduling/MSG_TRIGGER_HIGH
//	        rewrite: true
//	        unique: true
//	        expire: 10
//	      - checkpoint: "Did the high suite start playing?"
//	        otherwise: stop
//	      - sleep: 30s
//
// Source paths are relative to the data directory and must live under one of
// the parsing/ or scheduling/ subdirectories.
//
// # Lookup
//
// Every scenario is reachable by its name and by its zero-based ordinal in
// registration order. Names win over ordinals. The tokens ALL and \q are
// reserved for the dispatcher.
package scenario
