// Package harness drives scenario executions for an operator.
//
// A Dispatcher resolves scenario tokens against a catalog and runs the
// resulting steps one at a time: deliveries go through a deliver.Simulator,
// checkpoints block on a ConfirmationSource, sleeps wait on a clock.Clock.
// After the last step the operator is shown the expected result and asked
// for a verdict.
//
// # Execution states
//
//	NotStarted -> Preparing -> AwaitingFinalConfirmation -> Completed
//	                  |
//	                  +-> Aborted   (codec or file I/O error)
//
// A failed scenario is an operator judgement recorded as a fail verdict; the
// only program-detected failure is Aborted.
//
// # Interaction
//
// Selection tokens are a scenario name, its ordinal, ALL, or \q. Confirmations
// accept y or n. Anything else re-prompts. Prompts have no timeout and
// quitting is only possible between scenarios.
//
// Production code uses Terminal for both selection and confirmation; tests
// use Scripted.
package harness
