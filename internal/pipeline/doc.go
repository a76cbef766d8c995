// Package pipeline runs the karaoke chain for one job: separation,
// transcription, annotation, and render with publish.
//
// The chain is a fixed slice of steps executed in order. Every step records a
// start checkpoint in the ledger, does its work through a Strategies value,
// and records a completion checkpoint. A fatal step error stops the chain and
// marks the job FAILED with progress reset to zero. Annotation is the only
// non-fatal step: its failure is logged as degraded and the chain continues
// with unannotated lyrics.
//
// Real and mock collaborators are two Strategies values. The orchestrator
// picks one per job from the stage context's mode, so step bodies never branch
// on the mode themselves. Source resolution may switch a job to mock mode
// when no media was supplied.
package pipeline
