// Package curator scrapes scientific-software documentation sites for code
// examples, deduplicates and scores them through a language model, and
// renders the accepted ones as gallery files behind a change-gated publish
// step.
//
// This package contains domain types, interfaces and the pure parts of the
// pipeline following Ben Johnson's Standard Package Layout. Implementations
// live in subdirectories named after their primary dependency (e.g.
// sqlite/, goquery/, gemini/). The pipeline/ package composes them.
package curator
