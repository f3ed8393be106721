// Package plan resolves a normalized format catalog plus user preferences
// into a concrete fetch plan: a single format, a paired video+audio selection,
// a declarative fallback rule, or a verbatim passthrough of compound selection
// syntax the fetch engine interprets itself.
package plan
