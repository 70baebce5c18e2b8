// Package core provides the classification business logic.
//
// It sits between the transports (HTTP handlers in package web, the hscode
// CLI) and the language model behind package oracle, and can be used by
// either without modification.
//
// # Single Classification
//
// [Service.Classify] trims the description, asks the oracle for a code,
// extracts the first 6, 8 or 10 digit run from the answer and formats it for
// the requested jurisdiction:
//
//	c, err := svc.Classify(ctx, "cotton t-shirt", "US")
//	// c.Code == "6109.10.00.12", c.Confidence == 1.0
//
// Any oracle problem, including an answer with no digits at all, surfaces as
// [ErrOracleUnavailable].
//
// # Batches
//
// [Service.ClassifyBatch] runs rows through a bounded worker pool and returns
// one tagged [RowResult] per input in input order. Blank descriptions are
// skipped and oracle failures mark only their own row as failed. A
// [BatchLimiter] bounds how many batches run at once.
//
// Workbooks are read with [ParseWorkbook] and can be written back with the
// results appended using [AnnotateWorkbook].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - HSC001-HSC003: Classification and Q&A errors
//   - FILE001-FILE005: Upload errors (size, type, empty or corrupt workbooks)
//   - BAT001-BAT002: Batch limits
//   - REQ001-REQ003: Request errors (bad body, cancelled, timeout)
//   - RATE001: Rate limiting
package core
