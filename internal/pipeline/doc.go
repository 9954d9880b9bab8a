// Package pipeline turns fetched document payloads into catalog
// entries through a fixed sequence of steps: metadata extraction,
// classification, and commit.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between steps
//
// The crawler runs one pipeline execution per stored document; HTML
// pages never enter the pipeline, they only feed the frontier.
package pipeline
