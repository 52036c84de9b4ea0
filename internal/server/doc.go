// Package server implements the MCP (Model Context Protocol) server for sheet grading tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the grading
// pipeline through the MCP protocol, so MCP-compatible clients can inspect
// sheets, tune thresholds and grade interactively.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Log output goes to stderr, keeping stdout clean for the protocol.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// The server provides 13 grading tools organized into categories:
//
// Sheet Information:
//   - sheet_info: Load a sheet and get metadata
//
// Catalog Operations:
//   - catalog_load: Parse and validate a region catalog
//   - catalog_lint: Check catalog geometry for layout mistakes
//   - catalog_discover: Derive a catalog from a template image via Gemini
//
// Mark Measurement:
//   - region_density: Dark-pixel density of one region
//   - sheet_densities: Densities for every region
//
// Grading:
//   - sheet_answers: Resolve selected answers without scoring
//   - sheet_grade: Grade one sheet into a full report
//   - batch_grade: Grade many sheets concurrently
//
// Review Output:
//   - sheet_annotate: Save an outcome-colored overlay
//   - sheet_crop_region: Crop one region as base64 PNG
//   - sheet_ink_mask: Binarized view at the dark cutoff
//
// Identification:
//   - sheet_read_id: OCR the student identifier strip
//
// # Sheet Caching
//
// The server maintains an in-memory cache of loaded sheets. Images are
// cached by path and reused across multiple tool calls, avoiding redundant
// disk I/O. The cache persists for the lifetime of the server process.
// Catalogs are small and re-read per call, so edits to a catalog file take
// effect immediately.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(mark.DefaultPolicy())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
