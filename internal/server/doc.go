// Package server implements the MCP (Model Context Protocol) server for the
// digit segmentation pipeline.
//
// This package provides a JSON-RPC 2.0 server that exposes region discovery
// and digit extraction to MCP-compatible clients, so an agent can ask where
// the digits of a sign are and get the crops back.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_dimensions: Get width and height
//   - digits_candidates: Unfiltered candidate boxes at working resolution
//   - digits_locate: Digit region, survivors and per-stage counts
//   - digits_extract: Padded region crop and ordered digit crops as base64 PNG,
//     optionally saved to the output directory
//   - digits_overlay: Survivors of one stage drawn onto the stage image
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the server process.
// Each tool call builds its own pipeline from the loaded configuration, so
// calls share no per-image state.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, e.g. "color: no surviving boxes"
//
// # Usage
//
//	srv, err := server.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return srv.Run()
package server
