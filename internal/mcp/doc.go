// Package mcp exposes classification and learning as MCP tools.
//
// Tools are served with the MCP SDK (github.com/modelcontextprotocol/go-sdk/mcp)
// over stdio and call the classifier directly. Record text in tool output is
// scrubbed for secrets before it is returned to clients.
package mcp
