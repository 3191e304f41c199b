// Package mcptypes defines the wire-level data transfer objects exchanged during the MCP
// handshake and primitive calls: protocol versions, capability shapes, and content blocks.
// It carries no behavior; dispatch and registry logic live in their own packages.
// file: internal/mcptypes/types.go
package mcptypes

import "encoding/json"

// Supported protocol versions, per the handshake's accepted set.
const (
	ProtocolVersion20250618 = "2025-06-18"
	ProtocolVersion20250326 = "2025-03-26"
	ProtocolVersion20241105 = "2024-11-05"
)

// SupportedProtocolVersions lists every protocolVersion the server accepts in initialize.
var SupportedProtocolVersions = []string{
	ProtocolVersion20250618,
	ProtocolVersion20250326,
	ProtocolVersion20241105,
}

// IsSupportedProtocolVersion reports whether v is one of SupportedProtocolVersions.
func IsSupportedProtocolVersion(v string) bool {
	for _, supported := range SupportedProtocolVersions {
		if supported == v {
			return true
		}
	}
	return false
}

// ServerName and ServerVersion are the fixed identity the server reports in initialize.
const (
	ServerName    = "MCP Server Framework"
	ServerVersion = "1.0.0"
)

// Implementation describes either end of the connection (client or server identity).
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ClientCapabilities is the client-declared capability set sent with initialize.
// Only the experimental and sampling keys are decoded; any other key is dropped.
type ClientCapabilities struct {
	Experimental map[string]interface{} `json:"experimental,omitempty"`
	Sampling     map[string]interface{} `json:"sampling,omitempty"`
}

// HasExperimental reports whether the client declared any experimental capability.
func (c ClientCapabilities) HasExperimental() bool {
	return len(c.Experimental) > 0
}

// HasSampling reports whether the client declared sampling support.
func (c ClientCapabilities) HasSampling() bool {
	return c.Sampling != nil
}

// ResourceCapabilities describes the server's resource-related feature flags.
type ResourceCapabilities struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

// PromptCapabilities describes the server's prompt-related feature flags.
type PromptCapabilities struct {
	Streaming bool `json:"streaming,omitempty"`
}

// ServerCapabilities is the negotiated capability set returned from initialize. Map-based
// fields hold arbitrary nested configuration; the primitive-derived fields are only present
// when a matching registry holds at least one definition of that kind (or a static override
// requests it).
type ServerCapabilities struct {
	Experimental map[string]interface{} `json:"experimental"`
	Logging      map[string]interface{} `json:"logging"`
	Completion   map[string]interface{} `json:"completion,omitempty"`
	Prompts      *PromptCapabilities     `json:"prompts,omitempty"`
	Tools        map[string]interface{}  `json:"tools,omitempty"`
	Resources    *ResourceCapabilities   `json:"resources,omitempty"`
}

// InitializeParams is the decoded params object of an initialize request.
type InitializeParams struct {
	ProtocolVersion string              `json:"protocolVersion"`
	Capabilities    ClientCapabilities  `json:"capabilities"`
	ClientInfo      Implementation      `json:"clientInfo"`
}

// InitializeResult is the result object returned from a successful initialize.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
}

// ShutdownParams is the optional params object accepted by the shutdown method.
type ShutdownParams struct {
	Reason string `json:"reason,omitempty"`
}

// TextContent is a single text content block, the only content kind the reference
// dispatcher emits (prompts/get, tools/call, resources/read all wrap results as text).
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextContent builds a TextContent block with Type fixed to "text".
func NewTextContent(text string) TextContent {
	return TextContent{Type: "text", Text: text}
}

// PromptMessage is a single message entry returned by prompts/get.
type PromptMessage struct {
	Role    string      `json:"role"`
	Content TextContent `json:"content"`
}

// GetPromptResult is the result object of a prompts/get call.
type GetPromptResult struct {
	Messages []PromptMessage `json:"messages"`
}

// CallToolResult is the result object of a tools/call invocation.
type CallToolResult struct {
	Content []TextContent `json:"content"`
}

// ResourceContent is a single entry in the contents array returned by resources/read.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// ReadResourceResult is the result object of a resources/read call.
type ReadResourceResult struct {
	Contents []ResourceContent `json:"contents"`
}

// ListResult is the generic shape of prompts/list, tools/list, and resources/list results:
// a flat descriptor array plus an optional opaque pagination cursor.
type ListResult struct {
	Items      []json.RawMessage `json:"items"`
	NextCursor string            `json:"nextCursor,omitempty"`
}
