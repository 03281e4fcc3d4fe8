package server

import "encoding/json"

// JSON-RPC 2.0 error codes used on the control channel.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
)

const jsonrpcVersion = "2.0"

// request is an inbound JSON-RPC 2.0 message. ID is kept raw so string,
// number, and null identifiers round-trip unchanged; a nil ID marks a
// notification (or is echoed as null on parse errors).
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// response is an outbound JSON-RPC 2.0 message. Exactly one of Result and
// Error is set. A nil ID serializes as null.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// method is the closed set of control-channel methods. The method is decided
// once at parse time; handlers switch on the typed value rather than
// comparing strings.
type method int

const (
	methodUnknown method = iota
	methodInitialize
	methodInitialized
	methodToolsList
	methodToolsCall
)

func parseMethod(name string) method {
	switch name {
	case "initialize":
		return methodInitialize
	case "notifications/initialized":
		return methodInitialized
	case "tools/list":
		return methodToolsList
	case "tools/call":
		return methodToolsCall
	default:
		return methodUnknown
	}
}

// callParams is the typed shape of tools/call params. Arguments stay raw
// until the tool name is verified.
type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// fetchArgs are the safe_fetch tool arguments. Prompt is accepted and
// carried through but does not alter behaviour.
type fetchArgs struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// textContent is a single text item in a tool result.
type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// callResult is the tools/call result payload. IsError marks domain-level
// failures (bad URL, failed fetch) that are not protocol errors.
type callResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    capabilities   `json:"capabilities"`
	ServerInfo      implementation `json:"serverInfo"`
}

type capabilities struct {
	Tools struct{} `json:"tools"`
}

type implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type toolsListResult struct {
	Tools []toolInfo `json:"tools"`
}

func resultResponse(id json.RawMessage, result any) *response {
	return &response{JSONRPC: jsonrpcVersion, ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) *response {
	return &response{JSONRPC: jsonrpcVersion, ID: id, Error: &rpcError{Code: code, Message: message}}
}

func textResult(text string) callResult {
	return callResult{Content: []textContent{{Type: "text", Text: text}}}
}

func errorResult(text string) callResult {
	return callResult{Content: []textContent{{Type: "text", Text: text}}, IsError: true}
}
