// Package server implements the line-delimited JSON-RPC control channel and
// routes the safe_fetch tool through the fetch and sanitization pipeline.
package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chainlink-tools/safe-fetch/src/config"
	"github.com/chainlink-tools/safe-fetch/src/fetch"
	"github.com/chainlink-tools/safe-fetch/src/rules"
	"github.com/chainlink-tools/safe-fetch/src/sanitizer"
)

// protocolVersion is the MCP protocol revision this server speaks.
const protocolVersion = "2024-11-05"

// maxLineBytes bounds a single inbound control-channel line.
const maxLineBytes = 10 << 20

// Server is the request dispatcher. It reads one message at a time from the
// control channel, fully processes it, and writes at most one response.
type Server struct {
	info           implementation
	store          *rules.Store
	client         *fetch.Client
	san            *sanitizer.Sanitizer
	stripInvisible bool
	logger         zerolog.Logger
}

// New wires a Server from the given config: rule store, fetch client, and
// sanitizer.
func New(cfg config.Config, logger zerolog.Logger) *Server {
	return &Server{
		info:           implementation{Name: cfg.Server.Name, Version: Version},
		store:          rules.NewStore(cfg.Rules, logger),
		client:         fetch.NewClient(cfg.Fetch, logger),
		san:            sanitizer.New(logger),
		stripInvisible: cfg.Sanitization.StripInvisibleText != nil && *cfg.Sanitization.StripInvisibleText,
		logger:         logger.With().Str("area", "server").Logger(),
	}
}

// Run processes the control channel until r reaches end-of-input. Malformed
// lines are answered with a parse error and the session continues; a panic
// or a failure to write a response is fatal and ends the session without a
// partial reply.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().Interface("panic", rec).Msg("unexpected error, shutting down")
			err = fmt.Errorf("fatal error handling message: %v", rec)
		}
	}()

	s.logger.Info().Str("server", s.info.Name).Str("version", s.info.Version).Msg("starting safe-fetch server")

	enc := json.NewEncoder(w)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var req request
		if jerr := json.Unmarshal(line, &req); jerr != nil {
			s.logger.Warn().Err(jerr).Msg("JSON decode error")
			if werr := enc.Encode(errorResponse(nil, codeParseError, "Parse error")); werr != nil {
				return fmt.Errorf("writing parse error: %w", werr)
			}
			continue
		}

		resp := s.dispatch(ctx, &req)
		if resp == nil {
			continue // notification
		}
		if werr := enc.Encode(resp); werr != nil {
			return fmt.Errorf("writing response: %w", werr)
		}
	}
	if serr := sc.Err(); serr != nil {
		return fmt.Errorf("reading control channel: %w", serr)
	}

	s.logger.Info().Msg("server shutting down")
	return nil
}

// dispatch routes a single parsed message. A nil return means no response
// is owed (notification).
func (s *Server) dispatch(ctx context.Context, req *request) *response {
	switch parseMethod(req.Method) {
	case methodInitialize:
		return resultResponse(req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      s.info,
		})

	case methodInitialized:
		return nil

	case methodToolsList:
		return resultResponse(req.ID, toolsListResult{Tools: []toolInfo{safeFetchTool()}})

	case methodToolsCall:
		return s.handleToolCall(ctx, req)

	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

// handleToolCall verifies the tool name before touching the network. Unknown
// tools get a protocol-level error; everything after the name check is
// reported as a domain-level result, error-flagged or not.
func (s *Server) handleToolCall(ctx context.Context, req *request) *response {
	var params callParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.logger.Warn().Err(err).Msg("malformed tools/call params")
		}
	}

	if params.Name != ToolName {
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	args := fetchArgs{Prompt: defaultPrompt}
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			s.logger.Warn().Err(err).Msg("malformed safe_fetch arguments")
		}
	}

	return resultResponse(req.ID, s.safeFetch(ctx, args))
}

// safeFetch runs the full pipeline: validate, fetch, sanitize, annotate.
func (s *Server) safeFetch(ctx context.Context, args fetchArgs) callResult {
	log := s.logger.With().
		Str("call_id", uuid.NewString()).
		Str("url", args.URL).
		Logger()
	log.Debug().Str("prompt", args.Prompt).Msg("safe_fetch invoked")

	if err := fetch.Validate(args.URL); err != nil {
		log.Warn().Err(err).Msg("rejected URL")
		return errorResult("Error: " + err.Error())
	}

	raw, err := s.client.Fetch(ctx, args.URL)
	if err != nil {
		log.Warn().Err(err).Msg("fetch failed")
		return errorResult("Error fetching URL: " + err.Error())
	}

	if s.stripInvisible {
		cleaned, removed := sanitizer.StripInvisible(raw)
		if removed > 0 {
			log.Info().Int("removed", removed).Msg("stripped invisible characters")
		}
		raw = cleaned
	}

	clean, count := s.san.Apply(raw, s.store.Load())
	if count == 0 {
		return textResult(clean)
	}

	log.Info().Int("sanitized", count).Msg("sanitized fetched content")
	text := fmt.Sprintf("[Note: %d potentially malicious string(s) were sanitized from this content]\n\n%s", count, clean)
	return textResult(text)
}
