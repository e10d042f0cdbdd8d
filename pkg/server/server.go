package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/protocol"
	"github.com/richard-senior/rfef/pkg/transport"
)

// DefaultProtocolVersion is answered when the client does not ask for one
const DefaultProtocolVersion = "2024-11-05"

// legacyToolPrefix is stripped from tool names some clients send
const legacyToolPrefix = "mcp___"

// HandlerFunc runs one tool with the call's arguments
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// Server represents an MCP server
type Server struct {
	name      string
	version   string
	transport transport.Transport

	mu       sync.RWMutex
	tools    []protocol.Tool
	handlers map[string]HandlerFunc
}

func New(t transport.Transport, name, version string) *Server {
	return &Server{
		name:      name,
		version:   version,
		transport: t,
		handlers:  make(map[string]HandlerFunc),
	}
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// Tools returns the registered tools
func (s *Server) Tools() []protocol.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]protocol.Tool(nil), s.tools...)
}

func (s *Server) handler(name string) HandlerFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h, ok := s.handlers[name]; ok {
		return h
	}
	return s.handlers[strings.TrimPrefix(name, legacyToolPrefix)]
}

// Serve processes requests until the client disconnects or ctx is done.
// A clean disconnect returns nil.
func (s *Server) Serve(ctx context.Context) error {
	logger.Info("Starting MCP server")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		req, err := s.transport.ReadRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var rpcErr *protocol.JsonRpcError
			if errors.As(err, &rpcErr) {
				if werr := s.transport.WriteResponse(protocol.NewJsonRpcErrorResponse(rpcErr.Code, rpcErr.Message, nil, nil)); werr != nil {
					return werr
				}
				continue
			}
			return err
		}

		// nil means no response is required
		resp := s.HandleRequest(ctx, req)
		if resp == nil {
			continue
		}
		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// HandleRequest processes one request and returns its response, or nil for
// notifications
func (s *Server) HandleRequest(ctx context.Context, req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)
	logger.Debug("Full request:", string(req.Params))

	if req.IsNotification() || req.Method == string(protocol.MethodInitialized) {
		logger.Info("Received notification:", req.Method)
		return nil
	}

	var result any
	var err error
	switch protocol.MethodType(req.Method) {
	case protocol.MethodInitialize:
		result = s.handleInitialize(req.Params)
	case protocol.MethodPing, protocol.MethodShutdown:
		result = struct{}{}
	case protocol.MethodToolsList:
		result = protocol.ToolsResponse{Tools: s.Tools()}
	case protocol.MethodToolsCall:
		result, err = s.handleToolsCall(ctx, req.Params)
	case protocol.MethodInvokeTool:
		result, err = s.handleInvokeTool(ctx, req.Params)
	default:
		return protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil, req.ID)
	}

	if err != nil {
		var rpcErr *protocol.JsonRpcError
		if errors.As(err, &rpcErr) {
			return protocol.NewJsonRpcErrorResponse(rpcErr.Code, rpcErr.Message, rpcErr.Data, req.ID)
		}
		return protocol.NewJsonRpcErrorResponse(protocol.ErrToolExecutionFailed, err.Error(), nil, req.ID)
	}

	resp, err := protocol.NewJsonRpcResponse(result, req.ID)
	if err != nil {
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInternal, "Failed to marshal result: "+err.Error(), nil, req.ID)
	}
	logger.Debug("Full response:", string(resp.Result))
	return resp
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      serverInfo     `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (s *Server) handleInitialize(params json.RawMessage) initializeResult {
	var p struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			logger.Warn("Could not read initialize params", err)
		}
	}
	version := p.ProtocolVersion
	if version == "" {
		version = DefaultProtocolVersion
	}
	logger.Info("Using protocol version:", version)

	capabilities := map[string]any{}
	if len(s.Tools()) > 0 {
		capabilities["tools"] = map[string]any{"listChanged": false}
	}
	return initializeResult{
		ProtocolVersion: version,
		Capabilities:    capabilities,
		ServerInfo:      serverInfo{Name: s.name, Version: s.version},
	}
}

// handleToolsCall wraps the tool's value in a text content block. A failing
// tool is reported in the result with isError, not as a protocol error.
func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "invalid tools/call parameters: " + err.Error()}
	}
	logger.Info("Tool call requested for:", p.Name)

	handler := s.handler(p.Name)
	if handler == nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "tool not found: " + p.Name}
	}

	value, err := handler(ctx, p.Arguments)
	if err != nil {
		logger.Warn("Tool failed", p.Name, err)
		return protocol.ToolCallResult{
			Content: []protocol.Content{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}
	text, err := json.MarshalIndent(value, "", " ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return protocol.ToolCallResult{Content: []protocol.Content{{Type: "text", Text: string(text)}}}, nil
}

// handleInvokeTool serves the older invoke_tool form, returning the tool's
// value directly
func (s *Server) handleInvokeTool(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		Name       string         `json:"name"`
		Parameters map[string]any `json:"parameters"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "Invalid parameters for invoke_tool: " + err.Error()}
	}
	if p.Name == "" {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "Missing tool name in invoke_tool parameters"}
	}
	handler := s.handler(p.Name)
	if handler == nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrMethodNotFound, Message: "Method not found: " + p.Name}
	}
	return handler(ctx, p.Parameters)
}
