package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxLoggedPayload caps the bytes of a single params or result attribute.
const maxLoggedPayload = 2048

// trafficLog writes MCP exchanges in one direction to a debug logger.
type trafficLog struct {
	logger    *slog.Logger
	direction string
}

// trafficLoggingMiddleware logs every request and response at debug level.
// Notifications have no response and are logged once.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	t := trafficLog{logger: logger, direction: direction}
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if t.logger == nil || !t.logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}
			return t.exchange(ctx, method, req, next)
		}
	}
}

func (t trafficLog) exchange(ctx context.Context, method string, req sdkmcp.Request, next sdkmcp.MethodHandler) (sdkmcp.Result, error) {
	params := requestParams(req)
	base := []any{"direction", t.direction, "method", method, "session_id", sessionOf(req)}
	if tool := toolName(params); tool != "" {
		base = append(base, "tool", tool)
	}
	base = slices.Clip(base)
	t.logger.DebugContext(ctx, "mcp request", append(base, "params", encodePayload(params))...)

	start := time.Now()
	result, err := next(ctx, method, req)
	if strings.HasPrefix(method, "notifications/") {
		return result, err
	}

	attrs := append(base, "elapsed", time.Since(start), "result", encodePayload(result))
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	t.logger.DebugContext(ctx, "mcp response", attrs...)
	return result, err
}

// toolName reports the tool addressed by a tools/call exchange.
func toolName(params any) string {
	switch p := params.(type) {
	case *sdkmcp.CallToolParamsRaw:
		if p != nil {
			return p.Name
		}
	case *sdkmcp.CallToolParams:
		if p != nil {
			return p.Name
		}
	}
	return ""
}

// Accessors on a partially built request may panic; logging must not.

func sessionOf(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if session := req.GetSession(); session != nil {
		return session.ID()
	}
	return ""
}

func requestParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func encodePayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("<unencodable %T>", payload)
	}
	if len(data) > maxLoggedPayload {
		return fmt.Sprintf("%s...(%d bytes)", data[:maxLoggedPayload], len(data))
	}
	return string(data)
}
