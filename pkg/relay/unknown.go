package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

type toolCallMessage struct {
	ID     mcp.RequestId `json:"id"`
	Method string        `json:"method"`
	Params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"params"`
}

// HandleMessage answers one JSON-RPC message. A tools/call naming a tool the
// registry does not hold gets an error-flagged result instead of the
// protocol-level "tool not found" error.
func (relay *Relay) HandleMessage(ctx context.Context, raw json.RawMessage) mcp.JSONRPCMessage {
	if reply, ok := relay.unknownToolCall(ctx, raw); ok {
		return reply
	}
	return relay.mcp.HandleMessage(ctx, raw)
}

func (relay *Relay) unknownToolCall(ctx context.Context, raw []byte) (mcp.JSONRPCMessage, bool) {
	var msg toolCallMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, false
	}
	if msg.Method != string(mcp.MethodToolsCall) || msg.ID.IsNil() || relay.tools.Has(msg.Params.Name) {
		return nil, false
	}

	relay.log.Warn("Call to unknown tool", "tool", msg.Params.Name)

	return mcp.JSONRPCResponse{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      msg.ID,
		Result:  relay.tools.CallTool(ctx, msg.Params.Name, msg.Params.Arguments),
	}, true
}

// lockedWriter serialises whole-message writes from the transport and from
// the stdin filter.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// filterStdin answers unknown tool calls directly on out and passes every
// other line through to the returned reader.
func (relay *Relay) filterStdin(ctx context.Context, in io.Reader, out io.Writer) io.Reader {
	pr, pw := io.Pipe()

	go func() {
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				if reply, ok := relay.unknownToolCall(ctx, line); ok {
					if werr := writeMessage(out, reply); werr != nil {
						pw.CloseWithError(werr)
						return
					}
				} else if _, werr := pw.Write(line); werr != nil {
					return
				}
			}
			if err != nil {
				pw.CloseWithError(err)
				return
			}
		}
	}()

	return pr
}

func writeMessage(w io.Writer, msg mcp.JSONRPCMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// interceptHTTP does for the streamable HTTP transport what filterStdin does
// for stdio.
func (relay *Relay) interceptHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if reply, ok := relay.unknownToolCall(r.Context(), body); ok {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(reply)
			return
		}

		next.ServeHTTP(w, r)
	})
}
