package device

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tharos-ai/superintendent-go/internal/config"
	"github.com/tharos-ai/superintendent-go/internal/logger"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names the bridge server is expected to expose.
const (
	toolSMSAvailable      = "sms_available"
	toolSMSCompose        = "sms_compose"
	toolRequestPermission = "request_permission"
	toolContactsList      = "contacts_list"
	toolCanOpenURI        = "can_open_uri"
	toolOpenURI           = "open_uri"
)

// BridgeClient is the subset of the MCP client the bridge uses; it is
// easy to mock in tests.
type BridgeClient interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Bridge implements every capability interface over an MCP tool server
// that fronts the phone's native capabilities.
type Bridge struct {
	name string
	mcp  BridgeClient
}

// NewBridge connects to the configured bridge server, starting the
// transport and initializing the MCP session.
func NewBridge(cfg config.BridgeServerConfig) (*Bridge, error) {
	var mcpC *client.Client
	var err error

	switch cfg.Type {
	case config.ClientTypeSSE:
		var opts []transport.ClientOption
		if len(cfg.Headers) > 0 {
			opts = append(opts, transport.WithHeaders(cfg.Headers))
		}
		mcpC, err = client.NewSSEMCPClient(cfg.URL, opts...)
	case config.ClientTypeStreamableHTTP:
		var opts []transport.StreamableHTTPCOption
		if len(cfg.Headers) > 0 {
			opts = append(opts, transport.WithHTTPHeaders(cfg.Headers))
		}
		mcpC, err = client.NewStreamableHttpClient(cfg.URL, opts...)
	case config.ClientTypeStdio:
		var env []string
		for k, v := range cfg.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		mcpC, err = client.NewStdioMCPClient(cfg.Command, env, cfg.Args...)
	default:
		return nil, fmt.Errorf("unsupported device bridge type %q for %q", cfg.Type, cfg.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("create device bridge client %q: %w", cfg.Name, err)
	}

	ctx := context.Background()
	if cfg.Type != config.ClientTypeStdio {
		if err := mcpC.Start(ctx); err != nil {
			if cerr := mcpC.Close(); cerr != nil {
				logger.L.Warn("bridge client close error after start failure", "error", cerr)
			}
			return nil, fmt.Errorf("start device bridge transport %q: %w", cfg.Name, err)
		}
	}

	initReq := mcp.InitializeRequest{
		Params: mcp.InitializeParams{Capabilities: mcp.ClientCapabilities{}},
	}
	if _, err := mcpC.Initialize(ctx, initReq); err != nil {
		if cerr := mcpC.Close(); cerr != nil {
			logger.L.Warn("bridge client close error after init failure", "error", cerr)
		}
		return nil, fmt.Errorf("initialize device bridge %q: %w", cfg.Name, err)
	}
	logger.L.Info("device bridge connected", "name", cfg.Name)

	return &Bridge{name: cfg.Name, mcp: mcpC}, nil
}

// NewBridgeWithClient wraps an already-initialized MCP client.
func NewBridgeWithClient(name string, c BridgeClient) *Bridge {
	return &Bridge{name: name, mcp: c}
}

// Capabilities returns a capability set where every slot is served by
// this bridge.
func (b *Bridge) Capabilities() Capabilities {
	return Capabilities{SMS: b, Contacts: b, Camera: b.Camera(), Opener: b}
}

// Close shuts down the underlying MCP client.
func (b *Bridge) Close() error {
	return b.mcp.Close()
}

func (b *Bridge) Available(ctx context.Context) bool {
	ok, err := b.callBool(ctx, toolSMSAvailable, nil)
	if err != nil {
		logger.L.Warn("bridge sms availability check failed", "name", b.name, "error", err)
		return false
	}
	return ok
}

func (b *Bridge) Compose(ctx context.Context, phoneNumber, body string) error {
	_, err := b.callText(ctx, toolSMSCompose, map[string]any{
		"phone_number": phoneNumber,
		"body":         body,
	})
	return err
}

func (b *Bridge) RequestPermission(ctx context.Context) (bool, error) {
	return b.requestPermission(ctx, "contacts")
}

// cameraGate is the CameraGate view of the bridge; a separate type is
// needed because RequestPermission on Bridge already serves contacts.
type cameraGate struct{ b *Bridge }

func (g cameraGate) RequestPermission(ctx context.Context) (bool, error) {
	return g.b.requestPermission(ctx, "camera")
}

// Camera returns the bridge's CameraGate.
func (b *Bridge) Camera() CameraGate { return cameraGate{b} }

func (b *Bridge) requestPermission(ctx context.Context, permission string) (bool, error) {
	return b.callBool(ctx, toolRequestPermission, map[string]any{"permission": permission})
}

func (b *Bridge) List(ctx context.Context) ([]Contact, error) {
	text, err := b.callText(ctx, toolContactsList, nil)
	if err != nil {
		return nil, err
	}
	var contacts []Contact
	if err := json.Unmarshal([]byte(text), &contacts); err != nil {
		return nil, fmt.Errorf("decode contacts from bridge %q: %w", b.name, err)
	}
	return contacts, nil
}

func (b *Bridge) CanOpen(ctx context.Context, uri string) bool {
	ok, err := b.callBool(ctx, toolCanOpenURI, map[string]any{"uri": uri})
	if err != nil {
		logger.L.Warn("bridge uri check failed", "name", b.name, "uri", uri, "error", err)
		return false
	}
	return ok
}

func (b *Bridge) Open(ctx context.Context, uri string) error {
	_, err := b.callText(ctx, toolOpenURI, map[string]any{"uri": uri})
	return err
}

// callText invokes a bridge tool and returns the first text content of
// the result. A result flagged IsError becomes a Go error carrying the
// tool's text.
func (b *Bridge) callText(ctx context.Context, tool string, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: tool, Arguments: args},
	}
	result, err := b.mcp.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("bridge tool %s: %w", tool, err)
	}
	if result == nil {
		return "", fmt.Errorf("bridge tool %s: empty result", tool)
	}
	text := firstText(result.Content)
	if result.IsError {
		if text == "" {
			text = "tool reported an error without detail"
		}
		return "", fmt.Errorf("bridge tool %s: %s", tool, text)
	}
	return text, nil
}

func (b *Bridge) callBool(ctx context.Context, tool string, args map[string]any) (bool, error) {
	text, err := b.callText(ctx, tool, args)
	if err != nil {
		return false, err
	}
	return text == "true", nil
}

func firstText(content []mcp.Content) string {
	for _, item := range content {
		if tc, ok := item.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
