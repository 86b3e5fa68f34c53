package device

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-go/mcp"
)

// This mirrors BridgeClient in bridge.go.
type mockBridgeClient struct {
	InitializeFunc func(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	CallToolFunc   func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	CloseFunc      func() error
}

func (m *mockBridgeClient) Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx, req)
	}
	return &mcp.InitializeResult{}, nil
}

func (m *mockBridgeClient) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if m.CallToolFunc != nil {
		return m.CallToolFunc(ctx, req)
	}
	return textResult("ok"), nil
}

func (m *mockBridgeClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func TestBridge_BooleanTools(t *testing.T) {
	answers := map[string]string{
		"sms_available": "true",
		"can_open_uri":  "false",
	}
	b := NewBridgeWithClient("phone", &mockBridgeClient{
		CallToolFunc: func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return textResult(answers[req.Params.Name]), nil
		},
	})

	require.True(t, b.Available(context.Background()))
	require.False(t, b.CanOpen(context.Background(), "tel:4085551234"))
}

func TestBridge_ComposePassesArguments(t *testing.T) {
	var gotName string
	var gotArgs map[string]any
	b := NewBridgeWithClient("phone", &mockBridgeClient{
		CallToolFunc: func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			gotName = req.Params.Name
			gotArgs, _ = req.Params.Arguments.(map[string]any)
			return textResult("composer opened"), nil
		},
	})

	require.NoError(t, b.Compose(context.Background(), "5551234567", "hello"))
	require.Equal(t, "sms_compose", gotName)
	require.Equal(t, map[string]any{"phone_number": "5551234567", "body": "hello"}, gotArgs)
}

func TestBridge_PermissionsUseDistinctNames(t *testing.T) {
	var asked []string
	b := NewBridgeWithClient("phone", &mockBridgeClient{
		CallToolFunc: func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := req.Params.Arguments.(map[string]any)
			asked = append(asked, args["permission"].(string))
			return textResult("true"), nil
		},
	})

	granted, err := b.RequestPermission(context.Background())
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = b.Camera().RequestPermission(context.Background())
	require.NoError(t, err)
	require.True(t, granted)

	require.Equal(t, []string{"contacts", "camera"}, asked)
}

func TestBridge_ListDecodesContacts(t *testing.T) {
	b := NewBridgeWithClient("phone", &mockBridgeClient{
		CallToolFunc: func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			require.Equal(t, "contacts_list", req.Params.Name)
			return textResult(`[{"name":"Maria","phone":"5550001111"},{"name":"Sam","phone":""}]`), nil
		},
	})

	contacts, err := b.List(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	require.Equal(t, Contact{Name: "Maria", Phone: "5550001111"}, contacts[0])
	require.Empty(t, contacts[1].Phone)
}

func TestBridge_ToolErrorBecomesError(t *testing.T) {
	b := NewBridgeWithClient("phone", &mockBridgeClient{
		CallToolFunc: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "composer crashed"}},
			}, nil
		},
	})

	err := b.Compose(context.Background(), "5551234567", "hi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "composer crashed")
}

func TestBridge_TransportErrorBecomesError(t *testing.T) {
	b := NewBridgeWithClient("phone", &mockBridgeClient{
		CallToolFunc: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("bridge disconnected")
		},
	})

	_, err := b.List(context.Background())
	require.Error(t, err)

	// Boolean checks degrade to false instead of erroring.
	require.False(t, b.Available(context.Background()))
	require.False(t, b.CanOpen(context.Background(), "tel:1"))
}

func TestUnavailable_Defaults(t *testing.T) {
	caps := None()
	ctx := context.Background()

	require.False(t, caps.SMS.Available(ctx))
	require.Error(t, caps.SMS.Compose(ctx, "1", ""))

	granted, err := caps.Contacts.RequestPermission(ctx)
	require.NoError(t, err)
	require.False(t, granted)

	granted, err = caps.Camera.RequestPermission(ctx)
	require.NoError(t, err)
	require.False(t, granted)

	require.False(t, caps.Opener.CanOpen(ctx, "tel:1"))
	require.Error(t, caps.Opener.Open(ctx, "tel:1"))
}
