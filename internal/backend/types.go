// Package backend is the client for the SuperIntendent HTTP API.
package backend

import (
	"time"

	"github.com/tharos-ai/superintendent-go/internal/action"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Personas the backend accepts.
const (
	PersonalityTharos         = "tharos"
	PersonalitySuperintendent = "superintendent"
)

// Message is a single chat message. ModelUsed is set on assistant
// messages and names the model that produced the reply.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	ModelUsed string    `json:"model_used,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Personality    string `json:"personality,omitempty"`
}

// ChatResponse is the reply to POST /api/chat.
type ChatResponse struct {
	Success        bool          `json:"success"`
	Response       string        `json:"response"`
	ConversationID string        `json:"conversation_id"`
	ModelUsed      string        `json:"model_used,omitempty"`
	Personality    string        `json:"personality,omitempty"`
	Error          string        `json:"error,omitempty"`
	DeviceAction   *DeviceAction `json:"device_action,omitempty"`
}

// Conversation is the reply to GET /api/conversations/{id}.
type Conversation struct {
	ID          string    `json:"id"`
	Messages    []Message `json:"messages"`
	Personality string    `json:"personality"`
}

// PersonalityToggleRequest is the body of POST /api/personality/toggle.
type PersonalityToggleRequest struct {
	Personality string `json:"personality"`
}

// DeviceAction is the backend's flat device-action record, keyed by
// "action" with kind-specific optional fields.
type DeviceAction struct {
	Action      string `json:"action"`
	PhoneNumber string `json:"phone_number,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
	Message     string `json:"message,omitempty"`
	Query       string `json:"query,omitempty"`
	App         string `json:"app,omitempty"`
	URI         string `json:"uri,omitempty"`
}

// ToRequest converts the wire record into the typed request. Unknown or
// missing action names map to the none sentinel.
func (d *DeviceAction) ToRequest() action.Request {
	if d == nil {
		return action.None()
	}
	switch d.Action {
	case "sms":
		return action.Request{
			Kind: action.KindSMS,
			SMS:  &action.SMSParams{PhoneNumber: d.PhoneNumber, Message: d.Message},
		}
	case "call":
		return action.Request{
			Kind: action.KindCall,
			Call: &action.CallParams{PhoneNumber: d.PhoneNumber},
		}
	case "contacts":
		return action.Request{Kind: action.KindContacts}
	case "camera":
		return action.Request{Kind: action.KindCamera}
	case "music":
		return action.Request{
			Kind:  action.KindMusic,
			Music: &action.MusicParams{App: d.App, Query: d.Query},
		}
	case "open_app":
		return action.Request{
			Kind:    action.KindOpenApp,
			OpenApp: &action.OpenAppParams{URI: d.URI},
		}
	default:
		return action.None()
	}
}
