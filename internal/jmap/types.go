package jmap

import (
	"encoding/json"
	"fmt"

	"maskctl/internal/services"
)

// Capability URIs sent in the "using" list.
const (
	CoreURI        = "urn:ietf:params:jmap:core"
	MaskedEmailURI = "https://www.fastmail.com/dev/maskedemail"
)

// SessionResource is the subset of the JMAP session object maskctl reads.
type SessionResource struct {
	APIURL          string            `json:"apiUrl"`
	Username        string            `json:"username"`
	PrimaryAccounts map[string]string `json:"primaryAccounts"`
}

// Invocation is one method call or response: [name, arguments, callId].
type Invocation struct {
	Name      string
	Arguments json.RawMessage
	CallID    string
}

// NewInvocation marshals args into an invocation.
func NewInvocation(name string, args any, callID string) (Invocation, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return Invocation{}, fmt.Errorf("encode %s arguments: %w", name, err)
	}
	return Invocation{Name: name, Arguments: raw, CallID: callID}, nil
}

func (i Invocation) MarshalJSON() ([]byte, error) {
	args := i.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return json.Marshal([]any{i.Name, args, i.CallID})
}

func (i *Invocation) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("invocation: expected 3 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &i.Name); err != nil {
		return fmt.Errorf("invocation name: %w", err)
	}
	if err := json.Unmarshal(parts[2], &i.CallID); err != nil {
		return fmt.Errorf("invocation call id: %w", err)
	}
	i.Arguments = parts[1]
	return nil
}

// Request is the body posted to the API endpoint.
type Request struct {
	Using       []string     `json:"using"`
	MethodCalls []Invocation `json:"methodCalls"`
}

// Response is the decoded API reply.
type Response struct {
	MethodResponses []Invocation `json:"methodResponses"`
	SessionState    string       `json:"sessionState,omitempty"`
}

// Result returns the arguments of the response carrying callID. A JMAP
// "error" response is returned as *MethodError.
func (r *Response) Result(callID string) (json.RawMessage, error) {
	for _, inv := range r.MethodResponses {
		if inv.CallID != callID {
			continue
		}
		if inv.Name == "error" {
			var merr MethodError
			if err := json.Unmarshal(inv.Arguments, &merr); err != nil {
				return nil, fmt.Errorf("%w: decode method error: %w", services.ErrRemoteCall, err)
			}
			return nil, &merr
		}
		return inv.Arguments, nil
	}
	return nil, fmt.Errorf("%w: no response for call %q", services.ErrRemoteCall, callID)
}

// MethodError is a JMAP method-level error such as "invalidArguments".
type MethodError struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

func (e *MethodError) Error() string {
	if e.Description == "" {
		return "jmap method error: " + e.Type
	}
	return "jmap method error: " + e.Type + ": " + e.Description
}

func (e *MethodError) Unwrap() error {
	return services.ErrRemoteCall
}

// SetError describes why one record was not updated.
type SetError struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Properties  []string `json:"properties,omitempty"`
}

// SetResult is the outcome of MaskedEmail/set. Values in Updated are the
// server's opaque per-record echo (often null).
type SetResult struct {
	Updated    map[string]json.RawMessage `json:"updated"`
	NotUpdated map[string]SetError        `json:"notUpdated"`
}
