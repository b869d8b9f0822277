package presence

import (
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
)

// RequestKind names an inbound event as it appears on the wire.
type RequestKind string

const (
	RequestMessage RequestKind = "message"
	RequestName    RequestKind = "name"
)

// Request is a validated inbound request.
type Request interface {
	Kind() RequestKind
}

// DirectMessageRequest addresses a message to one session. The body may be
// any JSON value and is relayed untouched.
type DirectMessageRequest struct {
	To      string          `json:"to" validate:"required"`
	Message json.RawMessage `json:"message"`
}

func (DirectMessageRequest) Kind() RequestKind { return RequestMessage }

type RenameRequest struct {
	Name string
}

func (RenameRequest) Kind() RequestKind { return RequestName }

var validate = validator.New()

// DecodeRequest turns a raw inbound payload into a typed request.
func DecodeRequest(kind RequestKind, data json.RawMessage) (Request, error) {
	switch kind {
	case RequestMessage:
		var req DirectMessageRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRequest, kind, err)
		}
		if err := validate.Struct(req); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRequest, kind, err)
		}
		return req, nil
	case RequestName:
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRequest, kind, err)
		}
		return RenameRequest{Name: name}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, kind)
	}
}
