package subscriber

import (
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
)

// SystemSender is used as the from field when a relay message names no sender.
const SystemSender = "system"

var validate = validator.New()

// RelayMessage is a direct message published on the relay channel by a
// backend service.
type RelayMessage struct {
	From    string          `json:"from"`
	To      string          `json:"to" validate:"required"`
	Message json.RawMessage `json:"message" validate:"required"`
}

func (m *RelayMessage) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid relay message: %w", err)
	}
	return nil
}

func (m *RelayMessage) Sender() string {
	if m.From == "" {
		return SystemSender
	}
	return m.From
}
