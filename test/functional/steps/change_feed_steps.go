package steps

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const feedReadTimeout = 5 * time.Second

type catalogChangeMessage struct {
	Type              string `json:"type"`
	Context           string `json:"context"`
	FieldDefinitionID string `json:"field_definition_id"`
	FieldName         string `json:"field_name"`
	Version           int64  `json:"version"`
}

func (fc *FeatureContext) iFollowTheChangeFeed(fieldContext string) error {
	conn, resp, err := websocket.DefaultDialer.Dial(fc.apiDriver.WebSocketURL(fieldContext), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket connection failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket connection failed: %w", err)
	}
	fc.wsConn = conn
	return nil
}

// iShouldReceiveAChangeForTheField skips changes made by other scenarios
// until the expected one arrives or the read deadline passes.
func (fc *FeatureContext) iShouldReceiveAChangeForTheField(eventType, name string) error {
	if fc.wsConn == nil {
		return fmt.Errorf("websocket connection not established")
	}
	expected := fc.field(name)

	if err := fc.wsConn.SetReadDeadline(time.Now().Add(feedReadTimeout)); err != nil {
		return err
	}
	for {
		_, payload, err := fc.wsConn.ReadMessage()
		if err != nil {
			return fmt.Errorf("waiting for %s of %s: %w", eventType, expected.FieldName, err)
		}

		var msg catalogChangeMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return fmt.Errorf("decoding feed message: %w", err)
		}
		if msg.Type == eventType && msg.FieldDefinitionID == expected.ID {
			fc.require.Equal(expected.Context, msg.Context)
			return nil
		}
	}
}

func (fc *FeatureContext) cleanupWebSocket() {
	if fc.wsConn != nil {
		fc.wsConn.Close()
		fc.wsConn = nil
	}
}
