package relay

import (
	"encoding/json"
	"fmt"
)

// Client to server message types.
const (
	typeJoinGroup  = "joinGroup"
	typeLeaveGroup = "leaveGroup"
	typePing       = "ping"
)

type upstreamMessage struct {
	Type  string  `json:"type"`
	Group string  `json:"group,omitempty"`
	AckID *uint64 `json:"ackId,omitempty"`
}

type systemMessage struct {
	Type         string `json:"type"`
	Event        string `json:"event"`
	ConnectionID string `json:"connectionId"`
}

type ackMessage struct {
	Type    string `json:"type"`
	AckID   uint64 `json:"ackId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type dataMessage struct {
	Type  string          `json:"type"`
	Group string          `json:"group"`
	Data  json.RawMessage `json:"data"`
}

type pongMessage struct {
	Type string `json:"type"`
}

func parseUpstreamMessage(data []byte) (*upstreamMessage, error) {
	var msg upstreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal upstream message: %w", err)
	}

	switch msg.Type {
	case typeJoinGroup, typeLeaveGroup, typePing:
		return &msg, nil
	default:
		return nil, fmt.Errorf("unknown message type: %q", msg.Type)
	}
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("relay: encoding %T: %v", v, err))
	}
	return data
}

func buildConnectedMessage(connectionID string) []byte {
	return mustMarshal(systemMessage{Type: "system", Event: "connected", ConnectionID: connectionID})
}

func buildAckMessage(ackID uint64, errMsg string) []byte {
	return mustMarshal(ackMessage{Type: "ack", AckID: ackID, Success: errMsg == "", Error: errMsg})
}

func buildDataMessage(group string, payload json.RawMessage) []byte {
	return mustMarshal(dataMessage{Type: "message", Group: group, Data: payload})
}

func buildPongMessage() []byte {
	return mustMarshal(pongMessage{Type: "pong"})
}
