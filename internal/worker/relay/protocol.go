package relay

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// graphql-ws (subscriptions-transport-ws) 协议消息类型
const (
	subprotocol = "graphql-ws"

	msgConnectionInit  = "connection_init"
	msgConnectionAck   = "connection_ack"
	msgConnectionError = "connection_error"
	msgKeepAlive       = "ka"
	msgStart           = "start"
	msgData            = "data"
	msgError           = "error"
	msgComplete        = "complete"
)

const (
	SubWalletTrades = "multi-wallet-sub"
	SubNewTokens    = "new-tokens-sub"
)

type operationMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type startPayload struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type dataPayload struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func encodeMessage(id, typ string, payload interface{}) ([]byte, error) {
	msg := operationMessage{ID: id, Type: typ}
	if payload != nil {
		raw, err := sonic.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = raw
	}
	return sonic.Marshal(msg)
}
