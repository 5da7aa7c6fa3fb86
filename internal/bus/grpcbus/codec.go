package grpcbus

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"raftkit/internal/raft/wire"
)

func encodeEnvelope(msg wire.Envelope) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("grpcbus: encode envelope: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeEnvelope(data []byte) (wire.Envelope, error) {
	var msg wire.Envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&msg); err != nil {
		return wire.Envelope{}, fmt.Errorf("grpcbus: decode envelope: %w", err)
	}
	return msg, nil
}
