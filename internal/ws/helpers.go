package ws

import (
	"encoding/json"

	"github.com/google/uuid"

	"rental-market/internal/models"
)

func newConnID() string {
	return uuid.NewString()
}

func encodeFrame(event string, data any) ([]byte, error) {
	return json.Marshal(models.SocketFrame{Event: event, Data: data})
}
