package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeBatch разбирает JSON-тело пакета. При ошибке возвращает то, что
// удалось разобрать: устройство и пользователя нужно записать в журнал.
func DecodeBatch(body []byte) (BatchRequest, error) {
	var req BatchRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, fmt.Errorf("%w: empty body", ErrMalformedBatch)
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	return req, nil
}
