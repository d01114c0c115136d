package events

import (
	"fmt"
	"strconv"
	"time"
)

// ClickEvent is one redirect, as written to the clicks stream.
type ClickEvent struct {
	ShortCode string
	Timestamp int64
}

func NewClickEvent(shortCode string) *ClickEvent {
	return &ClickEvent{
		ShortCode: shortCode,
		Timestamp: time.Now().Unix(),
	}
}

func (e *ClickEvent) values() map[string]interface{} {
	return map[string]interface{}{
		"short_code": e.ShortCode,
		"timestamp":  e.Timestamp,
	}
}

// ParseClickEvent reads a stream entry. The timestamp is optional.
func ParseClickEvent(values map[string]interface{}) (*ClickEvent, error) {
	shortCode, ok := values["short_code"].(string)
	if !ok || shortCode == "" {
		return nil, fmt.Errorf("missing short_code")
	}

	event := &ClickEvent{ShortCode: shortCode}
	if raw, ok := values["timestamp"].(string); ok && raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", raw, err)
		}
		event.Timestamp = ts
	}
	return event, nil
}
