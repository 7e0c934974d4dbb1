package events

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	fieldEventID    = "eventId"
	fieldType       = "type"
	fieldOccurredAt = "occurredAt"
	fieldPayload    = "payload"
)

// transport metadata some producers put next to the envelope fields
var transportFields = map[string]bool{
	"topic": true,
	"key":   true,
}

// Decode parses one raw event. Every failure is a *DecodeError and no
// partial envelope is ever returned.
//
// Two shapes are accepted: a nested "payload" object, or a flattened
// document where every non-envelope, non-transport field is a payload field.
func Decode(raw []byte) (*Envelope, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, decodeErrorf("malformed JSON: %v", err)
	}
	if root == nil {
		return nil, decodeErrorf("envelope must be a JSON object")
	}

	idText, err := requiredText(root, fieldEventID)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, decodeErrorf("%s %q is not a UUID", fieldEventID, idText)
	}

	typeText, err := requiredText(root, fieldType)
	if err != nil {
		return nil, err
	}
	eventType := EventType(typeText)
	if !eventType.IsValid() {
		return nil, decodeErrorf("unknown event type %q", typeText)
	}

	occurredAt, err := parseEventTime(root[fieldOccurredAt])
	if errors.Is(err, errBlankTime) {
		return nil, decodeErrorf("missing required field %s", fieldOccurredAt)
	}
	if err != nil {
		return nil, decodeErrorf("%s: %v", fieldOccurredAt, err)
	}

	doc, err := payloadDocument(root)
	if err != nil {
		return nil, err
	}
	payload, err := decodePayload(eventType, doc)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		ID:         id,
		Type:       eventType,
		OccurredAt: occurredAt,
		Payload:    payload,
	}, nil
}

func requiredText(root map[string]json.RawMessage, field string) (string, error) {
	raw, ok := root[field]
	if !ok || string(raw) == "null" {
		return "", decodeErrorf("missing required field %s", field)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", decodeErrorf("field %s must be a string", field)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", decodeErrorf("missing required field %s", field)
	}
	return text, nil
}

func payloadDocument(root map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	if nested, ok := root[fieldPayload]; ok && string(nested) != "null" {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(nested, &doc); err != nil {
			return nil, decodeErrorf("%s must be an object", fieldPayload)
		}
		return doc, nil
	}

	doc := make(map[string]json.RawMessage, len(root))
	for k, v := range root {
		switch {
		case k == fieldEventID, k == fieldType, k == fieldOccurredAt, k == fieldPayload:
		case transportFields[k]:
		default:
			doc[k] = v
		}
	}
	return doc, nil
}
