// internal/domain/entity/payload.go
package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PayloadKind classifies a parsed raw event
type PayloadKind int

const (
	PayloadInvalid PayloadKind = iota
	PayloadObject
	PayloadArray
	PayloadScalar
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadObject:
		return "object"
	case PayloadArray:
		return "array"
	case PayloadScalar:
		return "scalar"
	default:
		return "invalid"
	}
}

// Payload is the parsed form of FlightEvent.RawEvent
type Payload struct {
	Kind PayloadKind
	Raw  json.RawMessage
	Err  error
}

// ParsePayload classifies raw without failing; malformed input yields
// PayloadInvalid with Err set.
func ParsePayload(raw string) Payload {
	var probe interface{}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return Payload{Kind: PayloadInvalid, Err: err}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return Payload{Kind: PayloadInvalid, Err: err}
	}

	p := Payload{Raw: buf.Bytes()}
	switch probe.(type) {
	case map[string]interface{}:
		p.Kind = PayloadObject
	case []interface{}:
		p.Kind = PayloadArray
	default:
		p.Kind = PayloadScalar
	}
	return p
}

// CallbackBody returns the JSON list sent to the callback. Objects and scalars
// are wrapped in a single element list, arrays pass through unchanged.
func (p Payload) CallbackBody() ([]byte, error) {
	switch p.Kind {
	case PayloadArray:
		return p.Raw, nil
	case PayloadObject, PayloadScalar:
		body := make([]byte, 0, len(p.Raw)+2)
		body = append(body, '[')
		body = append(body, p.Raw...)
		return append(body, ']'), nil
	default:
		return nil, fmt.Errorf("cannot build callback body from invalid payload: %v", p.Err)
	}
}

// Object decodes an object payload into a map; ok is false for other kinds
func (p Payload) Object() (map[string]interface{}, bool) {
	if p.Kind != PayloadObject {
		return nil, false
	}
	var m map[string]interface{}
	if err := json.Unmarshal(p.Raw, &m); err != nil {
		return nil, false
	}
	return m, true
}
