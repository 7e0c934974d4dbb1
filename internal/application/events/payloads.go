package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "triage/internal/shared/errors"
	"triage/internal/shared/utils"
)

// flexInt accepts a JSON integer or an integer in a JSON string, since
// producers send both.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	text := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return fmt.Errorf("blank number")
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		*f = flexInt(v)
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt64 {
		return fmt.Errorf("%q is not an integer", text)
	}
	*f = flexInt(v)
	return nil
}

type clockWire struct {
	StaffID   *flexInt        `json:"codIdColaborador" validate:"required"`
	Unit      string          `json:"unidadeAtendimento"`
	Timestamp json.RawMessage `json:"timestamp"`
}

type ticketIssuedWire struct {
	Unit         string          `json:"unidadeAtendimento" validate:"required"`
	TicketNumber *flexInt        `json:"nrSenhaAtendimento" validate:"required"`
	PatientID    *flexInt        `json:"codCadastroSusPaciente" validate:"required"`
	Timestamp    json.RawMessage `json:"timestamp"`
}

type ticketRefWire struct {
	Unit      string          `json:"unidadeAtendimento" validate:"required"`
	TicketID  *flexInt        `json:"nrSeqAtendimento" validate:"required"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// decodePayload builds and validates the typed payload for kind t.
func decodePayload(t EventType, doc map[string]json.RawMessage) (Payload, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, decodeErrorf("payload: %v", err)
	}

	switch t {
	case EventStaffClockIn, EventStaffClockOut:
		var w clockWire
		if err := unmarshalPayload(raw, &w); err != nil {
			return nil, err
		}
		w.Unit = strings.TrimSpace(w.Unit)
		if err := validatePayload(&w); err != nil {
			return nil, err
		}
		ts, err := optionalTimestamp(w.Timestamp)
		if err != nil {
			return nil, err
		}
		return ClockPayload{StaffID: int64(*w.StaffID), Unit: w.Unit, Timestamp: ts}, nil

	case EventTicketIssued:
		var w ticketIssuedWire
		if err := unmarshalPayload(raw, &w); err != nil {
			return nil, err
		}
		w.Unit = strings.TrimSpace(w.Unit)
		if err := validatePayload(&w); err != nil {
			return nil, err
		}
		ts, err := optionalTimestamp(w.Timestamp)
		if err != nil {
			return nil, err
		}
		return TicketIssuedPayload{
			Unit:         w.Unit,
			TicketNumber: int64(*w.TicketNumber),
			PatientID:    int64(*w.PatientID),
			Timestamp:    ts,
		}, nil

	case EventTicketPrioritized, EventTicketFinished, EventTicketExpired:
		var w ticketRefWire
		if err := unmarshalPayload(raw, &w); err != nil {
			return nil, err
		}
		w.Unit = strings.TrimSpace(w.Unit)
		if err := validatePayload(&w); err != nil {
			return nil, err
		}
		ts, err := optionalTimestamp(w.Timestamp)
		if err != nil {
			return nil, err
		}
		return TicketRefPayload{Unit: w.Unit, TicketID: int64(*w.TicketID), Timestamp: ts}, nil
	}

	return nil, decodeErrorf("unknown event type %q", t)
}

func unmarshalPayload(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return decodeErrorf("payload: %v", err)
	}
	return nil
}

func validatePayload(w any) error {
	err := utils.ValidateStruct(w)
	if err == nil {
		return nil
	}
	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Details != "" {
		return decodeErrorf("payload: %s", appErr.Details)
	}
	return decodeErrorf("payload: %v", err)
}

func optionalTimestamp(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	t, err := parseEventTime(raw)
	if errors.Is(err, errBlankTime) {
		return nil, nil
	}
	if err != nil {
		return nil, decodeErrorf("payload timestamp: %v", err)
	}
	return &t, nil
}
