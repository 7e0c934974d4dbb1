package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEventID = "3f1c2a8e-8a7b-4c55-9d2e-1b5a7c9e0f11"

func TestDecode_CanonicalShape(t *testing.T) {
	raw := `{
		"eventId": "` + testEventID + `",
		"type": "RETIRADA_DE_SENHA",
		"occurredAt": "2025-03-01T10:15:30Z",
		"payload": {"unidadeAtendimento": "UPA1", "nrSenhaAtendimento": 1000, "codCadastroSusPaciente": "10"}
	}`

	env, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, testEventID, env.ID.String())
	assert.Equal(t, EventTicketIssued, env.Type)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 15, 30, 0, time.UTC), env.OccurredAt)
	assert.Equal(t, "UPA1", env.Unit())

	p, ok := env.Payload.(TicketIssuedPayload)
	require.True(t, ok)
	assert.Equal(t, int64(1000), p.TicketNumber)
	assert.Equal(t, int64(10), p.PatientID)
	assert.Nil(t, p.Timestamp)
	assert.Equal(t, env.OccurredAt, env.EventTime())
}

func TestDecode_FlattenedShape(t *testing.T) {
	raw := `{
		"eventId": "` + testEventID + `",
		"type": "MEDICO_ENTRA_NO_PONTO",
		"occurredAt": 1700000000,
		"topic": "healthcare-events",
		"key": "abc",
		"codIdColaborador": 7,
		"timestamp": "1.7000000005e12"
	}`

	env, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, EventStaffClockIn, env.Type)
	assert.Equal(t, "", env.Unit())

	p, ok := env.Payload.(ClockPayload)
	require.True(t, ok)
	assert.Equal(t, int64(7), p.StaffID)
	require.NotNil(t, p.Timestamp)
	assert.Equal(t, time.UnixMilli(1700000000500).UTC(), *p.Timestamp)
	assert.Equal(t, *p.Timestamp, env.EventTime())
}

func TestDecode_NullPayloadFallsBackToFlattened(t *testing.T) {
	raw := `{"eventId":"` + testEventID + `","type":"SENHA_EXPIRADA","occurredAt":"2025-03-01T10:00:00Z",
		"payload":null,"unidadeAtendimento":"UPA2","nrSeqAtendimento":"55"}`

	env, err := Decode([]byte(raw))
	require.NoError(t, err)
	p, ok := env.Payload.(TicketRefPayload)
	require.True(t, ok)
	assert.Equal(t, int64(55), p.TicketID)
	assert.Equal(t, "UPA2", p.Unit)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{"not json", `{`, "malformed JSON"},
		{"not an object", `[1,2]`, "malformed JSON"},
		{"null document", `null`, "must be a JSON object"},
		{"missing id", `{"type":"SENHA_EXPIRADA","occurredAt":1}`, "eventId"},
		{"bad uuid", `{"eventId":"nope","type":"SENHA_EXPIRADA","occurredAt":1}`, "not a UUID"},
		{"missing type", `{"eventId":"` + testEventID + `","occurredAt":1}`, "type"},
		{"unknown type", `{"eventId":"` + testEventID + `","type":"ALTA","occurredAt":1}`, "unknown event type"},
		{"missing occurredAt", `{"eventId":"` + testEventID + `","type":"SENHA_EXPIRADA"}`, "occurredAt"},
		{"bad occurredAt", `{"eventId":"` + testEventID + `","type":"SENHA_EXPIRADA","occurredAt":"yesterday"}`, "occurredAt"},
		{"payload not object", `{"eventId":"` + testEventID + `","type":"SENHA_EXPIRADA","occurredAt":1,"payload":"x"}`, "payload must be an object"},
		{"missing ticket id", `{"eventId":"` + testEventID + `","type":"SENHA_EXPIRADA","occurredAt":1,"payload":{"unidadeAtendimento":"UPA1"}}`, "nrSeqAtendimento is required"},
		{"blank unit", `{"eventId":"` + testEventID + `","type":"SENHA_PRIORIZADA","occurredAt":1,"payload":{"unidadeAtendimento":"  ","nrSeqAtendimento":3}}`, "unidadeAtendimento is required"},
		{"non numeric id", `{"eventId":"` + testEventID + `","type":"SENHA_PRIORIZADA","occurredAt":1,"payload":{"unidadeAtendimento":"UPA1","nrSeqAtendimento":"abc"}}`, "payload"},
		{"bad payload timestamp", `{"eventId":"` + testEventID + `","type":"MEDICO_SAI_DO_PONTO","occurredAt":1,"payload":{"codIdColaborador":1,"timestamp":"later"}}`, "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.raw))
			require.Error(t, err)
			assert.Nil(t, env)
			assert.True(t, IsDecodeError(err))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2025-03-01T10:15:30.250Z"`, time.Date(2025, 3, 1, 10, 15, 30, 250_000_000, time.UTC)},
		{"rfc3339 offset", `"2025-03-01T07:15:30-03:00"`, time.Date(2025, 3, 1, 10, 15, 30, 0, time.UTC)},
		{"seconds", `1700000000`, time.Unix(1700000000, 0).UTC()},
		{"fractional seconds", `1700000000.5`, time.Unix(1700000000, 500_000_000).UTC()},
		{"millis", `1700000000123`, time.UnixMilli(1700000000123).UTC()},
		{"numeric text", `"1700000000"`, time.Unix(1700000000, 0).UTC()},
		{"scientific text", `"1.7e9"`, time.Unix(1700000000, 0).UTC()},
		{"scientific millis", `1.7e12`, time.UnixMilli(1700000000000).UTC()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEventTime([]byte(tt.raw))
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}

	_, err := parseEventTime([]byte(`""`))
	assert.ErrorIs(t, err, errBlankTime)
	_, err = parseEventTime(nil)
	assert.ErrorIs(t, err, errBlankTime)
	_, err = parseEventTime([]byte(`true`))
	assert.Error(t, err)
}

func TestEventType_ForcesMetricsRefresh(t *testing.T) {
	assert.True(t, EventStaffClockIn.ForcesMetricsRefresh())
	assert.True(t, EventStaffClockOut.ForcesMetricsRefresh())
	assert.True(t, EventTicketFinished.ForcesMetricsRefresh())
	assert.False(t, EventTicketExpired.ForcesMetricsRefresh())
	assert.False(t, EventTicketIssued.ForcesMetricsRefresh())
	assert.False(t, EventTicketPrioritized.ForcesMetricsRefresh())
}
