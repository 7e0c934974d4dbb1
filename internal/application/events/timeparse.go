package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// epochMillisThreshold splits epoch seconds from epoch milliseconds.
const epochMillisThreshold = 1e11

var errBlankTime = fmt.Errorf("blank time value")

// parseEventTime accepts RFC 3339 text, a JSON number or numeric text
// (scientific notation included) holding epoch seconds or milliseconds.
func parseEventTime(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, errBlankTime
	}

	if raw[0] != '"' {
		v, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("unsupported time value %s", raw)
		}
		return fromEpoch(v)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return time.Time{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, errBlankTime
	}
	if t, err := time.Parse(time.RFC3339Nano, text); err == nil {
		return t.UTC(), nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable time %q", text)
	}
	return fromEpoch(v)
}

func fromEpoch(v float64) (time.Time, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, fmt.Errorf("non-finite time value")
	}
	if math.Abs(v) < epochMillisThreshold {
		sec, frac := math.Modf(v)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	}
	return time.UnixMilli(int64(v)).UTC(), nil
}
