package recycler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// WasteType describes how a waste stream converts to energy.
type WasteType struct {
	Type       string   `json:"type"`
	Efficiency float64  `json:"efficiency"`
	Byproducts []string `json:"byproducts"`
}

// MixEntry is a single waste type share inside a WasteMix.
type MixEntry struct {
	Type       string
	Percentage float64
}

// WasteMix maps waste types to percentages while keeping the order keys arrived in.
type WasteMix struct {
	entries []MixEntry
}

// NewWasteMix builds a mix from ordered entries. Later duplicates overwrite the earlier value
// but keep the earlier position.
func NewWasteMix(entries ...MixEntry) WasteMix {
	var mix WasteMix
	for _, e := range entries {
		mix.set(e.Type, e.Percentage)
	}
	return mix
}

// Entries returns the mix in key order.
func (m WasteMix) Entries() []MixEntry {
	out := make([]MixEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len reports the number of distinct keys.
func (m WasteMix) Len() int {
	return len(m.entries)
}

func (m *WasteMix) set(key string, pct float64) {
	for i := range m.entries {
		if m.entries[i].Type == key {
			m.entries[i].Percentage = pct
			return
		}
	}
	m.entries = append(m.entries, MixEntry{Type: key, Percentage: pct})
}

var errMixNotObject = errors.New("wasteMix must be an object")

// UnmarshalJSON decodes a JSON object token by token so key order survives.
func (m *WasteMix) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errMixNotObject
	}

	var mix WasteMix
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return errMixNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		pct, err := decodePercentage(raw)
		if err != nil {
			return fmt.Errorf("wasteMix.%s: %w", key, err)
		}
		mix.set(key, pct)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = mix
	return nil
}

func decodePercentage(raw json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return 0, nil
	}
	var pct float64
	if err := json.Unmarshal(trimmed, &pct); err != nil {
		return 0, errors.New("percentage must be a number")
	}
	return pct, nil
}

// ProcessRequest is the payload accepted by the conversion endpoint.
type ProcessRequest struct {
	WasteMix    *WasteMix `json:"wasteMix"`
	TotalWeight *float64  `json:"totalWeight"`
}

// ConversionResult is the energy yield for one processed batch.
type ConversionResult struct {
	InputWeight float64  `json:"input_weight"`
	EnergyKWh   float64  `json:"energy_kwh"`
	Byproducts  []string `json:"byproducts"`
}

// Workflow lists the human readable processing steps.
type Workflow struct {
	Steps []string `json:"steps"`
}
