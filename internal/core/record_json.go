package core

import (
	"encoding/json"
	"fmt"
)

// jsonField binds a required document key to its destination.
type jsonField struct {
	key string
	dst any
}

// decodeRecord checks that every required key is present before decoding any
// of them, so a record is either fully populated or rejected.
func decodeRecord(record string, data []byte, id *string, fields []jsonField) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode %s: %w", record, err)
	}
	for _, f := range fields {
		if _, ok := raw[f.key]; !ok {
			return &MissingFieldError{Record: record, Field: f.key}
		}
	}
	for _, f := range fields {
		if err := json.Unmarshal(raw[f.key], f.dst); err != nil {
			return fmt.Errorf("decode %s.%s: %w", record, f.key, err)
		}
	}
	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, id); err != nil {
			return fmt.Errorf("decode %s.id: %w", record, err)
		}
	}
	return nil
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount      Amount    `json:"amount"`
		Date        Date      `json:"date"`
		Description string    `json:"description"`
		Category    string    `json:"category"`
		Type        TransType `json:"trans_type"`
		ID          string    `json:"id,omitempty"`
	}{t.Amount, t.Date, t.Description, t.Category, t.Type, t.ID})
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var out Transaction
	err := decodeRecord("transaction", data, &out.ID, []jsonField{
		{"amount", &out.Amount},
		{"date", &out.Date},
		{"description", &out.Description},
		{"category", &out.Category},
		{"trans_type", &out.Type},
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

func (e LedgerEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name        string    `json:"name"`
		Amount      Amount    `json:"amount"`
		Description string    `json:"description"`
		Date        Date      `json:"date"`
		Type        EntryType `json:"entry_type"`
		ID          string    `json:"id,omitempty"`
	}{e.Name, e.Amount, e.Description, e.Date, e.Type, e.ID})
}

func (e *LedgerEntry) UnmarshalJSON(data []byte) error {
	var out LedgerEntry
	err := decodeRecord("ledger_entry", data, &out.ID, []jsonField{
		{"name", &out.Name},
		{"amount", &out.Amount},
		{"description", &out.Description},
		{"date", &out.Date},
		{"entry_type", &out.Type},
	})
	if err != nil {
		return err
	}
	*e = out
	return nil
}
