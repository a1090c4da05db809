package dashboard

import (
	"bytes"
	"encoding/json"

	"finance-dashboard/internal/core"
)

// Breakdown is the per-category expense total list, largest first. It
// encodes as a JSON object keyed by category name that keeps this order.
type Breakdown []core.CategoryTotal

func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ct := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ct.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(CategoryShare{Amount: ct.Amount.InexactFloat64(), Color: ct.Color})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
