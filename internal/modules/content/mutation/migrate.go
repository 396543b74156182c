package mutation

import (
	"fmt"
	"sort"

	"gorm.io/datatypes"

	"github.com/yungbote/neurobridge-content/internal/modules/content/schema"
)

// fillDefaults adds the default of every top-level field that the data does
// not carry yet. Existing values are never touched.
func fillDefaults(raw datatypes.JSON, fields []schema.Field) (datatypes.JSON, []string, error) {
	data, err := decodeData(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode activity data: %w", err)
	}
	var filled []string
	for _, f := range fields {
		id := f.Key()
		if id == "" || f.Default == nil {
			continue
		}
		if _, ok := data[id]; ok {
			continue
		}
		data[id] = f.Default
		filled = append(filled, id)
	}
	if len(filled) == 0 && len(data) > 0 {
		return raw, nil, nil
	}
	sort.Strings(filled)
	out, err := encodeData(data)
	if err != nil {
		return nil, nil, fmt.Errorf("encode activity data: %w", err)
	}
	return out, filled, nil
}
