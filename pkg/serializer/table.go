package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// encodeTable flattens v into FIELD/VALUE rows. Nested keys are joined with
// "." and list indexes rendered as [i]. v is first passed through JSON so
// custom marshalers decide the shape.
func encodeTable(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize to table: %w", err)
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, fmt.Errorf("failed to serialize to table: %w", err)
	}

	rows := make([][2]string, 0)
	flatten("", generic, &rows)

	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"FIELD", "VALUE"})
	if len(rows) == 0 {
		t.AppendRow(table.Row{"<empty>", ""})
	}
	for _, r := range rows {
		t.AppendRow(table.Row{r[0], r[1]})
	}
	t.Render()
	return buf.Bytes(), nil
}

func flatten(prefix string, v any, rows *[][2]string) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, val[k], rows)
		}
	case []any:
		for i, item := range val {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), item, rows)
		}
	case nil:
		*rows = append(*rows, [2]string{prefix, "<nil>"})
	default:
		*rows = append(*rows, [2]string{prefix, fmt.Sprint(val)})
	}
}
