package raster

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	apperrors "github.com/yanqian/shadowcast/pkg/errors"
)

// Encode serializes g as a JSON array of row objects keyed by column index, the
// layout produced by pandas DataFrame.to_json(orient="records"). Keys are written
// in numeric column order and values use the shortest exact float representation.
// A grid with columns but no rows has no representation in this layout and is
// rejected.
func Encode(g Grid) (string, error) {
	if len(g.Data) != g.Rows*g.Cols {
		return "", apperrors.Wrap(apperrors.CodeCodec, "raster data does not match its shape", nil)
	}
	if g.Rows == 0 && g.Cols > 0 {
		return "", apperrors.Wrap(apperrors.CodeCodec, fmt.Sprintf("cannot encode a 0x%d raster", g.Cols), nil)
	}
	rows := make([]*orderedmap.OrderedMap[string, float64], g.Rows)
	for r := 0; r < g.Rows; r++ {
		row := orderedmap.New[string, float64]()
		for c, v := range g.Row(r) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return "", apperrors.Wrap(apperrors.CodeCodec, fmt.Sprintf("non-finite value at row %d column %d", r, c), nil)
			}
			row.Set(strconv.Itoa(c), v)
		}
		rows[r] = row
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeCodec, "marshal raster", err)
	}
	return string(payload), nil
}

// Decode parses the row-object layout written by Encode. Cells are placed by their
// column key; every row must carry the same set of columns. A JSON null cell
// decodes to NaN; the payload itself must be an array.
func Decode(payload string) (Grid, error) {
	if trimmed := strings.TrimLeft(payload, " \t\r\n"); len(trimmed) == 0 || trimmed[0] != '[' {
		return Grid{}, apperrors.Wrap(apperrors.CodeCodec, "raster json is not an array", nil)
	}
	var rows []*orderedmap.OrderedMap[string, any]
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return Grid{}, apperrors.Wrap(apperrors.CodeCodec, "malformed raster json", err)
	}
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	if rows[0] == nil {
		return Grid{}, apperrors.Wrap(apperrors.CodeCodec, "row 0 is not an object", nil)
	}

	cols := rows[0].Len()
	g := New(len(rows), cols)
	seen := make([]bool, cols)
	for r, row := range rows {
		if row == nil {
			return Grid{}, apperrors.Wrap(apperrors.CodeCodec, fmt.Sprintf("row %d is not an object", r), nil)
		}
		if row.Len() != cols {
			return Grid{}, apperrors.Wrap(apperrors.CodeCodec, fmt.Sprintf("row %d has %d columns, expected %d", r, row.Len(), cols), nil)
		}
		clear(seen)
		for pair := row.Oldest(); pair != nil; pair = pair.Next() {
			c, err := strconv.Atoi(pair.Key)
			if err != nil || c < 0 || c >= cols {
				return Grid{}, apperrors.Wrap(apperrors.CodeCodec, fmt.Sprintf("row %d has invalid column key %q", r, pair.Key), err)
			}
			if seen[c] {
				return Grid{}, apperrors.Wrap(apperrors.CodeCodec, fmt.Sprintf("row %d repeats column %d", r, c), nil)
			}
			seen[c] = true
			v, err := cellValue(pair.Value)
			if err != nil {
				return Grid{}, apperrors.Wrap(apperrors.CodeCodec, fmt.Sprintf("row %d column %d", r, c), err)
			}
			g.Set(r, c, v)
		}
	}
	return g, nil
}

func cellValue(raw any) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("unsupported cell type %T", raw)
	}
}
