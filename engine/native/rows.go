package native

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/errors"
)

// sortPosition pairs a resolved column index with a sort direction
type sortPosition struct {
	pos       int
	ascending bool
}

func columnPositions(schema rondo.Schema, colNames []string) ([]int, error) {
	positions := make([]int, len(colNames))
	for i, name := range colNames {
		pos, ok := schema.IndexOf(name)
		if !ok {
			return nil, errors.MissingColumnError{Name: name}
		}
		positions[i] = pos
	}
	return positions, nil
}

func sortPositions(schema rondo.Schema, sorts []rondo.SortColumn) ([]sortPosition, error) {
	positions := make([]sortPosition, len(sorts))
	for i, sc := range sorts {
		pos, ok := schema.IndexOf(sc.Name)
		if !ok {
			return nil, errors.MissingColumnError{Name: sc.Name}
		}
		positions[i] = sortPosition{pos: pos, ascending: sc.Ascending}
	}
	return positions, nil
}

// groupRows buckets rows by their key values, returning groups in
// first-occurrence order of the key. Partition numbering in Map relies on
// this order being deterministic for a given input order.
func groupRows(rows [][]interface{}, keyPositions []int) ([][][]interface{}, error) {
	var groups [][][]interface{}
	index := make(map[string]int)
	for _, row := range rows {
		key := encodeKey(row, keyPositions)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], row)
	}
	return groups, nil
}

// sortRows returns a stably sorted copy of rows, leaving the input order
// untouched for the caller
func sortRows(rows [][]interface{}, sorts []sortPosition) [][]interface{} {
	sorted := append([][]interface{}{}, rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		for _, s := range sorts {
			c := compareValues(sorted[i][s.pos], sorted[j][s.pos])
			if c == 0 {
				continue
			}
			if s.ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return sorted
}

// compareValues orders two dynamically-typed cell values: nil first, then
// numerics, then everything else by textual form
func compareValues(a interface{}, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	as, bs := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	return strings.Compare(as, bs)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// encodeKey builds an exact grouping key from the given positions of a row
func encodeKey(row []interface{}, positions []int) string {
	var b strings.Builder
	for _, pos := range positions {
		writeCell(&b, row[pos])
	}
	return b.String()
}

// encodeRow builds an exact identity key over a whole row, used for
// distinct and set operations
func encodeRow(row []interface{}) string {
	var b strings.Builder
	for _, v := range row {
		writeCell(&b, v)
	}
	return b.String()
}

func writeCell(b *strings.Builder, v interface{}) {
	if v == nil {
		b.WriteString("\x00\x1e")
		return
	}
	// numeric values of different widths must key identically
	if f, ok := toFloat(v); ok {
		fmt.Fprintf(b, "n%v\x1e", f)
		return
	}
	fmt.Fprintf(b, "%T\x1f%v\x1e", v, v)
}

// joinRows implements the hash-join row production for every JoinType
func joinRows(left rondo.LocalDataFrame, right rondo.LocalDataFrame, how rondo.JoinType, keySchema rondo.Schema, outputSchema rondo.Schema) ([][]interface{}, error) {
	if how == rondo.CrossJoin {
		rows := [][]interface{}{}
		for _, l := range left.Rows() {
			for _, r := range right.Rows() {
				rows = append(rows, append(append([]interface{}{}, l...), r...))
			}
		}
		return rows, nil
	}
	keys := keySchema.ColumnNames()
	leftKeyPos, err := columnPositions(left.Schema(), keys)
	if err != nil {
		return nil, err
	}
	rightKeyPos, err := columnPositions(right.Schema(), keys)
	if err != nil {
		return nil, err
	}
	merger, err := newRowMerger(left.Schema(), right.Schema(), keySchema, outputSchema)
	if err != nil {
		return nil, err
	}
	rightIndex := make(map[string][]int)
	for i, r := range right.Rows() {
		key := encodeKey(r, rightKeyPos)
		rightIndex[key] = append(rightIndex[key], i)
	}
	if how == rondo.RightOuterJoin {
		// right outer preserves right-side row order
		leftIndex := make(map[string][]int)
		for i, l := range left.Rows() {
			key := encodeKey(l, leftKeyPos)
			leftIndex[key] = append(leftIndex[key], i)
		}
		rows := [][]interface{}{}
		for _, r := range right.Rows() {
			matches := leftIndex[encodeKey(r, rightKeyPos)]
			if len(matches) == 0 {
				rows = append(rows, merger.merge(nil, r))
				continue
			}
			for _, li := range matches {
				rows = append(rows, merger.merge(left.Rows()[li], r))
			}
		}
		return rows, nil
	}
	rows := [][]interface{}{}
	rightMatched := make([]bool, right.Count())
	for _, l := range left.Rows() {
		matches := rightIndex[encodeKey(l, leftKeyPos)]
		if len(matches) == 0 {
			if how == rondo.LeftOuterJoin || how == rondo.FullOuterJoin {
				rows = append(rows, merger.merge(l, nil))
			}
			continue
		}
		for _, ri := range matches {
			rightMatched[ri] = true
			rows = append(rows, merger.merge(l, right.Rows()[ri]))
		}
	}
	if how == rondo.FullOuterJoin {
		for i, r := range right.Rows() {
			if !rightMatched[i] {
				rows = append(rows, merger.merge(nil, r))
			}
		}
	}
	return rows, nil
}

// rowMerger assembles an output row from a left row, a right row, or both.
// Key values are taken from whichever side is present.
type rowMerger struct {
	fromLeft  []int // output position -> left position, or -1
	fromRight []int // output position -> right position, or -1
}

func newRowMerger(leftSchema rondo.Schema, rightSchema rondo.Schema, keySchema rondo.Schema, outputSchema rondo.Schema) (*rowMerger, error) {
	n := outputSchema.NumColumns()
	m := &rowMerger{fromLeft: make([]int, n), fromRight: make([]int, n)}
	for i, name := range outputSchema.ColumnNames() {
		m.fromLeft[i] = -1
		m.fromRight[i] = -1
		if pos, ok := leftSchema.IndexOf(name); ok {
			m.fromLeft[i] = pos
		}
		if pos, ok := rightSchema.IndexOf(name); ok {
			if m.fromLeft[i] == -1 || keySchema.HasColumn(name) {
				m.fromRight[i] = pos
			}
		}
		if m.fromLeft[i] == -1 && m.fromRight[i] == -1 {
			return nil, errors.MissingColumnError{Name: name}
		}
	}
	return m, nil
}

func (m *rowMerger) merge(l []interface{}, r []interface{}) []interface{} {
	out := make([]interface{}, len(m.fromLeft))
	for i := range out {
		if l != nil && m.fromLeft[i] >= 0 {
			out[i] = l[m.fromLeft[i]]
		} else if r != nil && m.fromRight[i] >= 0 {
			out[i] = r[m.fromRight[i]]
		}
	}
	return out
}
