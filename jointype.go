package rondo

import (
	"fmt"
	"strings"
)

// JoinType enumerates the join modes supported by ExecutionEngine.Join
type JoinType int

const (
	// InnerJoin keeps rows with matching keys on both sides
	InnerJoin JoinType = iota
	// LeftOuterJoin keeps all rows of the left side
	LeftOuterJoin
	// RightOuterJoin keeps all rows of the right side
	RightOuterJoin
	// FullOuterJoin keeps all rows of both sides
	FullOuterJoin
	// CrossJoin produces the cartesian product and takes no keys
	CrossJoin
)

// String returns the canonical token for this JoinType
func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "inner"
	case LeftOuterJoin:
		return "left_outer"
	case RightOuterJoin:
		return "right_outer"
	case FullOuterJoin:
		return "full_outer"
	case CrossJoin:
		return "cross"
	}
	return fmt.Sprintf("JoinType(%d)", int(t))
}

// ParseJoinType normalizes a join mode token. Case, surrounding whitespace
// and space/hyphen separators are insignificant.
func ParseJoinType(how string) (JoinType, error) {
	normalized := strings.ToLower(strings.TrimSpace(how))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	switch normalized {
	case "inner", "join":
		return InnerJoin, nil
	case "left", "left_outer":
		return LeftOuterJoin, nil
	case "right", "right_outer":
		return RightOuterJoin, nil
	case "outer", "full", "full_outer":
		return FullOuterJoin, nil
	case "cross":
		return CrossJoin, nil
	}
	return InnerJoin, fmt.Errorf("unrecognized join type %s", how)
}
