// Package discovery implements the format-discovery engine (C5): an
// error-driven retry loop that, on a BRP type-shape error, diagnoses the
// misformat, repairs the payload through a tiered strategy, and
// retransmits. See spec.md §4.5.
package discovery

import (
	"github.com/bevybrp/brp-mcp-server/internal/brp"
)

// MathType enumerates the fixed-length numeric vector/quaternion shapes
// the math-type transformer and path rewriter understand.
type MathType string

const (
	MathVec2 MathType = "Vec2"
	MathVec3 MathType = "Vec3"
	MathVec4 MathType = "Vec4"
	MathQuat MathType = "Quat"
)

// AxisOrder gives the canonical field order for each math type.
var AxisOrder = map[MathType][]string{
	MathVec2: {"x", "y"},
	MathVec3: {"x", "y", "z"},
	MathVec4: {"x", "y", "z", "w"},
	MathQuat: {"x", "y", "z", "w"},
}

// PatternKind is the closed set of error-message classifications produced
// by the classifier (spec.md §3's "Error pattern").
type PatternKind string

const (
	PatternTransformSequence    PatternKind = "transform_sequence"
	PatternExpectedType         PatternKind = "expected_type"
	PatternMathTypeArray        PatternKind = "math_type_array"
	PatternUnknownComponentType PatternKind = "unknown_component_type"
	PatternTupleStructAccess    PatternKind = "tuple_struct_access"
	PatternAccessError          PatternKind = "access_error"
	PatternTypeMismatch         PatternKind = "type_mismatch"
	PatternMissingField         PatternKind = "missing_field"
	PatternUnknownComponent     PatternKind = "unknown_component"
)

// Pattern is the classified shape of one BRP error message, a tagged
// variant dispatched by Kind with only the fields relevant to that kind
// populated.
type Pattern struct {
	Kind PatternKind

	ExpectedCount int      // TransformSequence
	TypeName      string   // ExpectedType, UnknownComponentType
	Math          MathType // MathTypeArray
	FieldPath     string   // TupleStructAccess
	AccessKind    string   // AccessError, TypeMismatch
	InnerError    string   // AccessError
	Expected      string   // TypeMismatch
	Actual        string   // TypeMismatch
	IsVariant     bool     // TypeMismatch
	FieldName     string   // MissingField
	ComponentPath string   // UnknownComponent
}

// Correction is one discovered or terminal rewrite of a single payload.
type Correction struct {
	TypeName         string
	OriginalPayload  any
	CorrectedPayload any
	Hint             string
	// Terminal is true for a Tier-1 pseudo-correction: no retry should be
	// attempted using it, since CorrectedPayload == OriginalPayload.
	Terminal bool
}

// TierEntry records one tier a payload's repair attempt entered.
type TierEntry struct {
	TierNumber int
	TierName   string
	Action     string
	Succeeded  bool
}

// EnhancedResult is the outcome of Engine.InvokeWithRepair: the BRP result
// (original or retried), every correction discovered (including Tier-1
// pseudo-corrections), and the full tier trace.
type EnhancedResult struct {
	Raw         *brp.Result
	Corrections []Correction
	Debug       []string
	Tiers       []TierEntry
}

// payloadEntry is one (type_name, payload) pair extracted from a
// repair-eligible method's params, per spec.md §4.5's parameter-location
// table.
type payloadEntry struct {
	typeName string
	payload  any
}
