package discovery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// mathFieldIndex gives the canonical axis order index for a bare math
// field name (no type tag), shared by every math vector/quaternion tag.
var mathFieldIndex = map[string]int{"x": 0, "y": 1, "z": 2, "w": 3}

var rgbaFieldIndex = map[string]int{
	"r": 0, "red": 0,
	"g": 1, "green": 1,
	"b": 2, "blue": 2,
	"a": 3, "alpha": 3,
}

// colorFieldIndex maps a color-family tuple-variant tag name to its field
// name -> tuple index table, grounded on
// original_source/.../format_discovery/field_mapper.rs.
var colorFieldIndex = map[string]map[string]int{
	"Srgba":      rgbaFieldIndex,
	"LinearRgba": rgbaFieldIndex,
	"Xyza":       rgbaFieldIndex,
	"Hsla": {
		"h": 0, "hue": 0,
		"s": 1, "saturation": 1,
		"l": 2, "lightness": 2,
		"a": 3, "alpha": 3,
	},
	"Hsva": {
		"h": 0, "hue": 0,
		"s": 1, "saturation": 1,
		"v": 2, "value": 2,
		"a": 3, "alpha": 3,
	},
	"Hwba": {
		"h": 0, "hue": 0,
		"whiteness": 1,
		"blackness": 2,
		"a":         3, "alpha": 3,
	},
	"Laba": {
		"lightness": 0, "l": 0,
		"a": 1,
		"b": 2,
		"alpha": 3,
	},
	"Oklaba": {
		"lightness": 0, "l": 0,
		"a": 1,
		"b": 2,
		"alpha": 3,
	},
	"Lcha": {
		"lightness": 0, "l": 0,
		"chroma": 1, "c": 1,
		"hue": 2, "h": 2,
		"alpha": 3, "a": 3,
	},
	"Oklcha": {
		"lightness": 0, "l": 0,
		"chroma": 1, "c": 1,
		"hue": 2, "h": 2,
		"alpha": 3, "a": 3,
	},
}

// RewritePath rewrites a typed, name-addressed field path (".Tag.field" or
// the bare ".field" form) to its numeric tuple-index equivalent. It is a
// pure function: the live payload is never consulted, only the path
// string. Unrecognized shapes are returned unchanged, which is what makes
// the function idempotent: RewritePath(RewritePath(p)) == RewritePath(p).
func RewritePath(path string) string {
	trimmed := strings.TrimPrefix(path, ".")
	if trimmed == "" {
		return path
	}
	parts := strings.Split(trimmed, ".")

	switch len(parts) {
	case 1:
		if idx, ok := mathFieldIndex[strings.ToLower(parts[0])]; ok {
			return "." + strconv.Itoa(idx)
		}
		return path

	case 2:
		tag, field := parts[0], strings.ToLower(parts[1])
		if table, ok := colorFieldIndex[tag]; ok {
			if idx, ok := table[field]; ok {
				return ".0." + strconv.Itoa(idx)
			}
			return path
		}
		if idx, ok := mathFieldIndex[field]; ok {
			return ".0." + strconv.Itoa(idx)
		}
		return path

	default:
		return path
	}
}

// embeddedPathRegex pulls the first dotted reflection path (e.g.
// ".LinearRgba.red") out of a block of free-form error text, for the
// AccessError transformer, which has no dedicated capture group for it.
var embeddedPathRegex = regexp.MustCompile(`\.[A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+)*`)

func extractEmbeddedPath(text string) (string, bool) {
	m := embeddedPathRegex.FindString(text)
	return m, m != ""
}

// mathTypeTransform handles MathTypeArray and TransformSequence, the two
// patterns owned by the math-type transformer.
func mathTypeTransform(p *Pattern, payload any) (any, string, bool) {
	switch p.Kind {
	case PatternMathTypeArray:
		return convertToMathArray(payload, p.Math)
	case PatternTransformSequence:
		return transformSequenceFix(payload, p.ExpectedCount)
	default:
		return nil, "", false
	}
}

// convertToMathArray converts an object-with-named-axes payload to a
// fixed-length numeric array in canonical order, or validates and passes
// through a same-length array already in that form.
func convertToMathArray(payload any, mt MathType) (any, string, bool) {
	order, ok := AxisOrder[mt]
	if !ok {
		return nil, "", false
	}

	switch v := payload.(type) {
	case map[string]any:
		arr := make([]any, 0, len(order))
		for _, axis := range order {
			val, ok := v[axis]
			if !ok {
				return nil, "", false
			}
			arr = append(arr, val)
		}
		return arr, fmt.Sprintf("`%s` expects array format, converted [%s]", mt, strings.Join(order, ", ")), true

	case []any:
		if len(v) != len(order) {
			return nil, "", false
		}
		for _, item := range v {
			if !isJSONNumber(item) {
				return nil, "", false
			}
		}
		return v, fmt.Sprintf("`%s` already in array format", mt), true

	default:
		return nil, "", false
	}
}

func isJSONNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64:
		return true
	default:
		return false
	}
}

// transformSequenceFix descends into a Transform-shaped payload's
// translation/scale (as Vec3) and rotation (as Quat) sub-payloads,
// leaving every other key untouched.
func transformSequenceFix(payload any, expectedCount int) (any, string, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, "", false
	}

	corrected := map[string]any{}
	for k, v := range obj {
		corrected[k] = v
	}

	var hints []string
	for _, field := range []string{"translation", "scale"} {
		fv, ok := obj[field]
		if !ok {
			continue
		}
		if arr, _, ok := convertToMathArray(fv, MathVec3); ok {
			corrected[field] = arr
			hints = append(hints, fmt.Sprintf("`%s` converted to Vec3 array format", field))
		}
	}
	if rv, ok := obj["rotation"]; ok {
		if arr, _, ok := convertToMathArray(rv, MathQuat); ok {
			corrected["rotation"] = arr
			hints = append(hints, "`rotation` converted to Quat array format")
		}
	}

	if len(hints) == 0 {
		return nil, "", false
	}
	hint := fmt.Sprintf("Transform expected %d f32 values in sequence - %s", expectedCount, strings.Join(hints, ", "))
	return corrected, hint, true
}

// stringTypeTransform handles ExpectedType patterns whose named type
// contains "Name" or "String".
func stringTypeTransform(p *Pattern, typeName string, payload any) (any, string, bool) {
	if p.Kind != PatternExpectedType {
		return nil, "", false
	}
	if !strings.Contains(p.TypeName, "Name") && !strings.Contains(p.TypeName, "String") {
		return nil, "", false
	}
	s, source, ok := extractStringValue(payload)
	if !ok {
		return nil, "", false
	}
	return s, fmt.Sprintf("`%s` expects string format, extracted %s", typeName, source), true
}

// extractStringValue probes, in order, the standard field names, then a
// single-field object's sole string value, then a single-element array's
// sole string, then the payload itself if already a string.
func extractStringValue(payload any) (string, string, bool) {
	switch v := payload.(type) {
	case map[string]any:
		for _, field := range []string{"name", "value", "text", "label"} {
			if s, ok := v[field].(string); ok {
				return s, fmt.Sprintf("from `%s` field", field), true
			}
		}
		if len(v) == 1 {
			for k, val := range v {
				if s, ok := val.(string); ok {
					return s, fmt.Sprintf("from `%s` field", k), true
				}
			}
		}
	case []any:
		if len(v) == 1 {
			if s, ok := v[0].(string); ok {
				return s, "from single-element array", true
			}
		}
	case string:
		return v, "already string format", true
	}
	return "", "", false
}

// tupleStructTransform owns the path-rewriter and handles
// TupleStructAccess, AccessError, and MissingField for lowercase field
// names.
func tupleStructTransform(p *Pattern, typeName string, payload any) (any, string, bool) {
	switch p.Kind {
	case PatternTupleStructAccess:
		return applyTupleStructPath(typeName, payload, p.FieldPath)

	case PatternAccessError:
		path, ok := extractEmbeddedPath(p.InnerError)
		if !ok {
			return nil, "", false
		}
		return applyTupleStructPath(typeName, payload, path)

	case PatternMissingField:
		if p.FieldName == "" || !startsLower(p.FieldName) {
			return nil, "", false
		}
		fixedPath := RewritePath("." + p.FieldName)
		if obj, ok := payload.(map[string]any); ok && len(obj) == 1 {
			for _, v := range obj {
				return v, fmt.Sprintf("`%s` is a tuple struct, use numeric index %s instead of field `%s`", typeName, fixedPath, p.FieldName), true
			}
		}
		return nil, "", false

	default:
		return nil, "", false
	}
}

func applyTupleStructPath(typeName string, payload any, fieldPath string) (any, string, bool) {
	fixedPath := RewritePath(fieldPath)

	switch v := payload.(type) {
	case map[string]any:
		if len(v) == 1 {
			for _, val := range v {
				return val, fmt.Sprintf("`%s` is a tuple struct, use numeric index %s instead of named fields", typeName, fixedPath), true
			}
		}
	case []any:
		idx, err := strconv.Atoi(strings.TrimPrefix(lastSegment(fixedPath), "."))
		if err == nil && idx >= 0 && idx < len(v) {
			if fixedPath == fieldPath {
				return v[idx], fmt.Sprintf("`%s` tuple struct element at index %d extracted", typeName, idx), true
			}
			return v[idx], fmt.Sprintf("`%s` tuple struct: converted %q to %q for element access", typeName, fieldPath, fixedPath), true
		}
	}
	return nil, "", false
}

func lastSegment(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return path
	}
	return path[idx:]
}

// enumVariantTransform handles TypeMismatch (plain and variant) and
// MissingField where the missing name begins with an uppercase letter (an
// enum tag).
func enumVariantTransform(p *Pattern, typeName string, payload any) (any, string, bool) {
	switch p.Kind {
	case PatternTypeMismatch:
		switch v := payload.(type) {
		case map[string]any:
			if len(v) == 1 {
				for k, val := range v {
					return val, fmt.Sprintf("`%s` TypeMismatch: expected %s, found %s - converted field %q to variant access", typeName, p.Expected, p.Actual, k), true
				}
			}
		case []any:
			if len(v) > 0 {
				return v[0], fmt.Sprintf("`%s` TypeMismatch: expected %s, found %s - using first array element", typeName, p.Expected, p.Actual), true
			}
		}
		return nil, "", false

	case PatternMissingField:
		if p.FieldName == "" || !startsUpper(p.FieldName) {
			return nil, "", false
		}
		obj, ok := payload.(map[string]any)
		if !ok {
			return nil, "", false
		}
		if v, ok := obj[p.FieldName]; ok {
			return v, fmt.Sprintf("`%s` MissingField %q: extracted enum variant value", typeName, p.FieldName), true
		}
		if len(obj) == 1 {
			for k, v := range obj {
				return v, fmt.Sprintf("`%s` MissingField %q: used field %q instead", typeName, p.FieldName, k), true
			}
		}
		return nil, "", false

	default:
		return nil, "", false
	}
}

func startsLower(s string) bool {
	r := s[0]
	return r >= 'a' && r <= 'z'
}

func startsUpper(s string) bool {
	r := s[0]
	return r >= 'A' && r <= 'Z'
}

// Transform dispatches a classified pattern to the transformer that owns
// it. Each owning function already gates on p.Kind, so trying them in a
// fixed order is equivalent to routing directly and keeps the dispatch a
// flat, reviewable list.
func Transform(p Pattern, typeName string, payload any) (any, string, bool) {
	if v, hint, ok := mathTypeTransform(&p, payload); ok {
		return v, hint, true
	}
	if v, hint, ok := stringTypeTransform(&p, typeName, payload); ok {
		return v, hint, true
	}
	if v, hint, ok := tupleStructTransform(&p, typeName, payload); ok {
		return v, hint, true
	}
	if v, hint, ok := enumVariantTransform(&p, typeName, payload); ok {
		return v, hint, true
	}
	return nil, "", false
}
