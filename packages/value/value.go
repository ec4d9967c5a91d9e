package value

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Pair is a single key/value entry of a map value.
type Pair struct {
	Key string
	Val Value
}

// Value is a tagged variant holding one stylesheet value.
// The zero Value is Null.
type Value struct {
	kind  Kind
	b     bool
	n     float64
	unit  string
	s     string
	items []Value
	pairs []Pair
}

func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Dimension builds a number carrying a CSS unit, e.g. Dimension(4, "px").
func Dimension(n float64, unit string) Value {
	return Value{kind: KindNumber, n: n, unit: unit}
}

func String(s string) Value { return Value{kind: KindString, s: s} }

func List(items ...Value) Value {
	return Value{kind: KindList, items: items}
}

func Map(pairs ...Pair) Value {
	return Value{kind: KindMap, pairs: pairs}
}

func (v Value) Kind() Kind { return v.kind }

// TypeName returns the lowercase variant name used in inspection output.
func (v Value) TypeName() string { return v.kind.String() }

func (v Value) IsNull() bool { return v.kind == KindNull }

// BoolVal returns the boolean payload; false for non-bool variants.
func (v Value) BoolVal() bool { return v.kind == KindBool && v.b }

// NumberVal returns the numeric payload; 0 for non-number variants.
func (v Value) NumberVal() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.n
}

// Unit returns the unit of a number value, "" when unitless.
func (v Value) Unit() string { return v.unit }

// StringVal returns the string payload; "" for non-string variants.
func (v Value) StringVal() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Items returns the elements of a list value.
func (v Value) Items() []Value { return v.items }

// Pairs returns the entries of a map value in insertion order.
func (v Value) Pairs() []Pair { return v.pairs }

// Len returns the element count for lists and maps, the byte length for
// strings, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.pairs)
	case KindString:
		return len(v.s)
	}
	return 0
}

// Truthy reports whether the value counts as true in an assertion.
// Null and false are falsy, and so are the empty list and the empty
// string. Everything else is truthy: the number 0, the string "0" and a
// list holding a single 0 all pass.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindList:
		return len(v.items) > 0
	case KindString:
		return v.s != ""
	}
	return true
}

// Equal reports structural equality. Variants of different kinds are
// never equal, numbers compare numerically per unit, lists compare
// element-wise in order and maps compare entry-wise ignoring order.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n && a.unit == b.unit
	case KindString:
		return a.s == b.s
	case KindList:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.pairs) != len(b.pairs) {
			return false
		}
		for _, p := range a.pairs {
			other, ok := b.get(p.Key)
			if !ok || !Equal(p.Val, other) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) get(key string) (Value, bool) {
	for _, p := range v.pairs {
		if p.Key == key {
			return p.Val, true
		}
	}
	return Value{}, false
}

// String renders the value the way it would appear in a stylesheet.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n) + v.unit
	case KindString:
		return v.s
	case KindList:
		parts := make([]string, len(v.items))
		for i, it := range v.items {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindMap:
		parts := make([]string, len(v.pairs))
		for i, p := range v.pairs {
			parts[i] = p.Key + ": " + p.Val.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return ""
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Parse interprets a literal as it appears in a suite file. It accepts
// null/none, booleans, numbers with an optional CSS unit, JSON arrays
// and objects, parenthesised list and map literals, quoted strings, and
// falls back to a bare string for anything else.
func Parse(input string) Value {
	s := strings.TrimSpace(input)
	switch s {
	case "":
		return String("")
	case "null", "none":
		return Null()
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if n, unit, ok := parseNumber(s); ok {
		return Dimension(n, unit)
	}
	if (strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")) && gjson.Valid(s) {
		return FromJSON(gjson.Parse(s))
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		if v, ok := parseParen(s); ok {
			return v
		}
	}
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return String(s[1 : len(s)-1])
		}
	}
	return String(s)
}

// parseNumber splits a literal like "4", "-2.5" or "16px" into magnitude
// and unit. The unit must be letters or a percent sign.
func parseNumber(s string) (float64, string, bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, "", false
	}
	num, rest := s[:i], s[i:]
	for _, r := range rest {
		letter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !letter && r != '%' {
			return 0, "", false
		}
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, "", false
	}
	return n, rest, true
}

// parseParen handles CSS-ish "(1, 2, 3)" lists and "(a: 1, b: 2)" maps.
func parseParen(s string) (Value, bool) {
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return List(), true
	}
	parts := splitTop(inner, ',')
	isMap := true
	for _, p := range parts {
		if _, _, found := cutTop(p, ':'); !found {
			isMap = false
			break
		}
	}
	if isMap {
		pairs := make([]Pair, 0, len(parts))
		for _, p := range parts {
			k, rest, _ := cutTop(p, ':')
			pairs = append(pairs, Pair{Key: strings.TrimSpace(k), Val: Parse(rest)})
		}
		return Map(pairs...), true
	}
	items := make([]Value, 0, len(parts))
	for _, p := range parts {
		items = append(items, Parse(p))
	}
	return List(items...), true
}

// splitTop splits on sep at paren/bracket depth zero.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func cutTop(s string, sep byte) (string, string, bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

// FromJSON converts a parsed JSON fixture into a Value. Arrays become
// lists, objects become maps with keys in document order.
func FromJSON(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Number:
		return Number(r.Num)
	case gjson.String:
		return String(r.Str)
	}
	if r.IsArray() {
		var items []Value
		r.ForEach(func(_, item gjson.Result) bool {
			items = append(items, FromJSON(item))
			return true
		})
		return List(items...)
	}
	if r.IsObject() {
		var pairs []Pair
		r.ForEach(func(key, item gjson.Result) bool {
			pairs = append(pairs, Pair{Key: key.String(), Val: FromJSON(item)})
			return true
		})
		return Map(pairs...)
	}
	return Null()
}
