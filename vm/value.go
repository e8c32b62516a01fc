package vm

import "strconv"

// Kind identifies which variant of the tagged Value union is populated.
type Kind uint8

// Value variants.
const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is the tagged-union runtime value every stack slot, constant-pool
// entry, and global holds. The zero Value is KindNil.
type Value struct {
	Kind   Kind
	b      bool
	n      float64
	object *Object
}

// Nil is the singleton nil value.
var Nil = Value{Kind: KindNil}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, b: b} }

// Number wraps an IEEE-754 double.
func Number(n float64) Value { return Value{Kind: KindNumber, n: n} }

// FromObject wraps a heap object handle.
func FromObject(o *Object) Value { return Value{Kind: KindObject, object: o} }

// True and False are the two Bool values, provided for readability at call sites.
var (
	True  = Bool(true)
	False = Bool(false)
)

// AsBool returns the boolean payload. Only valid when Kind == KindBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the float64 payload. Only valid when Kind == KindNumber.
func (v Value) AsNumber() float64 { return v.n }

// AsObject returns the object handle. Only valid when Kind == KindObject.
func (v Value) AsObject() *Object { return v.object }

// IsString reports whether v holds a String object.
func (v Value) IsString() bool { return v.Kind == KindObject && v.object.Kind == ObjString }

// AsString returns the string content. Only valid when IsString() is true.
func (v Value) AsString() string { return v.object.str }

// Equal implements Value equality: distinct Kinds are never equal, numbers
// compare by IEEE equality, strings by content, and object handles to the
// same allocation short-circuit to true before any content comparison.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindObject:
		return a.object.equal(b.object)
	default:
		return false
	}
}

// Display renders v the way the `print` statement and REPL do: Nil as "nil",
// Bool as "true"/"false", Number without a trailing ".0" when it has no
// fractional part, String as its raw content.
func Display(v Value) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.n)
	case KindObject:
		switch v.object.Kind {
		case ObjString:
			return v.object.str
		default:
			return "<object>"
		}
	default:
		return "<invalid>"
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// ObjectKind identifies the variant of a heap Object. String is the only
// variant this language's runtime produces.
type ObjectKind uint8

// Object variants.
const (
	ObjString ObjectKind = iota
)

// Object is the single heap object representation: an immutable, owned
// string allocation. Each *Object is created by exactly one owning
// collection (a Chunk's literal-string list at compile time, or an
// Instance's runtime allocation list for strings produced by concatenation);
// Values referencing an Object elsewhere (stack slots, globals) are
// non-owning and must not outlive the owning collection.
type Object struct {
	Kind ObjectKind
	str  string
}

// NewString allocates a new owned String object. The caller is responsible
// for appending the returned handle to an owning collection (Chunk.strings
// or Instance.allocations).
func NewString(s string) *Object {
	return &Object{Kind: ObjString, str: s}
}

// String returns the object's raw content. Only meaningful for Kind == ObjString.
func (o *Object) String() string { return o.str }

func (o *Object) equal(other *Object) bool {
	if o == other {
		return true
	}
	if o == nil || other == nil {
		return false
	}
	if o.Kind != other.Kind {
		return false
	}
	switch o.Kind {
	case ObjString:
		return o.str == other.str
	default:
		return false
	}
}
