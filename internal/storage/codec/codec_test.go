package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
)

func sample() *domain.Object {
	inner := domain.NewObject()
	inner.Set("a", domain.List(domain.Int(1), domain.Int(2)))

	obj := domain.NewObject()
	obj.Set("k", domain.String("v"))
	obj.Set("k2", domain.ObjectValue(inner))
	return obj
}

func TestJSON_MarshalLayouts(t *testing.T) {
	tests := []struct {
		name   string
		indent Indent
		want   string
	}{
		{
			name:   "flat",
			indent: NoIndent(),
			want:   `{"k": "v", "k2": {"a": [1, 2]}}`,
		},
		{
			name:   "two spaces",
			indent: Spaces(2),
			want:   "{\n  \"k\": \"v\",\n  \"k2\": {\n    \"a\": [\n      1,\n      2\n    ]\n  }\n}",
		},
		{
			name:   "tab",
			indent: Literal("\t"),
			want:   "{\n\t\"k\": \"v\",\n\t\"k2\": {\n\t\t\"a\": [\n\t\t\t1,\n\t\t\t2\n\t\t]\n\t}\n}",
		},
		{
			name:   "arbitrary string",
			indent: Literal("aaaa"),
			want:   "{\naaaa\"k\": \"v\",\naaaa\"k2\": {\naaaaaaaa\"a\": [\naaaaaaaaaaaa1,\naaaaaaaaaaaa2\naaaaaaaa]\naaaa}\n}",
		},
		{
			name:   "zero spaces",
			indent: Spaces(0),
			want:   "{\n\"k\": \"v\",\n\"k2\": {\n\"a\": [\n1,\n2\n]\n}\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.indent).Marshal(sample())
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("Marshal =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestJSON_MarshalFlatTwoKeys(t *testing.T) {
	obj := domain.NewObject()
	obj.Set("k", domain.String("v"))
	obj.Set("k2", domain.String("v2"))

	got, err := New(NoIndent()).Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `{"k": "v", "k2": "v2"}`; string(got) != want {
		t.Fatalf("Marshal = %s, want %s", got, want)
	}
}

func TestJSON_MarshalEmpty(t *testing.T) {
	for _, indent := range []Indent{NoIndent(), Spaces(4)} {
		got, err := New(indent).Marshal(domain.NewObject())
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if string(got) != "{}" {
			t.Fatalf("Marshal(%v) = %s, want {}", indent, got)
		}
	}

	obj := domain.NewObject()
	obj.Set("l", domain.List())
	obj.Set("o", domain.ObjectValue(nil))
	got, _ := New(Spaces(2)).Marshal(obj)
	if want := "{\n  \"l\": [],\n  \"o\": {}\n}"; string(got) != want {
		t.Fatalf("Marshal = %q, want %q", got, want)
	}
}

func TestJSON_MarshalScalars(t *testing.T) {
	tests := []struct {
		v    domain.Value
		want string
	}{
		{domain.Absent(), "null"},
		{domain.Bool(true), "true"},
		{domain.Bool(false), "false"},
		{domain.Int(-42), "-42"},
		{domain.Float(1), "1.0"},
		{domain.Float(1.5), "1.5"},
		{domain.Float(1e21), "1e+21"},
		{domain.Float(0), "0.0"},
		{domain.String("a\"b\\c\nd\te"), `"a\"b\\c\nd\te"`},
		{domain.String("\x01"), `"\u0001"`},
		{domain.String("<&>"), `"<&>"`},
		{domain.String("héllo"), `"héllo"`},
		{domain.String("bad\xffbyte"), "\"bad�byte\""},
	}

	for _, tt := range tests {
		got, err := MarshalValue(tt.v)
		if err != nil {
			t.Fatalf("MarshalValue(%v): %v", tt.v.Interface(), err)
		}
		if string(got) != tt.want {
			t.Fatalf("MarshalValue(%v) = %s, want %s", tt.v.Interface(), got, tt.want)
		}
	}
}

func TestJSON_MarshalRejectsNaN(t *testing.T) {
	obj := domain.NewObject()
	obj.Set("x", domain.Float(nan()))

	_, err := New(NoIndent()).Marshal(obj)
	if !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("Marshal(NaN) err = %v, want ErrInvalidValue", err)
	}
}

func TestJSON_RoundTripPreservesOrderAndKinds(t *testing.T) {
	obj := domain.NewObject()
	obj.Set("z", domain.Int(1))
	obj.Set("a", domain.Float(2.5))
	obj.Set("m", domain.List(domain.String("s"), domain.Absent(), domain.Bool(true)))
	obj.Set("n", domain.Float(3))
	obj.Set("o", domain.ObjectValue(sample()))

	for _, indent := range []Indent{NoIndent(), Spaces(2), Literal("\t")} {
		c := New(indent)
		var buf bytes.Buffer
		if err := c.Encode(&buf, obj); err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := c.Decode(&buf)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !got.Equal(obj) {
			t.Fatalf("round trip mismatch for indent %v", indent)
		}
		if strings.Join(got.Keys(), ",") != "z,a,m,n,o" {
			t.Fatalf("Keys = %v, want insertion order", got.Keys())
		}
		n, _ := got.Get("n")
		if n.Kind() != domain.KindFloat {
			t.Fatalf("n kind = %v, want float", n.Kind())
		}
	}
}

func TestJSON_DecodeDropsTopLevelNull(t *testing.T) {
	obj, err := New(NoIndent()).Unmarshal([]byte(`{"a": null, "b": {"c": null}, "d": [null]}`))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if strings.Join(obj.Keys(), ",") != "b,d" {
		t.Fatalf("Keys = %v, want top-level null dropped", obj.Keys())
	}
	b, _ := obj.Get("b")
	if c, ok := b.Field("c"); !ok || !c.IsAbsent() {
		t.Fatalf("nested null should be kept, got %v", b.Interface())
	}
}

func TestJSON_DecodeMalformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"[1, 2]",
		`"str"`,
		`{"a": 1`,
		`{"a": 1}}`,
		`{"a": 1} {"b": 2}`,
		`{"a": 1} x`,
		`{"a": }`,
		`{"a": 99999999999999999999}`,
		"not json",
	}

	c := New(NoIndent())
	for _, in := range inputs {
		if _, err := c.Unmarshal([]byte(in)); !errors.Is(err, domain.ErrMalformedData) {
			t.Fatalf("Unmarshal(%q) err = %v, want ErrMalformedData", in, err)
		}
	}
}

func TestJSON_DecodeNumbers(t *testing.T) {
	obj, err := New(NoIndent()).Unmarshal([]byte(`{"i": 42, "f": 4.2, "e": 1e3, "neg": -7}`))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if v, _ := obj.Get("i"); !v.Equal(domain.Int(42)) {
		t.Fatalf("i = %v, want Int(42)", v.Interface())
	}
	if v, _ := obj.Get("f"); !v.Equal(domain.Float(4.2)) {
		t.Fatalf("f = %v, want Float(4.2)", v.Interface())
	}
	if v, _ := obj.Get("e"); !v.Equal(domain.Float(1000)) {
		t.Fatalf("e = %v, want Float(1000)", v.Interface())
	}
	if v, _ := obj.Get("neg"); !v.Equal(domain.Int(-7)) {
		t.Fatalf("neg = %v, want Int(-7)", v.Interface())
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	line, err := EncodeRecord("x", domain.ObjectValue(sample()))
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	if bytes.ContainsRune(line, '\n') {
		t.Fatalf("record contains newline: %q", line)
	}
	if want := `{"x": {"k": "v", "k2": {"a": [1, 2]}}}`; string(line) != want {
		t.Fatalf("EncodeRecord = %s, want %s", line, want)
	}

	key, v, err := DecodeRecord(line)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if key != "x" || !v.Equal(domain.ObjectValue(sample())) {
		t.Fatalf("DecodeRecord = %q, %v", key, v.Interface())
	}
}

func TestRecord_Delete(t *testing.T) {
	line, err := EncodeRecord("gone", domain.Absent())
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	if string(line) != `{"gone": null}` {
		t.Fatalf("EncodeRecord = %s", line)
	}
	key, v, err := DecodeRecord(line)
	if err != nil || key != "gone" || !v.IsAbsent() {
		t.Fatalf("DecodeRecord = %q, %v, %v", key, v.Interface(), err)
	}
}

func TestRecord_RejectsWrongShape(t *testing.T) {
	for _, in := range []string{`{}`, `{"a": 1, "b": 2}`, `[1]`, `{"a": 1`} {
		if _, _, err := DecodeRecord([]byte(in)); !errors.Is(err, domain.ErrMalformedData) {
			t.Fatalf("DecodeRecord(%q) err = %v, want ErrMalformedData", in, err)
		}
	}
}

func TestUnmarshalValue(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Value
	}{
		{`"text"`, domain.String("text")},
		{`42`, domain.Int(42)},
		{`1.5`, domain.Float(1.5)},
		{`true`, domain.Bool(true)},
		{`null`, domain.Absent()},
		{`[1, "a"]`, domain.List(domain.Int(1), domain.String("a"))},
	}
	for _, tt := range tests {
		got, err := UnmarshalValue([]byte(tt.in))
		if err != nil {
			t.Fatalf("UnmarshalValue(%q): %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("UnmarshalValue(%q) = %v", tt.in, got.Interface())
		}
	}

	// Trailing input must never be folded into the value.
	for _, in := range []string{``, `1, 2`, `{`, `1 "v": 2`, `1, "v": 2`, `"a"}`, `[1] [2]`, `{"a": 1}, "v": 3`} {
		if _, err := UnmarshalValue([]byte(in)); !errors.Is(err, domain.ErrMalformedData) {
			t.Fatalf("UnmarshalValue(%q) err = %v, want ErrMalformedData", in, err)
		}
	}
}

func TestParseIndent(t *testing.T) {
	tests := []struct {
		in      string
		enabled bool
		unit    string
		str     string
	}{
		{"", false, "", "none"},
		{"none", false, "", "none"},
		{"NONE", false, "", "none"},
		{"2", true, "  ", "2"},
		{"0", true, "", "0"},
		{"\t", true, "\t", "\t"},
		{"aaaa", true, "aaaa", "aaaa"},
	}
	for _, tt := range tests {
		got := ParseIndent(tt.in)
		if got.Enabled() != tt.enabled || got.Unit() != tt.unit || got.String() != tt.str {
			t.Fatalf("ParseIndent(%q) = {%v %q %q}, want {%v %q %q}",
				tt.in, got.Enabled(), got.Unit(), got.String(), tt.enabled, tt.unit, tt.str)
		}
	}
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}
