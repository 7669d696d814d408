package structural

import (
	"testing"
)

func TestDecode_PreservesMemberOrder(t *testing.T) {
	v := MustDecode(`{"zebra": 1, "alpha": 2, "mango": {"b": true, "a": false}}`)

	members := v.Members()
	if len(members) != 3 {
		t.Fatalf("len(Members()) = %d; want 3", len(members))
	}
	wantOrder := []string{"zebra", "alpha", "mango"}
	for i, m := range members {
		if m.Key != wantOrder[i] {
			t.Errorf("Members()[%d].Key = %q; want %q", i, m.Key, wantOrder[i])
		}
	}

	nested := v.Get("mango").Members()
	if nested[0].Key != "b" || nested[1].Key != "a" {
		t.Errorf("nested order = %q, %q; want b, a", nested[0].Key, nested[1].Key)
	}
}

func TestDecode_NumberLiteralsKeepForm(t *testing.T) {
	v := MustDecode(`{"a": 1.50, "b": 3, "c": 1e2}`)

	if got := v.Get("a").NumberVal().String(); got != "1.50" {
		t.Errorf("a = %q; want 1.50", got)
	}
	if got := v.Get("b").NumberVal().String(); got != "3" {
		t.Errorf("b = %q; want 3", got)
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode([]byte(`{"a":`)); err == nil {
		t.Error("Decode of truncated JSON should fail")
	}
	if _, err := Decode([]byte(`{"a": 1} trailing`)); err == nil {
		t.Error("Decode with trailing garbage should fail")
	}
}

func TestValue_Accessors(t *testing.T) {
	v := MustDecode(`{"name": "Pat", "active": true, "tags": ["a", "b"]}`)

	if got := v.GetString("name"); got != "Pat" {
		t.Errorf("GetString(name) = %q; want Pat", got)
	}
	if got := v.GetString("missing"); got != "" {
		t.Errorf("GetString(missing) = %q; want empty", got)
	}
	if !v.Get("active").BoolVal() {
		t.Error("active should be true")
	}
	if got := v.Get("tags").Len(); got != 2 {
		t.Errorf("tags.Len() = %d; want 2", got)
	}
	if got := v.Get("tags").Item(1).StringVal(); got != "b" {
		t.Errorf("tags[1] = %q; want b", got)
	}
	if v.Get("tags").Item(5) != nil {
		t.Error("out-of-range Item should be nil")
	}

	// nil-safe chaining
	if v.Get("missing").Get("deeper").GetString("x") != "" {
		t.Error("chained Get through nil should yield empty")
	}
}

func TestValue_SetDelete(t *testing.T) {
	v := MustDecode(`{"a": 1, "b": 2}`)

	v.Set("b", String("two"))
	if got := v.GetString("b"); got != "two" {
		t.Errorf("after Set, b = %q; want two", got)
	}

	if !v.Delete("a") {
		t.Error("Delete(a) should report true")
	}
	if v.Has("a") {
		t.Error("a should be gone after Delete")
	}
	if v.Delete("a") {
		t.Error("second Delete(a) should report false")
	}
}

func TestClone_Independent(t *testing.T) {
	v := MustDecode(`{"a": {"b": [1, 2]}, "c": "x"}`)
	clone := v.Clone()

	clone.Get("a").Get("b").Append(Int(3))
	clone.Set("c", String("y"))

	if v.Get("a").Get("b").Len() != 2 {
		t.Error("mutating clone changed original array")
	}
	if v.GetString("c") != "x" {
		t.Error("mutating clone changed original member")
	}
	if !Equal(v, v.Clone()) {
		t.Error("clone should be equal to original")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical objects", `{"a": 1}`, `{"a": 1}`, true},
		{"member order ignored", `{"a": 1, "b": 2}`, `{"b": 2, "a": 1}`, true},
		{"numeric forms", `{"a": 1.0}`, `{"a": 1}`, true},
		{"different values", `{"a": 1}`, `{"a": 2}`, false},
		{"missing member", `{"a": 1}`, `{"a": 1, "b": 2}`, false},
		{"array order matters", `[1, 2]`, `[2, 1]`, false},
		{"nested equal", `{"a": {"b": [true, null]}}`, `{"a": {"b": [true, null]}}`, true},
		{"string vs number", `{"a": "1"}`, `{"a": 1}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := MustDecode(tt.a), MustDecode(tt.b)
			if got := Equal(a, b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v; want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		needle   string
		want     bool
	}{
		{"subset object", `{"a": 1, "b": 2}`, `{"a": 1}`, true},
		{"extra member in needle", `{"a": 1}`, `{"a": 1, "b": 2}`, false},
		{"array item order free", `[1, 2, 3]`, `[3, 1]`, true},
		{"array missing item", `[1, 2]`, `[4]`, false},
		{"nested", `{"a": {"b": 1, "c": 2}}`, `{"a": {"c": 2}}`, true},
		{"primitive equal", `"x"`, `"x"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, n := MustDecode(tt.haystack), MustDecode(tt.needle)
			if got := Contains(h, n); got != tt.want {
				t.Errorf("Contains(%s, %s) = %v; want %v", tt.haystack, tt.needle, got, tt.want)
			}
		})
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		v    *Value
		want bool
	}{
		{"nil", nil, true},
		{"null", Null(), true},
		{"empty string", String(""), true},
		{"empty array", NewArray(), true},
		{"empty object", NewObject(), true},
		{"false is a value", Bool(false), false},
		{"zero is a value", Int(0), false},
		{"non-empty string", String("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmpty(tt.v); got != tt.want {
				t.Errorf("IsEmpty = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	src := `{"b":"x","a":[1,true,null],"c":{"z":1,"y":2}}`
	v := MustDecode(src)
	if got := v.JSON(); got != src {
		t.Errorf("JSON() = %s; want %s", got, src)
	}
}
