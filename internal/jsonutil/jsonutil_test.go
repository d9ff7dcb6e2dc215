package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalWithContext(t *testing.T) {
	type TestStruct struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name:    "valid JSON",
			data:    []byte(`{"name":"test"}`),
			wantErr: false,
		},
		{
			name:    "invalid JSON",
			data:    []byte(`not json`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v TestStruct
			err := UnmarshalWithContext(tt.data, &v, "test context")
			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalWithContext() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && v.Name != "test" {
				t.Errorf("UnmarshalWithContext() v.Name = %q, want %q", v.Name, "test")
			}
		})
	}
}

func TestUnmarshalArrayAllowEmpty(t *testing.T) {
	got, err := UnmarshalArrayAllowEmpty[map[string]interface{}]([]byte(`null`), "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}

	got, err = UnmarshalArrayAllowEmpty[map[string]interface{}]([]byte(`[{"asset_id":1}]`), "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}

	if _, err := UnmarshalArrayAllowEmpty[int]([]byte(`{`), "list"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestGetString(t *testing.T) {
	m := map[string]interface{}{
		"str":  "value",
		"num":  42.0,
		"bool": true,
		"nil":  nil,
	}

	tests := []struct {
		key  string
		want string
	}{
		{"str", "value"},
		{"num", ""},
		{"bool", ""},
		{"nil", ""},
		{"missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := GetString(m, tt.key); got != tt.want {
				t.Errorf("GetString() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := GetStringOr(m, "missing", "fallback"); got != "fallback" {
		t.Errorf("GetStringOr() = %q, want fallback", got)
	}
}

func TestGetInt(t *testing.T) {
	m := map[string]interface{}{
		"float": 7.0,
		"frac":  7.5,
		"int":   3,
		"str":   "7",
	}
	if v, ok := GetInt(m, "float"); !ok || v != 7 {
		t.Errorf("GetInt(float) = %d, %v", v, ok)
	}
	if v, ok := GetInt(m, "int"); !ok || v != 3 {
		t.Errorf("GetInt(int) = %d, %v", v, ok)
	}
	if _, ok := GetInt(m, "frac"); ok {
		t.Error("GetInt(frac) should fail")
	}
	if _, ok := GetInt(m, "str"); ok {
		t.Error("GetInt(str) should fail")
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"whole float", 42.0, "42"},
		{"fraction", 0.85, "0.85"},
		{"bool", false, "false"},
		{"int", 12, "12"},
		{"json number", json.Number("3.50"), "3.50"},
		{"map", map[string]interface{}{"action": "BUY"}, `{"action":"BUY"}`},
		{"slice", []interface{}{"x86_64"}, `["x86_64"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToString(tt.in); got != tt.want {
				t.Errorf("ToString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
