package llm

import (
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-object",
		Description: "A test object",
		Root: Object("",
			Prop("name", String("")),
			Prop("age", Integer("").Range(0, 120)),
			Prop("grade", Enum("", "A", "B", "C")),
		),
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"name":"Alice","age":10,"grade":"A"}`, false},
		{"missing required", `{"name":"Charlie","age":3}`, true},
		{"wrong type", `{"name":"Dave","age":"ten","grade":"A"}`, true},
		{"invalid enum", `{"name":"Eve","age":9,"grade":"D"}`, true},
		{"out of range", `{"name":"Fay","age":-1,"grade":"A"}`, true},
		{"extra property", `{"name":"Gus","age":9,"grade":"A","x":1}`, true},
		{"malformed", `{not json}`, true},
		{"fenced", "```json\n{\"name\":\"Alice\",\"age\":10,\"grade\":\"A\"}\n```", true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(testSchema(), tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invErr *ErrInvalidResponse
				if !errors.As(err, &invErr) {
					t.Fatalf("expected ErrInvalidResponse, got: %T", err)
				}
				if invErr.Raw != tt.raw {
					t.Fatalf("raw text not preserved: %q", invErr.Raw)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := `{"anything":"goes"}`
	if err := ValidateResponse(nil, raw); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_ArrayBounds(t *testing.T) {
	schema := &Schema{
		Name: "test-bounded-array",
		Root: Object("",
			Prop("items", Array("", Object("", Prop("text", String("")))).Exactly(2)),
		),
	}

	if err := ValidateResponse(schema, `{"items":[{"text":"a"},{"text":"b"}]}`); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := ValidateResponse(schema, `{"items":[{"text":"a"}]}`); err == nil {
		t.Fatal("expected error for too few items")
	}
	if err := ValidateResponse(schema, `{"items":[{"text":"a"},{"text":"b"},{"text":"c"}]}`); err == nil {
		t.Fatal("expected error for too many items")
	}
	if err := ValidateResponse(schema, `{"items":[{"text":1},{"text":"b"}]}`); err == nil {
		t.Fatal("expected error for wrong nested type")
	}
}
