package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Simplici0/tenderpricing/internal/tools"
)

func testTool(name string) tools.Tool {
	return tools.Tool{
		Name:        name,
		Description: "test tool: " + name,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{"type": "string"},
			},
		},
	}
}

func echoHandler(_ context.Context, args json.RawMessage) (tools.Result, error) {
	return tools.Result{Content: string(args)}, nil
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		tool    tools.Tool
		wantErr error
	}{
		{
			name: "valid tool",
			tool: testTool("register_valid"),
		},
		{
			name:    "empty name",
			tool:    tools.Tool{Name: ""},
			wantErr: tools.ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := tools.NewRegistry()
			err := reg.Register(tt.tool, echoHandler)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Register() unexpected error: %v", err)
			}
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	reg := tools.NewRegistry()
	tool := testTool("register_duplicate")

	if err := reg.Register(tool, echoHandler); err != nil {
		t.Fatalf("first Register() failed: %v", err)
	}

	err := reg.Register(tool, echoHandler)
	if !errors.Is(err, tools.ErrAlreadyExists) {
		t.Errorf("second Register() error = %v, want %v", err, tools.ErrAlreadyExists)
	}
}

func TestReplace(t *testing.T) {
	reg := tools.NewRegistry()
	tool := testTool("replace_existing")

	if err := reg.Register(tool, echoHandler); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	replaced := func(context.Context, json.RawMessage) (tools.Result, error) {
		return tools.Result{Content: "replaced"}, nil
	}
	if err := reg.Replace(tool, replaced); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}

	res, err := reg.Execute(context.Background(), tool.Name, nil)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if res.Content != "replaced" {
		t.Errorf("Execute() content = %v, want replaced", res.Content)
	}

	if err := reg.Replace(testTool("replace_missing"), echoHandler); !errors.Is(err, tools.ErrNotFound) {
		t.Errorf("Replace() missing error = %v, want %v", err, tools.ErrNotFound)
	}
}

func TestGetAndList(t *testing.T) {
	reg := tools.NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Register(testTool(name), echoHandler); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	if _, ok := reg.Get("alpha"); !ok {
		t.Error("Get(alpha) not found")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("Get(missing) found")
	}

	list := reg.List()
	want := []string{"alpha", "mid", "zeta"}
	if len(list) != len(want) {
		t.Fatalf("List() len = %d, want %d", len(list), len(want))
	}
	for i, tool := range list {
		if tool.Name != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, tool.Name, want[i])
		}
	}
}

func TestExecute(t *testing.T) {
	reg := tools.NewRegistry()
	if err := reg.Register(testTool("echo"), echoHandler); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	failing := func(context.Context, json.RawMessage) (tools.Result, error) {
		return tools.Result{}, errors.New("boom")
	}
	if err := reg.Register(testTool("failing"), failing); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	tests := []struct {
		name    string
		tool    string
		args    json.RawMessage
		want    string
		wantErr bool
		errIs   error
	}{
		{name: "echo", tool: "echo", args: json.RawMessage(`{"input":"x"}`), want: `{"input":"x"}`},
		{name: "missing tool", tool: "missing", wantErr: true, errIs: tools.ErrNotFound},
		{name: "handler error", tool: "failing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := reg.Execute(context.Background(), tt.tool, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Execute() expected error")
				}
				if tt.errIs != nil && !errors.Is(err, tt.errIs) {
					t.Errorf("Execute() error = %v, want %v", err, tt.errIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() unexpected error: %v", err)
			}
			if res.Content != tt.want {
				t.Errorf("Execute() content = %v, want %s", res.Content, tt.want)
			}
		})
	}
}
