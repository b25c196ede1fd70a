package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"steward"},
			want: []string{"steward"},
		},
		{
			name: "task id first token",
			in:   []string{"steward", "TASK-1A2B3C4D"},
			want: []string{"steward", "tasks", "get", "TASK-1A2B3C4D"},
		},
		{
			name: "lowercase task id",
			in:   []string{"steward", "task-1a2b3c4d"},
			want: []string{"steward", "tasks", "get", "task-1a2b3c4d"},
		},
		{
			name: "user uuid routes to users get",
			in:   []string{"steward", "0d9adcf1-68e0-4f2d-97a5-2d6c0d0f3b1e"},
			want: []string{"steward", "users", "get", "0d9adcf1-68e0-4f2d-97a5-2d6c0d0f3b1e"},
		},
		{
			name: "id after value flag",
			in:   []string{"steward", "--server", "http://127.0.0.1:9000", "TASK-1A2B3C4D"},
			want: []string{"steward", "--server", "http://127.0.0.1:9000", "tasks", "get", "TASK-1A2B3C4D"},
		},
		{
			name: "id after equals flag",
			in:   []string{"steward", "--format=json", "TASK-1A2B3C4D"},
			want: []string{"steward", "--format=json", "tasks", "get", "TASK-1A2B3C4D"},
		},
		{
			name: "id after bool flag",
			in:   []string{"steward", "--pretty", "TASK-1A2B3C4D"},
			want: []string{"steward", "--pretty", "tasks", "get", "TASK-1A2B3C4D"},
		},
		{
			name: "id after double dash",
			in:   []string{"steward", "--format", "json", "--", "TASK-1A2B3C4D"},
			want: []string{"steward", "--format", "json", "--", "tasks", "get", "TASK-1A2B3C4D"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"steward", "tasks", "get", "TASK-1A2B3C4D"},
			want: []string{"steward", "tasks", "get", "TASK-1A2B3C4D"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"steward", "wat"},
			want: []string{"steward", "wat"},
		},
		{
			name: "bare prefix not rewritten",
			in:   []string{"steward", "TASK-"},
			want: []string{"steward", "TASK-"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
