package llm

import "testing"

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON unchanged",
			input: `{"hook":"test"}`,
			want:  `{"hook":"test"}`,
		},
		{
			name:  "strips json fenced block",
			input: "```json\n{\"hook\":\"test\"}\n```",
			want:  `{"hook":"test"}`,
		},
		{
			name:  "strips plain fenced block",
			input: "```\n{\"hook\":\"test\"}\n```",
			want:  `{"hook":"test"}`,
		},
		{
			name:  "extracts object from surrounding prose",
			input: "Here is the summary:\n{\"hook\":\"test\"}\nHope that helps!",
			want:  `{"hook":"test"}`,
		},
		{
			name:  "trims surrounding whitespace",
			input: "  {\"hook\":\"test\"}  ",
			want:  `{"hook":"test"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanJSONResponse(tt.input)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
