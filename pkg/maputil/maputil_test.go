package maputil

import (
	"reflect"
	"strings"
	"testing"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]string
		size    int
		want    []map[string]string
		wantErr bool
	}{
		{
			name:  "five entries size two",
			input: map[string]string{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5"},
			size:  2,
			want: []map[string]string{
				{"a": "1", "b": "2"},
				{"c": "3", "d": "4"},
				{"e": "5"},
			},
			wantErr: false,
		},
		{
			name:  "size larger than map",
			input: map[string]string{"a": "1", "b": "2"},
			size:  10,
			want: []map[string]string{
				{"a": "1", "b": "2"},
			},
			wantErr: false,
		},
		{
			name:  "size one",
			input: map[string]string{"x": "1", "y": "2"},
			size:  1,
			want: []map[string]string{
				{"x": "1"},
				{"y": "2"},
			},
			wantErr: false,
		},
		{
			name:    "empty map",
			input:   map[string]string{},
			size:    3,
			want:    []map[string]string{},
			wantErr: false,
		},
		{
			name:    "zero size",
			input:   map[string]string{"a": "1"},
			size:    0,
			wantErr: true,
		},
		{
			name:    "negative size",
			input:   map[string]string{"a": "1"},
			size:    -1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Chunk(tt.input, tt.size)

			if (err != nil) != tt.wantErr {
				t.Errorf("Chunk() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				var valueErr *errors.ValueError
				if !errors.As(err, &valueErr) {
					t.Errorf("Chunk() error type = %T, want *errors.ValueError", err)
				}
				return
			}

			if len(got) != len(tt.want) {
				t.Fatalf("Chunk() returned %d chunks, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if !reflect.DeepEqual(got[i], tt.want[i]) {
					t.Errorf("Chunk()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkDeterministic(t *testing.T) {
	input := map[string]string{"z": "26", "a": "1", "m": "13", "b": "2", "q": "17"}

	first, err := Chunk(input, 2)
	if err != nil {
		t.Fatalf("Chunk() unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Chunk(input, 2)
		if err != nil {
			t.Fatalf("Chunk() unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Chunk() not deterministic: %v vs %v", first, again)
		}
	}

	// Sorted order puts "a","b" first and "z" alone in the last chunk.
	if _, ok := first[0]["a"]; !ok {
		t.Errorf("first chunk should contain key 'a', got %v", first[0])
	}
	if _, ok := first[2]["z"]; !ok {
		t.Errorf("last chunk should contain key 'z', got %v", first[2])
	}
}

// captureWarnings redirects the package warning handler for the duration of a test.
func captureWarnings(t *testing.T) *[]string {
	t.Helper()
	var captured []string
	errors.SetWarningHandler(func(w error) {
		captured = append(captured, w.Error())
	})
	t.Cleanup(func() {
		errors.SetWarningHandler(func(w error) {})
	})
	return &captured
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name         string
		input        map[string]string
		maxKeyLen    int
		maxValLen    int
		want         map[string]string
		wantWarnings int
		wantErr      bool
	}{
		{
			name:         "no truncation needed",
			input:        map[string]string{"lr": "0.1"},
			maxKeyLen:    10,
			maxValLen:    10,
			want:         map[string]string{"lr": "0.1"},
			wantWarnings: 0,
			wantErr:      false,
		},
		{
			name:         "key truncated to limit",
			input:        map[string]string{"learning_rate_schedule": "constant"},
			maxKeyLen:    10,
			maxValLen:    20,
			want:         map[string]string{"learning_r": "constant"},
			wantWarnings: 1,
			wantErr:      false,
		},
		{
			name:         "value truncated to limit",
			input:        map[string]string{"solver": "stochastic gradient descent"},
			maxKeyLen:    10,
			maxValLen:    10,
			want:         map[string]string{"solver": "stochastic"},
			wantWarnings: 1,
			wantErr:      false,
		},
		{
			name:         "key and value both truncated",
			input:        map[string]string{"regularization_strength": "very long description"},
			maxKeyLen:    8,
			maxValLen:    9,
			want:         map[string]string{"regulari": "very long"},
			wantWarnings: 2,
			wantErr:      false,
		},
		{
			name:         "key limit disabled",
			input:        map[string]string{"extremely_long_parameter_name": "ok"},
			maxKeyLen:    0,
			maxValLen:    10,
			want:         map[string]string{"extremely_long_parameter_name": "ok"},
			wantWarnings: 0,
			wantErr:      false,
		},
		{
			name:      "both limits zero",
			input:     map[string]string{"a": "b"},
			maxKeyLen: 0,
			maxValLen: 0,
			wantErr:   true,
		},
		{
			name:      "negative limit",
			input:     map[string]string{"a": "b"},
			maxKeyLen: -1,
			maxValLen: 10,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := captureWarnings(t)

			got, err := Truncate(tt.input, tt.maxKeyLen, tt.maxValLen)

			if (err != nil) != tt.wantErr {
				t.Errorf("Truncate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				var valueErr *errors.ValueError
				if !errors.As(err, &valueErr) {
					t.Errorf("Truncate() error type = %T, want *errors.ValueError", err)
				}
				return
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Truncate() = %v, want %v", got, tt.want)
			}
			if len(*warnings) != tt.wantWarnings {
				t.Errorf("Truncate() emitted %d warnings, want %d: %v", len(*warnings), tt.wantWarnings, *warnings)
			}
		})
	}
}

func TestTruncateWarningMessages(t *testing.T) {
	warnings := captureWarnings(t)

	input := map[string]string{"very_long_key_name": "quite a long value indeed"}
	got, err := Truncate(input, 10, 12)
	if err != nil {
		t.Fatalf("Truncate() unexpected error: %v", err)
	}

	if got["very_long_"] != "quite a long" {
		t.Fatalf("Truncate() = %v, want %q -> %q", got, "very_long_", "quite a long")
	}

	if len(*warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(*warnings), *warnings)
	}

	// Both warnings cite the original key, not the truncated one.
	if !strings.Contains((*warnings)[0], "Truncated the key `very_long_key_name`") {
		t.Errorf("key warning = %q", (*warnings)[0])
	}
	if !strings.Contains((*warnings)[1], "Truncated the value `quite a long value indeed` (in the key `very_long_key_name`)") {
		t.Errorf("value warning = %q", (*warnings)[1])
	}
}

func TestTruncateDoesNotMutateInput(t *testing.T) {
	errors.SetWarningHandler(func(w error) {})
	t.Cleanup(func() { errors.SetWarningHandler(func(w error) {}) })

	input := map[string]string{"very_long_key_name": "value"}
	if _, err := Truncate(input, 10, 0); err != nil {
		t.Fatalf("Truncate() unexpected error: %v", err)
	}
	if _, ok := input["very_long_key_name"]; !ok {
		t.Error("Truncate() mutated its input map")
	}
	if len(input) != 1 {
		t.Errorf("input map length changed: %d", len(input))
	}
}

func TestTruncateExactLimitKept(t *testing.T) {
	warnings := captureWarnings(t)

	input := map[string]string{"12345678": "abcdefgh"}
	got, err := Truncate(input, 8, 8)
	if err != nil {
		t.Fatalf("Truncate() unexpected error: %v", err)
	}
	if got["12345678"] != "abcdefgh" {
		t.Errorf("entries at exactly the limit must pass through, got %v", got)
	}
	if len(*warnings) != 0 {
		t.Errorf("no warnings expected for exact-limit entries, got %v", *warnings)
	}
}

func BenchmarkChunk(b *testing.B) {
	m := make(map[string]string, 1000)
	for i := 0; i < 1000; i++ {
		m[strings.Repeat("k", i%20+1)+string(rune('a'+i%26))] = "value"
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Chunk(m, 100)
	}
}
