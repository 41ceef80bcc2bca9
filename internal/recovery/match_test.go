package recovery

import (
	"encoding/json"
	"testing"
)

func rec(id string, fields map[string]any) Record {
	return Record{ID: id, Fields: fields}
}

func TestMatchDirectory(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		dir       Directory
		wantID    string
		wantCands []string
	}{
		{
			name:   "leading zero equals leading 62",
			query:  "6281234567890",
			dir:    Directory{rec("u1", map[string]any{"nomor": "081234567890"})},
			wantID: "u1",
		},
		{
			name:  "query without country code matches by suffix",
			query: "81234567890",
			dir: Directory{
				rec("u1", map[string]any{"nomor": "021111"}),
				rec("u2", map[string]any{"nomor": "6281234567890"}),
			},
			wantID: "u2",
		},
		{
			name:   "alternate phone field",
			query:  "6281234567890",
			dir:    Directory{rec("u1", map[string]any{"phone": "+62 812-3456-7890"})},
			wantID: "u1",
		},
		{
			name:   "nomor preferred over phone",
			query:  "6289999999999",
			dir:    Directory{rec("u1", map[string]any{"nomor": "081234567890", "phone": "089999999999"})},
			wantID: "",
		},
		{
			name:   "blank nomor falls back to phone",
			query:  "6289999999999",
			dir:    Directory{rec("u1", map[string]any{"nomor": "  ", "phone": "089999999999"})},
			wantID: "u1",
		},
		{
			name:   "stored number shorter than query suffix",
			query:  "6281234567890",
			dir:    Directory{rec("u1", map[string]any{"nomor": "34567890"})},
			wantID: "u1",
		},
		{
			name: "empty stored phone never matches",
			query: "6281234567890",
			dir: Directory{
				rec("u1", map[string]any{"nomor": ""}),
				rec("u2", map[string]any{"nama": "No phone"}),
				rec("u3", map[string]any{"nomor": true}),
			},
			wantID: "",
		},
		{
			name:  "numeric stored phone matches",
			query: "6281234567890",
			dir: Directory{
				rec("u1", map[string]any{"nomor": ""}),
				rec("u2", map[string]any{"nama": "No phone"}),
				rec("u3", map[string]any{"nomor": 81234567890}),
			},
			wantID: "u3",
		},
		{
			name:   "stored phone decoded as json.Number",
			query:  "6281234567890",
			dir:    Directory{rec("u1", map[string]any{"nomor": json.Number("6281234567890")})},
			wantID: "u1",
		},
		{
			name:   "stored phone decoded as float64",
			query:  "6281234567890",
			dir:    Directory{rec("u1", map[string]any{"phone": float64(6281234567890)})},
			wantID: "u1",
		},
		{
			name:   "fractional number is not a phone",
			query:  "6281234567890",
			dir:    Directory{rec("u1", map[string]any{"nomor": 6281234567890.5})},
			wantID: "",
		},
		{
			name:   "empty directory",
			query:  "6281234567890",
			dir:    Directory{},
			wantID: "",
		},
		{
			name:   "unrelated number",
			query:  "6281234567890",
			dir:    Directory{rec("u1", map[string]any{"nomor": "085700001111"})},
			wantID: "",
		},
		{
			name:   "short query does not panic",
			query:  "62812",
			dir:    Directory{rec("u1", map[string]any{"nomor": "0812"})},
			wantID: "u1",
		},
		{
			name:   "empty query matches nothing",
			query:  "",
			dir:    Directory{rec("u1", map[string]any{"nomor": "0812"})},
			wantID: "",
		},
		{
			name:  "first match wins and all candidates are reported",
			query: "6281234567890",
			dir: Directory{
				rec("z", map[string]any{"nomor": "085700001111"}),
				rec("b", map[string]any{"nomor": "6281234567890"}),
				rec("a", map[string]any{"nomor": "081234567890"}),
			},
			wantID:    "b",
			wantCands: []string{"b", "a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MatchDirectory(tt.query, tt.dir)
			if tt.wantID == "" {
				if m.Found() {
					t.Fatalf("matched %q, want no match", m.Record.ID)
				}
				return
			}
			if !m.Found() {
				t.Fatalf("no match, want %q", tt.wantID)
			}
			if m.Record.ID != tt.wantID {
				t.Errorf("matched %q, want %q", m.Record.ID, tt.wantID)
			}
			if tt.wantCands != nil {
				if len(m.Candidates) != len(tt.wantCands) {
					t.Fatalf("candidates = %v, want %v", m.Candidates, tt.wantCands)
				}
				for i := range tt.wantCands {
					if m.Candidates[i] != tt.wantCands[i] {
						t.Errorf("candidates = %v, want %v", m.Candidates, tt.wantCands)
					}
				}
				if !m.Ambiguous() {
					t.Error("Ambiguous() = false, want true")
				}
			}
		})
	}
}

func TestMatchDirectory_DuplicateNumbersDeterministic(t *testing.T) {
	dir := Directory{
		rec("second-in-sort-order", map[string]any{"nomor": "081234567890"}),
		rec("a-first-in-sort-order", map[string]any{"nomor": "081234567890"}),
	}
	for i := 0; i < 50; i++ {
		m := MatchDirectory("6281234567890", dir)
		if !m.Found() || m.Record.ID != "second-in-sort-order" {
			t.Fatalf("run %d: got %+v, want the first record in iteration order", i, m.Record)
		}
	}
}

func TestRecord_DisplayName(t *testing.T) {
	tests := []struct {
		fields map[string]any
		want   string
	}{
		{map[string]any{"nama": "Sari", "name": "Other"}, "Sari"},
		{map[string]any{"name": "Budi"}, "Budi"},
		{map[string]any{"nama": 12}, "12"},
		{map[string]any{"nama": false, "name": " "}, "id-1"},
		{nil, "id-1"},
	}
	for _, tt := range tests {
		if got := rec("id-1", tt.fields).DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%v) = %q, want %q", tt.fields, got, tt.want)
		}
	}
}
