package record

import "testing"

func TestSufficient(t *testing.T) {
	tests := []struct {
		name string
		rec  *Record
		want bool
	}{
		{
			name: "complete record",
			rec:  &Record{Title: "Example Study", Authors: []string{"Smith"}, Year: "2021"},
			want: true,
		},
		{
			name: "nil record",
			rec:  nil,
			want: false,
		},
		{
			name: "empty title",
			rec:  &Record{Title: "  ", Authors: []string{"Smith"}, Year: "2021"},
			want: false,
		},
		{
			name: "no authors",
			rec:  &Record{Title: "Example Study", Year: "2021"},
			want: false,
		},
		{
			name: "missing year",
			rec:  &Record{Title: "Example Study", Authors: []string{"Smith"}},
			want: false,
		},
		{
			name: "three digit year",
			rec:  &Record{Title: "Example Study", Authors: []string{"Smith"}, Year: "903"},
			want: false,
		},
		{
			name: "five digit year",
			rec:  &Record{Title: "Example Study", Authors: []string{"Smith"}, Year: "20211"},
			want: false,
		},
		{
			name: "non numeric year",
			rec:  &Record{Title: "Example Study", Authors: []string{"Smith"}, Year: "n.d."},
			want: false,
		},
		{
			name: "year with surrounding space",
			rec:  &Record{Title: "Example Study", Authors: []string{"Smith"}, Year: " 2021 "},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Sufficient(); got != tt.want {
				t.Errorf("Sufficient() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSurname(t *testing.T) {
	tests := []struct {
		author string
		want   string
	}{
		{"Smith, J.", "Smith"},
		{"van der Berg, A.", "van der Berg"},
		{"Smith", "Smith"},
		{"John Smith", "John Smith"},
		{"  Doe , X.", "Doe"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Surname(tt.author); got != tt.want {
			t.Errorf("Surname(%q) = %q, want %q", tt.author, got, tt.want)
		}
	}
}
