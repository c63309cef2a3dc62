package doi

import "testing"

func TestFind(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "doi.org URL",
			text: "Available at https://doi.org/10.1038/nature12373 (accessed 2021)",
			want: "10.1038/nature12373",
		},
		{
			name: "dx.doi.org URL",
			text: "See http://dx.doi.org/10.1016/j.cell.2020.01.021.",
			want: "10.1016/j.cell.2020.01.021",
		},
		{
			name: "DOI label uppercase",
			text: "DOI: 10.1371/journal.pone.0123456",
			want: "10.1371/journal.pone.0123456",
		},
		{
			name: "doi label lowercase",
			text: "doi:10.1145/3297280.3297641",
			want: "10.1145/3297280.3297641",
		},
		{
			name: "bare identifier after whitespace",
			text: "reprints and permissions 10.1177/0956797612457784 article info",
			want: "10.1177/0956797612457784",
		},
		{
			name: "trailing period trimmed",
			text: "The data are archived under 10.5061/dryad.8gk52.",
			want: "10.5061/dryad.8gk52",
		},
		{
			name: "trailing close paren trimmed",
			text: "(see 10.1000/xyz123)",
			want: "10.1000/xyz123",
		},
		{
			name: "uppercase suffix normalized",
			text: "https://doi.org/10.1002/(SICI)1097-0258",
			want: "10.1002/(sici)1097-0258",
		},
		{
			name: "identifier at start of text",
			text: "10.1093/bioinformatics/btab100\nAbstract",
			want: "10.1093/bioinformatics/btab100",
		},
		{
			name: "no identifier",
			text: "This document cites no external sources at all.",
			want: "",
		},
		{
			name: "identifier glued to a word is rejected",
			text: "ref10.1234/abc is a section label, not a DOI",
			want: "",
		},
		{
			name: "empty text",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Find(tt.text)
			if got != tt.want {
				t.Errorf("Find() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://doi.org/10.1038/nature12373", "10.1038/nature12373"},
		{"http://doi.org/10.1038/nature12373", "10.1038/nature12373"},
		{"doi.org/10.1038/nature12373", "10.1038/nature12373"},
		{"DOI:10.1038/Nature12373", "10.1038/nature12373"},
		{"doi:10.1038/nature12373", "10.1038/nature12373"},
		{"  10.1038/NATURE12373  ", "10.1038/nature12373"},
	}

	for _, tt := range tests {
		got := Normalize(tt.input)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		doi  string
		want bool
	}{
		{"10.1038/nature12373", true},
		{"10.1000/xyz123", true},
		{"10.1002/(SICI)1097-0258", true},
		{"https://doi.org/10.1038/nature12373", true},
		{"10.12345.67/abc", true},
		{"10.103/short-registrant", false},
		{"11.1038/nature12373", false},
		{"10.1038", false},
		{"10.1038/", false},
		{"", false},
		{"not a doi", false},
	}

	for _, tt := range tests {
		got := Valid(tt.doi)
		if got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.doi, got, tt.want)
		}
	}
}
