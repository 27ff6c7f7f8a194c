package utils

import "testing"

func TestSanitizeString(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  tomate  ", "tomate"},
		{"nota\x00con\x07ruido", "notaconruido"},
		{"línea única", "línea única"},
		{"una\nsola", "unasola"},
	}
	for _, tt := range tests {
		if got := SanitizeString(tt.in); got != tt.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeNote(t *testing.T) {
	if got := SanitizeNote("línea uno\nlínea dos\tfin\x00"); got != "línea uno\nlínea dos\tfin" {
		t.Errorf("SanitizeNote = %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"albaran.jpg", "albaran.jpg"},
		{"  foto 1.png ", "foto 1.png"},
		{"../../etc/passwd", "passwd"},
		{"C:\\fotos\\albaran.pdf", "C:fotosalbaran.pdf"},
		{".", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
