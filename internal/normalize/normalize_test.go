package normalize

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ACME LTDA", "acme"},
		{"Fazenda Santa Fé LTDA", "santa fe"},
		{"J.C. Carvoaria, ME", "jc carvoaria"},
		{"  Mina   do  Ouro ", "ouro"},
		{"São João S.A.", "sao joao"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.input); got != tt.want {
			t.Errorf("Key(%q): expected %q got %q", tt.input, tt.want, got)
		}
	}
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{
		"ACME LTDA",
		"Fazenda Santa Fé LTDA",
		"Carvoaria União & Filhos S/A",
		"l.t.d.a",
		"çãõéê",
		"",
		"   ",
	}
	for _, s := range inputs {
		once := Key(s)
		twice := Key(once)
		if once != twice {
			t.Errorf("Key not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestKeySymmetricVariants(t *testing.T) {
	// Case, accent and punctuation-only variants must collapse to one key
	if Key("Acme Ltda") != Key("ACME LTDA.") {
		t.Errorf("case/punctuation variants produced different keys")
	}
	if Key("São Paulo Carvões") != Key("sao paulo carvoes") {
		t.Errorf("accent variants produced different keys")
	}
}

func TestDisplayUpper(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"João da Silva, Fazenda/Boa Vista", "JOAO DA SILVA FAZENDABOA VISTA"},
		{"acme   ltda", "ACME LTDA"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayUpper(tt.input); got != tt.want {
			t.Errorf("DisplayUpper(%q): expected %q got %q", tt.input, tt.want, got)
		}
	}
}
