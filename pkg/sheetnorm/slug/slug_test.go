package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"siniestros_total", "siniestros_total"},
		{"Tipo A", "tipo_a"},
		{"tipo a", "tipo_a"},
		{"  SINIESTROS AÑO REGIÓN ", "siniestros_ano_region"},
		{"Choque / Colisión", "choque_colision"},
		{"Día", "dia"},
		{"06:00 - 11:59", "06_00_11_59"},
		{"a€b", "ab"},
		{"", Total},
		{"¿?", Total},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Make(tt.input), "Make(%q)", tt.input)
	}
}

func TestMake_Idempotent(t *testing.T) {
	for _, s := range []string{"Tipo A", "FRANJA HORARIA", "Peatón atropellado"} {
		once := Make(s)
		assert.Equal(t, once, Make(once))
	}
}

func TestMakePtr(t *testing.T) {
	assert.Equal(t, Total, MakePtr(nil))
	v := "Tipo A"
	assert.Equal(t, "tipo_a", MakePtr(&v))
}
