package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MÉLENCHON", "melenchon"},
		{"François", "francois"},
		{"Ça", "ca"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jean-Luc", "jean luc"},
		{"d'Ornano", "d ornano"},
		{"  de   la  Tour ", "de la tour"},
		{"O’Connor", "o connor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Name(tt.in), "Name(%q)", tt.in)
	}
}

func TestPerson(t *testing.T) {
	assert.Equal(t, "jean-luc-melenchon", Person("Jean-Luc", "MÉLENCHON"))
	assert.Equal(t, "anne-hidalgo", Person("Anne", "Hidalgo"))
	assert.Equal(t, "hidalgo", Person("", "Hidalgo"))
	// Same person, different source casing/accents, same slug.
	assert.Equal(t, Person("Valérie", "Pécresse"), Person("VALERIE", "PECRESSE"))
}
