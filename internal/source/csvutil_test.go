package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVHeaderAccess(t *testing.T) {
	table, err := ParseCSV([]byte("Nom;Prénom\nDupont;Jean\nMartin;Claire;extra\nLeroy\n"), ';')
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	assert.True(t, table.HasColumn("nom"))
	assert.True(t, table.HasColumn("PRÉNOM"))
	assert.False(t, table.HasColumn("email"))

	assert.Equal(t, "Jean", table.Row(0).Get("Prénom"))
	// Ragged rows: extra fields are ignored, short rows read as empty.
	assert.Equal(t, "Claire", table.Row(1).Get("prénom"))
	assert.Equal(t, "", table.Row(2).Get("prénom"))
	assert.Equal(t, "Leroy", table.Row(2).Get("Nom"))
}

func TestParseCSVStripsByteOrderMark(t *testing.T) {
	// Excel exports prefix the first header cell with a BOM.
	data := append([]byte("\xEF\xBB\xBF"), []byte("Matricule,Nom\nS001,Dupont\n")...)
	table, err := ParseCSV(data, ',')
	require.NoError(t, err)

	assert.True(t, table.HasColumn("Matricule"))
	assert.Equal(t, "S001", table.Row(0).Get("matricule"))
}

func TestParseCSVRejectsEmptyFeed(t *testing.T) {
	_, err := ParseCSV(nil, ';')
	require.Error(t, err)
}
