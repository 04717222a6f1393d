package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaseHampton/graver/internal/memorial"
)

var memorials = []memorial.Memorial{
	{
		MemorialID:    1784,
		FindagraveURL: "https://www.findagrave.com/memorial/1784/george-washington",
		Name:          "George Washington",
		Famous:        true,
		MemorialType:  "Burial",
		BurialPlace:   "Mount Vernon Estate, Mount Vernon, Fairfax County, Virginia, USA",
		CemeteryID:    1234,
	},
	{
		MemorialID:   98765,
		Name:         "Dolores Higginbotham",
		MaidenName:   "Smith",
		MemorialType: "Cenotaph",
		BurialPlace:  "Lost at sea",
	},
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, memorials))

	var got []memorial.Memorial
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, memorials, got)
	assert.Contains(t, buf.String(), "\n  {")
}

func TestWriteJSONKeepsNonASCII(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, memorial.Memorial{Name: "José Martí", Nickname: "Pepe & co"}))
	assert.Contains(t, buf.String(), "José Martí")
	assert.Contains(t, buf.String(), "Pepe & co")
}

func TestWriteMemorialsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMemorialsCSV(&buf, memorials))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, memorialHeader, rows[0])
	assert.Equal(t, "1784", rows[1][0])
	assert.Equal(t, "true", rows[1][8])
	assert.Equal(t, "Mount Vernon Estate, Mount Vernon, Fairfax County, Virginia, USA", rows[1][15])
	assert.Equal(t, "1234", rows[1][16])
	assert.Equal(t, "", rows[2][16])
	assert.Equal(t, "Smith", rows[2][6])
}
