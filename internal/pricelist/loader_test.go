package pricelist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestCSVLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	content := "Item Description,Size,Unit Price,Unit Manhour\n" +
		"Ball valve flanged,80mm,45.00,0.5\n" +
		"Ball valve threaded,80mm,32.50,0.4\n" +
		",,,\n" +
		"Gate valve,50mm,28.00,0.4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := &CSVLoader{Path: path}
	rows, err := loader.Load(context.Background())
	require.NoError(t, err)

	// The all-empty row contributes nothing; order follows the file.
	require.Len(t, rows, 3)
	assert.Equal(t, "Ball valve flanged", rows[0]["Item Description"])
	assert.Equal(t, "45.00", rows[0]["Unit Price"])
	assert.Equal(t, "Gate valve", rows[2]["Item Description"])
}

func TestCSVLoaderRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	content := "Description,Price\nShort row\nLong row,10,extra cell\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := (&CSVLoader{Path: path}).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	_, hasPrice := rows[0]["Price"]
	assert.False(t, hasPrice)
	assert.Equal(t, "10", rows[1]["Price"])
}

func TestCSVLoaderMissingFile(t *testing.T) {
	_, err := (&CSVLoader{Path: filepath.Join(t.TempDir(), "nope.csv")}).Load(context.Background())
	assert.Error(t, err)
}

func TestCSVLoaderEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := (&CSVLoader{Path: path}).Load(context.Background())
	assert.Error(t, err)
}

func TestXLSXLoaderSheetSelection(t *testing.T) {
	f := xlsx.NewFile()
	_, err := f.AddSheet("Prices")
	require.NoError(t, err)

	sheet, err := (&XLSXLoader{SheetIndex: 0}).sheet(f)
	require.NoError(t, err)
	assert.Equal(t, "Prices", sheet.Name)

	sheet, err = (&XLSXLoader{SheetName: "Prices"}).sheet(f)
	require.NoError(t, err)
	assert.Equal(t, "Prices", sheet.Name)

	_, err = (&XLSXLoader{SheetIndex: 3}).sheet(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, err = (&XLSXLoader{SheetIndex: -1}).sheet(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestRowsFromTableSkipsBlankHeaders(t *testing.T) {
	rows := rowsFromTable(
		[]string{"Description", "", "Price"},
		[][]string{{"Valve", "ignored", "12"}},
	)
	require.Len(t, rows, 1)
	assert.Equal(t, "Valve", rows[0]["Description"])
	assert.Equal(t, "12", rows[0]["Price"])
	assert.Len(t, rows[0], 2)
}
