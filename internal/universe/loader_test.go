package universe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStockList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stock_list.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeStockList(t, `Code,Company Name,Listing Board,Sector
BBCA,Bank Central Asia,Main,Financials
GOTO,GoTo Gojek Tokopedia,Ekonomi Baru,Technology
ACES,Ace Hardware Indonesia,Development,Consumer Cyclicals
ZATA,Bersama Zatta Jaya,Acceleration,Consumer Cyclicals
`)

	stocks, err := LoadCSV(path)
	require.NoError(t, err)

	require.Len(t, stocks, 3)
	assert.Equal(t, "BBCA.JK", stocks[0].Ticker)
	assert.Equal(t, "Bank Central Asia", stocks[0].Name)
	assert.Equal(t, "Main", stocks[0].Board)
	assert.Equal(t, "Financials", stocks[0].Sector)
	assert.Equal(t, "GOTO.JK", stocks[1].Ticker)
	assert.Equal(t, "ACES.JK", stocks[2].Ticker)
}

func TestLoadCSV_NormalizesCodes(t *testing.T) {
	path := writeStockList(t, `Code,Company Name,Listing Board
 bbri ,Bank Rakyat Indonesia,Main
TLKM.JK,Telkom Indonesia,Main
,Empty Row,Main
`)

	stocks, err := LoadCSV(path)
	require.NoError(t, err)

	require.Len(t, stocks, 2)
	assert.Equal(t, "BBRI.JK", stocks[0].Ticker)
	assert.Equal(t, "TLKM.JK", stocks[1].Ticker)
}

func TestLoadCSV_MinimalColumns(t *testing.T) {
	// A bare code list with no board column admits everything.
	path := writeStockList(t, "Code\nBBCA\nBMRI\n")

	stocks, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Len(t, stocks, 2)
}

func TestLoadCSV_Errors(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = LoadCSV(writeStockList(t, "Code,Company Name\n"))
	assert.Error(t, err)

	_, err = LoadCSV(writeStockList(t, "Company Name,Listing Board\nFoo,Main\n"))
	assert.Error(t, err)
}
