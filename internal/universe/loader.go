package universe

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/alphaquant/idx-screener-go/internal/models"
)

// tickerSuffix is appended to bare IDX codes.
const tickerSuffix = ".JK"

// validBoards are the IDX listing boards admitted into the universe.
// Acceleration-board names are excluded on purpose: they are too illiquid
// for the strategy.
var validBoards = map[string]bool{
	"Main":         true,
	"Development":  true,
	"Ekonomi Baru": true,
}

// LoadCSV reads the master stock list. Expected columns: Code, Company Name,
// Listing Board, and optionally Sector; extra columns are ignored, header
// names are matched after trimming. Rows on non-admitted boards are dropped.
func LoadCSV(path string) ([]models.Stock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stock list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read stock list: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("stock list %s has no data rows", path)
	}

	columns := make(map[string]int)
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	codeIdx, ok := columns["Code"]
	if !ok {
		return nil, fmt.Errorf("stock list %s has no Code column", path)
	}
	nameIdx, hasName := columns["Company Name"]
	boardIdx, hasBoard := columns["Listing Board"]
	sectorIdx, hasSector := columns["Sector"]

	var stocks []models.Stock
	for _, record := range records[1:] {
		if codeIdx >= len(record) {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(record[codeIdx]))
		if code == "" {
			continue
		}

		stock := models.Stock{Ticker: normalizeTicker(code)}
		if hasName && nameIdx < len(record) {
			stock.Name = strings.TrimSpace(record[nameIdx])
		}
		if hasBoard && boardIdx < len(record) {
			stock.Board = strings.TrimSpace(record[boardIdx])
			if !validBoards[stock.Board] {
				continue
			}
		}
		if hasSector && sectorIdx < len(record) {
			stock.Sector = strings.TrimSpace(record[sectorIdx])
		}

		stocks = append(stocks, stock)
	}

	return stocks, nil
}

func normalizeTicker(code string) string {
	if strings.HasSuffix(code, tickerSuffix) {
		return code
	}
	return code + tickerSuffix
}
