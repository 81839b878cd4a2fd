package sheets

import (
	"context"
	"fmt"

	"cacamba_bot/internal/retry"

	"github.com/rs/zerolog/log"
)

// DefaultRange covers Endereço | Bairro | Valor Limpo | Valor Sujo.
const DefaultRange = "Plan1!A:D"

// PriceRow is one neighbourhood row of the price sheet.
type PriceRow struct {
	Address      string
	Neighborhood string
	CleanPrice   string
	DirtyPrice   string
}

// Reader is the part of Client the loader depends on.
type Reader interface {
	ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error)
}

type Loader struct {
	reader        Reader
	spreadsheetID string
	readRange     string
	policy        retry.Config
}

// NewLoader returns a loader over reader. A nil reader is allowed: Load then
// logs that the sheet is unavailable and returns no rows.
func NewLoader(reader Reader, spreadsheetID, readRange string, policy retry.Config) *Loader {
	if readRange == "" {
		readRange = DefaultRange
	}
	return &Loader{
		reader:        reader,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		policy:        policy,
	}
}

// Load fetches the whole sheet and returns its data rows. Failures of any
// kind are logged and reported as an empty result.
func (l *Loader) Load(ctx context.Context) []PriceRow {
	if l.reader == nil {
		log.Error().Msg("Sheets client is not configured; check GOOGLE_CREDENTIALS")
		return []PriceRow{}
	}
	if l.spreadsheetID == "" {
		log.Error().Msg("SPREADSHEET_ID is not set; cannot load price sheet")
		return []PriceRow{}
	}

	log.Debug().
		Str("spreadsheet_id", l.spreadsheetID).
		Str("range", l.readRange).
		Msg("Loading price sheet")

	values, err := retry.WithRetry(ctx, l.policy, func(ctx context.Context) ([][]interface{}, error) {
		return l.reader.ReadSheet(ctx, l.spreadsheetID, l.readRange)
	})
	if err != nil {
		log.Error().Err(err).Str("range", l.readRange).Msg("Failed to load price sheet")
		return []PriceRow{}
	}
	if len(values) == 0 {
		log.Info().Msg("📊 No data found in price sheet")
		return []PriceRow{}
	}

	rows := ParsePriceRows(values)
	log.Info().Int("neighborhoods", len(rows)).Msg("📊 Price sheet loaded")
	return rows
}

// ParsePriceRows drops the header row and maps the remaining rows by
// column position. Missing cells become empty strings.
func ParsePriceRows(values [][]interface{}) []PriceRow {
	rows := []PriceRow{}
	if len(values) <= 1 {
		return rows
	}

	for _, row := range values[1:] {
		rows = append(rows, PriceRow{
			Address:      extractStringField(row, 0),
			Neighborhood: extractStringField(row, 1),
			CleanPrice:   extractStringField(row, 2),
			DirtyPrice:   extractStringField(row, 3),
		})
	}
	return rows
}

// extractStringField safely extracts a string field from a row at the given index
func extractStringField(row []interface{}, index int) string {
	if len(row) > index && row[index] != nil {
		return fmt.Sprintf("%v", row[index])
	}
	return ""
}
