package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"cacamba_bot/internal/retry"

	"github.com/google/go-cmp/cmp"
)

type fakeReader struct {
	values [][]interface{}
	errs   []error
	calls  int
	gotID  string
	gotRng string
}

func (f *fakeReader) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	f.gotID, f.gotRng = spreadsheetID, range_
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.values, nil
}

var header = []interface{}{"Endereço", "Bairro", "Valor Limpo", "Valor Sujo"}

func TestParsePriceRowsPositional(t *testing.T) {
	values := [][]interface{}{
		header,
		{"Rua A, 10", "Centro", "R$ 350", "R$ 450"},
		{"Av. B", "Jardim", 300, 400.5},
	}

	got := ParsePriceRows(values)
	want := []PriceRow{
		{Address: "Rua A, 10", Neighborhood: "Centro", CleanPrice: "R$ 350", DirtyPrice: "R$ 450"},
		{Address: "Av. B", Neighborhood: "Jardim", CleanPrice: "300", DirtyPrice: "400.5"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParsePriceRows mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePriceRowsMissingColumnsDefaultEmpty(t *testing.T) {
	values := [][]interface{}{
		header,
		{"Rua C"},
		{"Rua D", "Vila", nil},
		{},
	}

	got := ParsePriceRows(values)
	want := []PriceRow{
		{Address: "Rua C"},
		{Address: "Rua D", Neighborhood: "Vila"},
		{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParsePriceRows mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePriceRowsHeaderOnlyOrEmpty(t *testing.T) {
	if got := ParsePriceRows(nil); len(got) != 0 {
		t.Errorf("Expected no rows for nil input, got %d", len(got))
	}
	if got := ParsePriceRows([][]interface{}{header}); len(got) != 0 {
		t.Errorf("Expected no rows for header-only sheet, got %d", len(got))
	}
}

func TestLoaderLoad(t *testing.T) {
	reader := &fakeReader{values: [][]interface{}{header, {"Rua A", "Centro", "1", "2"}}}
	loader := NewLoader(reader, "sheet-id", "", retry.Config{})

	rows := loader.Load(context.Background())

	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if reader.gotID != "sheet-id" {
		t.Errorf("Expected spreadsheet id 'sheet-id', got %q", reader.gotID)
	}
	if reader.gotRng != DefaultRange {
		t.Errorf("Expected default range %q, got %q", DefaultRange, reader.gotRng)
	}
}

func TestLoaderRefetchesEveryCall(t *testing.T) {
	reader := &fakeReader{values: [][]interface{}{header}}
	loader := NewLoader(reader, "sheet-id", "Outra!A:D", retry.Config{})

	loader.Load(context.Background())
	loader.Load(context.Background())

	if reader.calls != 2 {
		t.Errorf("Expected 2 reads, got %d", reader.calls)
	}
	if reader.gotRng != "Outra!A:D" {
		t.Errorf("Expected custom range, got %q", reader.gotRng)
	}
}

func TestLoaderSwallowsFailures(t *testing.T) {
	tests := []struct {
		name   string
		loader *Loader
	}{
		{"read error", NewLoader(&fakeReader{errs: []error{errors.New("403 forbidden")}}, "sheet-id", "", retry.Config{})},
		{"empty sheet", NewLoader(&fakeReader{}, "sheet-id", "", retry.Config{})},
		{"no client", NewLoader(nil, "sheet-id", "", retry.Config{})},
		{"no spreadsheet id", NewLoader(&fakeReader{values: [][]interface{}{header, {"x"}}}, "", "", retry.Config{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := tt.loader.Load(context.Background())
			if rows == nil {
				t.Fatal("Expected an empty slice, got nil")
			}
			if len(rows) != 0 {
				t.Errorf("Expected no rows, got %d", len(rows))
			}
		})
	}
}

func TestLoaderRetriesWhenConfigured(t *testing.T) {
	reader := &fakeReader{
		values: [][]interface{}{header, {"Rua A"}},
		errs:   []error{errors.New("temporary"), nil},
	}
	policy := retry.Config{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	loader := NewLoader(reader, "sheet-id", "", policy)

	rows := loader.Load(context.Background())

	if len(rows) != 1 {
		t.Errorf("Expected 1 row after retry, got %d", len(rows))
	}
	if reader.calls != 2 {
		t.Errorf("Expected 2 reads, got %d", reader.calls)
	}
}
