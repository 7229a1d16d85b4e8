package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront-checkout/internal/domain"
)

type SettingsWriter interface {
	Save(ctx context.Context, s domain.Settings) error
}

// CSVImporter reads merchant payment settings exported as CSV and stores them
// on top of a base snapshot. Columns: section,key,enabled,value,displayName,iconRef,priority.
type CSVImporter struct {
	reader *csv.Reader
	writer SettingsWriter
	base   domain.Settings
}

func NewCSVImporter(r io.Reader, writer SettingsWriter, base domain.Settings) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.Comment = '#'
	return &CSVImporter{
		reader: csvr,
		writer: writer,
		base:   base.Clone(),
	}
}

type csvRow struct {
	Section     string
	Key         string
	Enabled     bool
	Value       string
	DisplayName string
	IconRef     string
	Priority    *int
}

// Run applies every row and saves the result once. It returns the number of rows applied.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["section"]; !ok {
		return 0, errors.New("missing section column")
	}

	settings := i.base.Clone()
	applied := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return applied, fmt.Errorf("read row: %w", err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return applied, fmt.Errorf("line %d: %w", line, err)
		}
		if row == nil {
			continue
		}
		if err := apply(&settings, row); err != nil {
			return applied, fmt.Errorf("line %d: %w", line, err)
		}
		applied++
	}

	if err := i.writer.Save(ctx, settings); err != nil {
		return applied, fmt.Errorf("save settings: %w", err)
	}
	return applied, nil
}

func apply(s *domain.Settings, row *csvRow) error {
	switch row.Section {
	case "provider":
		return applyProvider(s, row)
	case "bank":
		field := domain.ToggleField{Enabled: row.Enabled, Value: row.Value}
		switch row.Key {
		case "accountName":
			s.BankTransfer.AccountName = field
		case "accountNumber":
			s.BankTransfer.AccountNumber = field
		case "bankName":
			s.BankTransfer.BankName = field
		case "contact":
			s.BankTransfer.Contact = field
		default:
			return fmt.Errorf("unknown bank field %q", row.Key)
		}
	case "general":
		switch row.Key {
		case "currency":
			s.Currency = strings.ToUpper(row.Value)
		case "locale":
			s.Locale = row.Value
		case "marketplaceRequestNote":
			s.MarketplaceRequestNote = row.Value
		case "redirectDelayMs":
			ms, err := strconv.ParseInt(row.Value, 10, 64)
			if err != nil || ms < 0 {
				return fmt.Errorf("invalid redirectDelayMs %q", row.Value)
			}
			s.RedirectDelayMS = ms
		default:
			return fmt.Errorf("unknown general setting %q", row.Key)
		}
	default:
		return fmt.Errorf("unknown section %q", row.Section)
	}
	return nil
}

func applyProvider(s *domain.Settings, row *csvRow) error {
	id := domain.PaymentMethodID(row.Key)
	known := false
	for _, c := range domain.CanonicalPaymentMethods {
		if c == id {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown payment provider %q", row.Key)
	}

	pos := -1
	for idx, p := range s.Providers {
		if p.ID == id {
			pos = idx
			break
		}
	}
	if pos < 0 {
		s.Providers = append(s.Providers, domain.ProviderSetting{ID: id, Priority: len(s.Providers)})
		pos = len(s.Providers) - 1
	}
	p := &s.Providers[pos]
	p.Enabled = row.Enabled
	p.DisplayName = row.DisplayName
	p.IconRef = row.IconRef
	if row.Priority != nil {
		p.Priority = *row.Priority
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	section := strings.ToLower(pick(record, index, "section"))
	key := pick(record, index, "key")
	if section == "" && key == "" {
		return nil, nil
	}
	if key == "" {
		return nil, fmt.Errorf("%s row without key", section)
	}

	row := &csvRow{
		Section:     section,
		Key:         key,
		Value:       pick(record, index, "value"),
		DisplayName: pick(record, index, "displayName"),
		IconRef:     pick(record, index, "iconRef"),
	}
	if enabled := pick(record, index, "enabled"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return nil, fmt.Errorf("invalid enabled value %q", enabled)
		}
		row.Enabled = v
	}
	if priority := pick(record, index, "priority"); priority != "" {
		v, err := strconv.Atoi(priority)
		if err != nil {
			return nil, fmt.Errorf("invalid priority %q", priority)
		}
		row.Priority = &v
	}
	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
