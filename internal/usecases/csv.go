package usecases

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/mail"
	"sort"
	"strings"

	"payroll-chain.backend/internal/domain/entities"
	domainerrors "payroll-chain.backend/internal/domain/errors"
)

var csvHeader = []string{"name", "email", "amount", "chain"}

// ParsePayrollCSV reads an uploaded payroll batch. The file must carry the
// exact header name,email,amount,chain; every row is validated and the whole
// batch is rejected on the first bad row so a partial upload never reaches
// a run.
func ParsePayrollCSV(r io.Reader, supportedChains []string) ([]entities.WorkerRow, *entities.BatchSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: empty file", domainerrors.ErrInvalidInput)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidInput, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, nil, err
	}

	chains := make(map[string]bool, len(supportedChains))
	for _, c := range supportedChains {
		chains[c] = true
	}

	var rows []entities.WorkerRow
	seen := make(map[string]bool)
	chainSet := make(map[string]bool)
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", domainerrors.ErrInvalidInput, line, err)
		}

		row, err := parseRow(record, chains)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", domainerrors.ErrInvalidInput, line, err)
		}
		if seen[row.Email] {
			return nil, nil, fmt.Errorf("%w: line %d: duplicate email %s", domainerrors.ErrInvalidInput, line, row.Email)
		}
		seen[row.Email] = true
		chainSet[row.Chain] = true
		rows = append(rows, *row)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: no data rows", domainerrors.ErrInvalidInput)
	}

	total, err := SumAmounts(amountsOf(rows))
	if err != nil {
		return nil, nil, err
	}

	summary := &entities.BatchSummary{
		WorkerCount: len(rows),
		TotalAmount: FormatAmount(total),
		Chains:      sortedKeys(chainSet),
	}
	return rows, summary, nil
}

func checkHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return fmt.Errorf("%w: header must be %s", domainerrors.ErrInvalidInput, strings.Join(csvHeader, ","))
	}
	for i, want := range csvHeader {
		if strings.ToLower(strings.TrimSpace(header[i])) != want {
			return fmt.Errorf("%w: header must be %s", domainerrors.ErrInvalidInput, strings.Join(csvHeader, ","))
		}
	}
	return nil
}

func parseRow(record []string, chains map[string]bool) (*entities.WorkerRow, error) {
	if len(record) != len(csvHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(record))
	}

	name := strings.TrimSpace(record[0])
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	email := strings.ToLower(strings.TrimSpace(record[1]))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email %q", record[1])
	}

	amount := strings.TrimSpace(record[2])
	if _, err := ParseAmount(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q", record[2])
	}

	chain := strings.ToLower(strings.TrimSpace(record[3]))
	if !chains[chain] {
		return nil, fmt.Errorf("unsupported chain %q", record[3])
	}

	return &entities.WorkerRow{
		Name:   name,
		Email:  email,
		Amount: amount,
		Chain:  chain,
	}, nil
}

func amountsOf(rows []entities.WorkerRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Amount
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
