// Package reader provides item readers for the import jobs.
package reader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ripline/ripline/internal/entity"
	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/core/port"
	"github.com/ripline/ripline/pkg/batch/support/exception"
	"github.com/ripline/ripline/pkg/batch/support/logger"
)

// checkpointKeyLine stores the number of data lines already consumed.
const checkpointKeyLine = "csv.reader.line"

// CustomerCSVReader reads customers from a CSV file with a header row.
// The checkpoint records how many data lines were consumed so a restart
// resumes after the last committed line.
type CustomerCSVReader struct {
	path        string
	file        *os.File
	csv         *csv.Reader
	currentLine int
}

// NewCustomerCSVReader reads the file at path.
func NewCustomerCSVReader(path string) *CustomerCSVReader {
	return &CustomerCSVReader{path: path}
}

// Open opens the file, skips the header, and fast-forwards past lines a
// previous attempt already committed.
func (r *CustomerCSVReader) Open(ctx context.Context, ec model.ExecutionContext) error {
	f, err := os.Open(r.path)
	if err != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("failed to open input file '%s'", r.path), err, false, false)
	}
	r.file = f
	r.csv = csv.NewReader(f)
	r.csv.FieldsPerRecord = -1
	r.currentLine = 0

	if _, err := r.csv.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return exception.NewBatchError("reader", "failed to read header row", err, false, false)
	}

	resumeAt, ok := ec.GetInt(checkpointKeyLine)
	if !ok || resumeAt <= 0 {
		return nil
	}
	logger.Infof("Resuming CSV input '%s' after line %d.", r.path, resumeAt)
	for r.currentLine < resumeAt {
		if _, err := r.csv.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return exception.NewBatchError("reader", fmt.Sprintf("failed to skip to line %d", resumeAt), err, false, false)
		}
		r.currentLine++
	}
	return nil
}

// Read returns the next customer, or port.ErrNoMoreItems at end of file.
// Malformed rows are returned as skippable errors.
func (r *CustomerCSVReader) Read(ctx context.Context) (entity.Customer, error) {
	select {
	case <-ctx.Done():
		return entity.Customer{}, ctx.Err()
	default:
	}

	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return entity.Customer{}, port.ErrNoMoreItems
		}
		r.currentLine++
		return entity.Customer{}, exception.NewBatchError("reader", fmt.Sprintf("malformed CSV at data line %d", r.currentLine), err, true, false)
	}
	r.currentLine++

	customer, err := parseCustomer(record)
	if err != nil {
		return entity.Customer{}, exception.NewBatchError("reader", fmt.Sprintf("invalid customer at data line %d", r.currentLine), err, true, false)
	}
	return customer, nil
}

// Checkpoint exposes the count of consumed data lines.
func (r *CustomerCSVReader) Checkpoint() model.ExecutionContext {
	ec := model.NewExecutionContext()
	ec.Put(checkpointKeyLine, r.currentLine)
	return ec
}

// Close closes the input file.
func (r *CustomerCSVReader) Close(ctx context.Context) error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func parseCustomer(record []string) (entity.Customer, error) {
	if len(record) < 8 {
		return entity.Customer{}, fmt.Errorf("expected 8 fields, got %d", len(record))
	}
	id, err := strconv.Atoi(record[0])
	if err != nil {
		return entity.Customer{}, fmt.Errorf("invalid customer id '%s': %w", record[0], err)
	}
	return entity.Customer{
		ID:        id,
		FirstName: record[1],
		LastName:  record[2],
		Email:     record[3],
		Gender:    record[4],
		ContactNo: record[5],
		Country:   record[6],
		DOB:       record[7],
	}, nil
}
