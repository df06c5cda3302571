package reader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ripline/ripline/pkg/batch/core/model"
	"github.com/ripline/ripline/pkg/batch/core/port"
	"github.com/ripline/ripline/pkg/batch/support/exception"
)

const csvHeader = "id,firstName,lastName,email,gender,contactNo,country,dob\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVReaderReadsAllRowsSkippingHeader(t *testing.T) {
	path := writeCSV(t, csvHeader+
		"1,Ada,Lovelace,ada@example.com,Female,0123,UK,1815-12-10\n"+
		"2,Alan,Turing,alan@example.com,Male,0456,UK,1912-06-23\n")

	r := NewCustomerCSVReader(path)
	require.NoError(t, r.Open(context.Background(), model.NewExecutionContext()))
	defer r.Close(context.Background())

	first, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Ada", first.FirstName)
	assert.Equal(t, "UK", first.Country)

	second, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	_, err = r.Read(context.Background())
	assert.ErrorIs(t, err, port.ErrNoMoreItems)
}

func TestCSVReaderCheckpointTracksConsumedLines(t *testing.T) {
	path := writeCSV(t, csvHeader+
		"1,Ada,Lovelace,ada@example.com,Female,0123,UK,1815-12-10\n"+
		"2,Alan,Turing,alan@example.com,Male,0456,UK,1912-06-23\n"+
		"3,Grace,Hopper,grace@example.com,Female,0789,US,1906-12-09\n")

	r := NewCustomerCSVReader(path)
	require.NoError(t, r.Open(context.Background(), model.NewExecutionContext()))
	defer r.Close(context.Background())

	_, err := r.Read(context.Background())
	require.NoError(t, err)
	_, err = r.Read(context.Background())
	require.NoError(t, err)

	line, ok := r.Checkpoint().GetInt("csv.reader.line")
	require.True(t, ok)
	assert.Equal(t, 2, line)
}

func TestCSVReaderResumesFromCheckpoint(t *testing.T) {
	path := writeCSV(t, csvHeader+
		"1,Ada,Lovelace,ada@example.com,Female,0123,UK,1815-12-10\n"+
		"2,Alan,Turing,alan@example.com,Male,0456,UK,1912-06-23\n"+
		"3,Grace,Hopper,grace@example.com,Female,0789,US,1906-12-09\n")

	ec := model.NewExecutionContext()
	ec.Put("csv.reader.line", 2)

	r := NewCustomerCSVReader(path)
	require.NoError(t, r.Open(context.Background(), ec))
	defer r.Close(context.Background())

	customer, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, customer.ID)

	_, err = r.Read(context.Background())
	assert.ErrorIs(t, err, port.ErrNoMoreItems)
}

func TestCSVReaderReturnsSkippableErrorForBadRow(t *testing.T) {
	path := writeCSV(t, csvHeader+
		"not-a-number,Ada,Lovelace,ada@example.com,Female,0123,UK,1815-12-10\n"+
		"2,Alan,Turing,alan@example.com,Male,0456,UK,1912-06-23\n")

	r := NewCustomerCSVReader(path)
	require.NoError(t, r.Open(context.Background(), model.NewExecutionContext()))
	defer r.Close(context.Background())

	_, err := r.Read(context.Background())
	require.Error(t, err)
	be, ok := exception.AsBatchError(err)
	require.True(t, ok)
	assert.True(t, be.IsSkippable())

	// the bad row does not wedge the reader
	customer, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, customer.ID)
}

func TestCSVReaderOpenFailsForMissingFile(t *testing.T) {
	r := NewCustomerCSVReader(filepath.Join(t.TempDir(), "absent.csv"))
	err := r.Open(context.Background(), model.NewExecutionContext())
	assert.Error(t, err)
}

func TestCSVReaderHandlesShortRow(t *testing.T) {
	path := writeCSV(t, csvHeader+"1,Ada\n")

	r := NewCustomerCSVReader(path)
	require.NoError(t, r.Open(context.Background(), model.NewExecutionContext()))
	defer r.Close(context.Background())

	_, err := r.Read(context.Background())
	require.Error(t, err)
	be, ok := exception.AsBatchError(err)
	require.True(t, ok)
	assert.True(t, be.IsSkippable())
}
