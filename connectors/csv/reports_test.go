package csv

import (
	gocsv "encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-stats/stats"
)

func readBack(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := gocsv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteDimensionCSV(t *testing.T) {
	rows := []stats.Row{
		{
			Values:        map[string]string{"Customer number": "C1", "Customer name": "Acme"},
			Counts:        map[string]int{"Number of projects": 2},
			HoursWorked:   15,
			BillableHours: 8,
		},
	}
	path := filepath.Join(t.TempDir(), "by_customer.csv")
	require.NoError(t, WriteDimensionCSV(path, stats.Customer, rows))

	got := readBack(t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "customer_number", got[0][0])
	assert.Equal(t, "customer_name", got[0][1])
	assert.Equal(t, "number_of_projects", got[0][2])
	assert.Equal(t, "hours_worked", got[0][3])

	assert.Equal(t, "C1", got[1][0])
	assert.Equal(t, "Acme", got[1][1])
	assert.Equal(t, "2", got[1][2])
	assert.Equal(t, "15.00", got[1][3])
	assert.Equal(t, "8.00", got[1][4])
}

func TestWriteDimensionCSVCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "by_person.csv")
	require.NoError(t, WriteDimensionCSV(path, stats.Person, nil))

	got := readBack(t, path)
	require.Len(t, got, 1) // header only
	assert.Equal(t, "person", got[0][0])
}
