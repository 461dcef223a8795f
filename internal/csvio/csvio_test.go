package csvio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync/internal/common"
	"github.com/shelfsync/shelfsync/internal/model"
)

func TestRead(t *testing.T) {
	t.Run("parses rows with optional price", func(t *testing.T) {
		data := `Serial Number,Product Name,Sales Price
SN1,iPhone 14 128GB,55000
SN2,iPhone 14 Plus,
,Nameless,100
`
		rows, err := Read(strings.NewReader(data))

		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, 1, rows[0].Index)
		assert.Equal(t, "SN1", rows[0].SerialNumber)
		assert.Equal(t, "iPhone 14 128GB", rows[0].ProductName)
		require.NotNil(t, rows[0].PurchasePrice)
		assert.Equal(t, 55000.0, *rows[0].PurchasePrice)

		assert.Nil(t, rows[1].PurchasePrice)

		assert.Equal(t, "", rows[2].SerialNumber)
		assert.False(t, rows[2].Valid())
	})

	t.Run("column order does not matter", func(t *testing.T) {
		data := `Sales Price,Product Name,Serial Number
100,Bolt M6,SN9
`
		rows, err := Read(strings.NewReader(data))

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "SN9", rows[0].SerialNumber)
		assert.Equal(t, "Bolt M6", rows[0].ProductName)
	})

	t.Run("extra columns are ignored", func(t *testing.T) {
		data := `Serial Number,Product Name,Warehouse,Sales Price
SN1,Bolt M6,Main,2.5
`
		rows, err := Read(strings.NewReader(data))

		require.NoError(t, err)
		require.Len(t, rows, 1)
	})

	t.Run("unparseable price is dropped, row kept", func(t *testing.T) {
		data := `Serial Number,Product Name,Sales Price
SN1,Bolt M6,n/a
`
		rows, err := Read(strings.NewReader(data))

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].PurchasePrice)
		assert.True(t, rows[0].Valid())
	})

	t.Run("missing required column fails", func(t *testing.T) {
		data := `Serial Number,Price
SN1,100
`
		_, err := Read(strings.NewReader(data))

		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrParseFailure)
	})

	t.Run("empty input fails", func(t *testing.T) {
		_, err := Read(strings.NewReader(""))
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrParseFailure)
	})
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile("does-not-exist.csv")
	require.Error(t, err)
}

func TestFilter(t *testing.T) {
	rows := []model.CSVRow{
		{Index: 1, SerialNumber: "SN1", ProductName: "Bolt M6"},
		{Index: 2, SerialNumber: "", ProductName: "Nut M6"},
		{Index: 3, SerialNumber: "SN3", ProductName: ""},
	}

	valid, invalid := Filter(rows)

	require.Len(t, valid, 1)
	assert.Equal(t, 1, valid[0].Index)
	require.Len(t, invalid, 2)
}
