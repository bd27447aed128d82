package importer

import (
	"testing"
	"time"

	"github.com/dwalast/drugguide/pkg/core/drug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCSV(t *testing.T) {
	res := ValidateCSV("name,oldPrice\nPanadol,12\n")
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "newPrice")
	assert.NotContains(t, res.Errors[0], "oldPrice")

	res = ValidateCSV("name,newPrice,oldPrice\nPanadol,15,12\n")
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)

	res = ValidateCSV("name,newPrice,oldPrice\n\n   \n")
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 1)

	// header tokens are case sensitive
	res = ValidateCSV("Name,NewPrice,oldPrice\nPanadol,15,12\n")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "name, newPrice")

	res = ValidateCSV("")
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
}

func TestConvertCSV(t *testing.T) {
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	text := "name, newPrice ,oldPrice,isAvailable,expiryWarning,manufacturer\r\n" +
		"Panadol,15,12,TRUE,30,GSK\r\n" +
		"\r\n" +
		"\"Brufen, 400\",abc,40,no\r\n"

	rows, err := convertCSV(text, now)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "Panadol", first["name"])
	assert.Equal(t, 15.0, first["newPrice"])
	assert.Equal(t, 12.0, first["oldPrice"])
	assert.Equal(t, true, first["isAvailable"])
	assert.Equal(t, 30.0, first["expiryWarning"])
	assert.Equal(t, "GSK", first["manufacturer"])
	assert.Equal(t, 0, first["originalOrder"])
	assert.Equal(t, "1", first["no"])
	assert.Equal(t, drug.Today(now), first["updateDate"])
	assert.Equal(t, "7/3/2026", first["updateDate"])
	assert.NotEmpty(t, first["id"])
	assert.Equal(t, 3.0, first["priceChange"])
	assert.Equal(t, 25.0, first["priceChangePercent"])

	second := rows[1]
	assert.Equal(t, "Brufen, 400", second["name"])
	assert.Equal(t, 0.0, second["newPrice"])
	assert.Equal(t, false, second["isAvailable"])
	assert.NotContains(t, second, "manufacturer")
	assert.Equal(t, "2", second["no"])
	assert.Equal(t, 1, second["originalOrder"])
	assert.Equal(t, -40.0, second["priceChange"])
	assert.Equal(t, -100.0, second["priceChangePercent"])
	assert.NotEqual(t, first["id"], second["id"])
}

func TestConvertCSVKeepsGivenFields(t *testing.T) {
	rows, err := CSVToJSON("id,no,name,newPrice,oldPrice,updateDate\nx1,77,Panadol,10,0,1/1/2026\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "x1", rows[0]["id"])
	assert.Equal(t, "77", rows[0]["no"])
	assert.Equal(t, "1/1/2026", rows[0]["updateDate"])
	assert.Equal(t, 10.0, rows[0]["priceChange"])
	assert.Equal(t, 0.0, rows[0]["priceChangePercent"])
}

func TestImportedMessage(t *testing.T) {
	assert.Equal(t, "تم استيراد 2 دواء بنجاح", ImportedMessage(2, 0))
	assert.Equal(t, "تم استيراد 2 دواء بنجاح مع 1 خطأ", ImportedMessage(2, 1))
}
