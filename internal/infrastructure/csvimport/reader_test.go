package csvimport_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/csvimport"
)

func TestRead_Latin1ConComaDecimal(t *testing.T) {
	src := "Referencia;Cor;X;Y;Rack;Acab;Obs;Marked\n" +
		"REF1;azul;1,5;2;A1;mate;sin daño;sí\n" +
		"REF2;;0;0;;;;\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(src)
	require.NoError(t, err)

	rows, rowErrs, err := csvimport.Read(bytes.NewReader([]byte(latin1)), csvimport.Options{Latin1: true})
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 2)

	p := rows[0].Product
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "REF1", p.Referencia)
	assert.True(t, decimal.RequireFromString("1.5").Equal(p.X))
	assert.Equal(t, "sin daño", p.Obs)
	assert.True(t, p.Marked)
	assert.False(t, rows[1].Product.Marked)
}

func TestRead_FilasInvalidasNoDetienenLectura(t *testing.T) {
	src := "referencia,x,y\n" +
		",1,1\n" +
		"REF2,abc,1\n" +
		"\n" +
		"REF3,1.25,4\n"
	rows, rowErrs, err := csvimport.Read(strings.NewReader(src), csvimport.Options{Separator: ','})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "REF3", rows[0].Product.Referencia)
	assert.Equal(t, 5, rows[0].Line, "la línea en blanco cuenta en la numeración")
	assert.True(t, decimal.RequireFromString("1.25").Equal(rows[0].Product.X))

	require.Len(t, rowErrs, 2)
	assert.Equal(t, 2, rowErrs[0].Line)
	assert.Equal(t, 3, rowErrs[1].Line)
	assert.True(t, errors.Is(rowErrs[1].Err, domain.ErrInvalidInput))
	assert.Contains(t, rowErrs[1].Error(), "línea 3")
}

func TestRead_SinColumnaReferencia(t *testing.T) {
	_, _, err := csvimport.Read(strings.NewReader("cor;x\nazul;1\n"), csvimport.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestColumns_Plantilla(t *testing.T) {
	assert.Equal(t, []string{"referencia", "cor", "x", "y", "rack", "acab", "obs", "marked"}, csvimport.Columns())
}
