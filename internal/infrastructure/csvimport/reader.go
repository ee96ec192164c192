// Package csvimport lee catálogos de productos exportados como CSV (planillas antiguas en Latin-1).
package csvimport

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/domain"
)

// Options formato del archivo.
type Options struct {
	Separator rune // ';' por defecto
	Latin1    bool // decodificar ISO-8859-1 a UTF-8
}

// Row producto leído, con su número de línea (1 = cabecera).
type Row struct {
	Line    int
	Product dto.CreateProductRequest
}

// RowError fila descartada.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return errors.Wrapf(e.Err, "línea %d", e.Line).Error() }

var columns = []string{"referencia", "cor", "x", "y", "rack", "acab", "obs", "marked"}

// Read lee todas las filas. Las filas inválidas se devuelven aparte y no detienen la lectura;
// solo un error de formato global (cabecera, CSV roto) devuelve error.
func Read(r io.Reader, opts Options) ([]Row, []RowError, error) {
	if opts.Latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	if opts.Separator != 0 {
		cr.Comma = opts.Separator
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, errors.Wrap(err, "leer cabecera")
	}
	idx, err := indexHeader(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		rows    []Row
		rowErrs []RowError
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, rowErrs, errors.Wrap(err, "leer CSV")
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		p, err := parseRecord(rec, idx, cr.Comma == ';')
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		rows = append(rows, Row{Line: line, Product: p})
	}
	return rows, rowErrs, nil
}

func indexHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		idx[name] = i
	}
	if _, ok := idx["referencia"]; !ok {
		return nil, errors.Wrap(domain.ErrInvalidInput, "la cabecera debe incluir la columna referencia")
	}
	return idx, nil
}

func parseRecord(rec []string, idx map[string]int, decimalComma bool) (dto.CreateProductRequest, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	num := func(col string) (decimal.Decimal, error) {
		s := get(col)
		if s == "" {
			return decimal.Zero, nil
		}
		if decimalComma {
			s = strings.ReplaceAll(s, ",", ".")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, errors.Wrapf(domain.ErrInvalidInput, "%s no es numérico: %q", col, get(col))
		}
		return d, nil
	}

	p := dto.CreateProductRequest{
		Referencia: get("referencia"),
		Cor:        get("cor"),
		Rack:       get("rack"),
		Acab:       get("acab"),
		Obs:        get("obs"),
		Marked:     truthy(get("marked")),
	}
	if p.Referencia == "" {
		return p, errors.Wrap(domain.ErrInvalidInput, "referencia vacía")
	}
	var err error
	if p.X, err = num("x"); err != nil {
		return p, err
	}
	if p.Y, err = num("y"); err != nil {
		return p, err
	}
	return p, nil
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "si", "sí", "x", "s":
		return true
	}
	return false
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Columns columnas reconocidas, en el orden de la plantilla.
func Columns() []string { return append([]string(nil), columns...) }
