package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// assetRow una fila del catálogo: por nombre de categoría y ubicación, no por ID.
type assetRow struct {
	Tag      string
	Name     string
	Category string
	Serial   string
	Brand    string
	Model    string
	Cost     string
	Location string
	Status   string
}

// csvColumns encabezado esperado; el orden de las columnas es libre.
var csvColumns = []string{"asset_tag", "name", "category", "serial_no", "brand", "model", "unit_cost", "location", "status"}

func readAssetsFile(path, encoding string) ([]assetRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readAssets(f, encoding)
}

// readAssets lee el CSV. Las planillas exportadas desde Excel en Windows suelen venir en Latin-1.
func readAssets(r io.Reader, encoding string) ([]assetRow, error) {
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8":
	case "latin1", "latin-1", "iso-8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range []string{"asset_tag", "name", "category", "location"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("falta la columna %s (columnas: %s)", col, strings.Join(csvColumns, ","))
		}
	}

	var rows []assetRow
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		row := assetRow{
			Tag:      get("asset_tag"),
			Name:     get("name"),
			Category: get("category"),
			Serial:   get("serial_no"),
			Brand:    get("brand"),
			Model:    get("model"),
			Cost:     get("unit_cost"),
			Location: get("location"),
			Status:   strings.ToUpper(get("status")),
		}
		if row.Tag == "" {
			continue
		}
		if row.Cost == "" {
			row.Cost = "0"
		}
		if row.Status == "" {
			row.Status = entity.AssetStatusAvailable
		}
		// Un activo ASSIGNED necesita custodio: en el CSV no hay, así que se rechaza.
		if row.Status == entity.AssetStatusAssigned || !entity.IsValidAssetStatus(row.Status) {
			return nil, fmt.Errorf("línea %d: status %q no permitido en la importación", line, row.Status)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
