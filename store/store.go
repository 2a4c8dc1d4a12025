// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists built datasets and their points in DuckDB.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcodagnone/sheetmap/columns"
	"github.com/jcodagnone/sheetmap/points"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/jcodagnone/sheetmap/spatial"
	"github.com/uber/h3-go/v4"
)

// ErrNotFound is returned when a dataset does not exist.
var ErrNotFound = errors.New("dataset not found")

// CellResolutions are the h3 resolutions stored for every point.
var CellResolutions = []int{4, 6, 8}

// Dataset describes a stored build of a sheet.
type Dataset struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	Mapping     columns.Mapping `json:"mapping"`
	StyleColumn string          `json:"style_column,omitempty"`
	Rows        int             `json:"rows"`
	Points      int             `json:"points"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StoredPoint is a point as persisted, with its h3 cells.
type StoredPoint struct {
	Index  int           `json:"index"`
	Point  spatial.Point `json:"point"`
	Color  string        `json:"color"`
	Row    sheet.Row     `json:"row"`
	H3Res4 int64         `json:"-"`
	H3Res6 int64         `json:"-"`
	H3Res8 int64         `json:"-"`
}

func (p *StoredPoint) computeH3() error {
	latLng := h3.NewLatLng(p.Point.Lat, p.Point.Lng)
	for _, res := range CellResolutions {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 4:
			p.H3Res4 = int64(cell)
		case 6:
			p.H3Res6 = int64(cell)
		case 8:
			p.H3Res8 = int64(cell)
		}
	}

	return nil
}

// CellCount is the number of points of a dataset in one h3 cell.
type CellCount struct {
	Cell   string        `json:"cell"`
	Count  int           `json:"count"`
	Center spatial.Point `json:"center"`
}

// Repository handles persistence of datasets.
type Repository interface {
	// CreateSchema creates the datasets and points tables
	CreateSchema() error

	// SaveDataset stores a dataset and its points, assigning an ID when
	// missing. colors, when not nil, are the display colors of pts.
	// progress, when not nil, is called after each stored point.
	SaveDataset(ds *Dataset, pts []points.Point, colors []string, progress func()) error

	// GetDataset returns a dataset by ID, or ErrNotFound
	GetDataset(id string) (*Dataset, error)

	// ListDatasets returns every dataset, newest first
	ListDatasets() ([]*Dataset, error)

	// ListPoints returns the points of a dataset in row order
	ListPoints(id string) ([]*StoredPoint, error)

	// CellCounts groups the points of a dataset by h3 cell
	CellCounts(id string, resolution int) ([]CellCount, error)

	// DeleteDataset removes a dataset and its points
	DeleteDataset(id string) error

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlRepository struct {
	db *sql.DB
}

// NewRepository creates a DuckDB backed Repository.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE TABLE IF NOT EXISTS datasets (
			id VARCHAR PRIMARY KEY,
			source VARCHAR NOT NULL,
			lat_column VARCHAR NOT NULL,
			lng_column VARCHAR NOT NULL,
			style_column VARCHAR,
			row_count INTEGER NOT NULL,
			point_count INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS points (
			dataset_id VARCHAR NOT NULL,
			row_index INTEGER NOT NULL,
			point POINT_2D NOT NULL,
			color VARCHAR,
			row_json VARCHAR NOT NULL,
			h3_res4 UBIGINT,
			h3_res6 UBIGINT,
			h3_res8 UBIGINT,
			PRIMARY KEY (dataset_id, row_index)
		);
	`)

	return err
}

func (r *sqlRepository) SaveDataset(ds *Dataset, pts []points.Point, colors []string, progress func()) error {
	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}

	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = time.Now()
	}

	ds.Points = len(pts)

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	rollback := func(err error) error {
		if rErr := tx.Rollback(); rErr != nil {
			return errors.Join(err, rErr)
		}

		return err
	}

	var styleColumn *string
	if ds.StyleColumn != "" {
		styleColumn = &ds.StyleColumn
	}

	_, err = tx.Exec(`
		INSERT INTO datasets(id, source, lat_column, lng_column, style_column, row_count, point_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ds.ID, ds.Source, ds.Mapping.Lat, ds.Mapping.Lng, styleColumn, ds.Rows, ds.Points, ds.CreatedAt)
	if err != nil {
		return rollback(fmt.Errorf("inserting dataset: %w", err))
	}

	stmt, err := tx.Prepare(`
		INSERT INTO points(dataset_id, row_index, point, color, row_json, h3_res4, h3_res6, h3_res8)
		VALUES (?, ?, ST_Point(?, ?), ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return rollback(err)
	}
	defer stmt.Close()

	for i, p := range pts {
		if err := p.Validate(); err != nil {
			return rollback(fmt.Errorf("row %d: %w", p.Index, err))
		}

		sp := StoredPoint{Index: p.Index, Point: p.Point, Row: p.Row}
		if i < len(colors) {
			sp.Color = colors[i]
		}

		if err := sp.computeH3(); err != nil {
			return rollback(err)
		}

		rowJSON, err := json.Marshal(sp.Row)
		if err != nil {
			return rollback(fmt.Errorf("encoding row %d: %w", sp.Index, err))
		}

		_, err = stmt.Exec(
			ds.ID,
			sp.Index,
			sp.Point.Lng,
			sp.Point.Lat,
			sp.Color,
			string(rowJSON),
			sp.H3Res4,
			sp.H3Res6,
			sp.H3Res8,
		)
		if err != nil {
			return rollback(fmt.Errorf("inserting point of row %d: %w", sp.Index, err))
		}

		if progress != nil {
			progress()
		}
	}

	return tx.Commit()
}

const datasetColumns = `id, source, lat_column, lng_column, style_column, row_count, point_count, created_at`

func scanDataset(scanner interface{ Scan(dest ...any) error }) (*Dataset, error) {
	var (
		ds          Dataset
		styleColumn sql.NullString
	)

	err := scanner.Scan(
		&ds.ID,
		&ds.Source,
		&ds.Mapping.Lat,
		&ds.Mapping.Lng,
		&styleColumn,
		&ds.Rows,
		&ds.Points,
		&ds.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if styleColumn.Valid {
		ds.StyleColumn = styleColumn.String
	}

	return &ds, nil
}

func (r *sqlRepository) GetDataset(id string) (*Dataset, error) {
	ds, err := scanDataset(r.db.QueryRow(`SELECT `+datasetColumns+` FROM datasets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	return ds, err
}

func (r *sqlRepository) ListDatasets() ([]*Dataset, error) {
	rows, err := r.db.Query(`SELECT ` + datasetColumns + ` FROM datasets ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []*Dataset

	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}

		datasets = append(datasets, ds)
	}

	return datasets, rows.Err()
}

func (r *sqlRepository) ListPoints(id string) ([]*StoredPoint, error) {
	rows, err := r.db.Query(`
		SELECT row_index, point, color, row_json, h3_res4, h3_res6, h3_res8
		FROM points
		WHERE dataset_id = ?
		ORDER BY row_index
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pts []*StoredPoint

	for rows.Next() {
		var (
			p       StoredPoint
			color   sql.NullString
			rowJSON string
		)

		var h3Res4, h3Res6, h3Res8 sql.NullInt64

		if err := rows.Scan(&p.Index, &p.Point, &color, &rowJSON, &h3Res4, &h3Res6, &h3Res8); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(rowJSON), &p.Row); err != nil {
			return nil, fmt.Errorf("decoding row %d: %w", p.Index, err)
		}

		p.Color = color.String
		p.H3Res4 = h3Res4.Int64
		p.H3Res6 = h3Res6.Int64
		p.H3Res8 = h3Res8.Int64

		pts = append(pts, &p)
	}

	return pts, rows.Err()
}

func cellColumn(resolution int) (string, error) {
	switch resolution {
	case 4:
		return "h3_res4", nil
	case 6:
		return "h3_res6", nil
	case 8:
		return "h3_res8", nil
	default:
		return "", fmt.Errorf("unsupported h3 resolution %d, stored resolutions are %v", resolution, CellResolutions)
	}
}

func (r *sqlRepository) CellCounts(id string, resolution int) ([]CellCount, error) {
	column, err := cellColumn(resolution)
	if err != nil {
		return nil, err
	}

	// #nosec G202 - column comes from a fixed list
	rows, err := r.db.Query(`
		SELECT `+column+` AS cell, count(*) AS n,
		       avg(struct_extract(point, 'y')) AS lat,
		       avg(struct_extract(point, 'x')) AS lng
		FROM points
		WHERE dataset_id = ?
		GROUP BY `+column+`
		ORDER BY n DESC, cell
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []CellCount

	for rows.Next() {
		var (
			cell int64
			c    CellCount
		)

		if err := rows.Scan(&cell, &c.Count, &c.Center.Lat, &c.Center.Lng); err != nil {
			return nil, err
		}

		c.Cell = h3.Cell(cell).String()
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

func (r *sqlRepository) DeleteDataset(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM points WHERE dataset_id = ?`, id); err != nil {
		return errors.Join(err, tx.Rollback())
	}

	res, err := tx.Exec(`DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Join(ErrNotFound, tx.Rollback())
	}

	return tx.Commit()
}
