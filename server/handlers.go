// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/sheetmap/columns"
	"github.com/jcodagnone/sheetmap/coords"
	"github.com/jcodagnone/sheetmap/pipeline"
	"github.com/jcodagnone/sheetmap/points"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/jcodagnone/sheetmap/store"
	"github.com/jcodagnone/sheetmap/style"
	"github.com/jcodagnone/sheetmap/utils/htmlutils"
)

// CreateRequest loads a dataset either from a URL or from inline records.
type CreateRequest struct {
	URL     string          `json:"url"`
	Headers []string        `json:"headers"`
	Rows    [][]string      `json:"rows"`
	Mapping columns.Mapping `json:"mapping"`
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID            string          `json:"id"`
	Source        string          `json:"source"`
	Headers       []string        `json:"headers"`
	Mapping       columns.Mapping `json:"mapping"`
	MappingSource columns.Source  `json:"mapping_source"`
	Stats         points.Stats    `json:"stats"`
	Visible       int             `json:"visible"`
	Rule          *style.Rule     `json:"style"`
	Filter        style.Selection `json:"filter"`
	Selected      *int            `json:"selected"`
	Bounds        *points.Bounds  `json:"bounds"`
	CreatedAt     time.Time       `json:"created_at"`
}

func newSessionView(sess *Session) SessionView {
	v := SessionView{
		ID:            sess.ID,
		Source:        sess.Source,
		Headers:       sess.Dataset.Headers,
		Mapping:       sess.Result.Detection.Mapping,
		MappingSource: sess.MappingSource,
		Stats:         sess.Result.Stats,
		Visible:       len(sess.Result.Visible),
		Rule:          sess.Result.Rule,
		Filter:        sess.Options.Filter,
		Bounds:        sess.Result.Bounds,
		CreatedAt:     sess.CreatedAt,
	}

	if sess.Options.Selected != pipeline.NoSelection {
		selected := sess.Options.Selected
		v.Selected = &selected
	}

	return v
}

// PointView is a visible point with its display color.
type PointView struct {
	Index int       `json:"index"`
	Lat   float64   `json:"lat"`
	Lng   float64   `json:"lng"`
	Color string    `json:"color"`
	Row   sheet.Row `json:"row"`
}

func (s *Server) normalize(ctx *gin.Context) {
	raw, ok := ctx.GetQuery("value")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "value query parameter is required"})

		return
	}

	v, ok := coords.Normalize(raw)
	if !ok {
		ctx.JSON(http.StatusOK, gin.H{"value": nil})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"value": v})
}

func (s *Server) createSession(ctx *gin.Context) {
	var req CreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})

		return
	}

	var (
		ds     *sheet.Dataset
		source string
		err    error
	)

	switch {
	case strings.TrimSpace(req.URL) != "":
		source = strings.TrimSpace(req.URL)
		if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "url must be http or https"})

			return
		}

		ds, err = s.loader.Load(ctx.Request.Context(), source)
	case len(req.Headers) > 0:
		source = "inline"
		ds = sheet.NewDataset(req.Headers, req.Rows)
		err = ds.Validate()
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "either url or headers and rows are required"})

		return
	}

	if err != nil {
		log.Printf("❌ Loading %s: %v", source, err)

		switch {
		case sheet.IsTransportError(err):
			ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not fetch the sheet", "details": err.Error()})
		case errors.Is(err, htmlutils.ErrSignInRequired):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "the sheet is not shared publicly"})
		case errors.Is(err, sheet.ErrEmptyDataset):
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "the sheet has no rows"})
		default:
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not read the sheet", "details": err.Error()})
		}

		return
	}

	sess := s.open(ctx.Request.Context(), source, ds, req.Mapping)
	log.Printf("📄 Loaded %s: %d rows, %d points (%s mapping %s/%s)",
		source, len(ds.Rows), len(sess.Result.Points), sess.MappingSource,
		sess.Result.Detection.Mapping.Lat, sess.Result.Detection.Mapping.Lng)

	ctx.JSON(http.StatusCreated, newSessionView(sess))
}

func (s *Server) listSessions(ctx *gin.Context) {
	s.mu.RLock()

	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}

	s.mu.RUnlock()

	// newest first, the order of store.ListDatasets
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		}

		return sessions[i].ID < sessions[j].ID
	})

	views := make([]SessionView, len(sessions))
	for i, sess := range sessions {
		views[i] = newSessionView(sess)
	}

	ctx.JSON(http.StatusOK, views)
}

// withSession resolves the :id parameter or answers 404.
func (s *Server) withSession(ctx *gin.Context) (*Session, bool) {
	sess, ok := s.session(ctx.Param("id"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
	}

	return sess, ok
}

func (s *Server) getSession(ctx *gin.Context) {
	if sess, ok := s.withSession(ctx); ok {
		ctx.JSON(http.StatusOK, newSessionView(sess))
	}
}

func (s *Server) deleteSession(ctx *gin.Context) {
	if !s.remove(ctx.Param("id")) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})

		return
	}

	ctx.Status(http.StatusNoContent)
}

// change updates a session and answers with its new view.
func (s *Server) change(ctx *gin.Context, fn func(*pipeline.Options)) {
	sess, ok := s.update(ctx.Request.Context(), ctx.Param("id"), fn)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})

		return
	}

	ctx.JSON(http.StatusOK, newSessionView(sess))
}

func (s *Server) setMapping(ctx *gin.Context) {
	var m columns.Mapping
	if err := ctx.ShouldBindJSON(&m); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid mapping"})

		return
	}

	if m.Lat == "" && m.Lng == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "lat_column or lng_column is required"})

		return
	}

	s.change(ctx, func(o *pipeline.Options) { o.Mapping = m })
}

func (s *Server) resetMapping(ctx *gin.Context) {
	s.change(ctx, func(o *pipeline.Options) { o.Mapping = columns.Mapping{} })
}

func (s *Server) swapMapping(ctx *gin.Context) {
	s.change(ctx, func(o *pipeline.Options) { o.Mapping = o.Mapping.Swap() })
}

// StyleRequest selects the column to color by.
type StyleRequest struct {
	Column  string   `json:"column"`
	Palette []string `json:"palette"`
}

func (s *Server) setStyle(ctx *gin.Context) {
	var req StyleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid style"})

		return
	}

	palette, err := style.ParsePalette(req.Palette)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	s.change(ctx, func(o *pipeline.Options) {
		o.StyleColumn = req.Column
		o.Palette = palette
	})
}

func (s *Server) clearStyle(ctx *gin.Context) {
	s.change(ctx, func(o *pipeline.Options) {
		o.StyleColumn = ""
		o.Palette = nil
	})
}

func (s *Server) setFilter(ctx *gin.Context) {
	var sel style.Selection
	if err := ctx.ShouldBindJSON(&sel); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})

		return
	}

	s.change(ctx, func(o *pipeline.Options) { o.Filter = sel })
}

func (s *Server) clearFilter(ctx *gin.Context) {
	s.change(ctx, func(o *pipeline.Options) { o.Filter = style.Selection{} })
}

// SelectionRequest highlights one point by row index; null clears it.
type SelectionRequest struct {
	Index *int `json:"index"`
}

func (s *Server) setSelection(ctx *gin.Context) {
	var req SelectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid selection"})

		return
	}

	selected := pipeline.NoSelection
	if req.Index != nil {
		if *req.Index < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "index must not be negative"})

			return
		}

		selected = *req.Index
	}

	s.change(ctx, func(o *pipeline.Options) { o.Selected = selected })
}

func (s *Server) listPoints(ctx *gin.Context) {
	sess, ok := s.withSession(ctx)
	if !ok {
		return
	}

	res := sess.Result

	out := make([]PointView, len(res.Visible))
	for i, p := range res.Visible {
		out[i] = PointView{Index: p.Index, Lat: p.Lat, Lng: p.Lng, Color: res.Colors[i], Row: p.Row}
	}

	ctx.JSON(http.StatusOK, out)
}

func (s *Server) listValues(ctx *gin.Context) {
	sess, ok := s.withSession(ctx)
	if !ok {
		return
	}

	column := ctx.Query("column")
	if !sess.Dataset.HasHeader(column) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown column"})

		return
	}

	ctx.JSON(http.StatusOK, style.DistinctValues(sess.Dataset.Rows, column))
}

func (s *Server) listClusters(ctx *gin.Context) {
	sess, ok := s.withSession(ctx)
	if !ok {
		return
	}

	label := ctx.Query("label")

	if d := ctx.Query("distance"); d != "" {
		distance, err := strconv.ParseFloat(d, 64)
		if err != nil || distance <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid distance parameter"})

			return
		}

		ctx.JSON(http.StatusOK, points.ClusterByDistance(sess.Result.Visible, distance, label))

		return
	}

	res, err := strconv.Atoi(ctx.DefaultQuery("res", "6"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid res parameter"})

		return
	}

	clusters, err := points.Clusters(sess.Result.Visible, res, label)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, clusters)
}

func (s *Server) exportGeoJSON(ctx *gin.Context) {
	sess, ok := s.withSession(ctx)
	if !ok {
		return
	}

	ctx.Header("Content-Type", "application/geo+json")
	ctx.JSON(http.StatusOK, sess.Result.GeoJSON())
}

func (s *Server) persistSession(ctx *gin.Context) {
	if s.repo == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})

		return
	}

	sess, ok := s.withSession(ctx)
	if !ok {
		return
	}

	ds := &store.Dataset{
		Source:      sess.Source,
		Mapping:     sess.Result.Detection.Mapping,
		StyleColumn: sess.Options.StyleColumn,
		Rows:        len(sess.Dataset.Rows),
	}

	if err := s.repo.SaveDataset(ds, sess.Result.Visible, sess.Result.Colors, nil); err != nil {
		log.Printf("❌ Persisting %s: %v", sess.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist dataset"})

		return
	}

	ctx.JSON(http.StatusCreated, ds)
}

func (s *Server) listStored(ctx *gin.Context) {
	if s.repo == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})

		return
	}

	datasets, err := s.repo.ListDatasets()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if datasets == nil {
		datasets = []*store.Dataset{}
	}

	ctx.JSON(http.StatusOK, datasets)
}

func (s *Server) storedCells(ctx *gin.Context) {
	if s.repo == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})

		return
	}

	id := ctx.Param("id")
	if _, err := s.repo.GetDataset(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	res, err := strconv.Atoi(ctx.DefaultQuery("res", "6"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid res parameter"})

		return
	}

	counts, err := s.repo.CellCounts(id, res)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, counts)
}
