// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes loaded sheets to a map front end over a JSON API.
package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jcodagnone/sheetmap/columns"
	"github.com/jcodagnone/sheetmap/pipeline"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/jcodagnone/sheetmap/store"
)

// Session is the state of one loaded dataset: the raw rows, the user choices
// and the last computed result.
type Session struct {
	ID        string
	Source    string
	Dataset   *sheet.Dataset
	Options   pipeline.Options
	Result    *pipeline.Result
	CreatedAt time.Time
	// MappingSource tells whether the columns were detected or chosen.
	MappingSource columns.Source
}

// Server keeps sessions in memory and recomputes them on every change.
type Server struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	loader   *sheet.Loader
	pipeline *pipeline.Pipeline
	repo     store.Repository
}

// NewServer creates a Server. repo may be nil, which disables persistence.
func NewServer(loader *sheet.Loader, pipe *pipeline.Pipeline, repo store.Repository) *Server {
	if loader == nil {
		loader = sheet.NewLoader(nil)
	}

	if pipe == nil {
		pipe = pipeline.New(nil)
	}

	return &Server{
		sessions: make(map[string]*Session),
		loader:   loader,
		pipeline: pipe,
		repo:     repo,
	}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	api.GET("/normalize", s.normalize)
	api.GET("/datasets", s.listSessions)
	api.POST("/datasets", s.createSession)
	api.GET("/datasets/:id", s.getSession)
	api.DELETE("/datasets/:id", s.deleteSession)
	api.PUT("/datasets/:id/mapping", s.setMapping)
	api.DELETE("/datasets/:id/mapping", s.resetMapping)
	api.POST("/datasets/:id/swap", s.swapMapping)
	api.PUT("/datasets/:id/style", s.setStyle)
	api.DELETE("/datasets/:id/style", s.clearStyle)
	api.PUT("/datasets/:id/filter", s.setFilter)
	api.DELETE("/datasets/:id/filter", s.clearFilter)
	api.PUT("/datasets/:id/selection", s.setSelection)
	api.GET("/datasets/:id/points", s.listPoints)
	api.GET("/datasets/:id/values", s.listValues)
	api.GET("/datasets/:id/clusters", s.listClusters)
	api.GET("/datasets/:id/geojson", s.exportGeoJSON)
	api.POST("/datasets/:id/persist", s.persistSession)
	api.GET("/stored", s.listStored)
	api.GET("/stored/:id/cells", s.storedCells)

	return r
}

// Run serves the API on addr.
func (s *Server) Run(addr string) error {
	log.Printf("🗺️  Serving on http://%s", addr)

	return s.Router().Run(addr)
}

// open registers a new session for ds and computes it.
func (s *Server) open(ctx context.Context, source string, ds *sheet.Dataset, mapping columns.Mapping) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Source:    source,
		Dataset:   ds,
		Options:   pipeline.Options{Mapping: mapping, Selected: pipeline.NoSelection},
		CreatedAt: time.Now(),
	}
	sess.Result = s.pipeline.Run(ctx, ds, sess.Options)
	sess.MappingSource = sess.Result.Detection.Source

	if sess.MappingSource != columns.SourceManual {
		// pin the detected mapping so later changes do not ask the oracle again
		sess.Options.Mapping = sess.Result.Detection.Mapping
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

func (s *Server) session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]

	return sess, ok
}

// maxUpdateAttempts bounds how often update recomputes when another update
// of the same session lands first.
const maxUpdateAttempts = 3

// update applies change to the options of a session and recomputes it. The
// pipeline runs without the lock held, since detection may wait on the
// oracle; the result is stored only if the session is still the one it was
// computed from.
func (s *Server) update(ctx context.Context, id string, change func(*pipeline.Options)) (*Session, bool) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		sess, ok := s.session(id)
		if !ok {
			return nil, false
		}

		opts := sess.Options
		change(&opts)

		updated := *sess
		updated.Result = s.pipeline.Run(ctx, sess.Dataset, opts)

		switch {
		case updated.Result.Detection.Source != columns.SourceManual:
			opts.Mapping = updated.Result.Detection.Mapping
			updated.MappingSource = updated.Result.Detection.Source
		case opts.Mapping != sess.Options.Mapping:
			updated.MappingSource = columns.SourceManual
		}

		updated.Options = opts

		s.mu.Lock()
		current, ok := s.sessions[id]

		switch {
		case !ok:
			s.mu.Unlock()

			return nil, false
		case current == sess:
			s.sessions[id] = &updated
			s.mu.Unlock()

			return &updated, true
		}

		s.mu.Unlock()
	}

	log.Printf("⚠️ Session %s kept changing, dropping update", id)

	sess, ok := s.session(id)

	return sess, ok
}

func (s *Server) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}

	delete(s.sessions, id)

	return true
}
