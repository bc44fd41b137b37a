package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/janver/pagecraft/internal/db"
	"github.com/janver/pagecraft/internal/domain"
	"github.com/janver/pagecraft/internal/repository"
)

// Server exposes the autosave endpoint backed by SQLite.
type Server struct {
	uow    db.UnitOfWork
	logger *slog.Logger
}

func New(uow db.UnitOfWork, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{uow: uow, logger: logger}
}

type saveRequest struct {
	PageID  string          `json:"pageId"`
	State   json.RawMessage `json:"state"`
	Version int64           `json:"version"`
}

type saveResponse struct {
	Success bool `json:"success"`
}

type stateResponse struct {
	PageID  string          `json:"pageId"`
	State   json.RawMessage `json:"state"`
	Version int64           `json:"version"`
}

type projectStateResponse struct {
	PageStates []stateResponse `json:"pageStates"`
}

type errorResponse struct {
	Errors map[string]string `json:"errors"`
}

// Handler returns the route table. Paths follow
// /api/projects/{projectID}/pages/{pageID}/state.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/projects/{projectID}/pages/{pageID}/state", s.handleSave)
	mux.HandleFunc("GET /api/projects/{projectID}/pages/{pageID}/state", s.handleGet)
	mux.HandleFunc("GET /api/projects/{projectID}/state", s.handleList)
	return mux
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	pageID := r.PathValue("pageID")

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.PageID != "" && req.PageID != pageID {
		writeError(w, http.StatusBadRequest, "pageId in body does not match URL")
		return
	}
	if len(req.State) == 0 || !json.Valid(req.State) {
		writeError(w, http.StatusBadRequest, "state must be a JSON document")
		return
	}

	ps := &domain.PageState{
		ProjectID: projectID,
		PageID:    pageID,
		Version:   req.Version,
		State:     string(req.State),
		UpdatedAt: time.Now().UTC(),
	}

	err := s.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		states := repository.NewSQLitePageStateRepo(tx)

		if _, err := projects.GetByID(ctx, projectID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			now := time.Now().UTC()
			proj := &domain.Project{ID: projectID, Name: projectID, CreatedAt: now, UpdatedAt: now}
			if err := projects.Create(ctx, proj); err != nil {
				return err
			}
		}
		return states.Save(ctx, ps)
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			s.logger.Info("rejected stale autosave",
				"project", projectID, "page", pageID, "version", req.Version)
			writeError(w, http.StatusConflict, "a newer version of this page has already been saved")
			return
		}
		s.logger.Error("autosave failed",
			"project", projectID, "page", pageID, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, saveResponse{Success: true})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	pageID := r.PathValue("pageID")

	var ps *domain.PageState
	err := s.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		var err error
		ps, err = repository.NewSQLitePageStateRepo(tx).Get(ctx, projectID, pageID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no saved state for this page")
			return
		}
		s.logger.Error("loading page state failed",
			"project", projectID, "page", pageID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{
		PageID:  ps.PageID,
		State:   json.RawMessage(ps.State),
		Version: ps.Version,
	})
}

// handleList returns every saved page state of a project, sorted by page
// id. Clients use it to rebuild the full editor state on startup. An
// unknown project yields an empty list, not a 404.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	var states []*domain.PageState
	err := s.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		var err error
		states, err = repository.NewSQLitePageStateRepo(tx).ListByProject(ctx, projectID)
		return err
	})
	if err != nil {
		s.logger.Error("listing page states failed", "project", projectID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := projectStateResponse{PageStates: make([]stateResponse, 0, len(states))}
	for _, ps := range states {
		out.PageStates = append(out.PageStates, stateResponse{
			PageID:  ps.PageID,
			State:   json.RawMessage(ps.State),
			Version: ps.Version,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("autosave server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Errors: map[string]string{"general": msg}})
}
