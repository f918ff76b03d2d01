package editor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"crate/internal/logging"
	"crate/internal/record"
	"crate/internal/store"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleReleases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	filter := store.ReleaseFilter{
		Query:   query.Get("q"),
		SortKey: query.Get("sort"),
	}
	if raw := strings.TrimSpace(query.Get("artist_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid artist_id")
			return
		}
		filter.ArtistID = id
	}

	releases, err := s.store.ListReleases(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(releases),
		"releases": releases,
	})
}

// handleRelease routes /api/releases/{id} and /api/releases/{id}/skip.
func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/releases/")
	idStr, tail, _ := strings.Cut(rest, "/")
	id, err := parseID(idStr)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch tail {
	case "":
		switch r.Method {
		case http.MethodGet:
			s.getRelease(w, r, id)
		case http.MethodPut:
			s.replaceRelease(w, r, id)
		case http.MethodPatch:
			s.amendRelease(w, r, id)
		case http.MethodDelete:
			s.deleteRelease(w, r, id)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case "skip":
		switch r.Method {
		case http.MethodPut:
			s.addSkip(w, r, id)
		case http.MethodDelete:
			s.removeSkip(w, r, id)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) getRelease(w http.ResponseWriter, r *http.Request, id int64) {
	release, err := s.store.GetRelease(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if release == nil {
		s.writeError(w, http.StatusNotFound, "release not found")
		return
	}
	s.writeJSON(w, http.StatusOK, release)
}

// replaceRelease is a full-record replacement. The body must be the whole
// record; fields omitted by the client are erased, not retained.
func (s *Server) replaceRelease(w http.ResponseWriter, r *http.Request, id int64) {
	var release record.Release
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&release); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed release record: "+err.Error())
		return
	}
	if release.ReleaseID == 0 {
		release.ReleaseID = id
	}
	if err := s.validateRelease(r, &release, id); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.store.UpsertRelease(r.Context(), &release); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("release edited", logging.Int64(logging.FieldReleaseID, id))
	s.writeJSON(w, http.StatusOK, &release)
}

// amendRelease overlays only the supplied fields onto the cached record.
// Fields omitted by the client keep their stored values.
func (s *Server) amendRelease(w http.ResponseWriter, r *http.Request, id int64) {
	var partial record.Release
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&partial); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed release record: "+err.Error())
		return
	}
	if partial.ReleaseID != 0 && partial.ReleaseID != id {
		s.writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("release_id %d does not match path id %d", partial.ReleaseID, id))
		return
	}
	partial.ReleaseID = id

	existing, err := s.store.GetRelease(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		s.writeError(w, http.StatusNotFound, "release not found")
		return
	}

	if slug := strings.TrimSpace(partial.Slug); slug != "" {
		if slug != record.Slugify(slug) {
			s.writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("slug %q is not in canonical form", slug))
			return
		}
		inUse, err := s.store.SlugInUse(r.Context(), slug, id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if inUse {
			s.writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("slug %q already belongs to another release", slug))
			return
		}
	}

	if err := s.store.MergeRelease(r.Context(), &partial); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	merged, err := s.store.GetRelease(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("release amended", logging.Int64(logging.FieldReleaseID, id))
	s.writeJSON(w, http.StatusOK, merged)
}

func (s *Server) deleteRelease(w http.ResponseWriter, r *http.Request, id int64) {
	removed, err := s.store.DeleteRelease(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "release not found")
		return
	}
	if _, err := s.store.ClearProgressForRelease(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("release deleted", logging.Int64(logging.FieldReleaseID, id))
	s.writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) addSkip(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.store.AddSkip(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"skipped": id})
}

func (s *Server) removeSkip(w http.ResponseWriter, r *http.Request, id int64) {
	removed, err := s.store.RemoveSkip(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "release not on skip list")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"unskipped": id})
}

func (s *Server) handleSkips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	skips, err := s.store.ListSkips(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"skips": skips})
}

// validateRelease enforces the structural invariants an edited record must
// keep so the renderer and the pipeline can still consume it.
func (s *Server) validateRelease(r *http.Request, release *record.Release, id int64) error {
	if release.ReleaseID != id {
		return fmt.Errorf("release_id %d does not match path id %d", release.ReleaseID, id)
	}
	if strings.TrimSpace(release.ArtistName) == "" {
		return fmt.Errorf("artist_name must not be empty")
	}
	if strings.TrimSpace(release.AlbumTitle) == "" {
		return fmt.Errorf("album_title must not be empty")
	}
	slug := strings.TrimSpace(release.Slug)
	if slug == "" {
		return fmt.Errorf("slug must not be empty")
	}
	if slug != record.Slugify(slug) {
		return fmt.Errorf("slug %q is not in canonical form", slug)
	}
	inUse, err := s.store.SlugInUse(r.Context(), slug, release.ReleaseID)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("slug %q already belongs to another release", slug)
	}
	return nil
}
