package http

import (
	"net/http"

	"entitycore/src/domain/users"
)

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	attrs, err := decodeAttributes(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attrs.Delete(users.PrimaryKey)

	user, err := s.userType.Create(r.Context(), attrs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.userType.Find(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, user)
}

// UpdateUser assigns every field of the body through the entity setters, so
// a new password is hashed, and writes only what changed.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	attrs, err := decodeAttributes(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attrs.Delete(users.PrimaryKey)

	user, err := s.userType.Find(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := user.SetAttributes(attrs); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := user.Save(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.userType.Find(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := user.Delete(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
