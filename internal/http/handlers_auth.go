package http

import (
	"errors"
	"net/http"

	"panini/internal/core"
	plog "panini/internal/log"
)

var errUnknownMember = errors.New("no household member uses this email")

type loginData struct {
	Email   string
	Name    string
	Members []core.User
	// FirstRun is true while the household has no members; the first login creates one.
	FirstRun bool
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginData, errs core.ValidationErrors) {
	members, err := s.svc.Users.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list members", err)
		return
	}
	data.Members = members
	data.FirstRun = len(members) == 0
	s.render(w, r, status, "login.html", view{Title: "Entrar", Errors: errs, Data: data})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.FromRequest(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderLogin(w, r, http.StatusOK, loginData{}, nil)
}

// handleLogin signs a member in by email. Identity is trusted inside the
// household, so there is no password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	f, err := newFormReader(r)
	if err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}
	data := loginData{Email: f.Get("email"), Name: f.Get("name")}

	u, err := s.svc.Users.GetByEmail(r.Context(), data.Email)
	if errors.Is(err, core.ErrNotFound) {
		u, err = s.bootstrapMember(r, data)
	}
	if err != nil {
		if verrs, ok := validationErrors(err); ok {
			s.renderLogin(w, r, http.StatusUnprocessableEntity, data, verrs)
			return
		}
		if errors.Is(err, errUnknownMember) {
			errs := core.ValidationErrors{}
			errs.Add("email", err)
			s.renderLogin(w, r, http.StatusUnprocessableEntity, data, errs)
			return
		}
		s.serverError(w, r, "login", err)
		return
	}

	if err := s.sessions.SetCookie(w, u); err != nil {
		s.serverError(w, r, "issue session", err)
		return
	}
	ctx := r.Context()
	plog.FromContext(ctx).WithComponent(plog.ComponentSession).InfoContext(ctx, "Member signed in", plog.FieldUserID, u.ID)
	SeeOther(r, "/").Write(w)
}

// bootstrapMember creates the first member of an empty household. Once anyone
// exists, unknown emails are rejected and members are added from /users.
func (s *Server) bootstrapMember(r *http.Request, data loginData) (core.User, error) {
	members, err := s.svc.Users.List(r.Context())
	if err != nil {
		return core.User{}, err
	}
	if len(members) > 0 {
		return core.User{}, errUnknownMember
	}
	return s.svc.Users.Create(r.Context(), core.User{Email: data.Email, Name: data.Name})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	SeeOther(r, loginPath).Write(w)
}
