package http

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"panini/internal/core"
	plog "panini/internal/log"
	"panini/internal/session"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var kindLabels = map[core.TransactionKind]string{
	core.KindShared:   "Compartido",
	core.KindPanini:   "Casa",
	core.KindPersonal: "Personal",
}

var repeatLabels = map[core.Repeat]string{
	core.RepeatNever:   "Una vez",
	core.RepeatDaily:   "Diario",
	core.RepeatWeekly:  "Semanal",
	core.RepeatMonthly: "Mensual",
	core.RepeatYearly:  "Anual",
}

var templateFuncs = template.FuncMap{
	"money": func(m core.Money) string { return m.Format() },
	"day": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	},
	"dayMonth": func(t time.Time) string {
		return t.Format("02") + " " + monthNames[t.Month()-1][:3]
	},
	"monthName": func(m int) string {
		if m < 1 || m > 12 {
			return ""
		}
		return monthNames[m-1]
	},
	"kindLabel":   func(k core.TransactionKind) string { return kindLabels[k] },
	"repeatLabel": func(r core.Repeat) string { return repeatLabels[r] },
	"kinds": func() []core.TransactionKind {
		return []core.TransactionKind{core.KindShared, core.KindPanini, core.KindPersonal}
	},
	"repeats": func() []core.Repeat {
		return []core.Repeat{core.RepeatNever, core.RepeatDaily, core.RepeatWeekly, core.RepeatMonthly, core.RepeatYearly}
	},
	"balanceClass": func(b core.Balance) string { return "balance-" + string(b.Status) },
	"abs":          func(m core.Money) core.Money { return m.Abs() },
	"initial": func(s string) string {
		for _, r := range s {
			return strings.ToUpper(string(r))
		}
		return "?"
	},
}

// view is handed to every page; Data carries the page specific payload.
type view struct {
	Title  string
	Nav    string
	Me     core.User
	Errors core.ValidationErrors
	Data   any
}

// render executes page into a buffer first so a template error still yields a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	t, ok := s.pages[page]
	if !ok {
		s.serverError(w, r, "unknown page "+page, errors.New("template not found"))
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		s.serverError(w, r, "render "+page, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderPartial executes a named block from the shared partials without the layout.
func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.base.ExecuteTemplate(&buf, name, data); err != nil {
		s.serverError(w, r, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	plog.FromContext(ctx).ErrorContext(ctx, "Request failed",
		plog.FieldOperation, msg,
		plog.FieldPath, r.URL.Path,
		plog.FieldError, err)
	InternalServerError("Algo salió mal. Intenta de nuevo.").Write(w)
}

// fail maps service errors onto responses: missing rows are 404, rows still
// referenced by the ledger are 409, anything else is logged and 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("No encontrado").Write(w)
	case errors.Is(err, core.ErrInUse):
		ConflictError("No se puede borrar: todavía tiene movimientos asociados").Write(w)
	default:
		s.serverError(w, r, op, err)
	}
}

// validationErrors extracts field errors returned by a service.
func validationErrors(err error) (core.ValidationErrors, bool) {
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

// currentUser loads the signed in member. A session pointing at a deleted
// member is cleared and sent back to the login page.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (core.User, bool) {
	claims, ok := session.ClaimsFromContext(r.Context())
	if !ok {
		SeeOther(r, loginPath).Write(w)
		return core.User{}, false
	}
	u, err := s.svc.Users.Get(r.Context(), claims.UserID)
	if errors.Is(err, core.ErrNotFound) {
		s.sessions.ClearCookie(w)
		SeeOther(r, loginPath).Write(w)
		return core.User{}, false
	}
	if err != nil {
		s.serverError(w, r, "load current user", err)
		return core.User{}, false
	}
	return u, true
}

// logMutation records a successful ledger or catalogue change.
func (s *Server) logMutation(r *http.Request, me core.User, op, kind, id string) {
	ctx := r.Context()
	fields := plog.NewFields().WithOperation(op).WithEntity(kind, id).WithUser(me.ID)
	plog.FromContext(ctx).InfoContext(ctx, "Entity changed", fields.ToSlice()...)
}

// persist runs fn when the form parsed cleanly. It returns true once fn
// succeeds; validation failures from either step go to rerender instead.
func (s *Server) persist(w http.ResponseWriter, r *http.Request, op string, errs core.ValidationErrors, fn func() error, rerender func(core.ValidationErrors)) bool {
	if len(errs) == 0 {
		err := fn()
		if err == nil {
			return true
		}
		verrs, ok := validationErrors(err)
		if !ok {
			s.fail(w, r, op, err)
			return false
		}
		errs = verrs
	}
	rerender(errs)
	return false
}

// deleted answers a successful delete. An HTMX DELETE swaps the row out with
// an empty body; a plain form post is redirected to the list.
func deleted(w http.ResponseWriter, r *http.Request, entity, list string) {
	if isHTMX(r) && r.Method == http.MethodDelete {
		NewHTMXResponse().TriggerLedgerChanged(entity).Write(w)
		return
	}
	SeeOther(r, list).TriggerLedgerChanged(entity).Write(w)
}
