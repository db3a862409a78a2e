package http

import (
	"net/http"

	"panini/internal/core"
	plog "panini/internal/log"
)

const (
	entityCategory = "category"
	entityUser     = "user"
	entityReminder = "reminder"
)

// Categories

type categoryRowData struct {
	core.Category
	Spent core.Money
}

type categoriesData struct {
	Month MonthParams
	Rows  []categoryRowData
	Total core.Money
}

// handleListCategories shows every category with what was spent on it in the
// requested month. Categories without spending show zero.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	month := ParseMonthParams(r.URL.Query(), s.now())

	cats, err := s.svc.Categories.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list categories", err)
		return
	}
	start, end := monthRange(month)
	totals, err := s.svc.Reports.TotalSpentByCategory(r.Context(), start, end)
	if err != nil {
		s.serverError(w, r, "category totals", err)
		return
	}

	data := categoriesData{Month: month, Total: totals.Total()}
	for _, c := range cats {
		data.Rows = append(data.Rows, categoryRowData{Category: c, Spent: totals.Get(c.ID)})
	}
	s.render(w, r, http.StatusOK, "categories.html", view{Title: "Categorías", Nav: "categories", Me: me, Data: data})
}

func (s *Server) renderCategoryForm(w http.ResponseWriter, r *http.Request, me core.User, status int, c core.Category, errs core.ValidationErrors) {
	title := "Nueva categoría"
	if c.ID != "" {
		title = "Editar categoría"
	}
	s.render(w, r, status, "category_form.html", view{Title: title, Nav: "categories", Me: me, Errors: errs, Data: c})
}

func (s *Server) handleNewCategory(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.renderCategoryForm(w, r, me, http.StatusOK, core.Category{Color: "#64748b", Icon: "tag"}, nil)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	f, err := newFormReader(r)
	if err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	c := parseCategoryForm(f)
	var created core.Category
	saved := s.persist(w, r, "create category", nil, func() (err error) {
		created, err = s.svc.Categories.Create(r.Context(), c)
		return err
	}, func(errs core.ValidationErrors) {
		s.renderCategoryForm(w, r, me, http.StatusUnprocessableEntity, c, errs)
	})
	if !saved {
		return
	}
	s.logMutation(r, me, plog.OpCreate, entityCategory, created.ID)
	SeeOther(r, "/categories").Write(w)
}

func (s *Server) handleEditCategory(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	c, err := s.svc.Categories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "get category", err)
		return
	}
	s.renderCategoryForm(w, r, me, http.StatusOK, c, nil)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	f, err := newFormReader(r)
	if err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	c := parseCategoryForm(f)
	c.ID = r.PathValue("id")
	saved := s.persist(w, r, "update category", nil, func() error {
		_, err := s.svc.Categories.Update(r.Context(), c)
		return err
	}, func(errs core.ValidationErrors) {
		s.renderCategoryForm(w, r, me, http.StatusUnprocessableEntity, c, errs)
	})
	if !saved {
		return
	}
	s.logMutation(r, me, plog.OpUpdate, entityCategory, c.ID)
	SeeOther(r, "/categories").Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.svc.Categories.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete category", err)
		return
	}
	s.logMutation(r, me, plog.OpDelete, entityCategory, id)
	deleted(w, r, entityCategory, "/categories")
}

// Users

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	users, err := s.svc.Users.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list users", err)
		return
	}
	s.render(w, r, http.StatusOK, "users.html", view{Title: "Miembros", Nav: "users", Me: me, Data: users})
}

func (s *Server) renderUserForm(w http.ResponseWriter, r *http.Request, me core.User, status int, u core.User, errs core.ValidationErrors) {
	title := "Nuevo miembro"
	if u.ID != "" {
		title = "Editar miembro"
	}
	s.render(w, r, status, "user_form.html", view{Title: title, Nav: "users", Me: me, Errors: errs, Data: u})
}

func (s *Server) handleNewUser(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.renderUserForm(w, r, me, http.StatusOK, core.User{}, nil)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	f, err := newFormReader(r)
	if err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	u := parseUserForm(f)
	var created core.User
	saved := s.persist(w, r, "create user", nil, func() (err error) {
		created, err = s.svc.Users.Create(r.Context(), u)
		return err
	}, func(errs core.ValidationErrors) {
		s.renderUserForm(w, r, me, http.StatusUnprocessableEntity, u, errs)
	})
	if !saved {
		return
	}
	s.logMutation(r, me, plog.OpCreate, entityUser, created.ID)
	SeeOther(r, "/users").Write(w)
}

func (s *Server) handleEditUser(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	u, err := s.svc.Users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "get user", err)
		return
	}
	s.renderUserForm(w, r, me, http.StatusOK, u, nil)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	f, err := newFormReader(r)
	if err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	u := parseUserForm(f)
	u.ID = r.PathValue("id")
	saved := s.persist(w, r, "update user", nil, func() error {
		_, err := s.svc.Users.Update(r.Context(), u)
		return err
	}, func(errs core.ValidationErrors) {
		s.renderUserForm(w, r, me, http.StatusUnprocessableEntity, u, errs)
	})
	if !saved {
		return
	}
	s.logMutation(r, me, plog.OpUpdate, entityUser, u.ID)
	SeeOther(r, "/users").Write(w)
}

// handleDeleteUser refuses to delete the signed in member.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == me.ID {
		ConflictError("No puedes borrar tu propio usuario").Write(w)
		return
	}
	if err := s.svc.Users.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete user", err)
		return
	}
	s.logMutation(r, me, plog.OpDelete, entityUser, id)
	deleted(w, r, entityUser, "/users")
}

// Reminders

type remindersData struct {
	Reminders []core.Reminder
	Upcoming  []core.Reminder
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	all, err := s.svc.Reminders.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list reminders", err)
		return
	}
	upcoming, err := s.svc.Reminders.Upcoming(r.Context(), s.now())
	if err != nil {
		s.serverError(w, r, "upcoming reminders", err)
		return
	}
	s.render(w, r, http.StatusOK, "reminders.html", view{
		Title: "Recordatorios", Nav: "reminders", Me: me,
		Data: remindersData{Reminders: all, Upcoming: upcoming},
	})
}

func (s *Server) renderReminderForm(w http.ResponseWriter, r *http.Request, me core.User, status int, form reminderForm, errs core.ValidationErrors) {
	title := "Nuevo recordatorio"
	if form.ID != "" {
		title = "Editar recordatorio"
	}
	s.render(w, r, status, "reminder_form.html", view{Title: title, Nav: "reminders", Me: me, Errors: errs, Data: form})
}

func (s *Server) handleNewReminder(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	form := reminderForm{
		Date:   s.now().Format(dateLayout),
		AllDay: true,
		Color:  "#f59e0b",
		Repeat: string(core.RepeatNever),
	}
	s.renderReminderForm(w, r, me, http.StatusOK, form, nil)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	f, err := newFormReader(r)
	if err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	form := parseReminderForm(f)
	rem, errs := form.reminder()
	var created core.Reminder
	saved := s.persist(w, r, "create reminder", errs, func() (err error) {
		created, err = s.svc.Reminders.Create(r.Context(), rem)
		return err
	}, func(errs core.ValidationErrors) {
		s.renderReminderForm(w, r, me, http.StatusUnprocessableEntity, form, errs)
	})
	if !saved {
		return
	}
	s.logMutation(r, me, plog.OpCreate, entityReminder, created.ID)
	SeeOther(r, "/reminders").Write(w)
}

func (s *Server) handleEditReminder(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	rem, err := s.svc.Reminders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "get reminder", err)
		return
	}
	s.renderReminderForm(w, r, me, http.StatusOK, reminderFormFrom(rem), nil)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	f, err := newFormReader(r)
	if err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	form := parseReminderForm(f)
	form.ID = r.PathValue("id")
	rem, errs := form.reminder()
	saved := s.persist(w, r, "update reminder", errs, func() error {
		_, err := s.svc.Reminders.Update(r.Context(), rem)
		return err
	}, func(errs core.ValidationErrors) {
		s.renderReminderForm(w, r, me, http.StatusUnprocessableEntity, form, errs)
	})
	if !saved {
		return
	}
	s.logMutation(r, me, plog.OpUpdate, entityReminder, form.ID)
	SeeOther(r, "/reminders").Write(w)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.svc.Reminders.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete reminder", err)
		return
	}
	s.logMutation(r, me, plog.OpDelete, entityReminder, id)
	deleted(w, r, entityReminder, "/reminders")
}
