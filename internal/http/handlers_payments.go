package http

import (
	"net/http"

	"panini/internal/core"
	plog "panini/internal/log"
)

const entityPayment = "payment"

type paymentsData struct {
	Payments []core.PaymentDetail
}

type paymentFormData struct {
	Form  paymentForm
	Users []core.User
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	items, err := s.svc.Payments.ListPayments(r.Context(), listLimit)
	if err != nil {
		s.serverError(w, r, "list payments", err)
		return
	}
	s.render(w, r, http.StatusOK, "payments.html", view{
		Title: "Pagos", Nav: "payments", Me: me, Data: paymentsData{Payments: items},
	})
}

func (s *Server) renderPaymentForm(w http.ResponseWriter, r *http.Request, me core.User, status int, form paymentForm, errs core.ValidationErrors) {
	users, err := s.svc.Users.List(r.Context())
	if err != nil {
		s.serverError(w, r, "load payment form choices", err)
		return
	}
	title := "Nuevo pago"
	if form.ID != "" {
		title = "Editar pago"
	}
	s.render(w, r, status, "payment_form.html", view{
		Title:  title,
		Nav:    "payments",
		Me:     me,
		Errors: errs,
		Data:   paymentFormData{Form: form, Users: users},
	})
}

// handleNewPayment preselects the signed in member as sender and, when the
// household has exactly one other member, that member as receiver.
func (s *Server) handleNewPayment(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	form := paymentForm{SenderID: me.ID}
	users, err := s.svc.Users.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list users", err)
		return
	}
	var others []string
	for _, u := range users {
		if u.ID != me.ID {
			others = append(others, u.ID)
		}
	}
	if len(others) == 1 {
		form.ReceiverID = others[0]
	}
	s.renderPaymentForm(w, r, me, http.StatusOK, form, nil)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	f, err := newFormReader(r)
	if err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	form := parsePaymentForm(f)
	in, errs := form.input()
	var p core.Payment
	saved := s.persist(w, r, "record payment", errs, func() (err error) {
		p, err = s.svc.Payments.RecordPayment(r.Context(), in)
		return err
	}, func(errs core.ValidationErrors) {
		s.renderPaymentForm(w, r, me, http.StatusUnprocessableEntity, form, errs)
	})
	if !saved {
		return
	}

	s.logMutation(r, me, plog.OpCreate, entityPayment, p.ID)
	SeeOther(r, "/payments").
		TriggerLedgerChanged(entityPayment).
		TriggerSuccessNotification("Pago registrado").
		Write(w)
}

func (s *Server) handleEditPayment(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Payments.GetPayment(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "get payment", err)
		return
	}
	s.renderPaymentForm(w, r, me, http.StatusOK, paymentFormFrom(p), nil)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	f, err := newFormReader(r)
	if err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	id := r.PathValue("id")
	form := parsePaymentForm(f)
	form.ID = id
	in, errs := form.input()
	saved := s.persist(w, r, "update payment", errs, func() error {
		_, err := s.svc.Payments.UpdatePayment(r.Context(), id, in)
		return err
	}, func(errs core.ValidationErrors) {
		s.renderPaymentForm(w, r, me, http.StatusUnprocessableEntity, form, errs)
	})
	if !saved {
		return
	}

	s.logMutation(r, me, plog.OpUpdate, entityPayment, id)
	SeeOther(r, "/payments").TriggerLedgerChanged(entityPayment).Write(w)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.svc.Payments.DeletePayment(r.Context(), id); err != nil {
		s.fail(w, r, "delete payment", err)
		return
	}
	s.logMutation(r, me, plog.OpDelete, entityPayment, id)
	deleted(w, r, entityPayment, "/payments")
}
