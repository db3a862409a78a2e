package http

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"panini/internal/core"
	plog "panini/internal/log"
)

const (
	entityTransaction = "transaction"
	listLimit         = 200
)

type transactionsData struct {
	Transactions []core.TransactionDetail
	Search       string
}

type transactionFormData struct {
	Form       transactionForm
	Users      []core.User
	Categories []core.Category
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	search := sanitizeInput(r.URL.Query().Get("search"))

	items, err := s.svc.Transactions.Search(r.Context(), search, listLimit)
	if err != nil {
		s.serverError(w, r, "list transactions", err)
		return
	}

	data := transactionsData{Transactions: items, Search: search}
	// Search-as-you-type only swaps the table.
	if isHTMX(r) && r.Header.Get("HX-Target") == "transactions-table" {
		s.renderPartial(w, r, "transactions_table", data)
		return
	}
	s.render(w, r, http.StatusOK, "transactions.html", view{Title: "Movimientos", Nav: "transactions", Me: me, Data: data})
}

// loadChoices fetches the members and categories offered by the transaction form.
func (s *Server) loadChoices(ctx context.Context) ([]core.User, []core.Category, error) {
	var (
		users []core.User
		cats  []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.svc.Users.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = s.svc.Categories.List(gctx)
		return err
	})
	return users, cats, g.Wait()
}

func (s *Server) renderTransactionForm(w http.ResponseWriter, r *http.Request, me core.User, status int, form transactionForm, errs core.ValidationErrors) {
	users, cats, err := s.loadChoices(r.Context())
	if err != nil {
		s.serverError(w, r, "load transaction form choices", err)
		return
	}
	title := "Nuevo movimiento"
	if form.ID != "" {
		title = "Editar movimiento"
	}
	s.render(w, r, status, "transaction_form.html", view{
		Title:  title,
		Nav:    "transactions",
		Me:     me,
		Errors: errs,
		Data:   transactionFormData{Form: form, Users: users, Categories: cats},
	})
}

func (s *Server) handleNewTransaction(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.renderTransactionForm(w, r, me, http.StatusOK, newTransactionForm(me, s.now()), nil)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	f, err := newFormReader(r)
	if err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	form := parseTransactionForm(f)
	in, errs := form.input()
	var id string
	saved := s.persist(w, r, "create transaction", errs, func() error {
		t, err := s.svc.Transactions.Create(r.Context(), in)
		id = t.ID
		return err
	}, func(errs core.ValidationErrors) {
		s.renderTransactionForm(w, r, me, http.StatusUnprocessableEntity, form, errs)
	})
	if !saved {
		return
	}

	s.logMutation(r, me, plog.OpCreate, entityTransaction, id)
	next := "/transactions"
	if form.AddAnother {
		next = "/transactions/new"
	}
	SeeOther(r, next).
		TriggerLedgerChanged(entityTransaction).
		TriggerSuccessNotification("Movimiento guardado").
		Write(w)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	t, err := s.svc.Transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "get transaction", err)
		return
	}
	s.renderTransactionForm(w, r, me, http.StatusOK, transactionFormFrom(t), nil)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
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
	form := parseTransactionForm(f)
	form.ID = id
	in, errs := form.input()
	saved := s.persist(w, r, "update transaction", errs, func() error {
		_, err := s.svc.Transactions.Update(r.Context(), id, in)
		return err
	}, func(errs core.ValidationErrors) {
		s.renderTransactionForm(w, r, me, http.StatusUnprocessableEntity, form, errs)
	})
	if !saved {
		return
	}

	s.logMutation(r, me, plog.OpUpdate, entityTransaction, id)
	SeeOther(r, "/transactions").TriggerLedgerChanged(entityTransaction).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.svc.Transactions.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete transaction", err)
		return
	}
	s.logMutation(r, me, plog.OpDelete, entityTransaction, id)
	deleted(w, r, entityTransaction, "/transactions")
}
