package http

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"panini/internal/core"
	"panini/internal/export"
	plog "panini/internal/log"
)

// exportAll lifts the row limit (SQLite treats a negative LIMIT as none).
const exportAll = -1

// handleExport downloads every transaction and payment as an Excel workbook.
// The workbook is built in memory so a failure can still answer 500.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var (
		transactions []core.TransactionDetail
		payments     []core.PaymentDetail
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		transactions, err = s.svc.Transactions.List(gctx, exportAll)
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.svc.Payments.ListPayments(gctx, exportAll)
		return err
	})
	if err := g.Wait(); err != nil {
		s.serverError(w, r, "load export rows", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, transactions, payments); err != nil {
		s.serverError(w, r, "write workbook", err)
		return
	}

	filename := "panini-" + s.now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)

	plog.FromContext(ctx).InfoContext(ctx, "Ledger exported",
		plog.FieldOperation, plog.OpExport,
		plog.FieldUserID, me.ID,
		"transactions", len(transactions),
		"payments", len(payments))
}
