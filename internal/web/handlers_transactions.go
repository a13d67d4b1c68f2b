package web

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/views"
)

// transactionFormFromRequest collects the raw form values so invalid
// input can be echoed back.
func transactionFormFromRequest(r *http.Request) views.TransactionForm {
	return views.TransactionForm{
		Title:    r.Form.Get("title"),
		Amount:   r.Form.Get("amount"),
		Category: r.Form.Get("category"),
		Date:     r.Form.Get("date"),
	}
}

func parseTransactionType(raw string) (core.TransactionType, bool) {
	switch core.TransactionType(strings.ToUpper(strings.TrimSpace(raw))) {
	case core.Income:
		return core.Income, true
	case core.Expense:
		return core.Expense, true
	}
	return "", false
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request").Write(w)
		return
	}

	txType, ok := parseTransactionType(r.Form.Get("type"))
	if !ok {
		BadRequestError("Unknown transaction type").Write(w)
		return
	}

	form := transactionFormFromRequest(r)
	tx, fieldErrs := form.Parse(txType)
	if len(fieldErrs) > 0 {
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "transaction_form.html", views.TransactionFormView{
			Type:   txType,
			Values: form,
			Errors: fieldErrs,
		})
		return
	}

	created, err := s.client.CreateTransaction(r.Context(), tx)
	if err != nil {
		s.handleAPIError(w, r, err)
		return
	}

	s.structured.LogTransactionSubmitted(r.Context(), applog.OpCreate, created.ID, created.Title, string(created.Type), created.Amount.Cents)
	s.publish(r, events.NewTransactionEvent(events.ActionCreated, created))

	NewHTMXResponse().
		TriggerTransactionCreated(created.ID).
		TriggerSuccessNotification(fmt.Sprintf("%s saved", created.Title)).
		BodyHTML(`<div class="success">Saved ` + template.HTMLEscapeString(created.Title) + `</div>`).
		Write(w)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		id, err := parseID(r.URL.Query().Get("id"))
		if err != nil {
			BadRequestError("Invalid transaction id").Write(w)
			return
		}
		view, err := views.BuildEdit(r.Context(), s.client, id)
		if err != nil {
			if errors.Is(err, views.ErrTransactionNotFound) {
				NotFoundError("Transaction not found").Write(w)
				return
			}
			s.handleAPIError(w, r, err)
			return
		}
		s.render(w, r, "edit_dialog.html", view)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			BadRequestError("Invalid request").Write(w)
			return
		}
		id, err := parseID(r.Form.Get("id"))
		if err != nil {
			BadRequestError("Invalid transaction id").Write(w)
			return
		}
		// The type travels as hidden state; the dialog never changes it.
		txType, ok := parseTransactionType(r.Form.Get("type"))
		if !ok {
			BadRequestError("Unknown transaction type").Write(w)
			return
		}

		form := transactionFormFromRequest(r)
		tx, fieldErrs := form.Parse(txType)
		if len(fieldErrs) > 0 {
			s.renderStatus(w, r, http.StatusUnprocessableEntity, "edit_dialog.html", views.EditView{
				Tx:     core.Transaction{ID: id, Type: txType},
				Values: form,
				Errors: fieldErrs,
			})
			return
		}

		updated, err := s.client.UpdateTransaction(r.Context(), id, tx)
		if err != nil {
			s.handleAPIError(w, r, err)
			return
		}

		s.structured.LogTransactionSubmitted(r.Context(), applog.OpUpdate, id, updated.Title, string(updated.Type), updated.Amount.Cents)
		s.publish(r, events.NewTransactionEvent(events.ActionUpdated, updated))

		NewHTMXResponse().
			TriggerTransactionUpdated(id).
			TriggerModalClose().
			TriggerSuccessNotification("Transaction updated").
			Write(w)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleConfirmDelete renders the confirmation modal. It performs no
// backend calls; only the confirm POST does.
func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		BadRequestError("Invalid transaction id").Write(w)
		return
	}
	data := struct {
		ID    int64
		Title string
	}{ID: id, Title: strings.TrimSpace(r.URL.Query().Get("title"))}
	s.render(w, r, "confirm_delete.html", data)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request").Write(w)
		return
	}
	id, err := parseID(r.Form.Get("id"))
	if err != nil {
		BadRequestError("Invalid transaction id").Write(w)
		return
	}

	if err := s.client.DeleteTransaction(r.Context(), id); err != nil {
		s.handleAPIError(w, r, err)
		return
	}

	s.publish(r, events.NewDeleteEvent(id))

	NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerModalClose().
		TriggerSuccessNotification("Transaction deleted").
		Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	dl, err := s.client.Export(r.Context(), filterFromQuery(r))
	if err != nil {
		s.handleAPIError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Data)
}

// handleExportSheets appends the filtered transactions to the configured
// spreadsheet instead of downloading a CSV.
func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if s.appender == nil {
		NewHTMXResponse().
			Status(http.StatusConflict).
			TriggerErrorNotification("Sheets export is not configured").
			Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request").Write(w)
		return
	}

	f := core.Filter{
		Type:      strings.TrimSpace(r.Form.Get("type")),
		Category:  strings.TrimSpace(r.Form.Get("category")),
		StartDate: strings.TrimSpace(r.Form.Get("startDate")),
		EndDate:   strings.TrimSpace(r.Form.Get("endDate")),
	}
	txs, err := s.client.Transactions(r.Context(), f)
	if err != nil {
		s.handleAPIError(w, r, err)
		return
	}

	ref, err := s.appender.AppendTransactions(r.Context(), txs)
	if err != nil {
		slog.ErrorContext(r.Context(), "Sheets append failed", "error", err)
		NewHTMXResponse().
			Status(http.StatusBadGateway).
			TriggerErrorNotification("Could not write to the spreadsheet").
			Write(w)
		return
	}

	NewHTMXResponse().
		TriggerSuccessNotification(fmt.Sprintf("Exported %d transactions to Sheets", len(txs))).
		BodyHTML(`<div class="success">Exported to ` + template.HTMLEscapeString(ref) + `</div>`).
		Write(w)
}

// publish sends an activity event without affecting the response.
func (s *Server) publish(r *http.Request, event *events.TransactionEvent) {
	if err := s.publisher.Publish(r.Context(), event); err != nil {
		slog.WarnContext(r.Context(), "Event publish failed", "action", event.Action, "id", event.ID, "error", err)
	}
}
