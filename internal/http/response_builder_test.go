package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusCreated).
		BodyHTML("<p>ok</p>").
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerLedgerChanged("payment").
		TriggerSuccessNotification("Pago registrado").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}
	for _, part := range []string{
		`"ledger:changed"`,
		`"entity":"payment"`,
		`"show-notification"`,
		`"type":"success"`,
		`"duration":3000`,
	} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestHTMXResponseBuilder_NoTriggers(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Write(w)

	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should not be set without triggers")
	}
}

func TestSeeOther(t *testing.T) {
	t.Run("plain form", func(t *testing.T) {
		w := httptest.NewRecorder()
		SeeOther(httptest.NewRequest(http.MethodPost, "/payments", nil), "/payments").Write(w)

		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/payments" {
			t.Errorf("got %d Location=%q", w.Code, w.Header().Get("Location"))
		}
	})

	t.Run("htmx", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/payments", nil)
		r.Header.Set("HX-Request", "true")
		w := httptest.NewRecorder()
		SeeOther(r, "/payments").Write(w)

		if w.Code != http.StatusOK || w.Header().Get("HX-Redirect") != "/payments" {
			t.Errorf("got %d HX-Redirect=%q", w.Code, w.Header().Get("HX-Redirect"))
		}
		if w.Header().Get("Location") != "" {
			t.Error("Location should not be set for htmx")
		}
	})
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		builder  *HTMXResponseBuilder
		wantCode int
	}{
		{"bad request", BadRequestError("Formato no válido"), http.StatusBadRequest},
		{"not found", NotFoundError("No encontrado"), http.StatusNotFound},
		{"conflict", ConflictError("En uso"), http.StatusConflict},
		{"internal", InternalServerError("Error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.wantCode {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantCode)
			}
			if !strings.Contains(w.Body.String(), `class="error"`) {
				t.Errorf("Body = %q", w.Body.String())
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(http.StatusBadRequest, "<script>alert(1)</script>").Write(w)

	if strings.Contains(w.Body.String(), "<script>") {
		t.Errorf("message not escaped: %q", w.Body.String())
	}
}
