package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/txnhub/txnhub/internal/domain/transaction"
	"github.com/txnhub/txnhub/internal/http/handlers"
)

func bindTarget() *gin.Engine {
	r := gin.New()

	r.POST("/bind", func(c *gin.Context) {
		var req transaction.CreateTransactionRequest

		if !handlers.BindJSON(c, &req) {
			return
		}

		c.Status(http.StatusOK)
	})

	return r
}

type validationBody struct {
	Error struct {
		Code    string `json:"code"`
		Details struct {
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func TestBindJSONFieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantRule  string
	}{
		{
			name:      "missing_amount",
			body:      `{"description":"x","date":"2025-01-02"}`,
			wantField: "amount",
			wantRule:  "required",
		},
		{
			name:      "non_positive_amount",
			body:      `{"amount":-1,"description":"x","date":"2025-01-02"}`,
			wantField: "amount",
			wantRule:  "gt",
		},
		{
			name:      "bad_date",
			body:      `{"amount":1,"description":"x","date":"01/02/2025"}`,
			wantField: "date",
			wantRule:  "datetime",
		},
	}

	r := bindTarget()

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("got status %d, want 422, body=%s", w.Code, w.Body.String())
			}

			var body validationBody

			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if body.Error.Code != "validation_error" {
				t.Errorf("error code = %q, want %q", body.Error.Code, "validation_error")
			}

			found := false

			for _, fe := range body.Error.Details.Fields {
				if fe.Field == tt.wantField && fe.Rule == tt.wantRule {
					found = true
				}
			}

			if !found {
				t.Errorf("no field error %s/%s in %+v", tt.wantField, tt.wantRule, body.Error.Details.Fields)
			}
		})
	}
}

func TestBindJSONMalformedBody(t *testing.T) {
	r := bindTarget()

	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422, body=%s", w.Code, w.Body.String())
	}
}
