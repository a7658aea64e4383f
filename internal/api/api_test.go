package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/internal/api"
	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/mailbox"
	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/render"
)

type stubDispatcher struct {
	last mailer.SendParams
	id   string
	err  error
}

func (s *stubDispatcher) Send(_ context.Context, params mailer.SendParams) (string, error) {
	s.last = params
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

func newRouter(d api.Dispatcher, token string) http.Handler {
	return api.NewRouter(d, api.Config{Token: token}, logger.Noop())
}

func postSend(t *testing.T, h http.Handler, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := newRouter(&stubDispatcher{}, "")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSend(t *testing.T) {
	t.Parallel()

	t.Run("success envelope", func(t *testing.T) {
		t.Parallel()

		d := &stubDispatcher{id: "msg-42"}
		rec := postSend(t, newRouter(d, ""), `{
			"to": "alice@example.com",
			"subject": "Hi",
			"template": "welcome",
			"vars": {"name": "Alice", "trial": {"ends": "tomorrow"}}
		}`, "")

		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp["status"])
		assert.Equal(t, "msg-42", resp["id"])

		assert.Equal(t, "alice@example.com", d.last.To)
		assert.Equal(t, "Hi", d.last.Subject)
		assert.Equal(t, "welcome", d.last.Template)
		require.Contains(t, d.last.Vars, "name")
		require.Contains(t, d.last.Vars, "trial")
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		t.Parallel()

		rec := postSend(t, newRouter(&stubDispatcher{}, ""), `{not json`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "error")
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()

		rec := postSend(t, newRouter(&stubDispatcher{}, ""), `{"to":"a@x.com"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("error status mapping", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			err  error
			want int
		}{
			{"unknown template", render.ErrTemplateNotFound, http.StatusNotFound},
			{"undefined variable", render.ErrUndefinedVariable, http.StatusUnprocessableEntity},
			{"render failure", render.ErrRender, http.StatusUnprocessableEntity},
			{"invalid recipient", mailbox.ErrInvalidMailbox, http.StatusUnprocessableEntity},
			{"empty recipient list", mailbox.ErrEmptyRecipientList, http.StatusUnprocessableEntity},
			{"header injection", mailer.ErrInvalidHeaderValue, http.StatusUnprocessableEntity},
			{"transport failure", errors.Join(mailer.ErrSendFailed, errors.New("boom")), http.StatusInternalServerError},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				d := &stubDispatcher{err: tt.err}
				rec := postSend(t, newRouter(d, ""), `{"to":"a@x.com","template":"welcome"}`, "")
				assert.Equal(t, tt.want, rec.Code)
				assert.Contains(t, rec.Body.String(), "error")
			})
		}
	})
}

func TestBearerAuth(t *testing.T) {
	t.Parallel()

	const body = `{"to":"a@x.com","template":"welcome"}`

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()

		rec := postSend(t, newRouter(&stubDispatcher{id: "x"}, "secret"), body, "secret")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		t.Parallel()

		d := &stubDispatcher{id: "x"}
		rec := postSend(t, newRouter(d, "secret"), body, "nope")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, d.last.Template, "dispatcher must not run")
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()

		rec := postSend(t, newRouter(&stubDispatcher{id: "x"}, "secret"), body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("auth disabled when unconfigured", func(t *testing.T) {
		t.Parallel()

		rec := postSend(t, newRouter(&stubDispatcher{id: "x"}, ""), body, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("health probe is always open", func(t *testing.T) {
		t.Parallel()

		h := newRouter(&stubDispatcher{}, "secret")
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generated when absent", func(t *testing.T) {
		t.Parallel()

		h := newRouter(&stubDispatcher{}, "")
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("upstream id preserved", func(t *testing.T) {
		t.Parallel()

		h := newRouter(&stubDispatcher{}, "")
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "upstream-7")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "upstream-7", rec.Header().Get("X-Request-ID"))
	})
}
