package evalsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/eval"
)

func newTestService(url string) eval.Evaluator {
	conf := &core.Config{}
	conf.Evaluator.Address = url
	return NewHTTPService(conf)
}

func Test_httpService_Execute(t *testing.T) {
	secret := eval.SecretContext{Token: "tok", ID: 5}
	data := eval.DataContext{Final: 80, Total: 70}

	t.Run("ships code and both contexts", func(t *testing.T) {
		var got executeRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/execute", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"result": true}`))
		}))
		defer srv.Close()

		passed, err := newTestService(srv.URL).Execute(context.Background(), "return total >= 60", secret, data)
		assert.NoError(t, err)
		assert.True(t, passed)
		assert.Equal(t, "return total >= 60", got.Code)
		assert.Equal(t, secret, got.SecretContext)
		assert.Equal(t, 70.0, got.DataContext.Total)
	})

	t.Run("result coercion", func(t *testing.T) {
		tests := []struct {
			name    string
			body    string
			want    bool
			wantErr string
		}{
			{name: "true", body: `{"result": true}`, want: true},
			{name: "false", body: `{"result": false}`, want: false},
			{name: "non-zero number", body: `{"result": 70}`, want: true},
			{name: "zero", body: `{"result": 0}`, want: false},
			{name: "non-empty string", body: `{"result": "passed"}`, want: true},
			{name: "empty string", body: `{"result": ""}`, want: false},
			{name: "null", body: `{"result": null}`, want: false},
			{name: "object", body: `{"result": {"passed": false}}`, want: true},
			{name: "array", body: `{"result": []}`, want: true},
			{name: "missing result", body: `{}`, wantErr: "no result"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(tt.body))
				}))
				defer srv.Close()

				passed, err := newTestService(srv.URL).Execute(context.Background(), "src", secret, data)
				if tt.wantErr != "" {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr)
					return
				}
				assert.NoError(t, err)
				assert.Equal(t, tt.want, passed)
			})
		}
	})

	t.Run("evaluator error is surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error": "unknown identifier 'lol'"}`))
		}))
		defer srv.Close()

		_, err := newTestService(srv.URL).Execute(context.Background(), "lol", secret, data)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown identifier")
	})

	t.Run("non-200 without error body fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := newTestService(srv.URL).Execute(context.Background(), "src", secret, data)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("canceled context aborts the call", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"result": true}`))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestService(srv.URL).Execute(ctx, "src", secret, data)
		assert.Error(t, err)
	})
}
