package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Run("unwraps the data envelope", func(t *testing.T) {
		var auth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{"code": 0, "message": "OK", "data": {"name": "brand"}}`)
		}))
		defer srv.Close()

		var out struct {
			Name string `json:"name"`
		}
		c := New(Config{BaseURL: srv.URL, AccessToken: "tok-ttk"})
		require.NoError(t, c.Get(context.Background(), "/v1.3/thing/", nil, &out))

		assert.Equal(t, "Bearer tok-ttk", auth)
		assert.Equal(t, "brand", out.Name)
	})

	t.Run("nonzero envelope code is an error even on HTTP 200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code": 40100, "message": "invalid access token", "data": {}}`)
		}))
		defer srv.Close()

		err := New(Config{BaseURL: srv.URL, AccessToken: "bad"}).Get(context.Background(), "/v1.3/thing/", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "code 40100")
		assert.Contains(t, err.Error(), "invalid access token")
	})

	t.Run("HTTP errors surface status and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `denied`)
		}))
		defer srv.Close()

		err := New(Config{BaseURL: srv.URL, AccessToken: "tok"}).Get(context.Background(), "/v1.3/thing/", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})
}

func TestPaginate(t *testing.T) {
	t.Run("follows cursors while has_more", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("cursor") {
			case "":
				fmt.Fprint(w, `{"code": 0, "data": {"list": [{"id": "a"}, {"id": "b"}], "cursor": "c1", "has_more": true}}`)
			case "c1":
				fmt.Fprint(w, `{"code": 0, "data": {"list": [{"id": "c"}], "has_more": false}}`)
			}
		}))
		defer srv.Close()

		var ids []string
		c := New(Config{BaseURL: srv.URL, AccessToken: "tok"})
		err := c.Paginate(context.Background(), "/v1.3/list/", nil, "list", func(raw json.RawMessage) error {
			var item struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(raw, &item); err != nil {
				return err
			}
			ids = append(ids, item.ID)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})

	t.Run("reads endpoint-specific list keys", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code": 0, "data": {"creatives": [{"id": "x"}], "has_more": false}}`)
		}))
		defer srv.Close()

		var n int
		c := New(Config{BaseURL: srv.URL, AccessToken: "tok"})
		err := c.Paginate(context.Background(), "/v1.3/content/creative/list/", nil, "creatives", func(json.RawMessage) error {
			n++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("next_cursor is honored too", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("cursor") == "" {
				fmt.Fprint(w, `{"code": 0, "data": {"list": [{"id": "a"}], "next_cursor": "n1", "has_more": true}}`)
				return
			}
			fmt.Fprint(w, `{"code": 0, "data": {"list": [{"id": "b"}], "has_more": false}}`)
		}))
		defer srv.Close()

		var n int
		c := New(Config{BaseURL: srv.URL, AccessToken: "tok"})
		err := c.Paginate(context.Background(), "/v1.3/list/", nil, "list", func(json.RawMessage) error {
			n++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
