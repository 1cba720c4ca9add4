package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/tokenstore"
	"github.com/stretchr/testify/require"
)

type customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestGetPage(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"data":[{"id":"c-1","name":"Ana"},{"id":"c-2","name":"Budi"}],"pagination":{"page":2,"limit":2,"total":5,"total_pages":3}}`))
	}))
	t.Cleanup(srv.Close)

	c := apiclient.New(srv.URL, tokenstore.NewMemoryStore())
	page, err := apiclient.GetPage[customer](context.Background(), c, "/customers", url.Values{"page": {"2"}, "limit": {"2"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, "Budi", page.Data[1].Name)
	require.Equal(t, apiclient.Pagination{Page: 2, Limit: 2, Total: 5, TotalPages: 3}, page.Pagination)
	require.Equal(t, "2", query.Get("page"))
}

func TestPutDataAndDelete(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"c-1","name":"Ana Updated"}}`))
	}))
	t.Cleanup(srv.Close)

	c := apiclient.New(srv.URL+"/api/v1/", tokenstore.NewMemoryStore())
	got, err := apiclient.PutData[customer](context.Background(), c, "customers/c-1", customer{Name: "Ana Updated"})
	require.NoError(t, err)
	require.Equal(t, "Ana Updated", got.Name)

	require.NoError(t, c.Delete(context.Background(), "/customers/c-1"))
	require.Equal(t, []string{"PUT /api/v1/customers/c-1", "DELETE /api/v1/customers/c-1"}, methods)
}

func TestAPIErrorMessageFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"customer not found"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		}
	}))
	t.Cleanup(srv.Close)

	c := apiclient.New(srv.URL, tokenstore.NewMemoryStore())

	_, err := c.Do(context.Background(), &apiclient.Request{Path: "/missing"})
	require.Equal(t, http.StatusNotFound, apiclient.StatusCode(err))
	require.Equal(t, "customer not found", apiclient.Message(err))

	_, err = c.Do(context.Background(), &apiclient.Request{Path: "/proxy"})
	require.Equal(t, http.StatusBadGateway, apiclient.StatusCode(err))
	require.Equal(t, http.StatusText(http.StatusBadGateway), apiclient.Message(err))
	require.Equal(t, 0, apiclient.StatusCode(nil))
}
