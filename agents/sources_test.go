package agents

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/titled":
			fmt.Fprint(w, "<html><head><title>Great Article</title></head><body></body></html>")
		case "/untitled":
			fmt.Fprint(w, "<html><head></head><body>no title</body></html>")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	sources := []string{
		server.URL + "/titled",
		server.URL + "/untitled",
		server.URL + "/missing",
		"Smith et al., 2019",
	}

	enriched := enrichSources(context.Background(), sources)
	assert.Equal(t, []string{
		server.URL + "/titled (Great Article)",
		server.URL + "/untitled",
		server.URL + "/missing",
		"Smith et al., 2019",
	}, enriched)
}

func TestFetchPageTitleUnreachable(t *testing.T) {
	assert.Empty(t, fetchPageTitle(context.Background(), "http://127.0.0.1:1/nope"))
}
