//go:build integration
// +build integration

package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
)

// newFakeMeilisearch serves a fixed set of documentation hits for any query
// except "nothing", which matches no documents.
func newFakeMeilisearch() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/search") {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path != "/indexes/web_docs/search" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Index not found.","code":"index_not_found","type":"invalid_request","link":""}`))
			return
		}

		body, _ := io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(string(body), `"q":"nothing"`) {
			w.Write([]byte(`{"hits":[]}`))
			return
		}
		w.Write([]byte(`{"hits":[
			{"url":"https://docs.example.com/intro","hierarchy":{"lvl0":"Intro"},"_formatted":{"content":"An **example**"}},
			{"url":"https://docs.example.com/tools","content":"Tool use overview"}
		]}`))
	}))
}

const fakeResults = "**Result 1:** Intro\n**URL:** https://docs.example.com/intro\n**Content:** An **example**\n" +
	"\n\n" +
	"**Result 2:** https://docs.example.com/tools\n**URL:** https://docs.example.com/tools\n**Content:** Tool use overview\n"
