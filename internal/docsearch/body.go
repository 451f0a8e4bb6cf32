package docsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/meilisearch/meilisearch-go"
)

// marshalRequest encodes request bodies for the Meilisearch client. Search
// bodies always carry q and limit, even an empty query or a zero limit,
// which the client's omitempty tags would otherwise drop.
func marshalRequest(v interface{}) ([]byte, error) {
	var req *meilisearch.SearchRequest
	switch r := v.(type) {
	case *meilisearch.SearchRequest:
		req = r
	case meilisearch.SearchRequest:
		req = &r
	default:
		return json.Marshal(v)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	query, err := json.Marshal(req.Query)
	if err != nil {
		return nil, err
	}
	fields["q"] = query
	fields["limit"] = json.RawMessage(strconv.FormatInt(req.Limit, 10))

	return json.Marshal(fields)
}

type nullBodyKey struct{}

// withNullBodyFlag returns a context under which nullBodyTransport reports
// a literal null response body through flag.
func withNullBodyFlag(ctx context.Context, flag *bool) context.Context {
	return context.WithValue(ctx, nullBodyKey{}, flag)
}

// nullBodyTransport flags 2xx responses whose body is the JSON literal null.
// The client skips decoding such bodies and hands back an empty response.
type nullBodyTransport struct {
	base http.RoundTripper
}

func (t nullBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	flag, ok := req.Context().Value(nullBodyKey{}).(*bool)
	if !ok || resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	*flag = bytes.Equal(bytes.TrimSpace(data), []byte("null"))

	return resp, nil
}
