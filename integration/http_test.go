//go:build integration
// +build integration

package integration

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/radutopala/meilidocs/internal/config"
	"github.com/radutopala/meilidocs/internal/docsearch"
	"github.com/radutopala/meilidocs/internal/mcp"
	"github.com/radutopala/meilidocs/internal/mcpclient"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// HTTPIntegrationTestSuite tests Streamable HTTP transport
type HTTPIntegrationTestSuite struct {
	suite.Suite
	meili  *httptest.Server
	server *httptest.Server
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// SetupSuite starts a fake Meilisearch and the meilidocs HTTP server
func (s *HTTPIntegrationTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 30*time.Second)

	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	s.meili = newFakeMeilisearch()

	cfg := config.Default()
	cfg.MeilisearchURL = s.meili.URL

	srv, err := mcp.NewServer("test-http-server", "1.0.0", cfg, s.logger)
	require.NoError(s.T(), err)

	s.server = httptest.NewServer(srv.HTTPHandler())
	s.T().Logf("Test HTTP server started at: %s", s.server.URL)
}

// TearDownSuite stops both servers
func (s *HTTPIntegrationTestSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.meili != nil {
		s.meili.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *HTTPIntegrationTestSuite) newClient() *mcpclient.Client {
	client, err := mcpclient.New(s.ctx, mcpclient.ServerConfig{URL: s.server.URL}, s.logger)
	require.NoError(s.T(), err, "Failed to create MCP client")
	s.T().Cleanup(func() { client.Close() })
	return client
}

// TestStreamableHTTPSearchDocs tests a search with results and progress
func (s *HTTPIntegrationTestSuite) TestStreamableHTTPSearchDocs() {
	client := s.newClient()

	text, failed, token, err := client.SearchDocs(s.ctx, "example")
	require.NoError(s.T(), err)
	require.False(s.T(), failed)
	require.Equal(s.T(), fakeResults, text)

	require.Eventually(s.T(), func() bool {
		return len(client.Progress(token)) == 2
	}, 5*time.Second, 10*time.Millisecond)
	require.Equal(s.T(), []string{"Searching indexed docs for: example", "Found 2 results"}, client.Progress(token))
}

// TestStreamableHTTPNoResults tests the empty result message
func (s *HTTPIntegrationTestSuite) TestStreamableHTTPNoResults() {
	client := s.newClient()

	text, failed, _, err := client.SearchDocs(s.ctx, "nothing")
	require.NoError(s.T(), err)
	require.False(s.T(), failed)
	require.Equal(s.T(), docsearch.NoResultsMessage, text)
}

// TestStreamableHTTPMeilisearchDown tests that an unreachable Meilisearch is reported as text
func (s *HTTPIntegrationTestSuite) TestStreamableHTTPMeilisearchDown() {
	cfg := config.Default()
	cfg.MeilisearchURL = "http://127.0.0.1:1"
	cfg.Timeout = time.Second

	srv, err := mcp.NewServer("down-server", "1.0.0", cfg, s.logger)
	require.NoError(s.T(), err)
	down := httptest.NewServer(srv.HTTPHandler())
	defer down.Close()

	client, err := mcpclient.New(s.ctx, mcpclient.ServerConfig{URL: down.URL}, s.logger)
	require.NoError(s.T(), err)
	defer client.Close()

	text, failed, token, err := client.SearchDocs(s.ctx, "example")
	require.NoError(s.T(), err)
	require.True(s.T(), failed)
	require.Contains(s.T(), text, docsearch.TransportErrorPrefix)

	require.Eventually(s.T(), func() bool {
		progress := client.Progress(token)
		return len(progress) == 2 && progress[1] == text
	}, 5*time.Second, 10*time.Millisecond)
}

// TestStreamableHTTPInvalidEndpoint tests error handling for invalid endpoint
func (s *HTTPIntegrationTestSuite) TestStreamableHTTPInvalidEndpoint() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := mcpclient.New(ctx, mcpclient.ServerConfig{URL: "http://localhost:99999/nonexistent"}, s.logger)
	if err == nil && client != nil {
		_, _, _, err = client.SearchDocs(ctx, "example")
		client.Close()
	}
	require.Error(s.T(), err, "Should fail to connect to invalid endpoint")
}

// TestNoTransport tests that a config without command or url is rejected
func (s *HTTPIntegrationTestSuite) TestNoTransport() {
	_, err := mcpclient.New(s.ctx, mcpclient.ServerConfig{}, s.logger)
	require.Error(s.T(), err)
}

// TestHTTPIntegrationSuite runs the test suite
func TestHTTPIntegrationSuite(t *testing.T) {
	suite.Run(t, new(HTTPIntegrationTestSuite))
}
