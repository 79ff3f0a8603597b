package fakeapi

import (
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/simradar/internal/config"
)

// NewTestServer starts the fake backend on a loopback port. Callers close it.
func NewTestServer(store *Store) *httptest.Server {
	cfg := &config.Config{}
	cfg.Server.GinMode = gin.TestMode
	cfg.CORS.AllowOrigins = "*"
	return httptest.NewServer(New(cfg, store).Router())
}
