package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/oggyb/whatsapp-relay/internal/middleware"
	routes "github.com/oggyb/whatsapp-relay/internal/router"
)

type home struct{}

func (home) Index(w http.ResponseWriter, _ *http.Request)  {}
func (home) Health(w http.ResponseWriter, _ *http.Request) {}

type relay struct{}

func (relay) Relay(w http.ResponseWriter, _ *http.Request) {}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestNew_SetsRequestID(t *testing.T) {
	srv := New(":0", routes.AppDeps{Home: home{}, Relay: relay{}}, zerolog.Nop())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}
