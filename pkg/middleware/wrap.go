package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// WrapHandle applies net/http middleware to a single httprouter route.
// Middleware runs in the order given, outermost first.
func WrapHandle(h httprouter.Handle, mws ...func(http.Handler) http.Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var inner http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h(w, r, ps)
		})
		for i := len(mws) - 1; i >= 0; i-- {
			inner = mws[i](inner)
		}
		inner.ServeHTTP(w, r)
	}
}
