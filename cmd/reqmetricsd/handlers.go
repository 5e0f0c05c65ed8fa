package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"reqmetrics/internal/binding"
	"reqmetrics/internal/metrics"
)

// Order is the resource served by the unnamed order route. Its type names the route in metrics.
type Order struct {
	ID int
}

var errEmptyCart = errors.New("checkout: empty cart")

// newRouter creates the example service's router with the metrics binding installed.
func newRouter(b *binding.Binding) *mux.Router {
	h := &handlers{binding: b}

	router := mux.NewRouter()
	router.Use(b.Middleware)
	router.HandleFunc("/", h.home).Methods(http.MethodGet).Name("home")
	router.HandleFunc("/checkout", h.checkout).Methods(http.MethodPost).Name("checkout")
	router.HandleFunc("/report", h.report).Methods(http.MethodGet).Name("Report")
	router.HandleFunc("/orders/{id:[0-9]+}", h.order).Methods(http.MethodGet)

	return router
}

type handlers struct {
	binding *binding.Binding
}

// utility fetches the request's metrics utility; emission problems never fail the request.
func (h *handlers) utility(r *http.Request) *metrics.Utility {
	utility, err := binding.Metrics(r.Context())
	if err != nil {
		h.binding.ConsumeError(r.Context(), err)
		return metrics.NewUtility(metrics.NewNoopSink(), "")
	}

	return utility
}

// emit reports a failed emission without failing the request.
func (h *handlers) emit(r *http.Request, err error) {
	if err != nil {
		h.binding.ConsumeError(r.Context(), err)
	}
}

func (h *handlers) home(w http.ResponseWriter, r *http.Request) {
	h.emit(r, h.utility(r).Incr(metrics.Name("pageviews"), 1, metrics.PerRoute(true)))

	fmt.Fprintln(w, "ok")
}

func (h *handlers) checkout(w http.ResponseWriter, r *http.Request) {
	u := h.utility(r)

	items, _ := strconv.Atoi(r.URL.Query().Get("items"))
	h.emit(r, u.Gauge(metrics.Path("cart", "items"), int64(items), metrics.PerRoute(true)))

	err := u.Timer(metrics.Path("checkout", "process"), metrics.PerRoute(true)).Time(func() error {
		if items <= 0 {
			return errEmptyCart
		}

		return nil
	})

	switch {
	case errors.Is(err, errEmptyCart):
		h.emit(r, u.Incr(metrics.Path("checkout", "rejected"), 1))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case err != nil:
		// the timer itself failed to emit
		h.emit(r, err)
		fmt.Fprintln(w, "ok")
	default:
		h.emit(r, u.Incr(metrics.Path("checkout", "completed"), 1, metrics.PerRoute(true)))
		fmt.Fprintln(w, "ok")
	}
}

func (h *handlers) report(w http.ResponseWriter, r *http.Request) {
	u := h.utility(r)

	u.MarkStart(metrics.Name("report"))
	for section := 0; section < 3; section++ {
		key := metrics.Segments{metrics.Name("section"), metrics.Int(section)}

		u.MarkStart(key)
		time.Sleep(time.Millisecond)
		h.emit(r, u.MarkStop(key, metrics.WithPrefix(metrics.Name("report"))))
	}
	h.emit(r, u.MarkStop(metrics.Name("report"), metrics.WithSuffix(metrics.Name("done"))))

	fmt.Fprintln(w, "ok")
}

func (h *handlers) order(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if scope, ok := binding.ScopeFromContext(r.Context()); ok {
		scope.SetResource(&Order{ID: id})
	}

	h.emit(r, h.utility(r).Incr(metrics.Name("lookups"), 1, metrics.PerRoute(true)))

	fmt.Fprintf(w, "order %d\n", id)
}
