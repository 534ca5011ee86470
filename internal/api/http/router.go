package http

import (
	"net/http"

	"equiprent-backend/internal/service"

	"github.com/gorilla/mux"
)

// NewRouter wires every handler onto a gorilla/mux router.
func NewRouter(rentalSvc service.RentalService, equipmentSvc service.EquipmentService, customerSvc service.CustomerService) *mux.Router {
	rentals := NewRentalHandler(rentalSvc)
	equipment := NewEquipmentHandler(equipmentSvc)
	customers := NewCustomerHandler(customerSvc)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/rentals", rentals.Create).Methods(http.MethodPost)
	api.HandleFunc("/rentals", rentals.List).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}", rentals.Get).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}/totals", rentals.GetTotals).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}/invoice", rentals.GetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}/cancel", rentals.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/return", rentals.Return).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/payments", rentals.RecordPayment).Methods(http.MethodPost)

	api.HandleFunc("/equipment", equipment.Create).Methods(http.MethodPost)
	api.HandleFunc("/equipment", equipment.List).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id:[0-9]+}", equipment.Get).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id:[0-9]+}", equipment.Update).Methods(http.MethodPut)
	api.HandleFunc("/equipment/{id:[0-9]+}/availability", equipment.CheckAvailability).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id:[0-9]+}/stock", equipment.AdjustStock).Methods(http.MethodPost)

	api.HandleFunc("/customers", customers.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers", customers.List).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id:[0-9]+}", customers.Get).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id:[0-9]+}", customers.Update).Methods(http.MethodPut)

	return r
}
