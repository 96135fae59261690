package routes

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kolozjnr/hovertask/controllers"
	"github.com/kolozjnr/hovertask/database"
	"github.com/kolozjnr/hovertask/middleware"
	"github.com/kolozjnr/hovertask/services"
	"github.com/kolozjnr/hovertask/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "hovertask-api",
	})
}

func InitRouter() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// CORS origins from CORS_ALLOWED_ORIGINS (comma-separated) plus defaults
	origins := []string{
		"https://hovertask.com", "https://app.hovertask.com",
		"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:3000", "http://127.0.0.1:8080",
	}
	if originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS"); originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v1").Subrouter()
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Verify endpoint gets its own limiter: gateway redirects plus client
	// polling land here.
	verifyLimiter := middleware.NewWebhookLimiter(500, time.Hour, strings.Split(os.Getenv("PAYSTACK_IP_WHITELIST"), ","))

	// Wiring
	gateway := utils.NewPaystackClient()
	files, err := utils.NewS3Storage()
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	taskSvc := services.NewTaskService(database.DB)
	settlementSvc := services.NewSettlementService(database.DB)
	notifier := services.NewWalletNotifier(database.DB)
	paymentSvc := services.NewPaymentService(database.DB, gateway, settlementSvc, notifier)

	taskController := controllers.NewTaskController(taskSvc, settlementSvc, files)
	walletController := controllers.NewWalletController(paymentSvc)
	orderController := controllers.NewOrderController(paymentSvc)

	// Task lifecycle
	tasks := api.PathPrefix("/tasks").Subrouter()
	tasks.Use(middleware.AuthMiddleware)
	tasks.Handle("/create-task", http.HandlerFunc(taskController.CreateTask)).Methods(http.MethodPost)
	tasks.Handle("/update-task/{id}", http.HandlerFunc(taskController.UpdateTask)).Methods(http.MethodPost)
	tasks.Handle("/show-all-task", http.HandlerFunc(taskController.ListTasks)).Methods(http.MethodGet)
	tasks.Handle("/show-task/{id}", http.HandlerFunc(taskController.GetTask)).Methods(http.MethodGet)
	tasks.Handle("/submit-task/{id}", http.HandlerFunc(taskController.SubmitTask)).Methods(http.MethodPost)
	tasks.Handle("/approve-task/{id}", http.HandlerFunc(taskController.ApproveTask)).Methods(http.MethodPost)
	tasks.Handle("/approve-completed-task/{id}", http.HandlerFunc(taskController.ApproveCompletedTask)).Methods(http.MethodPost)
	tasks.Handle("/reject-completed-task/{id}", http.HandlerFunc(taskController.RejectCompletedTask)).Methods(http.MethodPost)
	tasks.Handle("/delete-task/{id}", http.HandlerFunc(taskController.DeleteTask)).Methods(http.MethodDelete)
	tasks.Handle("/pending-task", http.HandlerFunc(taskController.PendingTasks)).Methods(http.MethodGet)
	tasks.Handle("/completed-task", http.HandlerFunc(taskController.CompletedTasks)).Methods(http.MethodGet)
	tasks.Handle("/rejected-task", http.HandlerFunc(taskController.RejectedTasks)).Methods(http.MethodGet)
	tasks.Handle("/task-history", http.HandlerFunc(taskController.TaskHistory)).Methods(http.MethodGet)

	// Wallet funding and settlement
	wallet := api.PathPrefix("/wallet").Subrouter()
	wallet.Use(middleware.AuthMiddleware)
	wallet.Handle("/initialize-payment", http.HandlerFunc(walletController.InitializePayment)).Methods(http.MethodPost)
	wallet.Handle("/verify-payment/{reference}", verifyLimiter.Middleware(http.HandlerFunc(walletController.VerifyPayment))).Methods(http.MethodGet)
	wallet.Handle("/balance", http.HandlerFunc(walletController.GetBalance)).Methods(http.MethodGet)

	// Marketplace checkout rides the same gateway and verify flow
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(middleware.AuthMiddleware)
	orders.Handle("/checkout", http.HandlerFunc(orderController.Checkout)).Methods(http.MethodPost)

	api.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	return r
}
