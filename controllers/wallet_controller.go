package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kolozjnr/hovertask/services"
	"github.com/kolozjnr/hovertask/utils"

	"github.com/gorilla/mux"
)

type WalletController struct {
	Payments *services.PaymentService
}

func NewWalletController(payments *services.PaymentService) *WalletController {
	return &WalletController{Payments: payments}
}

type fundWalletRequest struct {
	Amount float64 `json:"amount" validate:"required"`
}

// POST /v1/wallet/initialize-payment
func (c *WalletController) InitializePayment(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req fundWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}
	if errs, _ := utils.ValidateStruct(&req); len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	res, err := c.Payments.InitializePayment(r.Context(), uid, req.Amount, 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Payment initialized successfully!", Data: res})
}

// GET /v1/wallet/verify-payment/{reference}
func (c *WalletController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	if reference == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Reference is required"})
		return
	}

	res, err := c.Payments.VerifyPayment(r.Context(), reference)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Transaction not found"})
			return
		}
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Payment verified successfully", Data: res})
}

// GET /v1/wallet/balance
func (c *WalletController) GetBalance(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	balance, err := c.Payments.GetBalance(uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Balance retrieved successfully", Data: map[string]float64{"balance": balance}})
}
