package controllers

import (
	"net/http"

	"github.com/kolozjnr/hovertask/services"
	"github.com/kolozjnr/hovertask/utils"
)

type OrderController struct {
	Payments *services.PaymentService
}

func NewOrderController(payments *services.PaymentService) *OrderController {
	return &OrderController{Payments: payments}
}

// POST /v1/orders/checkout
//
// Builds an order from the caller's pending cart rows and hands the total to
// the payment gateway. The order stays pending until its reference verifies.
func (c *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	res, err := c.Payments.CheckoutCart(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Payment initialized successfully!", Data: res})
}
