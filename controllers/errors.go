package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/kolozjnr/hovertask/services"
	"github.com/kolozjnr/hovertask/utils"
)

// writeServiceError maps service layer failures onto the response envelope.
// Anything unrecognised is logged and answered with a generic 500 so internal
// detail never reaches the client.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		utils.WriteValidationErrors(w, verr.Fields)
		return
	}
	var gerr *services.GatewayError
	if errors.As(err, &gerr) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: gerr.Message})
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Record not found"})
	case errors.Is(err, services.ErrAlreadyProcessed):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Transaction already processed."})
	case errors.Is(err, services.ErrAlreadySubmitted), errors.Is(err, services.ErrTaskExhausted):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
	default:
		log.Printf("[http] unexpected error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
	}
}
