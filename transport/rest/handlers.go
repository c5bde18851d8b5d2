package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pixelgrove/gostones-backend/internal/apperror"
)

type roomHelperResponse struct {
	RoomID *string `json:"roomId"`
}

func (that *Server) pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// roomHelperHandler resolves a join code to a room identifier for invite
// flows; unknown codes answer with a null roomId, not an error.
func (that *Server) roomHelperHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "roomHelperHandler")

	response := roomHelperResponse{}

	joinCode := r.URL.Query().Get("joinCode")
	if joinCode != "" {
		roomID, err := that.directory.FindRoomIDByJoinCode(r.Context(), joinCode)

		switch {
		case errors.Is(err, apperror.ErrRoomNotFound):
			// leave roomId null
		case err != nil:
			log.Error("failed to look up join code", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		default:
			response.RoomID = &roomID
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}
