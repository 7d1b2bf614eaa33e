package handler

import (
	"net/http"

	"github.com/palemoky/cartas-online/internal/protocol"
)

// --- 游戏处理 ---

func (h *Handler) handleStartDeal(w http.ResponseWriter, r *http.Request) {
	var req protocol.StartDealRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	resp, err := h.manager.StartDeal(r.Context(), r.PathValue("code"), req)
	respond(w, http.StatusOK, resp, err)
}

func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req protocol.PlayRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := requirePlayerID(req.PlayerID); err != nil {
		WriteError(w, err)
		return
	}
	resp, err := h.manager.Play(r.Context(), r.PathValue("code"), req)
	respond(w, http.StatusOK, resp, err)
}

func (h *Handler) handlePass(w http.ResponseWriter, r *http.Request) {
	var req protocol.PlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := requirePlayerID(req.PlayerID); err != nil {
		WriteError(w, err)
		return
	}
	resp, err := h.manager.Pass(r.Context(), r.PathValue("code"), req.PlayerID)
	respond(w, http.StatusOK, resp, err)
}

// handleGetState 轮询状态，可能触发一次自动过牌
func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	resp, err := h.manager.GetState(r.Context(), r.PathValue("code"))
	respond(w, http.StatusOK, resp, err)
}

// handleHint 出牌提示，?playerId=
func (h *Handler) handleHint(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if err := requirePlayerID(playerID); err != nil {
		WriteError(w, err)
		return
	}
	resp, err := h.manager.Hint(r.Context(), r.PathValue("code"), playerID)
	respond(w, http.StatusOK, resp, err)
}
