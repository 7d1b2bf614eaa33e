package handler

import (
	"net/http"

	"github.com/palemoky/cartas-online/internal/protocol"
)

// --- 房间处理 ---

// handleCreateRoom 创建房间，请求者成为房主
func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req protocol.CreateRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	resp, err := h.manager.CreateRoom(r.Context(), req.Name)
	respond(w, http.StatusCreated, resp, err)
}

// handleListRooms 可加入的房间列表
func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	resp, err := h.manager.ListRooms(r.Context())
	respond(w, http.StatusOK, resp, err)
}

// handleJoinRoom 加入房间
func (h *Handler) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req protocol.JoinRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	resp, err := h.manager.JoinRoom(r.Context(), r.PathValue("code"), req.Name)
	respond(w, http.StatusOK, resp, err)
}

// handleLeaveRoom 离开房间
func (h *Handler) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	var req protocol.PlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := requirePlayerID(req.PlayerID); err != nil {
		WriteError(w, err)
		return
	}
	resp, err := h.manager.LeaveRoom(r.Context(), r.PathValue("code"), req.PlayerID)
	respond(w, http.StatusOK, resp, err)
}

// handleEndMatch 结束对局
func (h *Handler) handleEndMatch(w http.ResponseWriter, r *http.Request) {
	resp, err := h.manager.EndMatch(r.Context(), r.PathValue("code"))
	respond(w, http.StatusOK, resp, err)
}
