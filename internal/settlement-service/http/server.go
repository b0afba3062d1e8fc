package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/dto"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/service"
)

// Server expõe a API pública do settlement-service. A identidade do
// solicitante chega resolvida pela camada de auth upstream no header
// X-User-ID; aqui só se mapeia a taxonomia de erros pra status HTTP.
type Server struct {
	log *zap.Logger
	svc *service.Service
}

func NewServer(log *zap.Logger, svc *service.Service) *Server {
	return &Server{log: log, svc: svc}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", s.createEvent)
	mux.HandleFunc("GET /events/{id}", s.eventDetail)
	mux.HandleFunc("PUT /events/{id}", s.updateEvent)
	mux.HandleFunc("DELETE /events/{id}", s.deleteEvent)
	mux.HandleFunc("GET /events/{id}/wagers", s.listWagers)
	mux.HandleFunc("POST /events/{id}/settle", s.settleEvent)
	mux.HandleFunc("POST /wagers", s.placeWager)
	mux.HandleFunc("GET /users/{id}/balance", s.getBalance)
	return mux
}

// requester extrai a identidade autenticada; vazio significa que a camada
// de auth não rodou ou a requisição veio sem credencial.
func requester(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	uid := requester(r)
	if uid == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	var req dto.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.SideA == "" || req.SideB == "" || req.GroupID == "" || req.StartTime.IsZero() || req.EndTime.IsZero() {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	id, err := s.svc.CreateEvent(r.Context(), req, uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"eventId": id})
}

func (s *Server) eventDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.EventDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, detail)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	uid := requester(r)
	if uid == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	var req dto.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.SideA == "" || req.SideB == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.svc.UpdateEvent(r.Context(), r.PathValue("id"), uid, req); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	uid := requester(r)
	if uid == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	if err := s.svc.DeleteEvent(r.Context(), r.PathValue("id"), uid); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listWagers(w http.ResponseWriter, r *http.Request) {
	wagers, err := s.svc.ListEventWagers(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]dto.PoolParticipant, 0, len(wagers))
	for _, wg := range wagers {
		out = append(out, dto.PoolParticipant{
			UserID:     wg.UserID,
			Username:   wg.Username,
			SideChoice: string(wg.SideChoice),
			Amount:     wg.Amount,
			Status:     wg.Status,
		})
	}
	writeJSON(w, out)
}

func (s *Server) settleEvent(w http.ResponseWriter, r *http.Request) {
	uid := requester(r)
	if uid == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	var req dto.SettleEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.WinningSide == "" {
		http.Error(w, "winningSide required", http.StatusBadRequest)
		return
	}

	eventID := r.PathValue("id")
	result, err := s.svc.SettleEvent(r.Context(), eventID, uid, req.WinningSide)
	if err != nil {
		// re-liquidação é desfecho benigno, não alarme
		if errors.Is(err, service.ErrAlreadySettled) {
			writeJSON(w, dto.SettlementResponse{EventID: eventID, AlreadySettled: true})
			return
		}
		s.writeError(w, err)
		return
	}

	resp := dto.SettlementResponse{
		EventID:     result.EventID,
		WinningSide: result.WinningSide,
		Refunded:    result.Refunded,
	}
	for _, c := range result.Credits {
		resp.Credits = append(resp.Credits, dto.CreditEntry{UserID: c.UserID, Username: c.Username, Credit: c.Credit})
	}
	writeJSON(w, resp)
}

func (s *Server) placeWager(w http.ResponseWriter, r *http.Request) {
	uid := requester(r)
	if uid == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	var req dto.PlaceWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.EventID == "" || req.SideChoice == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	id, err := s.svc.PlaceWager(r.Context(), req, uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, dto.WagerResponse{WagerID: id, Status: "PENDING"})
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	bal, err := s.svc.GetBalance(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, dto.BalanceResponse{UserID: userID, AvailableFunds: bal})
}

// writeError traduz a taxonomia do serviço pra status HTTP.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrEmptyPool):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrInvalidWinner),
		errors.Is(err, service.ErrInvalidSide),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidTimeWindow):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrWagerExists),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrAlreadySettled),
		errors.Is(err, service.ErrTransactionConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		s.log.Error("internal error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
