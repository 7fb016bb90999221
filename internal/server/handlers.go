package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// --- Transaction handlers ---

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		txs, err := s.app.Storage.Transactions().List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing transactions: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})

	case http.MethodPost:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}
		tx.ID = "" // server-assigned
		if err := s.app.Storage.Transactions().Save(r.Context(), &tx); err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Error saving transaction: %v", err))
			return
		}
		WriteJSON(w, http.StatusCreated, tx)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) routeTransaction(w http.ResponseWriter, r *http.Request) {
	id := PathSuffix(r.URL.Path, "/api/transactions/")
	if id == "" {
		s.handleTransactions(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tx, err := s.app.Storage.Transactions().Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Transaction not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, tx)

	case http.MethodPut:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}
		existing, err := s.app.Storage.Transactions().Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Transaction not found: %v", err))
			return
		}
		tx.ID = existing.ID
		tx.CreatedAt = existing.CreatedAt
		if err := s.app.Storage.Transactions().Save(r.Context(), &tx); err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Error saving transaction: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, tx)

	case http.MethodDelete:
		if err := s.app.Storage.Transactions().Delete(r.Context(), id); err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Error deleting transaction: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// --- Asset definition handlers ---

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		defs, err := s.app.Storage.AssetDefinitions().List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing assets: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"assets": defs})

	case http.MethodPost:
		var def models.AssetDefinition
		if !DecodeJSON(w, r, &def) {
			return
		}
		def.ID = ""
		if err := s.app.Storage.AssetDefinitions().Save(r.Context(), &def); err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Error saving asset: %v", err))
			return
		}
		WriteJSON(w, http.StatusCreated, def)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) routeAsset(w http.ResponseWriter, r *http.Request) {
	id := PathSuffix(r.URL.Path, "/api/assets/")
	if id == "" {
		s.handleAssets(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		def, err := s.app.Storage.AssetDefinitions().Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Asset not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, def)

	case http.MethodPut:
		var def models.AssetDefinition
		if !DecodeJSON(w, r, &def) {
			return
		}
		existing, err := s.app.Storage.AssetDefinitions().Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Asset not found: %v", err))
			return
		}
		def.ID = existing.ID
		def.CreatedAt = existing.CreatedAt
		if err := s.app.Storage.AssetDefinitions().Save(r.Context(), &def); err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Error saving asset: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, def)

	case http.MethodDelete:
		if err := s.app.Storage.AssetDefinitions().Delete(r.Context(), id); err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Error deleting asset: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// --- Derived portfolio handlers ---

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	positions, err := s.app.PortfolioService.GetPositions(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error computing positions: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"positions": positions})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if r.URL.Query().Get("format") == "png" {
		png, err := s.app.PortfolioService.RenderHistoryChart(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error rendering chart: %v", err))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
		return
	}

	opts := interfaces.HistoryOptions{
		IncludePositions: r.URL.Query().Get("positions") == "true",
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid 'from' date, expected YYYY-MM-DD")
			return
		}
		opts.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid 'to' date, expected YYYY-MM-DD")
			return
		}
		opts.To = t
	}

	points, err := s.app.PortfolioService.GetHistory(r.Context(), opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error reconstructing history: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"history": points})
}

func (s *Server) handleIntraday(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	points, err := s.app.PortfolioService.GetIntraday(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error computing intraday series: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"intraday": points})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	months := 12
	if m := r.URL.Query().Get("months"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 60 {
			WriteError(w, http.StatusBadRequest, "Invalid 'months', expected 1-60")
			return
		}
		months = parsed
	}

	from := time.Now()
	if f := r.URL.Query().Get("from"); f != "" {
		t, err := time.Parse("2006-01", f)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid 'from' month, expected YYYY-MM")
			return
		}
		from = t
	}

	calendar, err := s.app.PortfolioService.GetIncomeCalendar(r.Context(), from, months)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error computing income calendar: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"calendar": calendar})
}
