package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/neptune-labs/intents-portal/balances"
	"github.com/neptune-labs/intents-portal/catalog"
	"github.com/neptune-labs/intents-portal/chains"
	"github.com/neptune-labs/intents-portal/intenttx"
	"github.com/neptune-labs/intents-portal/router"
	"github.com/neptune-labs/intents-portal/validators"
	"github.com/shopspring/decimal"
)

// PortalHandler implements the portal's JSON API on top of the core
// packages. It owns no state of its own; everything is constructor-injected.
type PortalHandler struct {
	catalog    *catalog.Catalog
	engine     *router.Engine
	registry   *chains.Registry
	reconciler *balances.Reconciler
}

// NewPortalHandler creates the API handler. reconciler may be nil when no
// balance sources are configured; the balances endpoint then returns 503.
func NewPortalHandler(
	cat *catalog.Catalog,
	engine *router.Engine,
	registry *chains.Registry,
	reconciler *balances.Reconciler,
) *PortalHandler {
	return &PortalHandler{
		catalog:    cat,
		engine:     engine,
		registry:   registry,
		reconciler: reconciler,
	}
}

// Mount registers the portal routes on a chi router.
func (h *PortalHandler) Mount(r chi.Router) {
	r.Get("/tokens", h.handleTokens)
	r.Get("/tokens/display", h.handleTokensDisplay)
	r.Post("/quote", h.handleQuote)
	r.Post("/deposit-transaction", h.handleDepositTransaction)
	r.Post("/balances", h.handleBalances)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// quoteStatus maps engine errors onto HTTP statuses. Solver rejections and
// caller mistakes are client errors; exhausted retries and a missing
// catalog are upstream failures.
func quoteStatus(err error) int {
	var solverErr *router.SolverError
	switch {
	case errors.Is(err, router.ErrRecipientRequired),
		errors.Is(err, router.ErrUnsupportedPair):
		return http.StatusBadRequest
	case errors.As(err, &solverErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, router.ErrNoDepositAddress):
		return http.StatusBadGateway
	case errors.Is(err, router.ErrQuoteUnavailable),
		errors.Is(err, catalog.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *PortalHandler) handleTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.catalog.Tokens(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *PortalHandler) handleTokensDisplay(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.catalog.Tokens(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"display": catalog.FormatForDisplay(tokens),
	})
}

type quoteRequest struct {
	TokenIn   string          `json:"tokenIn"`
	TokenOut  string          `json:"tokenOut"`
	Amount    decimal.Decimal `json:"amount"`
	Recipient string          `json:"recipient"`
	RefundTo  string          `json:"refundTo,omitempty"`
	Chain     string          `json:"chain,omitempty"`
}

func (h *PortalHandler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.TokenIn == "" || req.TokenOut == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("tokenIn and tokenOut are required"))
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount must be positive"))
		return
	}

	// Check the recipient's format against the destination chain before
	// spending a quote round-trip on it.
	if req.Recipient != "" {
		if tokenOut, ok, err := h.catalog.FindBySymbol(r.Context(), req.TokenOut); err == nil && ok {
			if !validators.ValidateForChain(req.Recipient, tokenOut.Chain) {
				writeError(w, http.StatusBadRequest, fmt.Errorf(
					"invalid recipient for %s: expected %s",
					tokenOut.Chain, validators.ExpectedFormat(tokenOut.Chain)))
				return
			}
		}
	}

	quote, err := h.engine.Quote(r.Context(), router.QuoteParams{
		TokenIn:   req.TokenIn,
		TokenOut:  req.TokenOut,
		Amount:    req.Amount,
		Recipient: req.Recipient,
		RefundTo:  req.RefundTo,
		ChainHint: req.Chain,
	})
	if err != nil {
		writeError(w, quoteStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type depositTransactionRequest struct {
	TokenIn        string          `json:"tokenIn"`
	Amount         decimal.Decimal `json:"amount"`
	DepositAddress string          `json:"depositAddress"`

	// EVM-sourced deposits only
	EVMChainID int64  `json:"evmChainId,omitempty"`
	From       string `json:"from,omitempty"`
}

type depositTransactionResponse struct {
	Transactions   []intenttx.Transaction   `json:"transactions,omitempty"`
	EVMTransaction *intenttx.EVMTransaction `json:"evmTransaction,omitempty"`
	Check          intenttx.CheckResult     `json:"check"`
}

func (h *PortalHandler) handleDepositTransaction(w http.ResponseWriter, r *http.Request) {
	var req depositTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.DepositAddress == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("depositAddress is required"))
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount must be positive"))
		return
	}

	tokenIn, found, err := h.catalog.FindBySymbol(r.Context(), req.TokenIn)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if !found {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown token %q", req.TokenIn))
		return
	}

	if req.EVMChainID > 0 {
		tx := intenttx.BuildEVMDeposit(tokenIn, req.EVMChainID, req.Amount, req.DepositAddress, req.From)
		writeJSON(w, http.StatusOK, depositTransactionResponse{
			EVMTransaction: &tx,
			Check:          intenttx.ValidateEVMDeposit(tx, req.DepositAddress),
		})
		return
	}

	batch := intenttx.BuildDepositBatch(tokenIn, req.Amount, req.DepositAddress)
	writeJSON(w, http.StatusOK, depositTransactionResponse{
		Transactions: batch,
		Check:        intenttx.ValidateDepositBatch(batch, req.DepositAddress),
	})
}

type balancesRequest struct {
	Addresses map[string]string `json:"addresses"`
}

func (h *PortalHandler) handleBalances(w http.ResponseWriter, r *http.Request) {
	if h.reconciler == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("no balance sources configured"))
		return
	}

	var req balancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Addresses) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("addresses is required"))
		return
	}
	for chain, address := range req.Addresses {
		if !validators.ValidateForChain(address, chain) {
			writeError(w, http.StatusBadRequest, fmt.Errorf(
				"invalid %s address: expected %s", chain, validators.ExpectedFormat(chain)))
			return
		}
	}

	merged, err := h.reconciler.Reconcile(r.Context(), req.Addresses)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": merged})
}
