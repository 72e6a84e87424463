package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/dev"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	listings   market.ListingManager
	auctions   market.AuctionManager
	escrow     market.EscrowLedger
	gate       market.AccessGate
	fees       *market.FeeCalculator
	actionRepo repository.ActionRepository
}

func NewServer(
	listings market.ListingManager,
	auctions market.AuctionManager,
	escrow market.EscrowLedger,
	gate market.AccessGate,
	fees *market.FeeCalculator,
	actionRepo repository.ActionRepository,
) Server {
	return Server{listings, auctions, escrow, gate, fees, actionRepo}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")

	r.HandleFunc("/listings", s.handleCreateListing).Methods("POST")
	r.HandleFunc("/listings/{listingId}", s.handleGetListing).Methods("GET")
	r.HandleFunc("/listings/{listingId}", s.handleCancelListing).Methods("DELETE")
	r.HandleFunc("/listings/{listingId}/buy", s.handleBuyItem).Methods("POST")

	r.HandleFunc("/auctions", s.handleCreateAuction).Methods("POST")
	r.HandleFunc("/auctions/{auctionId}", s.handleGetAuction).Methods("GET")
	r.HandleFunc("/auctions/{auctionId}", s.handleCancelAuction).Methods("DELETE")
	r.HandleFunc("/auctions/{auctionId}/bids", s.handlePlaceBid).Methods("POST")
	r.HandleFunc("/auctions/{auctionId}/end", s.handleEndAuction).Methods("POST")

	r.HandleFunc("/balances/{address}", s.handleGetBalance).Methods("GET")
	r.HandleFunc("/withdrawals", s.handleWithdraw).Methods("POST")
	r.HandleFunc("/funds/received", s.handleFundsReceived).Methods("POST")

	r.HandleFunc("/fees", s.handleGetFees).Methods("GET")
	r.HandleFunc("/fees", s.handleSetFees).Methods("PUT")
	r.HandleFunc("/blacklist/{address}", s.handleBan).Methods("PUT")
	r.HandleFunc("/blacklist/{address}", s.handleUnban).Methods("DELETE")

	r.HandleFunc("/actions/{slug}", s.handleGetAction).Methods("GET")
	r.HandleFunc("/actors/{address}/actions", s.handleGetActorActions).Methods("GET")
	r.HandleFunc("/assets/{contractAddr}/{tokenId}/actions", s.handleGetAssetActions).Methods("GET")

	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "Zilliqa Marketplace")
}

type createListingRequest struct {
	Seller   string `json:"seller"`
	Currency string `json:"currency"`
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Quantity uint64 `json:"quantity"`
	Price    string `json:"price"`
}

func (s Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	seller, err := entity.NormalizeAddress(req.Seller)
	if err != nil {
		http.Error(w, "invalid seller address", http.StatusBadRequest)
		return
	}

	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		http.Error(w, "invalid currency address", http.StatusBadRequest)
		return
	}

	price, ok := parseAmount(req.Price)
	if !ok {
		http.Error(w, "invalid price", http.StatusBadRequest)
		return
	}

	listing, err := s.listings.ListForSale(r.Context(), seller, currency, req.Contract, req.TokenId, req.Quantity, price)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusCreated, listingResponse(listing))
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listingId, err := pathId(r, "listingId")
	if err != nil {
		http.Error(w, "invalid listing id", http.StatusBadRequest)
		return
	}

	listing, err := s.listings.GetListing(listingId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, listingResponse(listing))
}

type buyRequest struct {
	Buyer string `json:"buyer"`
	Paid  string `json:"paid"`
}

func (s Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	listingId, err := pathId(r, "listingId")
	if err != nil {
		http.Error(w, "invalid listing id", http.StatusBadRequest)
		return
	}

	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	buyer, err := entity.NormalizeAddress(req.Buyer)
	if err != nil {
		http.Error(w, "invalid buyer address", http.StatusBadRequest)
		return
	}

	paid, ok := parseAmount(req.Paid)
	if !ok {
		http.Error(w, "invalid paid amount", http.StatusBadRequest)
		return
	}

	listing, err := s.listings.BuyItem(r.Context(), buyer, listingId, paid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, listingResponse(listing))
}

type sellerRequest struct {
	Seller string `json:"seller"`
}

func (s Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	listingId, err := pathId(r, "listingId")
	if err != nil {
		http.Error(w, "invalid listing id", http.StatusBadRequest)
		return
	}

	var req sellerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	seller, err := entity.NormalizeAddress(req.Seller)
	if err != nil {
		http.Error(w, "invalid seller address", http.StatusBadRequest)
		return
	}

	if err := s.listings.CancelListing(r.Context(), seller, listingId); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type createAuctionRequest struct {
	Seller       string `json:"seller"`
	Currency     string `json:"currency"`
	Contract     string `json:"contract"`
	TokenId      uint64 `json:"tokenId"`
	Quantity     uint64 `json:"quantity"`
	FloorPrice   string `json:"floorPrice"`
	StartTime    int64  `json:"startTime"`
	EndTime      int64  `json:"endTime"`
	BidIncrement string `json:"bidIncrement"`
}

func (s Server) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	var req createAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	seller, err := entity.NormalizeAddress(req.Seller)
	if err != nil {
		http.Error(w, "invalid seller address", http.StatusBadRequest)
		return
	}

	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		http.Error(w, "invalid currency address", http.StatusBadRequest)
		return
	}

	floorPrice, ok := parseAmount(req.FloorPrice)
	if !ok {
		http.Error(w, "invalid floor price", http.StatusBadRequest)
		return
	}

	bidIncrement, ok := parseAmount(req.BidIncrement)
	if !ok {
		http.Error(w, "invalid bid increment", http.StatusBadRequest)
		return
	}

	auction, err := s.auctions.CreateAuction(
		r.Context(),
		seller,
		currency,
		req.Contract,
		req.TokenId,
		req.Quantity,
		floorPrice,
		time.Unix(req.StartTime, 0),
		time.Unix(req.EndTime, 0),
		bidIncrement,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusCreated, auctionResponse(auction))
}

func (s Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	auctionId, err := pathId(r, "auctionId")
	if err != nil {
		http.Error(w, "invalid auction id", http.StatusBadRequest)
		return
	}

	auction, err := s.auctions.GetAuction(auctionId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, auctionResponse(auction))
}

type bidRequest struct {
	Bidder string `json:"bidder"`
	Paid   string `json:"paid"`
}

func (s Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	auctionId, err := pathId(r, "auctionId")
	if err != nil {
		http.Error(w, "invalid auction id", http.StatusBadRequest)
		return
	}

	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	bidder, err := entity.NormalizeAddress(req.Bidder)
	if err != nil {
		http.Error(w, "invalid bidder address", http.StatusBadRequest)
		return
	}

	paid, ok := parseAmount(req.Paid)
	if !ok {
		http.Error(w, "invalid paid amount", http.StatusBadRequest)
		return
	}

	auction, err := s.auctions.PlaceNewBid(r.Context(), bidder, auctionId, paid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, auctionResponse(auction))
}

type callerRequest struct {
	Caller string `json:"caller"`
}

func (s Server) handleEndAuction(w http.ResponseWriter, r *http.Request) {
	auctionId, err := pathId(r, "auctionId")
	if err != nil {
		http.Error(w, "invalid auction id", http.StatusBadRequest)
		return
	}

	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	caller, err := entity.NormalizeAddress(req.Caller)
	if err != nil {
		http.Error(w, "invalid caller address", http.StatusBadRequest)
		return
	}

	if err := s.auctions.EndAuction(r.Context(), caller, auctionId); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleCancelAuction(w http.ResponseWriter, r *http.Request) {
	auctionId, err := pathId(r, "auctionId")
	if err != nil {
		http.Error(w, "invalid auction id", http.StatusBadRequest)
		return
	}

	var req sellerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	seller, err := entity.NormalizeAddress(req.Seller)
	if err != nil {
		http.Error(w, "invalid seller address", http.StatusBadRequest)
		return
	}

	if err := s.auctions.CancelAuction(r.Context(), seller, auctionId); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	address, err := entity.NormalizeAddress(mux.Vars(r)["address"])
	if err != nil {
		http.Error(w, "invalid address", http.StatusBadRequest)
		return
	}

	if c := r.URL.Query().Get("currency"); c != "" {
		currency, err := normalizeCurrency(c)
		if err != nil {
			http.Error(w, "invalid currency address", http.StatusBadRequest)
			return
		}

		balance := s.escrow.Balance(address, currency)

		writeJson(w, http.StatusOK, map[string]string{
			"address":  address,
			"currency": currency.String(),
			"balance":  balance.String(),
		})
		return
	}

	balances := make([]map[string]string, 0)
	for _, balance := range s.escrow.Balances(address) {
		balances = append(balances, map[string]string{
			"currency": balance.Currency.String(),
			"balance":  balance.Amount.String(),
		})
	}

	writeJson(w, http.StatusOK, map[string]interface{}{
		"address":  address,
		"balances": balances,
	})
}

type withdrawRequest struct {
	Beneficiary string   `json:"beneficiary"`
	Currencies  []string `json:"currencies"`
}

type withdrawalResultResponse struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	Error    string `json:"error,omitempty"`
}

func (s Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	beneficiary, err := entity.NormalizeAddress(req.Beneficiary)
	if err != nil {
		http.Error(w, "invalid beneficiary address", http.StatusBadRequest)
		return
	}

	currencies := make([]entity.Currency, 0, len(req.Currencies))
	for _, c := range req.Currencies {
		currency, err := normalizeCurrency(c)
		if err != nil {
			http.Error(w, "invalid currency address", http.StatusBadRequest)
			return
		}
		currencies = append(currencies, currency)
	}

	results, err := s.escrow.Withdraw(r.Context(), beneficiary, currencies)
	if err != nil {
		writeError(w, err)
		return
	}

	response := make([]withdrawalResultResponse, 0, len(results))
	for _, result := range results {
		item := withdrawalResultResponse{
			Currency: result.Currency.String(),
			Amount:   result.Amount.String(),
		}
		if result.Err != nil {
			item.Error = result.Err.Error()
		}
		response = append(response, item)
	}

	writeJson(w, http.StatusOK, response)
}

type fundsReceivedRequest struct {
	From   string `json:"from"`
	Amount string `json:"amount"`
}

func (s Server) handleFundsReceived(w http.ResponseWriter, r *http.Request) {
	var req fundsReceivedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	from, err := entity.NormalizeAddress(req.From)
	if err != nil {
		http.Error(w, "invalid from address", http.StatusBadRequest)
		return
	}

	amount, ok := parseAmount(req.Amount)
	if !ok {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	s.escrow.ReceiveNative(from, amount)

	w.WriteHeader(http.StatusAccepted)
}

func (s Server) handleGetFees(w http.ResponseWriter, r *http.Request) {
	sellBps, buyBps := s.fees.Rates()

	writeJson(w, http.StatusOK, map[string]uint{
		"sellFeeBps": sellBps,
		"buyFeeBps":  buyBps,
	})
}

type setFeesRequest struct {
	Admin      string `json:"admin"`
	SellFeeBps uint   `json:"sellFeeBps"`
	BuyFeeBps  uint   `json:"buyFeeBps"`
}

func (s Server) handleSetFees(w http.ResponseWriter, r *http.Request) {
	var req setFeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	admin, err := entity.NormalizeAddress(req.Admin)
	if err != nil {
		http.Error(w, "invalid admin address", http.StatusBadRequest)
		return
	}

	if err := s.gate.SetFees(admin, req.SellFeeBps, req.BuyFeeBps); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type adminRequest struct {
	Admin string `json:"admin"`
}

func (s Server) handleBan(w http.ResponseWriter, r *http.Request) {
	admin, actor, ok := s.adminAndActor(w, r)
	if !ok {
		return
	}

	if err := s.gate.Ban(admin, actor); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleUnban(w http.ResponseWriter, r *http.Request) {
	admin, actor, ok := s.adminAndActor(w, r)
	if !ok {
		return
	}

	if err := s.gate.Unban(admin, actor); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) adminAndActor(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return "", "", false
	}

	admin, err := entity.NormalizeAddress(req.Admin)
	if err != nil {
		http.Error(w, "invalid admin address", http.StatusBadRequest)
		return "", "", false
	}

	actor, err := entity.NormalizeAddress(mux.Vars(r)["address"])
	if err != nil {
		http.Error(w, "invalid address", http.StatusBadRequest)
		return "", "", false
	}

	return admin, actor, true
}

func (s Server) handleGetAction(w http.ResponseWriter, r *http.Request) {
	action, err := s.actionRepo.GetAction(mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, action)
}

func (s Server) handleGetActorActions(w http.ResponseWriter, r *http.Request) {
	actor, err := entity.NormalizeAddress(mux.Vars(r)["address"])
	if err != nil {
		http.Error(w, "invalid address", http.StatusBadRequest)
		return
	}

	size, from := pagination(r)

	actions, total, err := s.actionRepo.GetActionsByActor(actor, size, from)
	if err != nil {
		writeError(w, err)
		return
	}

	writeActionPage(w, actions, total)
}

func (s Server) handleGetAssetActions(w http.ResponseWriter, r *http.Request) {
	contractAddr := mux.Vars(r)["contractAddr"]

	tokenId, err := strconv.ParseUint(mux.Vars(r)["tokenId"], 10, 64)
	if err != nil {
		http.Error(w, "invalid token id", http.StatusBadRequest)
		return
	}

	size, from := pagination(r)

	actions, total, err := s.actionRepo.GetActionsByAsset(contractAddr, tokenId, size, from)
	if err != nil {
		writeError(w, err)
		return
	}

	writeActionPage(w, actions, total)
}

func writeActionPage(w http.ResponseWriter, actions []entity.MarketAction, total int64) {
	writeJson(w, http.StatusOK, map[string]interface{}{
		"total":   total,
		"actions": actions,
	})
}

func listingResponse(listing entity.Listing) map[string]interface{} {
	return map[string]interface{}{
		"id":       listing.Id,
		"seller":   listing.Seller,
		"contract": listing.Asset.Contract,
		"tokenId":  listing.Asset.TokenId,
		"quantity": listing.Asset.Quantity,
		"protocol": listing.Asset.Protocol,
		"currency": listing.Currency.String(),
		"price":    listing.Price.String(),
		"sold":     listing.Sold,
	}
}

func auctionResponse(auction entity.Auction) map[string]interface{} {
	response := map[string]interface{}{
		"id":           auction.Id,
		"seller":       auction.Seller,
		"contract":     auction.Asset.Contract,
		"tokenId":      auction.Asset.TokenId,
		"quantity":     auction.Asset.Quantity,
		"protocol":     auction.Asset.Protocol,
		"currency":     auction.Currency.String(),
		"floorPrice":   auction.FloorPrice.String(),
		"startTime":    auction.StartTime.Unix(),
		"endTime":      auction.EndTime.Unix(),
		"bidIncrement": auction.BidIncrement.String(),
		"bidCount":     auction.BidCount,
		"state":        auction.State(time.Now()),
	}
	if auction.BidCount > 0 {
		response["currentBidPrice"] = auction.CurrentBidPrice.String()
		response["currentBidder"] = auction.CurrentBidder
	}

	return response
}

func pathId(r *http.Request, name string) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[name], 10, 64)
}

func pagination(r *http.Request) (size, from int) {
	size = 10
	if value, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && value > 0 && value <= 100 {
		size = value
	}
	if value, err := strconv.Atoi(r.URL.Query().Get("from")); err == nil && value > 0 {
		from = value
	}

	return size, from
}

func parseAmount(value string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() < 0 {
		return nil, false
	}

	return amount, true
}

func normalizeCurrency(value string) (entity.Currency, error) {
	if value == "" || value == entity.NativeCurrency.String() {
		return entity.NativeCurrency, nil
	}

	address, err := entity.NormalizeAddress(value)
	if err != nil {
		return "", err
	}

	return entity.Currency(address), nil
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().With(zap.Error(err)).Error("[API] Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		// internal failures get an opaque reference the caller can report
		record := dev.NewError("api", err, nil)
		zap.L().With(zap.Error(err), zap.String("reference", record.Reference)).Error("[API] Request failed")

		writeJson(w, status, map[string]string{
			"error":     "internal error",
			"reference": record.Reference,
		})
		return
	}

	writeJson(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrSaleNotExists),
		errors.Is(err, market.ErrAuctionNotExists),
		errors.Is(err, repository.ErrActionNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrUnauthorized),
		errors.Is(err, market.ErrNotSeller):
		return http.StatusForbidden
	case errors.Is(err, market.ErrReentrantCall):
		return http.StatusTooManyRequests
	case errors.Is(err, market.ErrInvalidPrice),
		errors.Is(err, market.ErrInvalidQuantity),
		errors.Is(err, market.ErrInvalidSellTax),
		errors.Is(err, market.ErrInvalidBuyTax),
		errors.Is(err, market.ErrInvalidIncrement),
		errors.Is(err, market.ErrInvalidTimes),
		errors.Is(err, entity.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrItemAlreadySold),
		errors.Is(err, market.ErrPriceNotMet),
		errors.Is(err, market.ErrAuctionNotLive),
		errors.Is(err, market.ErrAuctionEnded),
		errors.Is(err, market.ErrAuctionNotEnded),
		errors.Is(err, market.ErrAuctionStarted),
		errors.Is(err, market.ErrAuctionBidded),
		errors.Is(err, market.ErrBidTooLow):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
