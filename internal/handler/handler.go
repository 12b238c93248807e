// Package handler содержит HTTP-обработчики API витрины магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/service"
	"github.com/mmeshcher/storefront/internal/session"
	"github.com/mmeshcher/storefront/internal/validation"
	"github.com/mmeshcher/storefront/internal/view"
)

const (
	messagePromoNotFound   = "Промокод не найден"
	messageProductNotFound = "Товар не найден"
	messageBadRequest      = "Некорректный запрос"
	messageInProgress      = "Платёж уже создаётся"
	messageUnknownSection  = "Неизвестный раздел"
	messageNoSession       = "Сессия не найдена"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Products() []model.Product
	Product(id int64) (model.Product, error)
	Promos() []model.PromoCode
	Cart(ctx context.Context, sessionID string) (session.State, error)
	AddToCart(ctx context.Context, sessionID string, productID int64) (session.State, error)
	RemoveFromCart(ctx context.Context, sessionID string, productID int64) (session.State, error)
	SetQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (session.State, error)
	ApplyPromo(ctx context.Context, sessionID, code string) (session.State, error)
	Section(ctx context.Context, sessionID string) (model.Section, error)
	SwitchSection(ctx context.Context, sessionID string, section model.Section) (model.Section, error)
	Checkout(ctx context.Context, sessionID, origin string) (*payment.Result, error)
}

// Handler реализует HTTP-обработчики API витрины.
type Handler struct {
	service      Service
	logger       *zap.Logger
	sessions     *middleware.SessionMiddleware
	publicOrigin string
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// publicOrigin задаёт адрес возврата после оплаты; пустое значение означает адрес из запроса.
func NewHandler(s Service, logger *zap.Logger, sessions *middleware.SessionMiddleware, publicOrigin string) *Handler {
	return &Handler{
		service:      s,
		logger:       logger,
		sessions:     sessions,
		publicOrigin: strings.TrimRight(publicOrigin, "/"),
	}
}

type productResponse struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Price    json.Number  `json:"price"`
	OldPrice *json.Number `json:"old_price,omitempty"`
	Discount *int         `json:"discount,omitempty"`
	Image    string       `json:"image"`
	Category string       `json:"category"`
}

type promoResponse struct {
	Code        string `json:"code"`
	Discount    int    `json:"discount"`
	Description string `json:"description"`
}

type cartLineResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
	Amount   json.Number     `json:"amount"`
}

type cartResponse struct {
	Items      []cartLineResponse `json:"items"`
	Lines      int                `json:"lines"`
	Count      int                `json:"count"`
	Subtotal   json.Number        `json:"subtotal"`
	Discount   json.Number        `json:"discount"`
	Total      json.Number        `json:"total"`
	Promo      *promoResponse     `json:"promo"`
	Section    model.Section      `json:"section"`
	Processing bool               `json:"processing"`
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type promoRequest struct {
	Code string `json:"code"`
}

type sectionRequest struct {
	Section string `json:"section"`
}

type sectionResponse struct {
	Section  model.Section   `json:"section"`
	Sections []model.Section `json:"sections"`
}

type checkoutResponse struct {
	ConfirmationURL string `json:"confirmation_url"`
	PaymentID       string `json:"payment_id,omitempty"`
	Status          string `json:"status,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func toProductResponse(p model.Product) productResponse {
	resp := productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    money(p.Price),
		Discount: p.Discount,
		Image:    p.Image,
		Category: p.Category,
	}
	if p.OldPrice != nil {
		old := money(*p.OldPrice)
		resp.OldPrice = &old
	}
	return resp
}

func toPromoResponse(p model.PromoCode) promoResponse {
	return promoResponse{
		Code:        p.Code,
		Discount:    p.Discount,
		Description: p.Description,
	}
}

func toCartResponse(state session.State) cartResponse {
	resp := cartResponse{
		Items:      make([]cartLineResponse, 0, len(state.Lines)),
		Lines:      len(state.Lines),
		Subtotal:   money(state.Totals.Subtotal),
		Discount:   money(state.Totals.Discount),
		Total:      money(state.Totals.Total),
		Section:    state.Section,
		Processing: state.Processing,
	}
	for _, l := range state.Lines {
		resp.Items = append(resp.Items, cartLineResponse{
			Product:  toProductResponse(l.Product),
			Quantity: l.Quantity,
			Amount:   money(l.Amount()),
		})
		resp.Count += l.Quantity
	}
	if state.Promo != nil {
		promo := toPromoResponse(*state.Promo)
		resp.Promo = &promo
	}
	return resp
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("encode response error", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

// handleError отображает доменную ошибку в HTTP-ответ.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var rejected *payment.RejectedError

	switch {
	case errors.Is(err, cart.ErrPromoNotFound):
		h.writeError(w, http.StatusNotFound, messagePromoNotFound)
	case errors.Is(err, service.ErrProductNotFound):
		h.writeError(w, http.StatusNotFound, messageProductNotFound)
	case errors.Is(err, view.ErrUnknownSection):
		h.writeError(w, http.StatusBadRequest, messageUnknownSection)
	case errors.Is(err, session.ErrSessionNotFound):
		h.writeError(w, http.StatusUnauthorized, messageNoSession)
	case errors.Is(err, payment.ErrPaymentInProgress):
		h.writeError(w, http.StatusConflict, messageInProgress)
	case errors.As(err, &rejected):
		h.writeError(w, http.StatusBadGateway, rejected.Message)
	case errors.Is(err, payment.ErrPaymentRejected):
		h.writeError(w, http.StatusBadGateway, payment.MessageRejected)
	case errors.Is(err, payment.ErrPaymentTransport):
		h.writeError(w, http.StatusServiceUnavailable, payment.MessageTransport)
	default:
		h.logger.Error(op+" error", zap.Error(err), zap.String("path", r.URL.Path))
		h.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, messageNoSession)
		return "", false
	}
	return sessionID, true
}

func productIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || !validation.IsValidProductID(id) {
		return 0, false
	}
	return id, true
}

// ListProducts возвращает каталог товаров.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.service.Products()

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetProduct возвращает товар по идентификатору.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		h.writeError(w, http.StatusBadRequest, messageBadRequest)
		return
	}

	p, err := h.service.Product(id)
	if err != nil {
		h.handleError(w, r, "get product", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(p))
}

// ListPromos возвращает таблицу промокодов.
func (h *Handler) ListPromos(w http.ResponseWriter, r *http.Request) {
	promos := h.service.Promos()

	resp := make([]promoResponse, 0, len(promos))
	for _, p := range promos {
		resp = append(resp, toPromoResponse(p))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetCart возвращает корзину текущего посетителя вместе с итогами.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	state, err := h.service.Cart(r.Context(), sessionID)
	if err != nil {
		h.handleError(w, r, "get cart", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toCartResponse(state))
}

// AddItem добавляет товар в корзину.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validation.IsValidProductID(req.ProductID) {
		h.writeError(w, http.StatusBadRequest, messageBadRequest)
		return
	}

	state, err := h.service.AddToCart(r.Context(), sessionID, req.ProductID)
	if err != nil {
		h.handleError(w, r, "add to cart", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toCartResponse(state))
}

// UpdateItem задаёт количество товара в корзине.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	id, ok := productIDParam(r)
	if !ok {
		h.writeError(w, http.StatusBadRequest, messageBadRequest)
		return
	}

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		h.writeError(w, http.StatusBadRequest, messageBadRequest)
		return
	}

	state, err := h.service.SetQuantity(r.Context(), sessionID, id, *req.Quantity)
	if err != nil {
		h.handleError(w, r, "set quantity", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toCartResponse(state))
}

// RemoveItem удаляет позицию из корзины.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	id, ok := productIDParam(r)
	if !ok {
		h.writeError(w, http.StatusBadRequest, messageBadRequest)
		return
	}

	state, err := h.service.RemoveFromCart(r.Context(), sessionID, id)
	if err != nil {
		h.handleError(w, r, "remove from cart", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toCartResponse(state))
}

// ApplyPromo применяет промокод к корзине.
func (h *Handler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req promoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, messageBadRequest)
		return
	}

	state, err := h.service.ApplyPromo(r.Context(), sessionID, req.Code)
	if err != nil {
		h.handleError(w, r, "apply promo", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toCartResponse(state))
}

// Checkout создаёт платёжную сессию и возвращает ссылку на страницу оплаты.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Checkout(r.Context(), sessionID, h.returnOrigin(r))
	if err != nil {
		h.handleError(w, r, "checkout", err)
		return
	}

	w.Header().Set("Location", result.ConfirmationURL)
	h.writeJSON(w, http.StatusOK, checkoutResponse{
		ConfirmationURL: result.ConfirmationURL,
		PaymentID:       result.PaymentID,
		Status:          result.Status,
	})
}

// GetSection возвращает текущий раздел витрины.
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	section, err := h.service.Section(r.Context(), sessionID)
	if err != nil {
		h.handleError(w, r, "get section", err)
		return
	}

	h.writeJSON(w, http.StatusOK, sectionResponse{Section: section, Sections: model.Sections})
}

// SwitchSection переключает раздел витрины.
func (h *Handler) SwitchSection(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req sectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, messageBadRequest)
		return
	}

	section, err := view.Parse(req.Section)
	if err != nil {
		h.handleError(w, r, "switch section", err)
		return
	}

	active, err := h.service.SwitchSection(r.Context(), sessionID, section)
	if err != nil {
		h.handleError(w, r, "switch section", err)
		return
	}

	h.writeJSON(w, http.StatusOK, sectionResponse{Section: active, Sections: model.Sections})
}

// returnOrigin определяет адрес витрины, на который платёжный сервис вернёт покупателя.
// Заголовок Origin принимается только для того же хоста, что и запрос.
func (h *Handler) returnOrigin(r *http.Request) string {
	if h.publicOrigin != "" {
		return h.publicOrigin
	}

	if origin := r.Header.Get("Origin"); origin != "" && origin != "null" {
		if u, ok := sameHostOrigin(origin, r.Host); ok {
			return u
		}
		h.logger.Debug("untrusted origin ignored", zap.String("origin", origin), zap.String("host", r.Host))
	}

	return requestScheme(r) + "://" + r.Host
}

func sameHostOrigin(origin, host string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Path != "" && u.Path != "/" {
		return "", false
	}
	if !strings.EqualFold(u.Host, host) {
		return "", false
	}
	return u.Scheme + "://" + u.Host, true
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	switch proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); proto {
	case "http", "https":
		return proto
	}
	return "http"
}
