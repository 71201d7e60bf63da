package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/service"
)

// A SalesReader reads the per-product units-sold totals
// maintained by the sales processor.
type SalesReader interface {
	SoldCount(productID string) (int64, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIError{Error: msg})
}

// GET  /v1/products?search=&category=
// GET  /v1/products/{id}
// GET  /v1/products/{id}/sales
// GET  /v1/categories
type CatalogHandler struct {
	catalog service.Catalog
	ledger  *service.StockLedger
	sales   SalesReader
}

func RegisterCatalog(
	mux *http.ServeMux,
	catalog service.Catalog,
	ledger *service.StockLedger,
	sales SalesReader,
) {
	h := CatalogHandler{catalog, ledger, sales}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /v1/categories", h.GetCategories)
	if sales != nil {
		mux.HandleFunc("GET /v1/products/{id}/sales", h.GetProductSales)
	}
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = service.CategoryAll
	}

	products := h.catalog.Filter(term, category)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, h.toProduct(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "produto não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, h.toProduct(p))
}

func (h CatalogHandler) GetCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Categories())
}

func (h CatalogHandler) GetProductSales(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProductSales"
	log := slog.With("op", op)

	id := r.PathValue("id")
	if _, err := h.catalog.Product(id); err != nil {
		writeError(w, http.StatusNotFound, "produto não encontrado")
		return
	}

	n, err := h.sales.SoldCount(id)
	if err != nil {
		log.Error("failed to read sales view", "err", err)
		writeError(w, http.StatusServiceUnavailable, "vendas indisponíveis")
		return
	}
	writeJSON(w, http.StatusOK, ProductSales{ProductID: id, UnitsSold: n})
}

func (h CatalogHandler) toProduct(p domain.Product) Product {
	return Product{
		ProductID:   p.ProductID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Image:       p.Image,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		Stock: Stock{
			Status:    string(h.ledger.Status(p.ProductID)),
			Available: h.ledger.Available(p.ProductID),
			Message:   h.ledger.StockMessage(p.ProductID),
		},
	}
}

// GET    /v1/cart
// POST   /v1/cart/items
// PATCH  /v1/cart/items/{id}
// DELETE /v1/cart/items/{id}
type CartHandler struct {
	cart    *service.Cart
	catalog service.Catalog
	ledger  *service.StockLedger
}

func RegisterCart(
	mux *http.ServeMux,
	cart *service.Cart,
	catalog service.Catalog,
	ledger *service.StockLedger,
) {
	h := CartHandler{cart, catalog, ledger}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("POST /v1/cart/items", h.PostItem)
	mux.HandleFunc("PATCH /v1/cart/items/{id}", h.PatchItem)
	mux.HandleFunc("DELETE /v1/cart/items/{id}", h.DeleteItem)
}

func (h CartHandler) GetCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.state())
}

func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var body AddCartItem
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	product, err := h.catalog.Product(body.ProductID)
	if err != nil {
		writeError(w, http.StatusNotFound, "produto não encontrado")
		return
	}

	qty := body.Quantity
	if qty < 1 {
		qty = 1
	}
	if err := h.ledger.Reserve(product.ProductID, qty); err != nil {
		if errors.Is(err, domain.ErrStockUnavailable) {
			writeError(
				w, http.StatusConflict,
				h.ledger.StockMessage(product.ProductID),
			)
			return
		}
		writeError(w, http.StatusInternalServerError, "erro interno")
		log.Error("failed to reserve stock", "err", err)
		return
	}

	var opts []service.CartLineOpt
	if body.Size != "" {
		opts = append(opts, service.WithSize(body.Size))
	}
	if body.Color != "" {
		opts = append(opts, service.WithColor(body.Color))
	}

	if err := h.cart.Add(r.Context(), product, qty, opts...); err != nil {
		log.Warn("cart stored copy may lag", "err", err)
	}
	writeJSON(w, http.StatusOK, h.state())
}

func (h CartHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PatchItem"
	log := slog.With("op", op)

	var body SetCartQuantity
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	id := r.PathValue("id")
	line, ok := h.cart.Line(id)
	if !ok {
		writeError(w, http.StatusNotFound, "artigo não está no carrinho")
		return
	}

	qty := body.Quantity
	if qty < 1 {
		qty = 1
	}

	switch delta := qty - line.Quantity; {
	case delta > 0:
		if err := h.ledger.Reserve(id, delta); err != nil {
			if errors.Is(err, domain.ErrStockUnavailable) {
				writeError(w, http.StatusConflict, h.ledger.StockMessage(id))
				return
			}
			writeError(w, http.StatusInternalServerError, "erro interno")
			log.Error("failed to reserve stock", "err", err)
			return
		}
	case delta < 0:
		h.ledger.Release(id, -delta)
	}

	if err := h.cart.SetQuantity(r.Context(), id, qty); err != nil {
		log.Warn("cart stored copy may lag", "err", err)
	}
	writeJSON(w, http.StatusOK, h.state())
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteItem"
	log := slog.With("op", op)

	id := r.PathValue("id")
	line, ok := h.cart.Line(id)
	if ok {
		h.ledger.Release(id, line.Quantity)
		if err := h.cart.Remove(r.Context(), id); err != nil {
			log.Warn("cart stored copy may lag", "err", err)
		}
	}
	writeJSON(w, http.StatusOK, h.state())
}

func (h CartHandler) state() CartState {
	lines := h.cart.Lines()
	items := make([]CartItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, toCartItem(l))
	}
	return CartState{
		Items:     items,
		Total:     h.cart.Total(),
		ItemCount: h.cart.ItemCount(),
	}
}

func toCartItem(l domain.CartLine) CartItem {
	return CartItem{
		ProductID: l.Product.ProductID,
		Name:      l.Product.Name,
		Price:     l.Product.Price,
		Image:     l.Product.Image,
		Quantity:  l.Quantity,
		Size:      l.Size,
		Color:     l.Color,
	}
}

// GET  /v1/checkout
// POST /v1/checkout/shipping
// POST /v1/checkout/payment
// POST /v1/checkout/back
// POST /v1/checkout/order
// POST /v1/checkout/reset
type CheckoutHandler struct {
	checkout *service.Checkout
}

func RegisterCheckout(mux *http.ServeMux, checkout *service.Checkout) {
	h := CheckoutHandler{checkout}
	mux.HandleFunc("GET /v1/checkout", h.GetState)
	mux.HandleFunc("POST /v1/checkout/shipping", h.PostShipping)
	mux.HandleFunc("POST /v1/checkout/payment", h.PostPayment)
	mux.HandleFunc("POST /v1/checkout/back", h.PostBack)
	mux.HandleFunc("POST /v1/checkout/order", h.PostOrder)
	mux.HandleFunc("POST /v1/checkout/reset", h.PostReset)
}

func (h CheckoutHandler) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.state())
}

func (h CheckoutHandler) PostShipping(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostShipping"
	log := slog.With("op", op)

	var body ShippingForm
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	err := h.checkout.SubmitShipping(domain.ShippingInfo{
		Name:       body.Name,
		Email:      body.Email,
		Phone:      body.Phone,
		Address:    body.Address,
		City:       body.City,
		PostalCode: body.PostalCode,
		Country:    body.Country,
	})
	if err != nil {
		h.writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state())
}

func (h CheckoutHandler) PostPayment(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostPayment"
	log := slog.With("op", op)

	var body PaymentForm
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	err := h.checkout.SubmitPayment(domain.PaymentForm{
		Method:     domain.PaymentMethod(body.Method),
		CardNumber: body.CardNumber,
		ExpiryDate: body.ExpiryDate,
		CVV:        body.CVV,
		CardName:   body.CardName,
	})
	if err != nil {
		h.writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state())
}

func (h CheckoutHandler) PostBack(w http.ResponseWriter, _ *http.Request) {
	if err := h.checkout.Back(); err != nil {
		h.writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state())
}

func (h CheckoutHandler) PostOrder(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostOrder"
	log := slog.With("op", op)

	order, err := h.checkout.PlaceOrder(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSubmitting):
			writeError(w, http.StatusConflict, "encomenda já em processamento")
		case errors.Is(err, domain.ErrStockUnavailable):
			writeError(w, http.StatusConflict, "stock insuficiente")
		case errors.Is(err, domain.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "o carrinho está vazio")
		case errors.Is(err, domain.ErrInvalidStep):
			writeError(w, http.StatusConflict, "passo inválido")
		default:
			writeError(w, http.StatusInternalServerError, "erro interno")
			log.Error("failed to place order", "err", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toOrder(order))
}

func (h CheckoutHandler) PostReset(w http.ResponseWriter, _ *http.Request) {
	h.checkout.Reset()
	writeJSON(w, http.StatusOK, h.state())
}

func (h CheckoutHandler) writeStepError(w http.ResponseWriter, err error) {
	if fields, ok := domain.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, FieldErrors{Errors: fields})
		return
	}
	if errors.Is(err, domain.ErrInvalidStep) {
		writeError(w, http.StatusConflict, "passo inválido")
		return
	}
	writeError(w, http.StatusInternalServerError, "erro interno")
}

func (h CheckoutHandler) state() CheckoutState {
	q := h.checkout.Quote()
	return CheckoutState{
		Step: string(h.checkout.Step()),
		Totals: Totals{
			Subtotal: q.Subtotal,
			Shipping: q.Shipping,
			Tax:      q.Tax,
			Total:    q.Total,
		},
	}
}

func toOrder(o domain.Order) Order {
	items := make([]CartItem, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, toCartItem(l))
	}
	return Order{
		OrderID:   o.OrderID,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
		Status:    o.Status,
		Items:     items,
		Totals: Totals{
			Subtotal: o.Totals.Subtotal,
			Shipping: o.Totals.Shipping,
			Tax:      o.Totals.Tax,
			Total:    o.Totals.Total,
		},
		PaymentMethod: string(o.Payment.Method),
		CardBrand:     o.Payment.CardBrand,
		CardLast4:     o.Payment.CardLast4,
	}
}

// GET    /v1/session
// POST   /v1/session/login
// POST   /v1/session/register
// DELETE /v1/session
// PATCH  /v1/session/profile
// POST   /v1/session/favorites/{id}
// GET    /v1/language
// PUT    /v1/language
type SessionHandler struct {
	session *service.Session
}

func RegisterSession(mux *http.ServeMux, session *service.Session) {
	h := SessionHandler{session}
	mux.HandleFunc("GET /v1/session", h.GetSession)
	mux.HandleFunc("POST /v1/session/login", h.PostLogin)
	mux.HandleFunc("POST /v1/session/register", h.PostRegister)
	mux.HandleFunc("DELETE /v1/session", h.DeleteSession)
	mux.HandleFunc("PATCH /v1/session/profile", h.PatchProfile)
	mux.HandleFunc("POST /v1/session/favorites/{id}", h.PostFavorite)
	mux.HandleFunc("GET /v1/language", h.GetLanguage)
	mux.HandleFunc("PUT /v1/language", h.PutLanguage)
}

func (h SessionHandler) GetSession(w http.ResponseWriter, _ *http.Request) {
	profile, ok := h.session.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(profile))
}

func (h SessionHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.PostLogin"
	log := slog.With("op", op)

	var body LoginForm
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	profile, err := h.session.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "Email ou palavra-passe incorretos")
			return
		}
		writeError(w, http.StatusInternalServerError, "erro interno")
		log.Error("login failed", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(profile))
}

func (h SessionHandler) PostRegister(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.PostRegister"
	log := slog.With("op", op)

	var body RegisterForm
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	profile, err := h.session.Register(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "Este email já está registado")
			return
		}
		writeError(w, http.StatusInternalServerError, "erro interno")
		log.Error("register failed", "err", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProfile(profile))
}

func (h SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.DeleteSession"

	if err := h.session.Logout(r.Context()); err != nil {
		slog.Warn("failed to drop stored session", "op", op, "err", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SessionHandler) PatchProfile(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.PatchProfile"
	log := slog.With("op", op)

	var body ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	profile, err := h.session.UpdateProfile(r.Context(), body.Name, body.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "sessão expirada")
			return
		}
		log.Warn("profile stored copy may lag", "err", err)
	}
	writeJSON(w, http.StatusOK, toProfile(profile))
}

func (h SessionHandler) PostFavorite(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.PostFavorite"
	log := slog.With("op", op)

	profile, err := h.session.ToggleFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "sessão expirada")
			return
		}
		log.Warn("profile stored copy may lag", "err", err)
	}
	writeJSON(w, http.StatusOK, toProfile(profile))
}

func (h SessionHandler) GetLanguage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Language{Code: h.session.Language(r.Context())})
}

func (h SessionHandler) PutLanguage(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.PutLanguage"
	log := slog.With("op", op)

	var body Language
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if err := h.session.SetLanguage(r.Context(), body.Code); err != nil {
		if errors.Is(err, domain.ErrUnknownLanguage) {
			writeError(w, http.StatusBadRequest, "idioma não suportado")
			return
		}
		writeError(w, http.StatusInternalServerError, "erro interno")
		log.Error("failed to store language", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, Language{Code: body.Code})
}

func toProfile(p domain.UserProfile) Profile {
	return Profile{
		UserID:    p.UserID,
		Email:     p.Email,
		Name:      p.Name,
		Favorites: p.Favorites,
	}
}
