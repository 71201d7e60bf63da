package httphandler

type (
	Product struct {
		ProductID   string  `json:"productId"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Category    string  `json:"category"`
		Image       string  `json:"image"`
		Rating      float64 `json:"rating"`
		ReviewCount int     `json:"reviewCount"`
		Stock       Stock   `json:"stock"`
	}

	Stock struct {
		Status    string `json:"status"`
		Available int    `json:"available"`
		Message   string `json:"message,omitempty"`
	}
)

type (
	CartItem struct {
		ProductID string  `json:"productId"`
		Name      string  `json:"name"`
		Price     float64 `json:"price"`
		Image     string  `json:"image"`
		Quantity  int     `json:"quantity"`
		Size      string  `json:"size,omitempty"`
		Color     string  `json:"color,omitempty"`
	}

	CartState struct {
		Items     []CartItem `json:"items"`
		Total     float64    `json:"total"`
		ItemCount int        `json:"itemCount"`
	}

	AddCartItem struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
		Size      string `json:"size"`
		Color     string `json:"color"`
	}

	SetCartQuantity struct {
		Quantity int `json:"quantity"`
	}
)

type (
	ShippingForm struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Address    string `json:"address"`
		City       string `json:"city"`
		PostalCode string `json:"postalCode"`
		Country    string `json:"country"`
	}

	PaymentForm struct {
		Method     string `json:"method"`
		CardNumber string `json:"cardNumber"`
		ExpiryDate string `json:"expiryDate"`
		CVV        string `json:"cvv"`
		CardName   string `json:"cardName"`
	}

	Totals struct {
		Subtotal float64 `json:"subtotal"`
		Shipping float64 `json:"shipping"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
	}

	CheckoutState struct {
		Step   string `json:"step"`
		Totals Totals `json:"totals"`
	}

	Order struct {
		OrderID       string     `json:"id"`
		CreatedAt     string     `json:"createdAt"`
		Status        string     `json:"status"`
		Items         []CartItem `json:"items"`
		Totals        Totals     `json:"totals"`
		PaymentMethod string     `json:"paymentMethod"`
		CardBrand     string     `json:"cardBrand,omitempty"`
		CardLast4     string     `json:"cardLast4,omitempty"`
	}
)

type (
	LoginForm struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	RegisterForm struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	ProfileUpdate struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	Profile struct {
		UserID    string   `json:"id"`
		Email     string   `json:"email"`
		Name      string   `json:"name"`
		Favorites []string `json:"favorites"`
	}

	Language struct {
		Code string `json:"code"`
	}
)

type (
	APIError struct {
		Error string `json:"error"`
	}

	FieldErrors struct {
		Errors map[string]string `json:"errors"`
	}

	ProductSales struct {
		ProductID string `json:"productId"`
		UnitsSold int64  `json:"unitsSold"`
	}
)
