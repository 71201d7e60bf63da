package domain

type (
	UserProfile struct {
		UserID    string
		Email     string
		Name      string
		Favorites []string
		Orders    []Order
	}

	// A Credential is one entry of the mock credential table.
	// The password is plaintext: the table simulates a backend,
	// it is not an auth system.
	Credential struct {
		Profile  UserProfile
		Password string
	}
)

// HasFavorite reports whether the product is in the favorites set.
func (p UserProfile) HasFavorite(productID string) bool {
	for _, id := range p.Favorites {
		if id == productID {
			return true
		}
	}
	return false
}

const (
	LangPT = "pt"
	LangEN = "en"
	LangES = "es"
)

// SupportedLanguage reports whether code is one of the storefront locales.
func SupportedLanguage(code string) bool {
	switch code {
	case LangPT, LangEN, LangES:
		return true
	}
	return false
}
