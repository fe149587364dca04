package models

// CatalogProduct is a single product as returned by the storefront catalog API.
// Values are scoped to one populate run and never mutated.
type CatalogProduct struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Slug             string       `json:"slug"`
	Genres           []Genre      `json:"genres"`
	Developers       []string     `json:"developers"`
	Publishers       []string     `json:"publishers"`
	OperatingSystems []string     `json:"operatingSystems"`
	ReleaseDate      string       `json:"releaseDate"`
	Price            CatalogPrice `json:"price"`
	CoverHorizontal  string       `json:"coverHorizontal"`
	Screenshots      []string     `json:"screenshots"`
}

// Genre is a catalog genre tag.
type Genre struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CatalogPrice holds the pricing block of a catalog product.
type CatalogPrice struct {
	FinalMoney Money `json:"finalMoney"`
	BaseMoney  Money `json:"baseMoney"`
}

// Money is an amount as a decimal string plus its currency code.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// DetailInfo holds the fields scraped from a product detail page.
type DetailInfo struct {
	Description      string `json:"description"`
	ShortDescription string `json:"shortDescription"`
	Rating           string `json:"rating"`
}

// ReferenceNames returns the names this product references for kind, in
// catalog order.
func (p *CatalogProduct) ReferenceNames(kind ReferenceKind) []string {
	switch kind {
	case ReferenceCategory:
		names := make([]string, 0, len(p.Genres))
		for _, g := range p.Genres {
			names = append(names, g.Name)
		}
		return names
	case ReferenceDeveloper:
		return p.Developers
	case ReferencePlatform:
		return p.OperatingSystems
	case ReferencePublisher:
		return p.Publishers
	}
	return nil
}
