package shopifydomain

import "strconv"

// TokenResponse representa a resposta da troca de código do Shopify; tokens
// offline não trazem expiração
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// Shop representa os metadados da loja retornados por /shop.json
type Shop struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Domain   string `json:"myshopify_domain"`
	Currency string `json:"currency"`
	Timezone string `json:"iana_timezone"`
}

type ShopResponse struct {
	Shop Shop `json:"shop"`
}

// Order é um pedido da loja; valores monetários vêm como string na Admin API
type Order struct {
	ID         int64      `json:"id"`
	CreatedAt  string     `json:"created_at"`
	TotalPrice string     `json:"total_price"`
	Customer   *Customer  `json:"customer,omitempty"`
	LineItems  []LineItem `json:"line_items"`
}

// TotalPriceValue converte o total do pedido para float64
func (o *Order) TotalPriceValue() float64 {
	value, _ := strconv.ParseFloat(o.TotalPrice, 64)
	return value
}

type Customer struct {
	ID          int64 `json:"id"`
	OrdersCount int64 `json:"orders_count"`
}

type LineItem struct {
	Title    string `json:"title"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
}

// PriceValue converte o preço unitário do item para float64
func (l *LineItem) PriceValue() float64 {
	value, _ := strconv.ParseFloat(l.Price, 64)
	return value
}

type OrdersResponse struct {
	Orders []Order `json:"orders"`
}

type ErrorResponse struct {
	Errors interface{} `json:"errors"`
}
