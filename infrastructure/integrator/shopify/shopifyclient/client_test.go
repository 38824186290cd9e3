package shopifyclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextPageURL(t *testing.T) {
	header := `<https://shop.myshopify.com/admin/api/2024-01/orders.json?page_info=abc&limit=250>; rel="next"`
	assert.Equal(
		t,
		"https://shop.myshopify.com/admin/api/2024-01/orders.json?page_info=abc&limit=250",
		nextPageURL(header),
	)
}

func TestNextPageURL_PreviousAndNext(t *testing.T) {
	header := `<https://shop.myshopify.com/orders.json?page_info=prev>; rel="previous", ` +
		`<https://shop.myshopify.com/orders.json?page_info=next>; rel="next"`
	assert.Equal(t, "https://shop.myshopify.com/orders.json?page_info=next", nextPageURL(header))
}

func TestNextPageURL_NoNext(t *testing.T) {
	assert.Empty(t, nextPageURL(`<https://shop.myshopify.com/orders.json?page_info=prev>; rel="previous"`))
	assert.Empty(t, nextPageURL(""))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 2*time.Second, parseRetryAfter("2.0"))
	assert.Equal(t, 500*time.Millisecond, parseRetryAfter("0.5"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
}
