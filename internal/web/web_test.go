package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"giftmarket/internal/app"
	"giftmarket/internal/config"
	"giftmarket/internal/database/dbtest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	csrfField   = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)
	productLink = regexp.MustCompile(`href="/product/([^"]+)"`)
)

// browser keeps cookies and the latest CSRF token between requests.
type browser struct {
	t       *testing.T
	server  *fiber.App
	cookies map[string]*http.Cookie
	csrf    string
}

func newBrowser(t *testing.T, server *fiber.App) *browser {
	return &browser{t: t, server: server, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	resp, err := b.server.Test(req, -1)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		b.cookies[c.Name] = c
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	body := string(raw)
	if m := csrfField.FindStringSubmatch(body); m != nil {
		b.csrf = m[1]
	}
	return resp, body
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *http.Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("_csrf") == "" {
		form.Set("_csrf", b.csrf)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ := b.do(req)
	return resp
}

// follow posts and returns the redirect target.
func (b *browser) follow(path string, form url.Values) string {
	b.t.Helper()
	resp := b.post(path, form)
	require.Equal(b.t, http.StatusFound, resp.StatusCode, "POST %s", path)
	return resp.Header.Get("Location")
}

func setupPages(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		AppEnv:              "test",
		JWTSecret:           "test_jwt_secret",
		JWTTTL:              time.Hour,
		CheckoutEmailPolicy: "best_effort",
		MediaBaseURL:        "/media",
	}
	server, err := app.New(app.Deps{DB: dbtest.Open(t), Config: cfg})
	require.NoError(t, err)
	return server
}

func signup(b *browser, kind, username string) string {
	b.t.Helper()
	b.get("/signup/" + kind)
	return b.follow("/signup/"+kind, url.Values{
		"username":   {username},
		"email":      {username + "@example.com"},
		"password":   {"password123"},
		"store_name": {"Clay Corner"},
	})
}

func TestPages_SignupShowsFlashAndNav(t *testing.T) {
	server := setupPages(t)
	b := newBrowser(t, server)

	assert.Equal(t, "/", signup(b, "buyer", "alice"))

	_, body := b.get("/")
	assert.Contains(t, body, "Welcome to Giftmarket!")
	assert.Contains(t, body, "Log out alice")

	// The flash is shown once.
	_, body = b.get("/")
	assert.NotContains(t, body, "Welcome to Giftmarket!")
}

func TestPages_SignupValidationRerendersForm(t *testing.T) {
	server := setupPages(t)
	b := newBrowser(t, server)

	b.get("/signup/buyer")
	resp := b.post("/signup/buyer", url.Values{
		"username": {"alice"},
		"email":    {"not-an-email"},
		"password": {"password123"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := b.get("/login")
	assert.NotContains(t, body, "Log out")
}

func TestPages_PostWithoutCSRFIsRejected(t *testing.T) {
	server := setupPages(t)
	b := newBrowser(t, server)

	b.get("/signup/buyer")
	resp := b.post("/signup/buyer", url.Values{
		"_csrf":    {"forged"},
		"username": {"mallory"},
		"email":    {"mallory@example.com"},
		"password": {"password123"},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPages_LoginRequiredRedirects(t *testing.T) {
	server := setupPages(t)
	b := newBrowser(t, server)

	resp, _ := b.get("/cart")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fcart", resp.Header.Get("Location"))

	signup(b, "buyer", "alice")
	assert.Equal(t, "/", b.follow("/logout", nil))

	_, body := b.get("/login?next=/cart")
	assert.Contains(t, body, `value="/cart"`)
	assert.Equal(t, "/cart", b.follow("/login", url.Values{
		"username": {"alice"},
		"password": {"password123"},
		"next":     {"/cart"},
	}))

	// Off-site targets are ignored.
	b.follow("/logout", nil)
	b.get("/login")
	assert.Equal(t, "/", b.follow("/login", url.Values{
		"username": {"alice"},
		"password": {"password123"},
		"next":     {"//evil.example.com"},
	}))
}

func TestPages_BadLoginShowsError(t *testing.T) {
	server := setupPages(t)
	b := newBrowser(t, server)
	signup(b, "buyer", "alice")
	b.follow("/logout", nil)

	b.get("/login")
	resp := b.post("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPages_VendorBuyerJourney(t *testing.T) {
	server := setupPages(t)

	vendor := newBrowser(t, server)
	assert.Equal(t, "/vendor/dashboard", signup(vendor, "vendor", "potter"))

	_, body := vendor.get("/vendor/dashboard")
	assert.Contains(t, body, "Clay Corner")
	assert.Contains(t, body, "You have no stores yet.")

	// Adding a product needs a store first.
	resp, _ := vendor.get("/vendor/products/add")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/vendor/dashboard", resp.Header.Get("Location"))

	vendor.get("/vendor/dashboard")
	assert.Equal(t, "/vendor/dashboard", vendor.follow("/vendor/dashboard", url.Values{
		"name":        {"Mugs & More"},
		"description": {"Handmade mugs"},
	}))

	_, body = vendor.get("/vendor/products/add")
	assert.Contains(t, body, `name="store_id"`)
	storeID := regexp.MustCompile(`<option value="([^"]+)">Mugs &amp; More</option>`).FindStringSubmatch(body)
	require.NotNil(t, storeID)

	assert.Equal(t, "/vendor/products/add", vendor.follow("/vendor/products/add", url.Values{
		"store_id": {storeID[1]},
		"name":     {"Mug"},
		"price":    {"abc"},
	}))
	assert.Equal(t, "/vendor/dashboard", vendor.follow("/vendor/products/add", url.Values{
		"store_id":          {storeID[1]},
		"name":              {"Mug"},
		"description":       {"A sturdy mug"},
		"price":             {"12.50"},
		"stock":             {"3"},
		"personalized_text": {"on"},
	}))

	buyer := newBrowser(t, server)
	signup(buyer, "buyer", "alice")

	_, body = buyer.get("/")
	link := productLink.FindStringSubmatch(body)
	require.NotNil(t, link)
	productID := link[1]

	_, body = buyer.get("/product/" + productID)
	assert.Contains(t, body, "12.50")
	assert.Contains(t, body, `name="personalized_text"`)
	assert.Contains(t, body, "No reviews yet.")

	// Buyers cannot reach vendor pages.
	resp, _ = buyer.get("/vendor/dashboard")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	vendor.get("/vendor/products/add")
	assert.Equal(t, "/vendor/dashboard", vendor.follow("/vendor/products/add", url.Values{
		"store_id": {storeID[1]},
		"name":     {"Card"},
		"price":    {"3.00"},
		"stock":    {"5"},
	}))
	_, body = buyer.get("/")
	var cardID string
	for _, m := range productLink.FindAllStringSubmatch(body, -1) {
		if m[1] != productID {
			cardID = m[1]
		}
	}
	require.NotEmpty(t, cardID)

	assert.Equal(t, "/cart", buyer.follow("/cart/add/"+productID, url.Values{"personalized_text": {"For Mum"}}))
	_, body = buyer.get("/cart")
	assert.Contains(t, body, "For Mum")
	assert.Contains(t, body, "Total: 12.50")

	// A repeat add bumps the line; another product gets its own line.
	assert.Equal(t, "/cart", buyer.follow("/cart/add/"+productID, nil))
	assert.Equal(t, "/cart", buyer.follow("/cart/add/"+cardID, nil))
	_, body = buyer.get("/cart")
	assert.Equal(t, 2, strings.Count(body, `action="/cart/remove/`))
	assert.Contains(t, body, "<td>25.00</td>")
	assert.Contains(t, body, "<td>3.00</td>")
	assert.Contains(t, body, "Total: 28.00")

	assert.Equal(t, "/orders", buyer.follow("/checkout", nil))
	_, body = buyer.get("/orders")
	assert.Contains(t, body, "placed successfully. Invoice sent to your email.")
	assert.Contains(t, body, "Mug x 2")
	assert.Contains(t, body, "Card x 1")

	buyer.get("/cart")
	assert.Equal(t, "/", buyer.follow("/checkout", nil))
	_, body = buyer.get("/")
	assert.Contains(t, body, "Your cart is empty.")

	buyer.get("/product/" + productID)
	assert.Equal(t, "/product/"+productID, buyer.follow("/review/"+productID, url.Values{
		"rating":  {"4"},
		"comment": {"Lovely"},
	}))
	_, body = buyer.get("/product/" + productID)
	assert.Contains(t, body, "Your review has been submitted.")
	assert.Contains(t, body, "Average rating: 4.0")
	assert.Contains(t, body, "Verified purchase")
	assert.NotContains(t, body, `action="/review/`)

	_, body = vendor.get("/vendor/dashboard")
	assert.Contains(t, body, "4/5 Lovely (verified)")
}

func TestPages_VendorCannotEditOthersProducts(t *testing.T) {
	server := setupPages(t)

	owner := newBrowser(t, server)
	signup(owner, "vendor", "potter")
	owner.get("/vendor/dashboard")
	owner.follow("/vendor/dashboard", url.Values{"name": {"Clay"}})
	_, body := owner.get("/vendor/dashboard")
	storeLink := regexp.MustCompile(`href="/vendor/stores/([^/"]+)/edit"`).FindStringSubmatch(body)
	require.NotNil(t, storeLink)

	other := newBrowser(t, server)
	signup(other, "vendor", "weaver")
	resp, _ := other.get("/vendor/stores/" + storeLink[1] + "/edit")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/vendor/dashboard", resp.Header.Get("Location"))

	_, body = other.get("/vendor/dashboard")
	assert.Contains(t, body, "You do not own this store.")

	assert.Equal(t, "/vendor/dashboard", other.follow("/vendor/stores/"+storeLink[1]+"/delete", nil))
	_, body = owner.get("/vendor/dashboard")
	assert.Contains(t, body, "<strong>Clay</strong>")
}

func TestPages_VendorStoreList(t *testing.T) {
	server := setupPages(t)

	vendor := newBrowser(t, server)
	signup(vendor, "vendor", "potter")
	_, body := vendor.get("/vendor/stores")
	assert.Contains(t, body, "You have no stores yet.")

	vendor.get("/vendor/stores/create")
	assert.Equal(t, "/vendor/dashboard", vendor.follow("/vendor/stores/create", url.Values{"name": {"Clay"}}))
	vendor.get("/vendor/dashboard")
	vendor.follow("/vendor/dashboard", url.Values{"name": {"Glass"}})

	_, body = vendor.get("/vendor/stores")
	assert.Contains(t, body, "<strong>Clay</strong>")
	assert.Contains(t, body, "<strong>Glass</strong>")
	assert.Equal(t, 2, strings.Count(body, `/delete"`))

	other := newBrowser(t, server)
	signup(other, "vendor", "weaver")
	_, body = other.get("/vendor/stores")
	assert.NotContains(t, body, "<strong>Clay</strong>")

	buyer := newBrowser(t, server)
	signup(buyer, "buyer", "alice")
	resp, _ := buyer.get("/vendor/stores")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}
