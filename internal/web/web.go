// Package web serves the server-rendered marketplace pages.
package web

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"giftmarket/internal/models"
	"giftmarket/internal/services"
	"giftmarket/pkg/media"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Layout is the template every page is rendered into.
const Layout = "layout"

const (
	sessionUserID    = "user_id"
	sessionFlashKind = "flash_kind"
	sessionFlashMsg  = "flash_msg"

	localSession = "web_session"
	localUser    = "web_user"
	localCSRF    = "csrf"
)

// NewEngine returns the template engine for fiber.Config.Views.
func NewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	return html.NewFileSystem(http.FS(sub), ".html"), nil
}

// Config tunes cookies.
type Config struct {
	SecureCookies bool
	SessionTTL    time.Duration
}

// Pages renders the HTML front end on top of the services.
type Pages struct {
	auth     *services.AuthService
	catalog  *services.CatalogService
	cart     *services.CartService
	reviews  *services.ReviewService
	media    media.Resolver
	sessions *session.Store
	csrf     fiber.Handler
	log      *zap.Logger
}

// New creates the page handlers.
func New(cfg Config, auth *services.AuthService, catalog *services.CatalogService, cart *services.CartService,
	reviews *services.ReviewService, resolver media.Resolver, log *zap.Logger) *Pages {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Pages{
		auth:    auth,
		catalog: catalog,
		cart:    cart,
		reviews: reviews,
		media:   resolver,
		sessions: session.New(session.Config{
			Expiration:     cfg.SessionTTL,
			KeyLookup:      "cookie:giftmarket_session",
			CookieSecure:   cfg.SecureCookies,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
		}),
		csrf: csrf.New(csrf.Config{
			KeyLookup:      "form:_csrf",
			CookieName:     "giftmarket_csrf",
			CookieSecure:   cfg.SecureCookies,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
			Expiration:     cfg.SessionTTL,
			ContextKey:     localCSRF,
		}),
		log: log,
	}
}

func isAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/api/") || p == "/health"
}

// RegisterRoutes mounts every page on app.
func (p *Pages) RegisterRoutes(app fiber.Router) {
	app.Use(p.loadSession, func(c *fiber.Ctx) error {
		if isAPI(c) {
			return c.Next()
		}
		return p.csrf(c)
	})

	app.Get("/", p.productList)
	app.Get("/product/:id", p.productDetail)

	app.Get("/signup/buyer", p.signupForm(false))
	app.Post("/signup/buyer", p.signup(false))
	app.Get("/signup/vendor", p.signupForm(true))
	app.Post("/signup/vendor", p.signup(true))
	app.Get("/login", p.loginForm)
	app.Post("/login", p.login)
	app.Post("/logout", p.logout)

	app.Get("/cart", p.requireLogin, p.viewCart)
	app.Post("/cart/add/:productID", p.requireLogin, p.addToCart)
	app.Post("/cart/increase/:itemID", p.requireLogin, p.increase)
	app.Post("/cart/decrease/:itemID", p.requireLogin, p.decrease)
	app.Post("/cart/remove/:itemID", p.requireLogin, p.remove)
	app.Post("/checkout", p.requireLogin, p.checkout)
	app.Get("/orders", p.requireLogin, p.orders)
	app.Post("/review/:productID", p.requireLogin, p.submitReview)

	app.Get("/vendor/dashboard", p.requireLogin, p.dashboard)
	app.Post("/vendor/dashboard", p.requireLogin, p.createStore)
	app.Get("/vendor/stores", p.requireLogin, p.storeList)
	app.Get("/vendor/stores/create", p.requireLogin, p.storeCreateForm)
	app.Post("/vendor/stores/create", p.requireLogin, p.createStore)
	app.Get("/vendor/stores/:storeID/edit", p.requireLogin, p.storeEditForm)
	app.Post("/vendor/stores/:storeID/edit", p.requireLogin, p.updateStore)
	app.Post("/vendor/stores/:storeID/delete", p.requireLogin, p.deleteStore)
	app.Get("/vendor/products/add", p.requireLogin, p.productAddForm)
	app.Post("/vendor/products/add", p.requireLogin, p.addProduct)
	app.Get("/vendor/products/:productID/edit", p.requireLogin, p.productEditForm)
	app.Post("/vendor/products/:productID/edit", p.requireLogin, p.updateProduct)
	app.Post("/vendor/products/:productID/delete", p.requireLogin, p.deleteProduct)
}

// loadSession attaches the session and the logged-in user to the request and
// saves the session once the page has been handled.
func (p *Pages) loadSession(c *fiber.Ctx) error {
	if isAPI(c) {
		return c.Next()
	}
	sess, err := p.sessions.Get(c)
	if err != nil {
		p.log.Error("failed to load session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("session unavailable")
	}
	c.Locals(localSession, sess)

	if userID, ok := sess.Get(sessionUserID).(string); ok && userID != "" {
		user, err := p.auth.GetUser(c.UserContext(), userID)
		switch {
		case err == nil:
			c.Locals(localUser, user)
		case services.KindOf(err) == services.KindNotFound:
			sess.Delete(sessionUserID)
		default:
			p.log.Error("failed to load session user", zap.Error(err))
		}
	}

	chainErr := c.Next()
	if err := sess.Save(); err != nil {
		p.log.Error("failed to save session", zap.Error(err))
	}
	return chainErr
}

func (p *Pages) session(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(localSession).(*session.Session)
	return sess
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// requireLogin redirects anonymous visitors to the login page.
func (p *Pages) requireLogin(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Next()
	}
	p.flash(c, "info", "Please log in to continue.")
	return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
}

func (p *Pages) logIn(c *fiber.Ctx, user *models.User) error {
	sess := p.session(c)
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionUserID, user.ID)
	c.Locals(localUser, user)
	return nil
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func (p *Pages) flash(c *fiber.Ctx, kind, msg string) {
	if sess := p.session(c); sess != nil {
		sess.Set(sessionFlashKind, kind)
		sess.Set(sessionFlashMsg, msg)
	}
}

func (p *Pages) popFlash(c *fiber.Ctx) *Flash {
	sess := p.session(c)
	if sess == nil {
		return nil
	}
	msg, _ := sess.Get(sessionFlashMsg).(string)
	if msg == "" {
		return nil
	}
	kind, _ := sess.Get(sessionFlashKind).(string)
	sess.Delete(sessionFlashMsg)
	sess.Delete(sessionFlashKind)
	return &Flash{Kind: kind, Message: msg}
}

// flashError turns a service error into a flash message.
func (p *Pages) flashError(c *fiber.Ctx, err error) {
	var serr *services.Error
	kind := services.KindOf(err)
	if kind == services.KindInternal || !errors.As(err, &serr) {
		p.log.Error("page request failed", zap.String("path", c.Path()), zap.Error(err))
		p.flash(c, "error", "Something went wrong. Please try again.")
		return
	}

	msg := serr.Message
	if len(serr.Fields) > 0 {
		keys := make([]string, 0, len(serr.Fields))
		for k := range serr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, serr.Fields[k])
		}
		msg = msg + ": " + strings.Join(parts, "; ")
	}
	level := "error"
	if kind == services.KindWarning {
		level = "warning"
	}
	p.flash(c, level, msg)
}

// failTo flashes err and redirects to target.
func (p *Pages) failTo(c *fiber.Ctx, target string, err error) error {
	p.flashError(c, err)
	return c.Redirect(target)
}

func (p *Pages) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["User"] = currentUser(c)
	data["Flash"] = p.popFlash(c)
	data["CSRF"] = c.Locals(localCSRF)
	return c.Render(name, data, Layout)
}
