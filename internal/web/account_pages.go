package web

import (
	"strings"

	"giftmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (p *Pages) signupForm(vendor bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return p.render(c, "signup", signupData(vendor, services.RegisterInput{}, ""))
	}
}

func signupData(vendor bool, in services.RegisterInput, storeName string) fiber.Map {
	title, action := "Create a buyer account", "/signup/buyer"
	if vendor {
		title, action = "Open a vendor account", "/signup/vendor"
	}
	return fiber.Map{
		"Title":     title,
		"Action":    action,
		"Vendor":    vendor,
		"Username":  in.Username,
		"Email":     in.Email,
		"StoreName": storeName,
	}
}

func (p *Pages) signup(vendor bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := services.RegisterInput{
			Username: c.FormValue("username"),
			Email:    c.FormValue("email"),
			Password: c.FormValue("password"),
		}
		storeName := c.FormValue("store_name")

		var err error
		target := "/"
		if vendor {
			user, _, regErr := p.auth.RegisterVendor(c.UserContext(), in, storeName)
			err = regErr
			if err == nil {
				err = p.logIn(c, user)
				target = "/vendor/dashboard"
			}
		} else {
			user, regErr := p.auth.RegisterBuyer(c.UserContext(), in)
			err = regErr
			if err == nil {
				err = p.logIn(c, user)
			}
		}
		if err != nil {
			p.flashError(c, err)
			return p.render(c, "signup", signupData(vendor, in, storeName))
		}
		p.flash(c, "success", "Welcome to Giftmarket!")
		return c.Redirect(target)
	}
}

func (p *Pages) loginForm(c *fiber.Ctx) error {
	return p.render(c, "login", fiber.Map{"Title": "Log in", "Next": safeNext(c.Query("next"))})
}

// safeNext only allows local redirect targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}

func (p *Pages) login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	user, err := p.auth.Authenticate(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		p.flashError(c, err)
		return p.render(c, "login", fiber.Map{
			"Title":    "Log in",
			"Next":     safeNext(c.FormValue("next")),
			"Username": username,
		})
	}
	if err := p.logIn(c, user); err != nil {
		return p.failTo(c, "/login", err)
	}
	p.log.Info("user logged in", zap.String("user_id", user.ID))

	target := safeNext(c.FormValue("next"))
	if target == "" {
		target = "/"
	}
	return c.Redirect(target)
}

func (p *Pages) logout(c *fiber.Ctx) error {
	sess := p.session(c)
	sess.Delete(sessionUserID)
	if err := sess.Regenerate(); err != nil {
		p.log.Error("failed to regenerate session", zap.Error(err))
	}
	c.Locals(localUser, nil)
	p.flash(c, "info", "You have been logged out.")
	return c.Redirect("/")
}
