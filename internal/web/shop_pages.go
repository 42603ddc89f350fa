package web

import (
	"fmt"
	"strconv"

	"giftmarket/internal/repositories"
	"giftmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (p *Pages) productList(c *fiber.Ctx) error {
	products, err := p.catalog.ListProducts(c.UserContext(), "")
	if err != nil {
		p.flashError(c, err)
	}
	return p.render(c, "product_list", fiber.Map{"Title": "Products", "Products": products})
}

func (p *Pages) productDetail(c *fiber.Ctx) error {
	viewerID := ""
	if user := currentUser(c); user != nil {
		viewerID = user.ID
	}
	detail, err := p.reviews.ProductDetail(c.UserContext(), c.Params("id"), viewerID)
	if err != nil {
		return p.failTo(c, "/", err)
	}

	imageURL := ""
	if p.media != nil && detail.Product.ImageRef != "" {
		if imageURL, err = p.media.URL(c.UserContext(), detail.Product.ImageRef); err != nil {
			p.log.Warn("failed to resolve product image", zap.String("product_id", detail.Product.ID), zap.Error(err))
			imageURL = ""
		}
	}
	average := ""
	if detail.AverageRating != nil {
		average = strconv.FormatFloat(*detail.AverageRating, 'f', 1, 64)
	}
	return p.render(c, "product_detail", fiber.Map{
		"Title":           detail.Product.Name,
		"Product":         detail.Product,
		"ImageURL":        imageURL,
		"Reviews":         detail.Reviews,
		"ReviewCount":     detail.ReviewCount,
		"AverageRating":   average,
		"UserHasReviewed": detail.UserHasReviewed,
	})
}

func (p *Pages) viewCart(c *fiber.Ctx) error {
	view, err := p.cart.ViewCart(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return p.failTo(c, "/", err)
	}
	return p.render(c, "cart", fiber.Map{"Title": "Cart", "Cart": view})
}

func (p *Pages) addToCart(c *fiber.Ctx) error {
	productID := c.Params("productID")
	_, err := p.cart.AddToCart(c.UserContext(), currentUser(c).ID, productID, repositories.Personalization{
		Text:     c.FormValue("personalized_text"),
		ImageRef: c.FormValue("personalized_image_ref"),
	})
	if err != nil {
		if services.KindOf(err) == services.KindNotFound {
			return p.failTo(c, "/", err)
		}
		return p.failTo(c, "/product/"+productID, err)
	}
	p.flash(c, "success", "Added to your cart.")
	return c.Redirect("/cart")
}

func (p *Pages) increase(c *fiber.Ctx) error {
	if err := p.cart.IncreaseQuantity(c.UserContext(), currentUser(c).ID, c.Params("itemID")); err != nil {
		p.flashError(c, err)
	}
	return c.Redirect("/cart")
}

func (p *Pages) decrease(c *fiber.Ctx) error {
	if err := p.cart.DecreaseQuantity(c.UserContext(), currentUser(c).ID, c.Params("itemID")); err != nil {
		p.flashError(c, err)
	}
	return c.Redirect("/cart")
}

func (p *Pages) remove(c *fiber.Ctx) error {
	if err := p.cart.RemoveItem(c.UserContext(), currentUser(c).ID, c.Params("itemID")); err != nil {
		p.flashError(c, err)
	}
	return c.Redirect("/cart")
}

func (p *Pages) checkout(c *fiber.Ctx) error {
	order, err := p.cart.Checkout(c.UserContext(), currentUser(c).ID)
	if err != nil {
		if services.KindOf(err) == services.KindWarning {
			return p.failTo(c, "/", err)
		}
		return p.failTo(c, "/cart", err)
	}
	p.flash(c, "success", fmt.Sprintf("Order #%s placed successfully. Invoice sent to your email.", order.ID))
	return c.Redirect("/orders")
}

func (p *Pages) orders(c *fiber.Ctx) error {
	orders, err := p.cart.OrderHistory(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return p.failTo(c, "/", err)
	}
	return p.render(c, "order_history", fiber.Map{"Title": "Orders", "Orders": orders})
}

func (p *Pages) submitReview(c *fiber.Ctx) error {
	productID := c.Params("productID")
	rating := 0
	if raw := c.FormValue("rating"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			p.flash(c, "error", "Rating must be a number.")
			return c.Redirect("/product/" + productID)
		}
		rating = n
	}

	_, err := p.reviews.SubmitReview(c.UserContext(), currentUser(c).ID, productID, services.ReviewInput{
		Rating:  rating,
		Comment: c.FormValue("comment"),
	})
	if err != nil {
		if services.KindOf(err) == services.KindNotFound {
			return p.failTo(c, "/", err)
		}
		return p.failTo(c, "/product/"+productID, err)
	}
	p.flash(c, "success", "Your review has been submitted.")
	return c.Redirect("/product/" + productID)
}
