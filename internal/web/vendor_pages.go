package web

import (
	"fmt"
	"strconv"
	"strings"

	"giftmarket/internal/models"
	"giftmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func (p *Pages) dashboard(c *fiber.Ctx) error {
	userID := currentUser(c).ID
	dash, err := p.catalog.VendorDashboard(c.UserContext(), userID)
	if err != nil {
		return p.failTo(c, "/", err)
	}
	reviews, err := p.reviews.VendorReviews(c.UserContext(), userID)
	if err != nil {
		return p.failTo(c, "/", err)
	}
	return p.render(c, "vendor_dashboard", fiber.Map{
		"Title":     "Vendor dashboard",
		"Dashboard": dash,
		"Reviews":   reviews,
	})
}

func (p *Pages) storeList(c *fiber.Ctx) error {
	stores, err := p.catalog.ListVendorStores(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return p.failTo(c, "/", err)
	}
	return p.render(c, "store_list", fiber.Map{
		"Title":  "Your stores",
		"Stores": stores,
	})
}

func storeInput(c *fiber.Ctx) services.StoreInput {
	return services.StoreInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
	}
}

func (p *Pages) storeCreateForm(c *fiber.Ctx) error {
	return p.render(c, "store_form", fiber.Map{
		"Title":  "Create a store",
		"Action": "/vendor/stores/create",
		"Store":  &models.Store{},
	})
}

// createStore serves both the dashboard form and the standalone create page.
func (p *Pages) createStore(c *fiber.Ctx) error {
	store, err := p.catalog.CreateStore(c.UserContext(), currentUser(c).ID, storeInput(c))
	if err != nil {
		if services.KindOf(err) == services.KindForbidden {
			return p.failTo(c, "/", err)
		}
		return p.failTo(c, c.Path(), err)
	}
	p.flash(c, "success", fmt.Sprintf("Store '%s' created.", store.Name))
	return c.Redirect("/vendor/dashboard")
}

func (p *Pages) storeEditForm(c *fiber.Ctx) error {
	store, err := p.catalog.OwnedStore(c.UserContext(), currentUser(c).ID, c.Params("storeID"))
	if err != nil {
		return p.failTo(c, "/vendor/dashboard", err)
	}
	return p.render(c, "store_form", fiber.Map{
		"Title":  "Edit store",
		"Action": "/vendor/stores/" + store.ID + "/edit",
		"Store":  store,
	})
}

func (p *Pages) updateStore(c *fiber.Ctx) error {
	storeID := c.Params("storeID")
	if _, err := p.catalog.UpdateStore(c.UserContext(), currentUser(c).ID, storeID, storeInput(c)); err != nil {
		if services.KindOf(err) == services.KindValidation {
			return p.failTo(c, "/vendor/stores/"+storeID+"/edit", err)
		}
		return p.failTo(c, "/vendor/dashboard", err)
	}
	p.flash(c, "success", "Store updated.")
	return c.Redirect("/vendor/dashboard")
}

func (p *Pages) deleteStore(c *fiber.Ctx) error {
	if err := p.catalog.DeleteStore(c.UserContext(), currentUser(c).ID, c.Params("storeID")); err != nil {
		return p.failTo(c, "/vendor/dashboard", err)
	}
	p.flash(c, "success", "Store deleted.")
	return c.Redirect("/vendor/dashboard")
}

// productInput parses the product form. Field errors are reported the same
// way the service reports them.
func productInput(c *fiber.Ctx) (services.ProductInput, error) {
	in := services.ProductInput{
		Name:              c.FormValue("name"),
		Description:       c.FormValue("description"),
		ImageRef:          strings.TrimSpace(c.FormValue("image_ref")),
		PersonalizedText:  c.FormValue("personalized_text") == "on",
		PersonalizedImage: c.FormValue("personalized_image") == "on",
	}
	fields := map[string]string{}
	price, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("price")))
	if err != nil {
		fields["Price"] = "Price must be a number"
	}
	in.Price = price
	if raw := strings.TrimSpace(c.FormValue("stock")); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			fields["Stock"] = "Stock must be a whole number"
		}
		in.Stock = stock
	}
	if len(fields) > 0 {
		return in, &services.Error{Kind: services.KindValidation, Message: "Validation failed", Fields: fields}
	}
	return in, nil
}

func (p *Pages) productAddForm(c *fiber.Ctx) error {
	stores, err := p.catalog.ListVendorStores(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return p.failTo(c, "/", err)
	}
	if len(stores) == 0 {
		p.flash(c, "info", "Create a store before adding products.")
		return c.Redirect("/vendor/dashboard")
	}
	return p.render(c, "product_form", fiber.Map{
		"Title":   "Add a product",
		"Action":  "/vendor/products/add",
		"Stores":  stores,
		"Product": &models.Product{},
	})
}

func (p *Pages) addProduct(c *fiber.Ctx) error {
	in, err := productInput(c)
	if err != nil {
		return p.failTo(c, "/vendor/products/add", err)
	}
	product, err := p.catalog.CreateProduct(c.UserContext(), currentUser(c).ID, c.FormValue("store_id"), in)
	if err != nil {
		if services.KindOf(err) == services.KindForbidden {
			return p.failTo(c, "/", err)
		}
		return p.failTo(c, "/vendor/products/add", err)
	}
	p.flash(c, "success", fmt.Sprintf("Product '%s' added.", product.Name))
	return c.Redirect("/vendor/dashboard")
}

func (p *Pages) productEditForm(c *fiber.Ctx) error {
	product, err := p.catalog.OwnedProduct(c.UserContext(), currentUser(c).ID, c.Params("productID"))
	if err != nil {
		return p.failTo(c, "/vendor/dashboard", err)
	}
	return p.render(c, "product_form", fiber.Map{
		"Title":   "Edit product",
		"Action":  "/vendor/products/" + product.ID + "/edit",
		"Product": product,
	})
}

func (p *Pages) updateProduct(c *fiber.Ctx) error {
	productID := c.Params("productID")
	editPage := "/vendor/products/" + productID + "/edit"
	in, err := productInput(c)
	if err != nil {
		return p.failTo(c, editPage, err)
	}
	if _, err := p.catalog.UpdateProduct(c.UserContext(), currentUser(c).ID, productID, in); err != nil {
		if services.KindOf(err) == services.KindValidation {
			return p.failTo(c, editPage, err)
		}
		return p.failTo(c, "/vendor/dashboard", err)
	}
	p.flash(c, "success", "Product updated.")
	return c.Redirect("/vendor/dashboard")
}

func (p *Pages) deleteProduct(c *fiber.Ctx) error {
	if err := p.catalog.DeleteProduct(c.UserContext(), currentUser(c).ID, c.Params("productID")); err != nil {
		return p.failTo(c, "/vendor/dashboard", err)
	}
	p.flash(c, "success", "Product deleted.")
	return c.Redirect("/vendor/dashboard")
}
