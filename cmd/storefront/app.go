package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amberfield/storefront-client/internal/account"
	"github.com/amberfield/storefront-client/internal/cart"
	"github.com/amberfield/storefront-client/internal/catalog"
	"github.com/amberfield/storefront-client/internal/checkout"
	"github.com/amberfield/storefront-client/internal/session"
	pkgerrors "github.com/amberfield/storefront-client/pkg/errors"
	"github.com/amberfield/storefront-client/pkg/logger"
	"github.com/amberfield/storefront-client/pkg/money"
)

const usage = `usage: storefront <command> [args]

catalog
  products                list products
  product <id>            show one product
  vendors                 list vendors
  vendor <id>             show one vendor and its products

account
  login <email-or-phone>  sign in (password is prompted)
  logout                  sign out
  register                create an account (fields are prompted)
  whoami                  show the signed-in user

cart
  cart                    show the cart
  cart add <product> [n]  add a product, default quantity 1
  cart set <item> <n>     change a line item quantity
  cart remove <item>      remove a line item
  cart clear              empty the cart

checkout                  place an order (fields are prompted)
`

// terminalNavigator satisfies the session Navigator by telling the user
// where to go instead of routing a browser there.
type terminalNavigator struct {
	out io.Writer
}

func newTerminalNavigator(out io.Writer) *terminalNavigator {
	return &terminalNavigator{out: out}
}

func (n *terminalNavigator) RedirectToLogin(returnTo string) {
	if returnTo != "" {
		fmt.Fprintf(n.out, "sign in first: storefront login <email-or-phone> (then retry %s)\n", returnTo)
		return
	}
	fmt.Fprintln(n.out, "sign in first: storefront login <email-or-phone>")
}

// terminalConfirmer asks a y/n question on the terminal. Anything but an
// explicit yes declines.
type terminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalConfirmer(in *bufio.Reader, out io.Writer) *terminalConfirmer {
	return &terminalConfirmer{in: in, out: out}
}

func (c *terminalConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

type app struct {
	session  *session.Store
	cart     *cart.Machine
	checkout *checkout.Flow
	catalog  *catalog.Service
	account  *account.Service
	logg     *logger.Logger

	in  *bufio.Reader
	out io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if err := a.session.Resolve(ctx); err != nil {
		// A dead session is not fatal for browsing; the command itself
		// fails later if it needs one.
		a.logg.Warn(ctx, "session resolution failed")
	}

	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}

	var err error
	switch args[0] {
	case "products":
		err = a.listProducts(ctx)
	case "product":
		err = a.showProduct(ctx, args[1:])
	case "vendors":
		err = a.listVendors(ctx)
	case "vendor":
		err = a.showVendor(ctx, args[1:])
	case "login":
		err = a.login(ctx, args[1:])
	case "logout":
		err = a.logout(ctx)
	case "register":
		err = a.register(ctx)
	case "whoami":
		err = a.whoami()
	case "cart":
		err = a.cartCommand(ctx, args[1:])
	case "checkout":
		err = a.checkoutCommand(ctx)
	case "help":
		fmt.Fprint(a.out, usage)
	default:
		fmt.Fprint(a.out, usage)
		err = fmt.Errorf("unknown command %q", args[0])
	}

	if err != nil {
		a.printError(ctx, err)
		return err
	}
	return nil
}

func (a *app) printError(ctx context.Context, err error) {
	if coded := pkgerrors.As(err); coded != nil {
		meta := pkgerrors.MetadataFor(coded.Code())
		if meta.PublicMessage == "" {
			// Declined confirmations are a silent abort.
			return
		}
		fmt.Fprintf(a.out, "error: %s\n", meta.PublicMessage)
		if details, ok := coded.Details().(map[string]string); ok && meta.DetailsAllowed {
			for field, msg := range details {
				fmt.Fprintf(a.out, "  %s %s\n", field, msg)
			}
		}
		if meta.Retryable {
			fmt.Fprintln(a.out, "  (you can retry this)")
		}
		return
	}
	a.logg.Error(ctx, "command failed", err)
	fmt.Fprintf(a.out, "error: %v\n", err)
}

func (a *app) listProducts(ctx context.Context) error {
	products, err := a.catalog.ListProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		fmt.Fprintf(a.out, "%6d  %-30s  %10s  %s\n", p.ID, p.Name, money.Format(p.Price), p.VendorName)
	}
	return nil
}

func (a *app) showProduct(ctx context.Context, args []string) error {
	id, err := parseID(args, "product id")
	if err != nil {
		return err
	}
	p, err := a.catalog.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s)\n", p.Name, money.Format(p.Price))
	fmt.Fprintf(a.out, "vendor: %s  rating: %.1f  stock: %d\n", p.VendorName, p.Rating, p.Stock)
	if p.Description != "" {
		fmt.Fprintln(a.out, p.Description)
	}
	return nil
}

func (a *app) listVendors(ctx context.Context) error {
	vendors, err := a.catalog.ListVendors(ctx)
	if err != nil {
		return err
	}
	for _, v := range vendors {
		fmt.Fprintf(a.out, "%6d  %-30s  rating %.1f\n", v.ID, v.Name, v.Rating)
	}
	return nil
}

func (a *app) showVendor(ctx context.Context, args []string) error {
	id, err := parseID(args, "vendor id")
	if err != nil {
		return err
	}
	vendor, products, err := a.catalog.GetVendor(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  rating %.1f\n", vendor.Name, vendor.Rating)
	if vendor.Description != "" {
		fmt.Fprintln(a.out, vendor.Description)
	}
	for _, p := range products {
		fmt.Fprintf(a.out, "%6d  %-30s  %10s\n", p.ID, p.Name, money.Format(p.Price))
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: storefront login <email-or-phone>")
	}
	password, err := a.prompt("password: ")
	if err != nil {
		return err
	}
	id, err := a.session.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s\n", id.Name)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *app) register(ctx context.Context) error {
	var input account.RegisterInput
	fields := []struct {
		label string
		dst   *string
	}{
		{"name: ", &input.Name},
		{"email: ", &input.Email},
		{"password: ", &input.Password},
		{"confirm password: ", &input.PasswordConfirmation},
	}
	for _, f := range fields {
		value, err := a.prompt(f.label)
		if err != nil {
			return err
		}
		*f.dst = value
	}
	id, err := a.account.Register(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "welcome, %s\n", id.Name)
	return nil
}

func (a *app) whoami() error {
	id := a.session.Current()
	if id == nil {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", id.Name, id.Email)
	return nil
}

func (a *app) cartCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if err := a.cart.Load(ctx); err != nil {
			return err
		}
		a.printCart()
		return nil
	}

	switch args[0] {
	case "add":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: storefront cart add <product> [quantity]")
		}
		productID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[1])
		}
		quantity := 1
		if len(args) == 3 {
			quantity, err = strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
		}
		if err := a.cart.AddItem(ctx, productID, quantity); err != nil {
			return err
		}
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: storefront cart set <item> <quantity>")
		}
		itemID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[1])
		}
		quantity, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		if err := a.loadThen(ctx, func() error { return a.cart.SetQuantity(ctx, itemID, quantity) }); err != nil {
			return err
		}
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: storefront cart remove <item>")
		}
		itemID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[1])
		}
		if err := a.loadThen(ctx, func() error { return a.cart.RemoveItem(ctx, itemID) }); err != nil {
			return err
		}
	case "clear":
		if err := a.loadThen(ctx, func() error { return a.cart.Clear(ctx) }); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}

	a.printCart()
	return nil
}

// loadThen fetches the cart before a mutation so the machine has line
// items to mutate. The CLI starts cold on every invocation, unlike a
// page that loads once.
func (a *app) loadThen(ctx context.Context, mutate func() error) error {
	if err := a.cart.Load(ctx); err != nil {
		return err
	}
	return mutate()
}

func (a *app) printCart() {
	snap := a.cart.Snapshot()
	if snap.IsEmpty() {
		fmt.Fprintln(a.out, "cart is empty")
		return
	}
	for _, item := range snap.Items {
		fmt.Fprintf(a.out, "%6d  %-30s  %3d x %10s = %10s\n",
			item.ItemID, item.ProductName, item.Quantity, money.Format(item.UnitPrice), money.Format(item.Subtotal))
	}
	fmt.Fprintf(a.out, "subtotal %s  tax %s  total %s\n",
		money.Format(snap.Subtotal), money.Format(snap.Tax), money.Format(snap.Total))
}

func (a *app) checkoutCommand(ctx context.Context) error {
	if err := a.cart.Load(ctx); err != nil {
		return err
	}
	if err := a.checkout.Open(); err != nil {
		return err
	}

	fields := []struct {
		label string
		name  string
	}{
		{"name: ", "shipping_name"},
		{"address line 1: ", "shipping_address_line1"},
		{"address line 2 (optional): ", "shipping_address_line2"},
		{"city: ", "shipping_city"},
		{"state: ", "shipping_state"},
		{"postal code: ", "shipping_postal_code"},
		{"country: ", "shipping_country"},
		{"phone: ", "shipping_phone"},
		{"payment method (credit_card, paypal, bank_transfer, cod): ", "payment_method"},
		{"notes (optional): ", "notes"},
	}
	for _, f := range fields {
		value, err := a.prompt(f.label)
		if err != nil {
			return err
		}
		if value == "" && (f.name == "shipping_address_line2" || f.name == "notes" || f.name == "payment_method") {
			continue
		}
		if err := a.checkout.UpdateField(f.name, value); err != nil {
			return err
		}
	}

	orderID, err := a.checkout.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "order #%d placed\n", orderID)
	return nil
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func parseID(args []string, what string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("missing %s", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return id, nil
}
