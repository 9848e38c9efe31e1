package main

import (
	"bufio"
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/amberfield/storefront-client/internal/account"
	"github.com/amberfield/storefront-client/internal/cart"
	"github.com/amberfield/storefront-client/internal/catalog"
	"github.com/amberfield/storefront-client/internal/checkout"
	"github.com/amberfield/storefront-client/internal/gateway"
	"github.com/amberfield/storefront-client/internal/session"
	"github.com/amberfield/storefront-client/pkg/config"
	"github.com/amberfield/storefront-client/pkg/logger"
)

// lazyTokens breaks the construction cycle between the gateway client
// and the session store: the gateway needs a token source before the
// store that provides it exists.
type lazyTokens struct {
	store *session.Store
}

func (l *lazyTokens) Token() string {
	if l.store == nil {
		return ""
	}
	return l.store.Token()
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Debug(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	tokens, err := session.NewFileTokenStore(cfg.Session.TokenPath)
	if err != nil {
		logg.Error(ctx, "failed to create token store", err)
		os.Exit(1)
	}
	nav := newTerminalNavigator(os.Stderr)

	lazy := &lazyTokens{}
	gw, err := gateway.New(cfg.Gateway, logg, lazy)
	if err != nil {
		logg.Error(ctx, "failed to create gateway client", err)
		os.Exit(1)
	}

	sessionStore, err := session.NewStore(session.StoreParams{
		Tokens:  tokens,
		Gateway: gw,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create session store", err)
		os.Exit(1)
	}
	lazy.store = sessionStore
	gw.SetUnauthorizedHook(func() {
		sessionStore.Invalidate()
		nav.RedirectToLogin("")
	})

	stdin := bufio.NewReader(os.Stdin)

	cartMachine, err := cart.NewMachine(cart.MachineParams{
		Session:        sessionStore,
		Navigator:      nav,
		Gateway:        gw,
		Confirm:        newTerminalConfirmer(stdin, os.Stderr),
		Logger:         logg,
		DefaultTaxRate: cfg.Cart.TaxRate(),
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart", err)
		os.Exit(1)
	}

	checkoutFlow, err := checkout.NewFlow(checkout.FlowParams{
		Session:   sessionStore,
		Navigator: nav,
		Cart:      cartMachine,
		Gateway:   gw,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout flow", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(gw)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	accountService, err := account.NewService(account.ServiceParams{
		Gateway: gw,
		Session: sessionStore,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create account service", err)
		os.Exit(1)
	}

	app := &app{
		session:  sessionStore,
		cart:     cartMachine,
		checkout: checkoutFlow,
		catalog:  catalogService,
		account:  accountService,
		logg:     logg,
		in:       stdin,
		out:      os.Stdout,
	}

	if err := app.run(ctx, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
