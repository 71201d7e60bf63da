package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/eclypse/storefront/config"
	"github.com/eclypse/storefront/internal/adapter/httphandler"
	"github.com/eclypse/storefront/internal/adapter/kafka"
	"github.com/eclypse/storefront/internal/adapter/kvstore"
	"github.com/eclypse/storefront/internal/adapter/memcreds"
	"github.com/eclypse/storefront/internal/adapter/storage"
	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/service"
	"github.com/eclypse/storefront/pkg/retry"
	"github.com/eclypse/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

const defaultJitterInterval = 30 * time.Second

type serdes struct {
	order      schema.Serde
	adjustment schema.Serde
}

type producers struct {
	orders      kafka.OrdersProducer
	adjustments kafka.AdjustmentsProducer
}

type coreServices struct {
	cart     *service.Cart
	catalog  service.Catalog
	ledger   *service.StockLedger
	checkout *service.Checkout
	session  *service.Session
	jitter   service.StockJitter
}

type App struct {
	ctx         context.Context
	cfg         config.Config
	serdes      serdes
	producers   producers
	sqldb       storage.SQLDB
	services    coreServices
	salesProc   *kafka.SalesProcessor
	salesView   kafka.SalesView
	httpServer  httphandler.HTTPServer
	jitterTicks chan struct{}
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initSerdes()
	app.initStorage()
	app.initOutboundAdapters()
	app.initCoreServices()
	app.initProcessors()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"
	urls := app.cfg.Broker.SchemaRegistryURLs
	ctx := app.ctx

	srClient, err := sr.NewClient(sr.URLs(urls...))
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	orderSS := app.cfg.Broker.Topics.Orders + "-value"
	orderSerde, err := schema.NewSerdeOrderPlacedV1(
		ctx,
		schema.SubjectOpt(orderSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	adjustmentSS := app.cfg.Broker.Topics.StockAdjustments + "-value"
	adjustmentSerde, err := schema.NewSerdeStockAdjustmentV1(
		ctx,
		schema.SubjectOpt(adjustmentSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.order = orderSerde
	app.serdes.adjustment = adjustmentSerde
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqldb = sqldb
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	ctx := app.ctx
	seedBrokers := app.cfg.Broker.SeedBrokers

	ordersProducer, err := kafka.NewOrdersProducer(
		kafka.ProducerClientOpt(ctx, seedBrokers, app.cfg.Broker.Topics.Orders),
		kafka.ProducerEncoderOpt(app.serdes.order),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	adjustmentsProducer, err := kafka.NewAdjustmentsProducer(
		kafka.ProducerClientOpt(
			ctx, seedBrokers, app.cfg.Broker.Topics.StockAdjustments,
		),
		kafka.ProducerEncoderOpt(app.serdes.adjustment),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.producers.orders = ordersProducer
	app.producers.adjustments = adjustmentsProducer
}

func (app *App) initCoreServices() {
	const op = "App.initCoreServices"

	repo := storage.NewProductsRepository(app.sqldb.DB)

	catalog, err := service.LoadCatalog(app.ctx, repo)
	if err != nil {
		app.fallDown(op, err)
	}

	retryCfg := retry.RetryConfig{
		MaxAttempts: 5,
		Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
	}
	records, err := retry.DoWithResult(app.ctx, retryCfg,
		func() (map[string]domain.StockRecord, error) {
			return repo.ReadStockRecords(app.ctx)
		})
	if err != nil {
		app.fallDown(op, err)
	}

	rnd := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	// A catalog without stock counts still gets demo availability.
	if len(records) == 0 {
		var ids []string
		for _, p := range catalog.Products() {
			ids = append(ids, p.ProductID)
		}
		records = service.SeedRandom(rnd, ids)
	}

	store := kvstore.New(app.cfg.StateFile)

	ledger := service.NewStockLedger(app.cfg.Stock.LowStockThreshold, records)
	cart := service.NewCart(app.ctx, store)
	checkout := service.NewCheckout(
		service.CheckoutConfig{
			FreeShippingThreshold: app.cfg.Checkout.FreeShippingThreshold,
			ShippingFee:           app.cfg.Checkout.ShippingFee,
			TaxRate:               app.cfg.Checkout.TaxRate,
			ProcessingDelay:       app.cfg.Checkout.ProcessingDelay,
		},
		cart, ledger, app.producers.orders, app.producers.adjustments,
	)
	session := service.NewSession(
		app.ctx, memcreds.New(), store, store, app.cfg.Session.LoginLatency,
	)

	app.jitterTicks = make(chan struct{})
	jitter := service.NewStockJitter(ledger, app.jitterTicks, rnd)

	app.services = coreServices{
		cart:     cart,
		catalog:  catalog,
		ledger:   ledger,
		checkout: checkout,
		session:  session,
		jitter:   jitter,
	}
}

func (app *App) initProcessors() {
	const op = "App.initProcessors"

	salesProc, err := kafka.NewSalesProc(
		app.cfg.Broker.SeedBrokers,
		app.cfg.Broker.Topics.StockAdjustments,
		app.cfg.Broker.Consumers.SalesGroup,
		app.serdes.adjustment,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	salesView, err := kafka.NewSalesView(
		app.cfg.Broker.SeedBrokers,
		app.cfg.Broker.Consumers.SalesGroup,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.salesProc = salesProc
	app.salesView = salesView
}

func (app *App) initInboundAdapters() {
	mux := http.NewServeMux()
	httphandler.RegisterCatalog(
		mux, app.services.catalog, app.services.ledger, app.salesView,
	)
	httphandler.RegisterCart(
		mux, app.services.cart, app.services.catalog, app.services.ledger,
	)
	httphandler.RegisterCheckout(mux, app.services.checkout)
	httphandler.RegisterSession(mux, app.services.session)

	handler := httphandler.AllowJSON(mux)
	app.httpServer = httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	var wg sync.WaitGroup
	wg.Add(1)
	go app.salesProc.Run(app.ctx, stopFn, &wg)
	wg.Wait()

	go app.salesView.Run(app.ctx)
	go app.httpServer.Run(stopFn)
	go app.services.jitter.Run(app.ctx)
	go app.runJitterTicker()

	slog.Info("application is running")
}

func (app *App) runJitterTicker() {
	interval := app.cfg.Stock.JitterInterval
	if interval <= 0 {
		interval = defaultJitterInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			select {
			case app.jitterTicks <- struct{}{}:
			case <-app.ctx.Done():
				return
			}
		}
	}
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.salesProc.Close()
	app.producers.orders.Close()
	app.producers.adjustments.Close()
	app.sqldb.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
