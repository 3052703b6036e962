package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
	"github.com/unit-xyz/goapi/base/priceformat"
	bValidator "github.com/unit-xyz/goapi/base/validator"
	"github.com/unit-xyz/goapi/domain"
	mmiddleware "github.com/unit-xyz/goapi/middleware"
	"github.com/unit-xyz/goapi/service/cache"
	"github.com/unit-xyz/goapi/service/chain"
	"github.com/unit-xyz/goapi/service/chain/contract"
	"github.com/unit-xyz/goapi/service/custody"
	"github.com/unit-xyz/goapi/service/unitstore"
	auth_delivery "github.com/unit-xyz/goapi/stores/auth/delivery/http"
	auth_middleware "github.com/unit-xyz/goapi/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/unit-xyz/goapi/stores/auth/usecase"
	event_delivery "github.com/unit-xyz/goapi/stores/event/delivery/http"
	event_repository "github.com/unit-xyz/goapi/stores/event/repository"
	event_usecase "github.com/unit-xyz/goapi/stores/event/usecase"
	hc_delivery "github.com/unit-xyz/goapi/stores/healthcheck/delivery/http"
	hc_repo "github.com/unit-xyz/goapi/stores/healthcheck/repository"
	hc_usecase "github.com/unit-xyz/goapi/stores/healthcheck/usecase"
	keeper_usecase "github.com/unit-xyz/goapi/stores/keeper/usecase"
	ledger_delivery "github.com/unit-xyz/goapi/stores/ledger/delivery/http"
	ledger_repository "github.com/unit-xyz/goapi/stores/ledger/repository"
	ledger_usecase "github.com/unit-xyz/goapi/stores/ledger/usecase"
	listing_delivery "github.com/unit-xyz/goapi/stores/listing/delivery/http"
	listing_repository "github.com/unit-xyz/goapi/stores/listing/repository"
	listing_usecase "github.com/unit-xyz/goapi/stores/listing/usecase"
	offer_delivery "github.com/unit-xyz/goapi/stores/offer/delivery/http"
	offer_repository "github.com/unit-xyz/goapi/stores/offer/repository"
	offer_usecase "github.com/unit-xyz/goapi/stores/offer/usecase"
	paytoken_repository "github.com/unit-xyz/goapi/stores/paytoken/repository"
	settlement_delivery "github.com/unit-xyz/goapi/stores/settlement/delivery/http"
	settlement_usecase "github.com/unit-xyz/goapi/stores/settlement/usecase"
)

func init() {
	pflag.String("config", "infra/configs/config.yaml", "config file path")
	pflag.String("server.address", "", "listen address override")
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(err)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigFile(viper.GetString("config"))
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init store
	context.Info("init store")
	var store unitstore.Store
	var err error
	if path := viper.GetString("store.path"); path == "" {
		context.Info("no store path configured, using throwaway in-memory store")
		store, err = unitstore.OpenMem()
	} else {
		store, err = unitstore.Open(path)
	}
	if err != nil {
		context.WithField("err", err).Panic("failed to open store")
	}
	defer store.Close()

	market := domain.Address(viper.GetString("market.address")).ToLower()
	operator := domain.Address(viper.GetString("market.operator")).ToLower()
	if market.IsZero() || operator.IsZero() {
		context.Panic("market.address and market.operator are required")
	}

	// init registries, either chain-backed or in-process custody
	var (
		nftRegistry   domain.NftRegistry
		tokenRegistry domain.TokenRegistry
	)
	vault := custody.NewNativeVault()
	if viper.GetString("market.mode") == "chain" {
		context.Info("init chain service")
		chainService, err := chain.NewClient(context, &chain.ClientCfg{
			RpcUrl:      viper.GetString("chain.rpcUrl"),
			OperatorKey: viper.GetString("chain.operatorKey"),
		})
		if err != nil {
			context.WithField("err", err).Panic("failed to init chain service")
		}
		nftRegistry = contract.NewErc721(chainService)
		tokenRegistry = contract.NewErc20(chainService)
	} else {
		context.Info("init custody service")
		nftRegistry = custody.NewNftRegistry()
		tokenRegistry = custody.NewTokenRegistry(market)
	}

	// pay tokens from config
	payTokens := []*domain.PayToken{}
	if err := viper.UnmarshalKey("payTokens", &payTokens); err != nil {
		context.WithField("err", err).Panic("failed to parse pay tokens")
	}
	paytokenRepo := paytoken_repository.NewPayTokenRepo(payTokens)
	priceFormatter := priceformat.NewPriceFormatter(&priceformat.PriceFormatterCfg{
		Paytoken:             paytokenRepo,
		BaseCurrencyDecimals: viper.GetInt32("market.baseCurrencyDecimals"),
	})

	// repositories
	listingRepo := listing_repository.NewListingRepo()
	offerRepo := offer_repository.NewOfferRepo()
	ledgerRepo := ledger_repository.NewLedgerRepo()
	eventRepo := event_repository.NewEventRepo()
	hcRepo := hc_repo.New(store)

	// usecases
	listing := listing_usecase.New(store, listingRepo, eventRepo, nftRegistry, market)
	offer := offer_usecase.New(store, listingRepo, offerRepo, eventRepo, tokenRegistry, market)
	ledger := ledger_usecase.New(store, ledgerRepo, eventRepo, tokenRegistry, vault, operator)
	settlement := settlement_usecase.New(store, listingRepo, offerRepo, ledgerRepo, eventRepo, nftRegistry, tokenRegistry, vault, market)
	event := event_usecase.New(store, eventRepo, priceFormatter)
	hc := hc_usecase.New(hcRepo)

	challenges := cache.NewPrimitive("auth", viper.GetInt("auth.cacheSizeMb"))
	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), viper.GetString("auth.signingMsgTemplate"), challenges)
	authMiddleware := auth_middleware.New(auth)

	// keeper sweeps expired records in the background
	keeperCtx, stopKeeper := ctx.WithCancel(context)
	defer stopKeeper()
	keeper := keeper_usecase.New(store, listingRepo, offerRepo, eventRepo, viper.GetDuration("keeper.interval"))
	go keeper.Run(keeperCtx)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth)
	listing_delivery.New(e, listing, offer, authMiddleware)
	offer_delivery.New(e, offer, authMiddleware)
	settlement_delivery.New(e, settlement, authMiddleware)
	ledger_delivery.New(e, ledger, priceFormatter, authMiddleware)
	event_delivery.New(e, event)

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	stopKeeper()
	shutdownCtx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
