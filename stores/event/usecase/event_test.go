package usecase

import (
	"testing"

	"github.com/stretchr/testify/suite"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/priceformat"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/service/unitstore"
	eventRepository "github.com/unit-xyz/goapi/stores/event/repository"
	paytokenRepository "github.com/unit-xyz/goapi/stores/paytoken/repository"
)

var usdc = domain.Address("0x00000000000000000000000000000000000000cc")

type eventSuite struct {
	suite.Suite

	ctx   bCtx.Ctx
	store unitstore.Store
	repo  event.Repo
	uc    event.UseCase
}

func TestEventSuite(t *testing.T) {
	suite.Run(t, new(eventSuite))
}

func (s *eventSuite) SetupTest() {
	store, err := unitstore.OpenMem()
	s.Require().NoError(err)

	s.ctx = bCtx.Background()
	s.store = store
	s.repo = eventRepository.NewEventRepo()

	paytokenRepo := paytokenRepository.NewPayTokenRepo([]*domain.PayToken{
		{Name: "USD Coin", Symbol: "USDC", Decimals: 6, Address: usdc},
	})
	formatter := priceformat.NewPriceFormatter(&priceformat.PriceFormatterCfg{
		Paytoken:             paytokenRepo,
		BaseCurrencyDecimals: 18,
	})
	s.uc = New(store, s.repo, formatter)
}

func (s *eventSuite) TearDownTest() {
	s.store.Close()
}

func (s *eventSuite) append(data map[string]interface{}) {
	err := s.store.Update(s.ctx, func(txn unitstore.Txn) error {
		return s.repo.Append(s.ctx, txn, &event.Event{Type: event.TypeItemBought, Data: data})
	})
	s.Require().NoError(err)
}

func (s *eventSuite) TestListDecoratesPrices() {
	s.append(map[string]interface{}{
		"token": usdc.ToLowerStr(),
		"price": "1500000",
	})
	s.append(map[string]interface{}{
		"token": domain.ZeroAddress.ToLowerStr(),
		"price": "1000000000000000000",
	})

	evs, err := s.uc.List(s.ctx, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(evs, 2)
	s.Equal("1.5", evs[0].Data["displayPrice"])
	s.Equal("1", evs[1].Data["displayPrice"])
}

func (s *eventSuite) TestListUnknownTokenSkipsDecoration() {
	s.append(map[string]interface{}{
		"token": "0x00000000000000000000000000000000000000ff",
		"price": "42",
	})

	evs, err := s.uc.List(s.ctx, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(evs, 1)
	s.NotContains(evs[0].Data, "displayPrice")
	s.Equal("42", evs[0].Data["price"])
}

func (s *eventSuite) TestListEmpty() {
	evs, err := s.uc.List(s.ctx, 0, 10)
	s.NoError(err)
	s.Empty(evs)
}
