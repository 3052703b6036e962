package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/xerrors"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/domain/ledger"
	"github.com/unit-xyz/goapi/service/custody"
	"github.com/unit-xyz/goapi/service/unitstore"
	eventRepository "github.com/unit-xyz/goapi/stores/event/repository"
	ledgerRepository "github.com/unit-xyz/goapi/stores/ledger/repository"
)

var (
	market   = domain.Address("0x000000000000000000000000000000000000f00d")
	operator = domain.Address("0x000000000000000000000000000000000000600d")
	seller   = domain.Address("0x0000000000000000000000000000000000000001")
	dai      = domain.Address("0x00000000000000000000000000000000000000bb")
)

type ledgerSuite struct {
	suite.Suite

	ctx        bCtx.Ctx
	store      unitstore.Store
	ledgerRepo ledger.Repo
	eventRepo  event.Repo
	tokens     *custody.TokenRegistry
	vault      *custody.NativeVault
	uc         ledger.UseCase
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(ledgerSuite))
}

func (s *ledgerSuite) SetupTest() {
	store, err := unitstore.OpenMem()
	s.Require().NoError(err)

	s.ctx = bCtx.Background()
	s.store = store
	s.ledgerRepo = ledgerRepository.NewLedgerRepo()
	s.eventRepo = eventRepository.NewEventRepo()
	s.tokens = custody.NewTokenRegistry(market)
	s.vault = custody.NewNativeVault()
	s.uc = New(store, s.ledgerRepo, s.eventRepo, s.tokens, s.vault, operator)

	// market custody holds the proceeds that back the ledger entries
	s.tokens.Mint(s.ctx, dai, market, big.NewInt(10_000))
}

func (s *ledgerSuite) TearDownTest() {
	s.store.Close()
}

func (s *ledgerSuite) credit(id ledger.EarningsId, amount int64) {
	err := s.store.Update(s.ctx, func(txn unitstore.Txn) error {
		return s.ledgerRepo.AddEarnings(s.ctx, txn, id, big.NewInt(amount))
	})
	s.Require().NoError(err)
}

func (s *ledgerSuite) creditFees(token domain.Address, amount int64) {
	err := s.store.Update(s.ctx, func(txn unitstore.Txn) error {
		return s.ledgerRepo.AddFees(s.ctx, txn, token, big.NewInt(amount))
	})
	s.Require().NoError(err)
}

func (s *ledgerSuite) TestWithdrawEarningsInToken() {
	s.credit(ledger.EarningsId{Account: seller, Token: dai}, 1980)

	amount, err := s.uc.WithdrawEarnings(s.ctx, seller, dai)
	s.Require().NoError(err)
	s.Zero(amount.Cmp(big.NewInt(1980)))

	balance, err := s.tokens.BalanceOf(s.ctx, dai, seller)
	s.Require().NoError(err)
	s.Zero(balance.Cmp(big.NewInt(1980)))

	// the whole balance goes out; a second withdrawal has nothing left
	left, err := s.uc.GetEarnings(s.ctx, seller, dai)
	s.Require().NoError(err)
	s.Zero(left.Sign())

	_, err = s.uc.WithdrawEarnings(s.ctx, seller, dai)
	s.Equal(domain.ErrZeroEarnings, err)
}

func (s *ledgerSuite) TestWithdrawEarningsInBaseCurrency() {
	s.credit(ledger.EarningsId{Account: seller, Token: domain.ZeroAddress}, 990)

	amount, err := s.uc.WithdrawEarnings(s.ctx, seller, domain.ZeroAddress)
	s.Require().NoError(err)
	s.Zero(amount.Cmp(big.NewInt(990)))

	balance, err := s.vault.BalanceOf(s.ctx, seller)
	s.Require().NoError(err)
	s.Zero(balance.Cmp(big.NewInt(990)))
}

func (s *ledgerSuite) TestWithdrawEarningsPerCurrency() {
	s.credit(ledger.EarningsId{Account: seller, Token: dai}, 500)
	s.credit(ledger.EarningsId{Account: seller, Token: domain.ZeroAddress}, 700)

	_, err := s.uc.WithdrawEarnings(s.ctx, seller, dai)
	s.Require().NoError(err)

	// the base-currency balance is untouched
	left, err := s.uc.GetEarnings(s.ctx, seller, domain.ZeroAddress)
	s.Require().NoError(err)
	s.Zero(left.Cmp(big.NewInt(700)))
}

func (s *ledgerSuite) TestWithdrawEarningsFailedPayout() {
	s.credit(ledger.EarningsId{Account: seller, Token: dai}, 500)
	s.tokens.TransferErr = xerrors.New("chain down")

	_, err := s.uc.WithdrawEarnings(s.ctx, seller, dai)
	s.Equal(domain.ErrTokenTransferFailed, err)

	// the entry survives the failed attempt
	left, err := s.uc.GetEarnings(s.ctx, seller, dai)
	s.Require().NoError(err)
	s.Zero(left.Cmp(big.NewInt(500)))
}

func (s *ledgerSuite) TestWithdrawFees() {
	s.creditFees(dai, 35)

	_, err := s.uc.WithdrawFees(s.ctx, seller, dai)
	s.Equal(domain.ErrNotOperator, err)

	amount, err := s.uc.WithdrawFees(s.ctx, operator, dai)
	s.Require().NoError(err)
	s.Zero(amount.Cmp(big.NewInt(35)))

	balance, err := s.tokens.BalanceOf(s.ctx, dai, operator)
	s.Require().NoError(err)
	s.Zero(balance.Cmp(big.NewInt(35)))

	_, err = s.uc.WithdrawFees(s.ctx, operator, dai)
	s.Equal(domain.ErrZeroEarnings, err)
}

func (s *ledgerSuite) TestWithdrawEmitsEvent() {
	s.credit(ledger.EarningsId{Account: seller, Token: dai}, 500)
	_, err := s.uc.WithdrawEarnings(s.ctx, seller, dai)
	s.Require().NoError(err)

	err = s.store.View(s.ctx, func(txn unitstore.Txn) error {
		evs, err := s.eventRepo.FindAll(s.ctx, txn, 0, 10)
		s.Require().NoError(err)
		s.Require().Len(evs, 1)
		s.Equal(event.TypeEarningsWithdrawn, evs[0].Type)
		s.Equal("500", evs[0].Data["amount"])
		return err
	})
	s.NoError(err)
}
