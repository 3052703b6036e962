package usecase

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/domain/item"
	"github.com/unit-xyz/goapi/domain/keeper"
	"github.com/unit-xyz/goapi/service/unitstore"
	eventRepository "github.com/unit-xyz/goapi/stores/event/repository"
	listingRepository "github.com/unit-xyz/goapi/stores/listing/repository"
	offerRepository "github.com/unit-xyz/goapi/stores/offer/repository"
)

var (
	seller = domain.Address("0x0000000000000000000000000000000000000001")
	bidder = domain.Address("0x0000000000000000000000000000000000000002")
	nft    = domain.Address("0x00000000000000000000000000000000000000aa")
	dai    = domain.Address("0x00000000000000000000000000000000000000bb")
)

type keeperSuite struct {
	suite.Suite

	ctx         bCtx.Ctx
	store       unitstore.Store
	listingRepo item.ListingRepo
	offerRepo   item.OfferRepo
	eventRepo   event.Repo
	uc          keeper.UseCase
}

func TestKeeperSuite(t *testing.T) {
	suite.Run(t, new(keeperSuite))
}

func (s *keeperSuite) SetupTest() {
	store, err := unitstore.OpenMem()
	s.Require().NoError(err)

	s.ctx = bCtx.Background()
	s.store = store
	s.listingRepo = listingRepository.NewListingRepo()
	s.offerRepo = offerRepository.NewOfferRepo()
	s.eventRepo = eventRepository.NewEventRepo()
	s.uc = New(store, s.listingRepo, s.offerRepo, s.eventRepo, time.Minute)
}

func (s *keeperSuite) TearDownTest() {
	s.store.Close()
}

func (s *keeperSuite) seedListing(tokenId domain.TokenId, deadline domain.UnixTime) {
	err := s.store.Update(s.ctx, func(txn unitstore.Txn) error {
		return s.listingRepo.Upsert(s.ctx, txn, &item.Listing{
			Seller:   seller,
			Nft:      nft,
			TokenId:  tokenId,
			Token:    domain.ZeroAddress,
			Price:    big.NewInt(1000),
			Deadline: deadline,
		})
	})
	s.Require().NoError(err)
}

func (s *keeperSuite) seedOffer(tokenId domain.TokenId, deadline domain.UnixTime) {
	err := s.store.Update(s.ctx, func(txn unitstore.Txn) error {
		return s.offerRepo.Upsert(s.ctx, txn, &item.Offer{
			Bidder:   bidder,
			Nft:      nft,
			TokenId:  tokenId,
			Token:    dai,
			Amount:   big.NewInt(900),
			Deadline: deadline,
		})
	})
	s.Require().NoError(err)
}

func (s *keeperSuite) TestSweep() {
	now := domain.Now()
	s.seedListing("1", now-10)
	s.seedListing("2", now+7200)
	s.seedOffer("1", now-10)
	s.seedOffer("2", now+7200)

	cleared, err := s.uc.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, cleared)

	err = s.store.View(s.ctx, func(txn unitstore.Txn) error {
		listings, err := s.listingRepo.FindAll(s.ctx, txn)
		s.Require().NoError(err)
		s.Require().Len(listings, 1)
		s.Equal(domain.TokenId("2"), listings[0].TokenId)

		offers, err := s.offerRepo.FindAll(s.ctx, txn)
		s.Require().NoError(err)
		s.Require().Len(offers, 1)
		s.Equal(domain.TokenId("2"), offers[0].TokenId)

		evs, err := s.eventRepo.FindAll(s.ctx, txn, 0, 10)
		s.Require().NoError(err)
		s.Require().Len(evs, 2)
		s.Equal(event.TypeItemUnlisted, evs[0].Type)
		s.Equal(true, evs[0].Data["expired"])
		s.Equal(event.TypeOfferRemoved, evs[1].Type)
		return nil
	})
	s.NoError(err)
}

func (s *keeperSuite) TestSweepNothingExpired() {
	s.seedListing("1", domain.Now()+7200)

	cleared, err := s.uc.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Zero(cleared)
}

func (s *keeperSuite) TestSweepZeroDeadlineNeverExpires() {
	s.seedListing("1", 0)

	cleared, err := s.uc.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Zero(cleared)
}
