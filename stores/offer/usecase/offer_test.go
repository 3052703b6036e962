package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/domain/item"
	"github.com/unit-xyz/goapi/service/custody"
	"github.com/unit-xyz/goapi/service/unitstore"
	eventRepository "github.com/unit-xyz/goapi/stores/event/repository"
	listingRepository "github.com/unit-xyz/goapi/stores/listing/repository"
	offerRepository "github.com/unit-xyz/goapi/stores/offer/repository"
)

var (
	market = domain.Address("0x000000000000000000000000000000000000f00d")
	seller = domain.Address("0x0000000000000000000000000000000000000001")
	bidder = domain.Address("0x0000000000000000000000000000000000000002")
	rival  = domain.Address("0x0000000000000000000000000000000000000003")
	nft    = domain.Address("0x00000000000000000000000000000000000000aa")
	dai    = domain.Address("0x00000000000000000000000000000000000000bb")
	usdc   = domain.Address("0x00000000000000000000000000000000000000cc")

	itemId = item.Id{Nft: nft, TokenId: domain.TokenId("1")}
)

type offerSuite struct {
	suite.Suite

	ctx         bCtx.Ctx
	store       unitstore.Store
	listingRepo item.ListingRepo
	offerRepo   item.OfferRepo
	tokens      *custody.TokenRegistry
	uc          item.OfferUseCase
}

func TestOfferSuite(t *testing.T) {
	suite.Run(t, new(offerSuite))
}

func (s *offerSuite) SetupTest() {
	store, err := unitstore.OpenMem()
	s.Require().NoError(err)

	s.ctx = bCtx.Background()
	s.store = store
	s.listingRepo = listingRepository.NewListingRepo()
	s.offerRepo = offerRepository.NewOfferRepo()
	s.tokens = custody.NewTokenRegistry(market)
	s.uc = New(store, s.listingRepo, s.offerRepo, eventRepository.NewEventRepo(), s.tokens, market)

	s.tokens.Mint(s.ctx, dai, bidder, big.NewInt(10_000))
	s.tokens.Approve(s.ctx, dai, bidder, market, big.NewInt(10_000))
}

func (s *offerSuite) TearDownTest() {
	s.store.Close()
}

func (s *offerSuite) seedListing(token domain.Address, deadline domain.UnixTime) *item.Listing {
	listing := &item.Listing{
		Seller:   seller,
		Nft:      nft,
		TokenId:  itemId.TokenId,
		Token:    token,
		Price:    big.NewInt(1000),
		Deadline: deadline,
	}
	err := s.store.Update(s.ctx, func(txn unitstore.Txn) error {
		return s.listingRepo.Upsert(s.ctx, txn, listing)
	})
	s.Require().NoError(err)
	return listing
}

func (s *offerSuite) listingDeadline() domain.UnixTime {
	var deadline domain.UnixTime
	err := s.store.View(s.ctx, func(txn unitstore.Txn) error {
		listing, err := s.listingRepo.FindOne(s.ctx, txn, itemId)
		if err != nil {
			return err
		}
		deadline = listing.Deadline
		return nil
	})
	s.Require().NoError(err)
	return deadline
}

func (s *offerSuite) TestCreate() {
	listed := s.seedListing(dai, domain.Now()+7200)

	// the caller-supplied deadline is ignored; the listing deadline wins
	offer, err := s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(900), 999999)
	s.Require().NoError(err)
	s.Equal(listed.Deadline, offer.Deadline)
	s.Equal(dai, offer.Token)

	// creating an offer buys the seller extra reaction time
	s.Equal(listed.Deadline+domain.OfferGracePeriod, s.listingDeadline())

	got, err := s.uc.Get(s.ctx, offer.Id())
	s.Require().NoError(err)
	s.True(got.IsActive())
	s.Zero(got.Amount.Cmp(big.NewInt(900)))
}

func (s *offerSuite) TestCreateBadParams() {
	s.seedListing(dai, domain.Now()+7200)

	_, err := s.uc.Create(s.ctx, bidder, itemId, domain.ZeroAddress, big.NewInt(900), 0)
	s.Equal(domain.ErrZeroAddress, err)

	_, err = s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(0), 0)
	s.Equal(domain.ErrInsufficientAmount, err)
}

func (s *offerSuite) TestCreateNotListed() {
	_, err := s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(900), 0)
	s.Equal(domain.ErrItemNotListed, err)
}

func (s *offerSuite) TestCreateExpiredListing() {
	s.seedListing(dai, domain.Now()-10)
	_, err := s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(900), 0)
	s.Equal(domain.ErrItemDeadlineExceeded, err)
}

func (s *offerSuite) TestCreateWrongToken() {
	s.seedListing(dai, domain.Now()+7200)
	_, err := s.uc.Create(s.ctx, bidder, itemId, usdc, big.NewInt(900), 0)
	s.Equal(domain.ErrInvalidItemToken, err)
}

func (s *offerSuite) TestCreateAnyTokenOnBaseListing() {
	s.seedListing(domain.ZeroAddress, domain.Now()+7200)
	_, err := s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(900), 0)
	s.NoError(err)
}

func (s *offerSuite) TestCreatePendingOffer() {
	s.seedListing(dai, domain.Now()+7200)
	_, err := s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(900), 0)
	s.Require().NoError(err)
	_, err = s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(950), 0)
	s.Equal(domain.ErrPendingOffer, err)
}

func (s *offerSuite) TestCreateWithoutAllowance() {
	s.seedListing(dai, domain.Now()+7200)
	_, err := s.uc.Create(s.ctx, rival, itemId, dai, big.NewInt(900), 0)
	s.Equal(domain.ErrNotApprovedToSpendToken, err)
}

func (s *offerSuite) TestExtendDeadline() {
	s.seedListing(dai, domain.Now()+7200)
	offer, err := s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(900), 0)
	s.Require().NoError(err)

	s.Equal(domain.ErrOfferDoesNotExist, s.uc.ExtendDeadline(s.ctx, rival, itemId, 100))
	s.Equal(domain.ErrNoUpdateRequired, s.uc.ExtendDeadline(s.ctx, bidder, itemId, 0))

	s.Require().NoError(s.uc.ExtendDeadline(s.ctx, bidder, itemId, 100))
	got, err := s.uc.Get(s.ctx, offer.Id())
	s.Require().NoError(err)
	s.Equal(offer.Deadline+100, got.Deadline)
}

func (s *offerSuite) TestExtendExpiredOffer() {
	s.seedListing(dai, domain.Now()+7200)
	expired := &item.Offer{
		Bidder:   bidder,
		Nft:      nft,
		TokenId:  itemId.TokenId,
		Token:    dai,
		Amount:   big.NewInt(900),
		Deadline: domain.Now() - 10,
	}
	err := s.store.Update(s.ctx, func(txn unitstore.Txn) error {
		return s.offerRepo.Upsert(s.ctx, txn, expired)
	})
	s.Require().NoError(err)

	s.Equal(domain.ErrInvalidDeadline, s.uc.ExtendDeadline(s.ctx, bidder, itemId, 100))
}

func (s *offerSuite) TestRemove() {
	s.seedListing(dai, domain.Now()+7200)
	offer, err := s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(900), 0)
	s.Require().NoError(err)

	s.Equal(domain.ErrOfferDoesNotExist, s.uc.Remove(s.ctx, rival, itemId))
	s.Require().NoError(s.uc.Remove(s.ctx, bidder, itemId))

	got, err := s.uc.Get(s.ctx, offer.Id())
	s.Require().NoError(err)
	s.False(got.IsActive())
}

func (s *offerSuite) TestListByItem() {
	s.seedListing(dai, domain.Now()+7200)
	s.tokens.Mint(s.ctx, dai, rival, big.NewInt(5000))
	s.tokens.Approve(s.ctx, dai, rival, market, big.NewInt(5000))

	_, err := s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(900), 0)
	s.Require().NoError(err)
	_, err = s.uc.Create(s.ctx, rival, itemId, dai, big.NewInt(950), 0)
	s.Require().NoError(err)

	offers, err := s.uc.ListByItem(s.ctx, itemId)
	s.Require().NoError(err)
	s.Len(offers, 2)
}

func (s *offerSuite) TestCreateEmitsEvent() {
	s.seedListing(dai, domain.Now()+7200)
	_, err := s.uc.Create(s.ctx, bidder, itemId, dai, big.NewInt(900), 0)
	s.Require().NoError(err)

	eventRepo := eventRepository.NewEventRepo()
	err = s.store.View(s.ctx, func(txn unitstore.Txn) error {
		evs, err := eventRepo.FindAll(s.ctx, txn, 0, 10)
		s.Require().NoError(err)
		s.Require().Len(evs, 1)
		s.Equal(event.TypeOfferCreated, evs[0].Type)
		s.Equal("900", evs[0].Data["amount"])
		return err
	})
	s.NoError(err)
}
