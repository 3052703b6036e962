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
)

var (
	market = domain.Address("0x000000000000000000000000000000000000f00d")
	seller = domain.Address("0x0000000000000000000000000000000000000001")
	buyer  = domain.Address("0x0000000000000000000000000000000000000002")
	nft    = domain.Address("0x00000000000000000000000000000000000000aa")
	dai    = domain.Address("0x00000000000000000000000000000000000000bb")

	itemId = item.Id{Nft: nft, TokenId: domain.TokenId("1")}
)

type listingSuite struct {
	suite.Suite

	ctx         bCtx.Ctx
	store       unitstore.Store
	listingRepo item.ListingRepo
	eventRepo   event.Repo
	registry    *custody.NftRegistry
	uc          item.ListingUseCase
}

func TestListingSuite(t *testing.T) {
	suite.Run(t, new(listingSuite))
}

func (s *listingSuite) SetupTest() {
	store, err := unitstore.OpenMem()
	s.Require().NoError(err)

	s.ctx = bCtx.Background()
	s.store = store
	s.listingRepo = listingRepository.NewListingRepo()
	s.eventRepo = eventRepository.NewEventRepo()
	s.registry = custody.NewNftRegistry()
	s.uc = New(store, s.listingRepo, s.eventRepo, s.registry, market)

	s.registry.Mint(s.ctx, nft, itemId.TokenId, seller)
	s.registry.Approve(s.ctx, nft, itemId.TokenId, market)
}

func (s *listingSuite) TearDownTest() {
	s.store.Close()
}

func (s *listingSuite) events() []*event.Event {
	var evs []*event.Event
	err := s.store.View(s.ctx, func(txn unitstore.Txn) error {
		var err error
		evs, err = s.eventRepo.FindAll(s.ctx, txn, 0, 100)
		return err
	})
	s.Require().NoError(err)
	return evs
}

func (s *listingSuite) TestList() {
	before := domain.Now()
	listing, err := s.uc.List(s.ctx, seller, itemId, big.NewInt(500), 7200)
	s.Require().NoError(err)
	s.Equal(seller, listing.Seller)
	s.Equal(domain.ZeroAddress, listing.Token)
	s.False(listing.Auction)
	s.True(listing.Deadline >= before+7200)

	got, err := s.uc.Get(s.ctx, itemId)
	s.Require().NoError(err)
	s.True(got.IsActive())
	s.Zero(listing.Price.Cmp(got.Price))

	evs := s.events()
	s.Require().Len(evs, 1)
	s.Equal(event.TypeItemListed, evs[0].Type)
	s.Equal(uint64(1), evs[0].Seq)
}

func (s *listingSuite) TestListTwiceFails() {
	_, err := s.uc.List(s.ctx, seller, itemId, big.NewInt(500), 7200)
	s.Require().NoError(err)
	_, err = s.uc.List(s.ctx, seller, itemId, big.NewInt(500), 7200)
	s.Equal(domain.ErrItemListed, err)
}

func (s *listingSuite) TestListNotOwner() {
	_, err := s.uc.List(s.ctx, buyer, itemId, big.NewInt(500), 7200)
	s.Equal(domain.ErrNotOwner, err)
}

func (s *listingSuite) TestListNotApproved() {
	other := item.Id{Nft: nft, TokenId: domain.TokenId("2")}
	s.registry.Mint(s.ctx, nft, other.TokenId, seller)

	_, err := s.uc.List(s.ctx, seller, other, big.NewInt(500), 7200)
	s.Equal(domain.ErrNotApprovedToSpendNFT, err)

	// approval-for-all on the market operator is enough
	s.registry.SetApprovalForAll(s.ctx, seller, market, true)
	_, err = s.uc.List(s.ctx, seller, other, big.NewInt(500), 7200)
	s.NoError(err)
}

func (s *listingSuite) TestListBadParams() {
	_, err := s.uc.List(s.ctx, seller, itemId, big.NewInt(0), 7200)
	s.Equal(domain.ErrInsufficientAmount, err)

	_, err = s.uc.List(s.ctx, seller, itemId, big.NewInt(500), domain.MinListingDuration-1)
	s.Equal(domain.ErrDeadlineLessThanMinimum, err)

	_, err = s.uc.ListWithToken(s.ctx, seller, itemId, domain.ZeroAddress, big.NewInt(500), false, 7200)
	s.Equal(domain.ErrZeroAddress, err)
}

func (s *listingSuite) TestListWithToken() {
	listing, err := s.uc.ListWithToken(s.ctx, seller, itemId, dai, big.NewInt(500), true, 7200)
	s.Require().NoError(err)
	s.Equal(dai, listing.Token)
	s.True(listing.Auction)
	s.False(listing.IsBaseCurrency())
}

func (s *listingSuite) TestUnlist() {
	_, err := s.uc.List(s.ctx, seller, itemId, big.NewInt(500), 7200)
	s.Require().NoError(err)

	s.Equal(domain.ErrNotOwner, s.uc.Unlist(s.ctx, buyer, itemId))
	s.Require().NoError(s.uc.Unlist(s.ctx, seller, itemId))

	got, err := s.uc.Get(s.ctx, itemId)
	s.Require().NoError(err)
	s.False(got.IsActive())
	s.Zero(got.Price.Sign())

	s.Equal(domain.ErrItemNotListed, s.uc.Unlist(s.ctx, seller, itemId))
}

func (s *listingSuite) TestUpdateSeller() {
	_, err := s.uc.List(s.ctx, seller, itemId, big.NewInt(500), 7200)
	s.Require().NoError(err)

	s.Equal(domain.ErrZeroAddress, s.uc.UpdateSeller(s.ctx, buyer, itemId, domain.ZeroAddress))
	s.Equal(domain.ErrNotOwner, s.uc.UpdateSeller(s.ctx, buyer, itemId, buyer))
	s.Equal(domain.ErrNoUpdateRequired, s.uc.UpdateSeller(s.ctx, buyer, itemId, seller))

	// ownership moved outside the marketplace
	s.Require().NoError(s.registry.TransferFrom(s.ctx, nft, seller, buyer, itemId.TokenId))
	s.Require().NoError(s.uc.UpdateSeller(s.ctx, seller, itemId, buyer))

	got, err := s.uc.Get(s.ctx, itemId)
	s.Require().NoError(err)
	s.Equal(buyer, got.Seller)
}

func (s *listingSuite) TestUpdatePrice() {
	_, err := s.uc.List(s.ctx, seller, itemId, big.NewInt(500), 7200)
	s.Require().NoError(err)

	s.Equal(domain.ErrInsufficientAmount, s.uc.UpdatePrice(s.ctx, seller, itemId, big.NewInt(0)))
	s.Equal(domain.ErrNotOwner, s.uc.UpdatePrice(s.ctx, buyer, itemId, big.NewInt(600)))
	s.Equal(domain.ErrNoUpdateRequired, s.uc.UpdatePrice(s.ctx, seller, itemId, big.NewInt(500)))

	s.Require().NoError(s.uc.UpdatePrice(s.ctx, seller, itemId, big.NewInt(600)))
	got, err := s.uc.Get(s.ctx, itemId)
	s.Require().NoError(err)
	s.Zero(got.Price.Cmp(big.NewInt(600)))
}

func (s *listingSuite) TestExtendDeadline() {
	listing, err := s.uc.List(s.ctx, seller, itemId, big.NewInt(500), 7200)
	s.Require().NoError(err)

	s.Equal(domain.ErrNotOwner, s.uc.ExtendDeadline(s.ctx, buyer, itemId, 100))
	s.Equal(domain.ErrNoUpdateRequired, s.uc.ExtendDeadline(s.ctx, seller, itemId, 0))

	s.Require().NoError(s.uc.ExtendDeadline(s.ctx, seller, itemId, 100))
	got, err := s.uc.Get(s.ctx, itemId)
	s.Require().NoError(err)
	s.Equal(listing.Deadline+100, got.Deadline)
}

func (s *listingSuite) TestExtendExpiredListing() {
	expired := &item.Listing{
		Seller:   seller,
		Nft:      nft,
		TokenId:  itemId.TokenId,
		Token:    domain.ZeroAddress,
		Price:    big.NewInt(500),
		Deadline: domain.Now() - 10,
	}
	err := s.store.Update(s.ctx, func(txn unitstore.Txn) error {
		return s.listingRepo.Upsert(s.ctx, txn, expired)
	})
	s.Require().NoError(err)

	s.Equal(domain.ErrInvalidDeadline, s.uc.ExtendDeadline(s.ctx, seller, itemId, 100))
}

func (s *listingSuite) TestAuctionToggle() {
	_, err := s.uc.List(s.ctx, seller, itemId, big.NewInt(500), 7200)
	s.Require().NoError(err)

	s.Equal(domain.ErrNotOwner, s.uc.EnableAuction(s.ctx, buyer, itemId, big.NewInt(100)))
	s.Equal(domain.ErrInsufficientAmount, s.uc.EnableAuction(s.ctx, seller, itemId, big.NewInt(0)))

	s.Require().NoError(s.uc.EnableAuction(s.ctx, seller, itemId, big.NewInt(100)))
	got, err := s.uc.Get(s.ctx, itemId)
	s.Require().NoError(err)
	s.True(got.Auction)
	s.Zero(got.Price.Cmp(big.NewInt(100)))

	s.Require().NoError(s.uc.DisableAuction(s.ctx, seller, itemId, big.NewInt(700)))
	got, err = s.uc.Get(s.ctx, itemId)
	s.Require().NoError(err)
	s.False(got.Auction)
	s.Zero(got.Price.Cmp(big.NewInt(700)))

	evs := s.events()
	s.Require().Len(evs, 3)
	s.Equal(event.TypeItemAuctionEnabled, evs[1].Type)
	s.Equal(event.TypeItemAuctionDisabled, evs[2].Type)
}

func (s *listingSuite) TestGetUnlisted() {
	got, err := s.uc.Get(s.ctx, itemId)
	s.Require().NoError(err)
	s.False(got.IsActive())
	s.Equal(itemId, got.Id())
}
