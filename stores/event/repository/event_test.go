package repository

import (
	"testing"

	"github.com/stretchr/testify/suite"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/service/unitstore"
)

type eventRepoSuite struct {
	suite.Suite

	ctx   bCtx.Ctx
	store unitstore.Store
	repo  event.Repo
}

func TestEventRepoSuite(t *testing.T) {
	suite.Run(t, new(eventRepoSuite))
}

func (s *eventRepoSuite) SetupTest() {
	store, err := unitstore.OpenMem()
	s.Require().NoError(err)
	s.ctx = bCtx.Background()
	s.store = store
	s.repo = NewEventRepo()
}

func (s *eventRepoSuite) TearDownTest() {
	s.store.Close()
}

func (s *eventRepoSuite) append(evType event.Type) *event.Event {
	ev := &event.Event{Type: evType, Data: map[string]interface{}{}}
	err := s.store.Update(s.ctx, func(txn unitstore.Txn) error {
		return s.repo.Append(s.ctx, txn, ev)
	})
	s.Require().NoError(err)
	return ev
}

func (s *eventRepoSuite) TestAppendAssignsSequence() {
	first := s.append(event.TypeItemListed)
	second := s.append(event.TypeItemUnlisted)

	s.Equal(uint64(1), first.Seq)
	s.Equal(uint64(2), second.Seq)
	s.NotEmpty(first.Id)
	s.NotEqual(first.Id, second.Id)
	s.NotZero(first.At)
}

func (s *eventRepoSuite) TestFindAllOrderAndCursor() {
	for i := 0; i < 5; i++ {
		s.append(event.TypeItemListed)
	}

	err := s.store.View(s.ctx, func(txn unitstore.Txn) error {
		evs, err := s.repo.FindAll(s.ctx, txn, 0, 10)
		s.Require().NoError(err)
		s.Require().Len(evs, 5)
		for i, ev := range evs {
			s.Equal(uint64(i+1), ev.Seq)
		}

		// cursor excludes everything at or before it
		evs, err = s.repo.FindAll(s.ctx, txn, 3, 10)
		s.Require().NoError(err)
		s.Require().Len(evs, 2)
		s.Equal(uint64(4), evs[0].Seq)

		evs, err = s.repo.FindAll(s.ctx, txn, 0, 2)
		s.Require().NoError(err)
		s.Len(evs, 2)
		return nil
	})
	s.NoError(err)
}

func (s *eventRepoSuite) TestSequenceSurvivesRestartWithinStore() {
	s.append(event.TypeItemListed)
	s.append(event.TypeItemListed)

	// a fresh repo over the same store continues the sequence
	repo := NewEventRepo()
	ev := &event.Event{Type: event.TypeItemUnlisted, Data: map[string]interface{}{}}
	err := s.store.Update(s.ctx, func(txn unitstore.Txn) error {
		return repo.Append(s.ctx, txn, ev)
	})
	s.Require().NoError(err)
	s.Equal(uint64(3), ev.Seq)
}
