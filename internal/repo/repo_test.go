package repo_test

import (
	"context"
	"testing"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/repo"
	"github.com/KNICEX/market-pulse/internal/repo/repotest"
	"github.com/KNICEX/market-pulse/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type RepoSuite struct {
	suite.Suite
	ctx              context.Context
	instrumentRepo   repo.InstrumentRepo
	subscriptionRepo repo.SubscriptionRepo
}

func TestRepoSuite(t *testing.T) {
	suite.Run(t, new(RepoSuite))
}

func (s *RepoSuite) SetupTest() {
	db := repotest.NewDB(s.T())
	s.ctx = context.Background()
	s.instrumentRepo = repo.NewInstrumentRepo(db)
	s.subscriptionRepo = repo.NewSubscriptionRepo(db)
}

func (s *RepoSuite) seedInstruments() (btc, tsla entity.Instrument) {
	s.Require().NoError(s.instrumentRepo.CreateBatch(s.ctx, []entity.Instrument{
		{Symbol: "BTC", Name: "Bitcoin", MarketType: entity.MarketCrypto},
		{Symbol: "TSLA", Name: "Tesla", MarketType: entity.MarketStock},
	}))
	btc, err := s.instrumentRepo.FindBySymbolAndMarketType(s.ctx, "BTC", entity.MarketCrypto)
	s.Require().NoError(err)
	tsla, err = s.instrumentRepo.FindBySymbolAndMarketType(s.ctx, "TSLA", entity.MarketStock)
	s.Require().NoError(err)
	return btc, tsla
}

func (s *RepoSuite) subscribe(instrument entity.Instrument, email, price string) int64 {
	id, err := s.subscriptionRepo.Create(s.ctx, entity.Subscription{
		InstrumentId:   instrument.Id,
		Email:          email,
		UpperThreshold: decimalx.MustFromString("10"),
		LowerThreshold: decimalx.MustFromString("10"),
		ReferencePrice: decimalx.MustFromString(price),
		OriginalPrice:  decimalx.MustFromString(price),
	})
	s.Require().NoError(err)
	return id
}

func (s *RepoSuite) TestFindBySymbolAndMarketType_NotFound() {
	s.seedInstruments()
	_, err := s.instrumentRepo.FindBySymbolAndMarketType(s.ctx, "BTC", entity.MarketStock)
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *RepoSuite) TestCreateBatch_Empty() {
	s.NoError(s.instrumentRepo.CreateBatch(s.ctx, nil))
	all, err := s.instrumentRepo.FindAll(s.ctx)
	s.NoError(err)
	s.Empty(all)
}

func (s *RepoSuite) TestCreateBatch_DuplicateIdentity() {
	s.seedInstruments()
	err := s.instrumentRepo.CreateBatch(s.ctx, []entity.Instrument{
		{Symbol: "BTC", Name: "Bitcoin", MarketType: entity.MarketCrypto},
	})
	s.ErrorIs(err, repo.ErrDuplicated)
}

func (s *RepoSuite) TestFindAllBySymbols() {
	s.seedInstruments()

	found, err := s.instrumentRepo.FindAllBySymbols(s.ctx, []string{"BTC", "ETH"})
	s.Require().NoError(err)
	s.Len(found, 1)
	s.Equal("BTC", found[0].Symbol)

	found, err = s.instrumentRepo.FindAllBySymbols(s.ctx, nil)
	s.NoError(err)
	s.Empty(found)
}

func (s *RepoSuite) TestFindAllWithSubscriptions() {
	btc, _ := s.seedInstruments()

	found, err := s.instrumentRepo.FindAllWithSubscriptions(s.ctx)
	s.Require().NoError(err)
	s.Empty(found)

	s.subscribe(btc, "a@b.com", "100")
	s.subscribe(btc, "c@d.com", "100")

	found, err = s.instrumentRepo.FindAllWithSubscriptions(s.ctx)
	s.Require().NoError(err)
	s.Len(found, 1)
	s.Equal(btc.Id, found[0].Id)
}

func (s *RepoSuite) TestSubscription_ExistsCreateDelete() {
	btc, _ := s.seedInstruments()

	exists, err := s.subscriptionRepo.Exists(s.ctx, "BTC", entity.MarketCrypto, "a@b.com")
	s.Require().NoError(err)
	s.False(exists)

	s.subscribe(btc, "a@b.com", "100")

	exists, err = s.subscriptionRepo.Exists(s.ctx, "BTC", entity.MarketCrypto, "a@b.com")
	s.Require().NoError(err)
	s.True(exists)

	// same symbol, other market
	exists, err = s.subscriptionRepo.Exists(s.ctx, "BTC", entity.MarketStock, "a@b.com")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.subscriptionRepo.Delete(s.ctx, "BTC", entity.MarketCrypto, "a@b.com"))
	exists, err = s.subscriptionRepo.Exists(s.ctx, "BTC", entity.MarketCrypto, "a@b.com")
	s.Require().NoError(err)
	s.False(exists)

	// deleting again is a no-op
	s.NoError(s.subscriptionRepo.Delete(s.ctx, "BTC", entity.MarketCrypto, "a@b.com"))
}

func (s *RepoSuite) TestSubscription_CreateDuplicated() {
	btc, _ := s.seedInstruments()
	s.subscribe(btc, "a@b.com", "100")

	_, err := s.subscriptionRepo.Create(s.ctx, entity.Subscription{
		InstrumentId:   btc.Id,
		Email:          "a@b.com",
		ReferencePrice: decimalx.MustFromString("1"),
		OriginalPrice:  decimalx.MustFromString("1"),
	})
	s.ErrorIs(err, repo.ErrDuplicated)
}

func (s *RepoSuite) TestFindAllByEmail_PreloadsInstrument() {
	btc, tsla := s.seedInstruments()
	s.subscribe(btc, "a@b.com", "100")
	s.subscribe(tsla, "a@b.com", "250.5")
	s.subscribe(tsla, "other@b.com", "250.5")

	subs, err := s.subscriptionRepo.FindAllByEmail(s.ctx, "a@b.com")
	s.Require().NoError(err)
	s.Len(subs, 2)
	s.ElementsMatch([]string{"BTC", "TSLA"}, lo.Map(subs, func(item entity.Subscription, _ int) string {
		return item.Instrument.Symbol
	}))
	s.True(subs[1].OriginalPrice.Equal(decimalx.MustFromString("250.5")))
	s.False(subs[0].CreatedOn.IsZero())
}

func (s *RepoSuite) TestRebase() {
	btc, _ := s.seedInstruments()
	first := s.subscribe(btc, "a@b.com", "100")
	s.subscribe(btc, "c@d.com", "100")

	s.Require().NoError(s.subscriptionRepo.Rebase(s.ctx, []int64{first}, decimalx.MustFromString("111")))
	s.NoError(s.subscriptionRepo.Rebase(s.ctx, nil, decimalx.MustFromString("1")))

	subs, err := s.subscriptionRepo.FindAllByInstrument(s.ctx, btc.Id)
	s.Require().NoError(err)
	s.Require().Len(subs, 2)
	s.True(subs[0].ReferencePrice.Equal(decimalx.MustFromString("111")), subs[0].ReferencePrice.String())
	s.True(subs[0].OriginalPrice.Equal(decimalx.MustFromString("100")))
	s.True(subs[1].ReferencePrice.Equal(decimalx.MustFromString("100")))
}
