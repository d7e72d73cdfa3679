package progression

import (
	"context"
	"sync"
	"testing"

	"github.com/mcoot/mankind/internal/model"
	"github.com/mcoot/mankind/internal/testutil"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New(testutil.NopLogger())
}

func (s *StoreSuite) TestGetOrCreateDefaults() {
	p, err := s.store.GetOrCreate(s.ctx, "alice")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("alice"), p.PlayerID)
	s.Equal(1, p.Level)
	s.Equal(0, p.XP)
	s.Equal(0, p.GamesPlayed)
	s.Equal(0, p.GamesWon)
}

func (s *StoreSuite) TestGetOrCreateRejectsEmptyID() {
	_, err := s.store.GetOrCreate(s.ctx, "")
	s.ErrorIs(err, model.ErrInvalidPlayerID)
}

func (s *StoreSuite) TestGetOrCreateKeepsExistingRecord() {
	_, err := s.store.GetOrCreate(s.ctx, "alice")
	s.Require().NoError(err)
	_, _, err = s.store.ApplyResult(s.ctx, "alice", true, 80)
	s.Require().NoError(err)

	p, err := s.store.GetOrCreate(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(80, p.XP)
	s.Equal(1, p.GamesPlayed)
}

func (s *StoreSuite) TestGetUnknownPlayer() {
	_, err := s.store.Get(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StoreSuite) TestApplyResultUnknownPlayer() {
	_, _, err := s.store.ApplyResult(s.ctx, "nobody", true, 10)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StoreSuite) TestReturnedRecordIsACopy() {
	p, err := s.store.GetOrCreate(s.ctx, "alice")
	s.Require().NoError(err)
	p.XP = 9999

	again, err := s.store.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(0, again.XP)
}

func (s *StoreSuite) TestCorrectDecisionLevelsUp() {
	_, err := s.store.GetOrCreate(s.ctx, "alice")
	s.Require().NoError(err)

	p, leveled, err := s.store.ApplyResult(s.ctx, "alice", true, 250)
	s.Require().NoError(err)

	s.True(leveled)
	s.Equal(2, p.Level)
	s.Equal(250, p.XP)
	s.Equal(1, p.GamesPlayed)
	s.Equal(1, p.GamesWon)
}

func (s *StoreSuite) TestPenaltyCanStillLevelUp() {
	// (level 2, xp 250) then a wrong answer: 225 >= 200 so the level still rises
	_, err := s.store.GetOrCreate(s.ctx, "bob")
	s.Require().NoError(err)
	_, _, err = s.store.ApplyResult(s.ctx, "bob", true, 250)
	s.Require().NoError(err)

	p, leveled, err := s.store.ApplyResult(s.ctx, "bob", false, -25)
	s.Require().NoError(err)

	s.True(leveled)
	s.Equal(3, p.Level)
	s.Equal(225, p.XP)
	s.Equal(2, p.GamesPlayed)
	s.Equal(1, p.GamesWon)
}

func (s *StoreSuite) TestSingleStepLeveling() {
	_, err := s.store.GetOrCreate(s.ctx, "carol")
	s.Require().NoError(err)

	p, leveled, err := s.store.ApplyResult(s.ctx, "carol", true, 1000)
	s.Require().NoError(err)

	s.True(leveled)
	s.Equal(2, p.Level)
	s.Equal(1000, p.XP)
}

func (s *StoreSuite) TestNegativeXPAllowed() {
	_, err := s.store.GetOrCreate(s.ctx, "dave")
	s.Require().NoError(err)

	p, leveled, err := s.store.ApplyResult(s.ctx, "dave", false, -25)
	s.Require().NoError(err)

	s.False(leveled)
	s.Equal(1, p.Level)
	s.Equal(-25, p.XP)
}

func (s *StoreSuite) TestLevelCapsAtTen() {
	_, err := s.store.GetOrCreate(s.ctx, "erin")
	s.Require().NoError(err)

	var p *model.Progression
	for i := 0; i < 15; i++ {
		p, _, err = s.store.ApplyResult(s.ctx, "erin", true, 2000)
		s.Require().NoError(err)
	}
	s.Equal(model.MaxLevel, p.Level)

	_, leveled, err := s.store.ApplyResult(s.ctx, "erin", true, 2000)
	s.Require().NoError(err)
	s.False(leveled)
}

func (s *StoreSuite) TestListSortedCopies() {
	for _, id := range []model.PlayerID{"zed", "amy", "kim"} {
		_, err := s.store.GetOrCreate(s.ctx, id)
		s.Require().NoError(err)
	}

	list := s.store.List(s.ctx)
	s.Require().Len(list, 3)
	s.Equal(model.PlayerID("amy"), list[0].PlayerID)
	s.Equal(model.PlayerID("kim"), list[1].PlayerID)
	s.Equal(model.PlayerID("zed"), list[2].PlayerID)
}

func (s *StoreSuite) TestConcurrentApplyResult() {
	_, err := s.store.GetOrCreate(s.ctx, "alice")
	s.Require().NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.store.ApplyResult(s.ctx, "alice", false, -25)
		}()
	}
	wg.Wait()

	p, err := s.store.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(50, p.GamesPlayed)
	s.Equal(-1250, p.XP)
}

func TestProgressionInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := New(testutil.NopLogger())
		ctx := context.Background()
		if _, err := store.GetOrCreate(ctx, "p"); err != nil {
			t.Fatal(err)
		}

		n := rapid.IntRange(1, 40).Draw(t, "duels")
		prevLevel := 1
		wins := 0
		for i := 0; i < n; i++ {
			correct := rapid.Bool().Draw(t, "correct")
			score := -25
			if correct {
				score = rapid.IntRange(0, 250).Draw(t, "score")
				wins++
			}
			p, leveled, err := store.ApplyResult(ctx, "p", correct, score)
			if err != nil {
				t.Fatal(err)
			}
			if p.Level < prevLevel || p.Level > model.MaxLevel {
				t.Fatalf("level %d out of order (prev %d)", p.Level, prevLevel)
			}
			if p.Level-prevLevel > 1 {
				t.Fatalf("level jumped from %d to %d", prevLevel, p.Level)
			}
			if leveled != (p.Level != prevLevel) {
				t.Fatalf("leveled flag %v disagrees with %d -> %d", leveled, prevLevel, p.Level)
			}
			if p.GamesWon != wins || p.GamesPlayed != i+1 {
				t.Fatalf("counts played=%d won=%d, want %d/%d", p.GamesPlayed, p.GamesWon, i+1, wins)
			}
			prevLevel = p.Level
		}
	})
}
