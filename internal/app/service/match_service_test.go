package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeduel/internal/app/harness"
	"codeduel/internal/common"
	"codeduel/internal/domain/catalog"
	"codeduel/internal/domain/model"
	"codeduel/internal/domain/repository"
)

type stubExecutor struct {
	mu     sync.Mutex
	result model.ExecutionOutcome
	delay  time.Duration
	calls  int
}

func (e *stubExecutor) Execute(ctx context.Context, script string) model.ExecutionOutcome {
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return e.result
}

func (e *stubExecutor) set(out model.ExecutionOutcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.result = out
}

func passOutcome() model.ExecutionOutcome {
	return model.ExecutionOutcome{
		Output:  "Test 1: PASS (got=0, expected=0)",
		Tests:   []model.TestResult{{Number: 1, Verdict: model.VerdictPass}},
		AllPass: true,
	}
}

func failOutcome() model.ExecutionOutcome {
	return model.ExecutionOutcome{
		Output: "Test 1: FAIL (got=1, expected=0)",
		Tests:  []model.TestResult{{Number: 1, Verdict: model.VerdictFail}},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(roundsTotal int) (*MatchService, *stubExecutor, *repository.MemorySessionRepository) {
	repo := repository.NewMemorySessionRepository()
	cat := catalog.New()
	stub := &stubExecutor{result: passOutcome()}
	svc := NewMatchService(repo, cat, harness.NewBuilder(cat), stub,
		roundsTotal, 5*time.Minute, testLogger())
	return svc, stub, repo
}

// createDuel sets up a session with both players joined and returns
// (sessionID, player1ID, player2ID).
func createDuel(t *testing.T, svc *MatchService) (string, string, string) {
	t.Helper()
	created := svc.Create("alice")
	joined, err := svc.Join(created.SessionID, "bob")
	require.NoError(t, err)
	return created.SessionID, *created.Players[0].ID, joined.PlayerID
}

func TestCreateMatch(t *testing.T) {
	svc, _, _ := newTestService(5)
	resp := svc.Create("alice")

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 1, resp.Round)
	assert.Equal(t, model.StatusActive, resp.Status)
	assert.Equal(t, 1, resp.ProblemID)

	require.NotNil(t, resp.Players[0].ID)
	assert.Equal(t, "alice", *resp.Players[0].Name)
	assert.Nil(t, resp.Players[1].ID, "second slot starts empty")
	assert.Nil(t, resp.Players[1].Name)

	snap, err := svc.Snapshot(resp.SessionID)
	require.NoError(t, err)
	assert.Nil(t, snap.RoundEndsAt, "deadline unset until both players present")
	assert.Zero(t, snap.Remaining)
}

func TestJoinStartsDeadline(t *testing.T) {
	svc, _, _ := newTestService(5)
	created := svc.Create("alice")

	joined, err := svc.Join(created.SessionID, "bob")
	require.NoError(t, err)
	assert.True(t, joined.Success)
	assert.NotEmpty(t, joined.PlayerID)

	snap, err := svc.Snapshot(created.SessionID)
	require.NoError(t, err)
	require.NotNil(t, snap.RoundEndsAt)
	assert.Positive(t, snap.Remaining)
}

func TestJoinFullOrMissingIsUniform(t *testing.T) {
	svc, _, _ := newTestService(5)
	created := svc.Create("alice")
	_, err := svc.Join(created.SessionID, "bob")
	require.NoError(t, err)

	_, err = svc.Join(created.SessionID, "carol")
	assert.ErrorIs(t, err, common.ErrCannotJoin)

	_, err = svc.Join("no-such-session", "carol")
	assert.ErrorIs(t, err, common.ErrCannotJoin)

	// the full session was not mutated
	snap, err := svc.Snapshot(created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "alice", *snap.Players[0].Name)
	assert.Equal(t, "bob", *snap.Players[1].Name)
}

func TestSubmitWinEndsRound(t *testing.T) {
	svc, _, _ := newTestService(3)
	sessionID, p1, _ := createDuel(t, svc)

	resp, err := svc.Submit(context.Background(), sessionID, p1, "def two_sum(nums, target): return [0, 1]")
	require.NoError(t, err)

	assert.True(t, resp.AllPass)
	assert.True(t, resp.GameEnded)
	require.NotNil(t, resp.WinnerID)
	assert.Equal(t, p1, *resp.WinnerID)
	assert.Equal(t, model.StatusEnded, resp.Status)
	assert.Equal(t, 1, resp.Round)

	snap, err := svc.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Players[0].Score)
	assert.Equal(t, 0, snap.Players[1].Score)
}

func TestSubmitAfterRoundEndedDoesNotScore(t *testing.T) {
	svc, _, _ := newTestService(3)
	sessionID, p1, p2 := createDuel(t, svc)

	_, err := svc.Submit(context.Background(), sessionID, p1, "code")
	require.NoError(t, err)

	resp, err := svc.Submit(context.Background(), sessionID, p2, "code")
	require.NoError(t, err)
	assert.True(t, resp.AllPass, "execution outcome is still reported")
	assert.True(t, resp.GameEnded)
	assert.Equal(t, p1, *resp.WinnerID, "winner unchanged")

	snap, err := svc.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Players[0].Score)
	assert.Equal(t, 0, snap.Players[1].Score, "late pass earns nothing")
}

func TestSubmitFailKeepsRoundActive(t *testing.T) {
	svc, stub, _ := newTestService(3)
	sessionID, p1, _ := createDuel(t, svc)
	stub.set(failOutcome())

	resp, err := svc.Submit(context.Background(), sessionID, p1, "code")
	require.NoError(t, err)
	assert.False(t, resp.AllPass)
	assert.False(t, resp.GameEnded)
	assert.Nil(t, resp.WinnerID)
	assert.Equal(t, model.StatusActive, resp.Status)

	snap, err := svc.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Zero(t, snap.Players[0].Score)
}

func TestSubmitMissingSession(t *testing.T) {
	svc, _, _ := newTestService(3)
	_, err := svc.Submit(context.Background(), "nope", "p", "code")
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
}

func TestAdvanceRound(t *testing.T) {
	svc, _, _ := newTestService(3)
	sessionID, p1, _ := createDuel(t, svc)

	_, err := svc.AdvanceRound(sessionID)
	assert.ErrorIs(t, err, common.ErrRoundStillActive)

	_, err = svc.Submit(context.Background(), sessionID, p1, "code")
	require.NoError(t, err)

	resp, err := svc.AdvanceRound(sessionID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Round)
	assert.Equal(t, 2, resp.ProblemID)
	assert.Equal(t, model.StatusActive, resp.Status)
	assert.Nil(t, resp.WinnerID)
	assert.Equal(t, 300, resp.Timer)
	assert.Equal(t, "binary-search", resp.Problem.Slug)
	assert.Empty(t, resp.Players[0].Code, "in-progress code cleared")

	snap, err := svc.Snapshot(sessionID)
	require.NoError(t, err)
	require.NotNil(t, snap.RoundEndsAt)
	assert.Positive(t, snap.Remaining)
}

func TestAdvanceRoundMissingSession(t *testing.T) {
	svc, _, _ := newTestService(3)
	_, err := svc.AdvanceRound("nope")
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
}

func TestChampionStrictlyHigherScore(t *testing.T) {
	svc, _, _ := newTestService(2)
	sessionID, p1, _ := createDuel(t, svc)

	_, err := svc.Submit(context.Background(), sessionID, p1, "code")
	require.NoError(t, err)
	_, err = svc.AdvanceRound(sessionID)
	require.NoError(t, err)

	resp, err := svc.Submit(context.Background(), sessionID, p1, "code")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, resp.Status)

	snap, err := svc.Snapshot(sessionID)
	require.NoError(t, err)
	require.NotNil(t, snap.ChampionID)
	assert.Equal(t, p1, *snap.ChampionID, "2-0 champion")
}

func TestChampionTieGoesToMostRecentWinner(t *testing.T) {
	svc, _, _ := newTestService(2)
	sessionID, p1, p2 := createDuel(t, svc)

	_, err := svc.Submit(context.Background(), sessionID, p1, "code")
	require.NoError(t, err)
	_, err = svc.AdvanceRound(sessionID)
	require.NoError(t, err)

	resp, err := svc.Submit(context.Background(), sessionID, p2, "code")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, resp.Status)

	snap, err := svc.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Players[0].Score)
	assert.Equal(t, 1, snap.Players[1].Score)
	require.NotNil(t, snap.ChampionID)
	assert.Equal(t, p2, *snap.ChampionID, "tie broken by most recent round winner")

	_, err = svc.AdvanceRound(sessionID)
	assert.ErrorIs(t, err, common.ErrMatchCompleted)
}

func TestAdvancePastCatalogFailsCleanly(t *testing.T) {
	// more rounds than problems: the catalog guard must fire before any
	// session state changes
	svc, _, _ := newTestService(10)
	sessionID, p1, _ := createDuel(t, svc)

	for round := 1; round < 5; round++ {
		_, err := svc.Submit(context.Background(), sessionID, p1, "code")
		require.NoError(t, err)
		_, err = svc.AdvanceRound(sessionID)
		require.NoError(t, err)
	}

	_, err := svc.Submit(context.Background(), sessionID, p1, "code")
	require.NoError(t, err)
	_, err = svc.AdvanceRound(sessionID)
	assert.ErrorIs(t, err, common.ErrNoMoreProblems)

	snap, err := svc.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Round, "failed advance left the session untouched")
	assert.Equal(t, model.StatusEnded, snap.Status)
}

func TestAdvanceOnFinalRound(t *testing.T) {
	svc, _, repo := newTestService(3)
	sessionID, _, _ := createDuel(t, svc)

	// force the ended-on-final-round state directly; winning the final round
	// normally completes the match before advance can be called
	err := repo.Update(sessionID, func(s *model.Session) error {
		s.Round = 3
		s.ProblemID = 3
		s.Status = model.StatusEnded
		return nil
	})
	require.NoError(t, err)

	_, err = svc.AdvanceRound(sessionID)
	assert.ErrorIs(t, err, common.ErrNoMoreRounds)
}

func TestRemainingIsNonIncreasing(t *testing.T) {
	svc, _, _ := newTestService(3)
	sessionID, _, _ := createDuel(t, svc)

	base := time.Now()
	svc.now = func() time.Time { return base.Add(1 * time.Minute) }
	snap1, err := svc.Snapshot(sessionID)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	snap2, err := svc.Snapshot(sessionID)
	require.NoError(t, err)
	assert.LessOrEqual(t, snap2.Remaining, snap1.Remaining)

	svc.now = func() time.Time { return base.Add(time.Hour) }
	snap3, err := svc.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Zero(t, snap3.Remaining, "remaining is clamped at zero after the deadline")
}

// Two simultaneous winning submissions must produce exactly one recorded
// round winner and one score increment.
func TestSimultaneousWinningSubmissions(t *testing.T) {
	svc, stub, _ := newTestService(3)
	sessionID, p1, p2 := createDuel(t, svc)
	stub.delay = 20 * time.Millisecond

	var wg sync.WaitGroup
	for _, pid := range []string{p1, p2} {
		pid := pid
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), sessionID, pid, "code")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := svc.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEnded, snap.Status)
	require.NotNil(t, snap.WinnerID)
	total := snap.Players[0].Score + snap.Players[1].Score
	assert.Equal(t, 1, total, "exactly one score increment")
	winner := *snap.WinnerID
	assert.True(t, winner == p1 || winner == p2)
}
