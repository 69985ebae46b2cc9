package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"codeduel/internal/app/harness"
	"codeduel/internal/common"
	"codeduel/internal/domain/catalog"
	"codeduel/internal/domain/model"
	"codeduel/internal/domain/repository"
)

// Executor runs a generated harness script and reports the outcome.
// Satisfied by worker.ExecutionPool.
type Executor interface {
	Execute(ctx context.Context, script string) model.ExecutionOutcome
}

// MatchService owns the session/round state machine. All session mutation
// goes through the repository's per-session lock; the lock is held only to
// snapshot state and to apply a transition, never across the sandbox run.
type MatchService struct {
	sessions      repository.SessionRepository
	catalog       *catalog.Catalog
	builder       *harness.Builder
	executor      Executor
	roundsTotal   int
	roundDuration time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

func NewMatchService(
	sessions repository.SessionRepository,
	cat *catalog.Catalog,
	builder *harness.Builder,
	executor Executor,
	roundsTotal int,
	roundDuration time.Duration,
	logger *slog.Logger,
) *MatchService {
	return &MatchService{
		sessions:      sessions,
		catalog:       cat,
		builder:       builder,
		executor:      executor,
		roundsTotal:   roundsTotal,
		roundDuration: roundDuration,
		logger:        logger,
		now:           time.Now,
	}
}

type CreateMatchResponse struct {
	Success   bool                `json:"success"`
	SessionID string              `json:"sessionId"`
	Players   [2]*model.Player    `json:"players"`
	Round     int                 `json:"round"`
	Status    model.SessionStatus `json:"status"`
	ProblemID int                 `json:"problemId"`
}

// Create allocates a new session with player 1 filled and the second slot
// empty. The round deadline stays unset until the opponent joins.
func (s *MatchService) Create(playerName string) *CreateMatchResponse {
	playerID := uuid.NewString()
	session := &model.Session{
		ID: uuid.NewString(),
		Players: [2]*model.Player{
			{ID: &playerID, Name: &playerName},
			{},
		},
		ProblemID:     1,
		Round:         1,
		RoundsTotal:   s.roundsTotal,
		RoundDuration: s.roundDuration,
		Status:        model.StatusActive,
	}
	s.sessions.Create(session)
	s.logger.Info("session created", "session_id", session.ID, "player1", playerName)

	return &CreateMatchResponse{
		Success:   true,
		SessionID: session.ID,
		Players:   clonePlayers(session),
		Round:     session.Round,
		Status:    session.Status,
		ProblemID: session.ProblemID,
	}
}

type JoinMatchResponse struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId"`
}

// Join fills the empty slot. The first time both slots are filled the round
// deadline starts. A full session and a missing session both report the one
// uniform ErrCannotJoin.
func (s *MatchService) Join(sessionID, playerName string) (*JoinMatchResponse, error) {
	playerID := uuid.NewString()
	err := s.sessions.Update(sessionID, func(sess *model.Session) error {
		var slot *model.Player
		for _, p := range sess.Players {
			if p.Name == nil {
				slot = p
				break
			}
		}
		if slot == nil {
			return common.Errorf("session %q is full: %w", sessionID, common.ErrCannotJoin)
		}
		slot.ID = &playerID
		slot.Name = &playerName
		if sess.BothPresent() && sess.RoundEndsAt == nil {
			ends := s.now().Add(sess.RoundDuration)
			sess.RoundEndsAt = &ends
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrSessionNotFound) {
			return nil, common.Errorf("join: %w", common.ErrCannotJoin)
		}
		return nil, err
	}
	s.logger.Info("player joined", "session_id", sessionID, "player2", playerName)
	return &JoinMatchResponse{Success: true, PlayerID: playerID}, nil
}

type RunCodeResponse struct {
	Output    string              `json:"output"`
	AllPass   bool                `json:"all_pass"`
	GameEnded bool                `json:"gameEnded"`
	WinnerID  *string             `json:"winnerId"`
	Status    model.SessionStatus `json:"status"`
	Round     int                 `json:"round"`
	ProblemID int                 `json:"problemId"`
}

// Submit builds and executes the harness for the session's current problem,
// then applies the outcome: the first fully passing submission while the
// round is active wins it, and a win on the final round completes the match.
// The execution outcome comes back in the response whether it passed or not.
func (s *MatchService) Submit(ctx context.Context, sessionID, playerID, code string) (*RunCodeResponse, error) {
	// Snapshot under the session lock, run outside it.
	var problemID int
	err := s.sessions.Update(sessionID, func(sess *model.Session) error {
		problemID = sess.ProblemID
		if p := sess.PlayerByID(playerID); p != nil {
			p.Code = code
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	script, err := s.builder.Build(problemID, code)
	if err != nil {
		return nil, err
	}
	outcome := s.executor.Execute(ctx, script)

	var resp *RunCodeResponse
	err = s.sessions.Update(sessionID, func(sess *model.Session) error {
		roundWon := false
		if outcome.AllPass && sess.Status == model.StatusActive {
			winnerID := playerID
			sess.Status = model.StatusEnded
			sess.WinnerID = &winnerID
			roundWon = true
			if p := sess.PlayerByID(playerID); p != nil {
				p.Score++
			}
			if sess.Round >= sess.RoundsTotal {
				sess.Status = model.StatusCompleted
				sess.ChampionID = championOf(sess)
			}
			s.logger.Info("round won",
				"session_id", sess.ID,
				"winner_id", playerID,
				"round", sess.Round,
				"status", sess.Status)
		}
		resp = &RunCodeResponse{
			Output:    outcome.Output,
			AllPass:   outcome.AllPass,
			GameEnded: roundWon || sess.Status != model.StatusActive,
			WinnerID:  sess.WinnerID,
			Status:    sess.Status,
			Round:     sess.Round,
			ProblemID: problemID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

type NextRoundResponse struct {
	Success   bool                 `json:"success"`
	Round     int                  `json:"round"`
	ProblemID int                  `json:"problemId"`
	Status    model.SessionStatus  `json:"status"`
	WinnerID  *string              `json:"winnerId"`
	Players   [2]*model.Player     `json:"players"`
	Timer     int                  `json:"timer"`
	Problem   model.ProblemSummary `json:"problem"`
}

// AdvanceRound moves an ended session to the next round and problem, resets
// the round winner and in-progress code, and restarts the deadline.
func (s *MatchService) AdvanceRound(sessionID string) (*NextRoundResponse, error) {
	var resp *NextRoundResponse
	err := s.sessions.Update(sessionID, func(sess *model.Session) error {
		switch {
		case sess.Status == model.StatusCompleted:
			return common.Errorf("session %q: %w", sessionID, common.ErrMatchCompleted)
		case sess.Status != model.StatusEnded:
			return common.Errorf("session %q: %w", sessionID, common.ErrRoundStillActive)
		case sess.Round >= sess.RoundsTotal:
			return common.Errorf("session %q: %w", sessionID, common.ErrNoMoreRounds)
		case !s.catalog.Has(sess.ProblemID + 1):
			return common.Errorf("problem %d: %w", sess.ProblemID+1, common.ErrNoMoreProblems)
		}

		sess.Round++
		sess.ProblemID++
		sess.Status = model.StatusActive
		sess.WinnerID = nil
		for _, p := range sess.Players {
			p.Code = ""
		}
		ends := s.now().Add(sess.RoundDuration)
		sess.RoundEndsAt = &ends

		problem, err := s.catalog.Get(sess.ProblemID)
		if err != nil {
			return err
		}
		resp = &NextRoundResponse{
			Success:   true,
			Round:     sess.Round,
			ProblemID: sess.ProblemID,
			Status:    sess.Status,
			WinnerID:  sess.WinnerID,
			Players:   clonePlayers(sess),
			Timer:     int(sess.RoundDuration.Seconds()),
			Problem:   problem.Summary(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("round advanced", "session_id", sessionID, "round", resp.Round)
	return resp, nil
}

type MatchSnapshot struct {
	Players     [2]*model.Player     `json:"players"`
	Status      model.SessionStatus  `json:"status"`
	WinnerID    *string              `json:"winnerId"`
	ChampionID  *string              `json:"championId"`
	Round       int                  `json:"round"`
	RoundsTotal int                  `json:"roundsTotal"`
	ProblemID   int                  `json:"problemId"`
	Problem     model.ProblemSummary `json:"problem"`
	Remaining   int                  `json:"remaining"`
	RoundEndsAt *int64               `json:"roundEndsAt"`
}

// Snapshot reports the current session state including problem metadata and
// the seconds remaining in the round.
func (s *MatchService) Snapshot(sessionID string) (*MatchSnapshot, error) {
	var snap *MatchSnapshot
	err := s.sessions.View(sessionID, func(sess *model.Session) {
		var endsAt *int64
		if sess.RoundEndsAt != nil {
			unix := sess.RoundEndsAt.Unix()
			endsAt = &unix
		}
		problem, _ := s.catalog.Get(sess.ProblemID)
		var summary model.ProblemSummary
		if problem != nil {
			summary = problem.Summary()
		}
		snap = &MatchSnapshot{
			Players:     clonePlayers(sess),
			Status:      sess.Status,
			WinnerID:    sess.WinnerID,
			ChampionID:  sess.ChampionID,
			Round:       sess.Round,
			RoundsTotal: sess.RoundsTotal,
			ProblemID:   sess.ProblemID,
			Problem:     summary,
			Remaining:   sess.Remaining(s.now()),
			RoundEndsAt: endsAt,
		}
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// championOf resolves the overall winner: strictly higher score, tie broken
// in favor of the most recent round winner.
func championOf(sess *model.Session) *string {
	p0, p1 := sess.Players[0], sess.Players[1]
	switch {
	case p0.Score > p1.Score:
		return p0.ID
	case p1.Score > p0.Score:
		return p1.ID
	default:
		return sess.WinnerID
	}
}

// clonePlayers copies the player slots so responses assembled under the
// session lock stay stable after it is released.
func clonePlayers(sess *model.Session) [2]*model.Player {
	var out [2]*model.Player
	for i, p := range sess.Players {
		c := *p
		out[i] = &c
	}
	return out
}
