package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchRequest is the optional RPC payload; an empty tier means the default tier.
type QuickMatchRequest struct {
	Tier string `json:"tier"`
}

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// matchFinder is the part of runtime.NakamaModule quick match needs.
type matchFinder interface {
	MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error)
	MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error)
}

func (mh *matchHandler) rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return mh.quickMatch(ctx, logger, nk, payload)
}

func (mh *matchHandler) quickMatch(ctx context.Context, logger runtime.Logger, nk matchFinder, payload string) (string, error) {
	var req QuickMatchRequest
	if strings.TrimSpace(payload) != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError(fmt.Sprintf("invalid quick match payload: %v", err), 3) // INVALID_ARGUMENT
		}
	}
	if req.Tier == "" {
		req.Tier = mh.cfg.DefaultTier
	}

	// Find any open lobby of our game at the requested tier.
	query := fmt.Sprintf("+label.open:T +label.game:%s +label.phase:%s +label.tier:%s", labelGame, labelPhaseLobby, req.Tier)

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := mh.cfg.MaxSeats - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		return marshalQuickMatch(QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false})
	}

	// Seat and owner assignment happens in MatchJoin.
	matchID, err := nk.MatchCreate(ctx, MatchNameGoStop, map[string]interface{}{"tier": req.Tier})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}
	return marshalQuickMatch(QuickMatchResponse{MatchID: matchID, IsNew: true})
}

func marshalQuickMatch(resp QuickMatchResponse) (string, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
