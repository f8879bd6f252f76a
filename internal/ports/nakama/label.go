package nakama

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	labelGame = "gostop"

	labelPhaseLobby   = "lobby"
	labelPhasePlaying = "playing"
)

// MatchLabel is the searchable match label. Quick match queries it with
// "+label.open:T label.game:gostop label.phase:lobby".
type MatchLabel struct {
	Open      bool
	OpenSeats int
	Phase     string
	Players   int
	Tier      string
}

func (ms *MatchState) label() MatchLabel {
	phase := labelPhaseLobby
	if ms.matchRunning() {
		phase = labelPhasePlaying
	}
	open := ms.GetOpenSeatsCount()
	return MatchLabel{
		Open:      open > 0 && phase == labelPhaseLobby,
		OpenSeats: open,
		Phase:     phase,
		Players:   ms.GetOccupiedSeatCount(),
		Tier:      ms.Tier,
	}
}

// Marshal encodes the label as the JSON object Nakama indexes.
func (l MatchLabel) Marshal() (string, error) {
	s, err := structpb.NewStruct(map[string]any{
		"game":       labelGame,
		"open":       l.Open,
		"open_seats": l.OpenSeats,
		"phase":      l.Phase,
		"players":    l.Players,
		"tier":       l.Tier,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build label: %w", err)
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal label: %w", err)
	}
	return string(b), nil
}
