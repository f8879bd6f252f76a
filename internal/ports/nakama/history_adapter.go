package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"gostop/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const historyCollection = "gostop_history"

type storageWriter interface {
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// NakamaHistoryAdapter implements ports.HistoryPort with Nakama storage. Each
// participant gets a private copy keyed by match and deal.
type NakamaHistoryAdapter struct {
	nk storageWriter
}

func NewNakamaHistoryAdapter(nk storageWriter) *NakamaHistoryAdapter {
	return &NakamaHistoryAdapter{nk: nk}
}

func historyKey(matchID string, deal int) string {
	return fmt.Sprintf("%s:%02d", matchID, deal)
}

// RecordDeal writes rec once per user in a single storage batch.
func (a *NakamaHistoryAdapter) RecordDeal(ctx context.Context, userIDs []string, rec ports.DealRecord) error {
	if len(userIDs) == 0 {
		return nil
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal deal record: %w", err)
	}

	writes := make([]*runtime.StorageWrite, 0, len(userIDs))
	for _, userID := range userIDs {
		writes = append(writes, &runtime.StorageWrite{
			Collection:      historyCollection,
			Key:             historyKey(rec.MatchID, rec.DealNumber),
			UserID:          userID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		})
	}

	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to store deal %d of match %s: %w", rec.DealNumber, rec.MatchID, err)
	}
	return nil
}

var _ ports.HistoryPort = (*NakamaHistoryAdapter)(nil)
