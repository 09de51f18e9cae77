package discovery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/scoring"
	"github.com/ucformula/sponsor-scout/internal/sponsor"
	"github.com/ucformula/sponsor-scout/internal/store"
)

// Analyze scores every stored sponsor, saves them to the analyzed collection
// and returns them best first.
func Analyze(ctx context.Context, st store.Store, logger *zap.Logger) (*sponsor.Candidates, error) {
	list, err := st.ListSponsors(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sponsors: %w", err)
	}

	scoring.Analyze(list)

	if err := st.UpsertAnalyzed(ctx, list); err != nil {
		return nil, fmt.Errorf("saving analyzed sponsors: %w", err)
	}

	if logger != nil {
		logger.Info("analyzed sponsors", zap.Int("count", list.Len()))
	}

	return list, nil
}
