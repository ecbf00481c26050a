package pacman

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/zeu5/maze-mdp/types"
)

// SummaryList is the redis list run summaries are pushed to
const SummaryList = "maze-mdp:summaries"

// Publisher receives encoded run summaries. *redis.Client satisfies it.
type Publisher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisComparator pushes one JSON summary per experiment of a run to the
// summaries list. Failures are logged, they never stop the comparison.
func RedisComparator(client Publisher, logger *log.Logger) types.Comparator {
	return func(run, _ int, names []string, ds []types.DataSet) {
		values := make([]interface{}, 0, len(names))
		for i, name := range names {
			summary := Summarize(run, name, ds[i].(*ScoreDataSet))
			summary.ID = uuid.NewString()
			bs, err := json.Marshal(summary)
			if err != nil {
				logger.Error("encoding summary", "experiment", name, "err", err)
				continue
			}
			values = append(values, string(bs))
		}
		if len(values) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.RPush(ctx, SummaryList, values...).Err(); err != nil {
			logger.Error("publishing summaries", "run", run, "err", err)
			return
		}
		logger.Info("published summaries", "run", run, "count", len(values))
	}
}
