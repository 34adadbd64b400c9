package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/heartgame/internal/db"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
	"github.com/vytor/heartgame/internal/repository"
)

var completed = squirrel.Eq{"status": string(models.ScoreCompleted)}

type statsRepository struct {
	db *db.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *db.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) CompletedRows(ctx context.Context, filter repository.StatsFilter) ([]models.ScoreRow, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching completed rows: since=%v, difficulty=%s", filter.Since, filter.Difficulty)

	query := r.db.Builder().Select("user_id", "username", "score", "created_at").
		From("game_scores").
		Where(completed)
	if filter.Since != nil {
		query = query.Where(squirrel.GtOrEq{"created_at": db.Millis(*filter.Since)})
	}
	if filter.Difficulty != "" {
		query = query.Where(squirrel.Eq{"difficulty": string(filter.Difficulty)})
	}

	sqlStr, args, err := query.OrderBy("created_at ASC").ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query completed rows: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.ScoreRow
	for rows.Next() {
		var row models.ScoreRow
		var createdAt int64
		if err := rows.Scan(&row.UserID, &row.Username, &row.Score, &createdAt); err != nil {
			log.Error("failed to scan score row: %v", err)
			return nil, err
		}
		row.CreatedAt = db.FromMillis(createdAt)
		out = append(out, row)
	}
	log.Debug("found %d completed rows", len(out))
	return out, rows.Err()
}

func (r *statsRepository) UserRank(ctx context.Context, userID string) (*int, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("computing rank: user_id=%s", userID)

	own, ownArgs, err := r.db.Builder().Select("COUNT(*)", "COALESCE(SUM(score), 0)").
		From("game_scores").
		Where(completed).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var games, total int
	if err := r.db.QueryRowContext(ctx, own, ownArgs...).Scan(&games, &total); err != nil {
		log.Error("failed to fetch user total: %v", err)
		return nil, err
	}
	if games == 0 {
		log.Debug("user_id=%s has no completed records, unranked", userID)
		return nil, nil
	}

	totals := squirrel.Select("user_id", "SUM(score) AS total").
		From("game_scores").
		Where(completed).
		GroupBy("user_id")
	higher, higherArgs, err := r.db.Builder().Select("COUNT(*)").
		FromSelect(totals, "totals").
		Where(squirrel.Gt{"total": total}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var above int
	if err := r.db.QueryRowContext(ctx, higher, higherArgs...).Scan(&above); err != nil {
		log.Error("failed to count higher totals: %v", err)
		return nil, err
	}
	rank := above + 1
	log.Debug("user_id=%s total=%d rank=%d", userID, total, rank)
	return &rank, nil
}

func (r *statsRepository) OverallStats(ctx context.Context, userID string) (*models.OverallStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	query, args, err := r.db.Builder().Select(
		"COUNT(*)",
		"COALESCE(SUM(score), 0)",
		"COALESCE(SUM(correct_answers), 0)",
		"COALESCE(SUM(total_questions), 0)",
		"COALESCE(MAX(score), 0)",
	).From("game_scores").
		Where(completed).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var s models.OverallStats
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.TotalGames, &s.TotalScore, &s.TotalCorrectAnswers, &s.TotalQuestions, &s.BestScore); err != nil {
		log.Error("failed to fetch overall stats: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *statsRepository) DifficultyStats(ctx context.Context, userID string) ([]models.DifficultyStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	query, args, err := r.db.Builder().Select("difficulty", "COUNT(*)", "COALESCE(SUM(score), 0)", "COALESCE(MAX(score), 0)").
		From("game_scores").
		Where(completed).
		Where(squirrel.Eq{"user_id": userID}).
		GroupBy("difficulty").
		OrderBy("difficulty").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query difficulty stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	stats := []models.DifficultyStat{}
	for rows.Next() {
		var s models.DifficultyStat
		var difficulty string
		if err := rows.Scan(&difficulty, &s.GamesPlayed, &s.TotalScore, &s.BestScore); err != nil {
			log.Error("failed to scan difficulty stat row: %v", err)
			return nil, err
		}
		s.Difficulty = models.Difficulty(difficulty)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepository) GlobalTotals(ctx context.Context) (games, players, score int, err error) {
	query, args, err := r.db.Builder().Select("COUNT(*)", "COUNT(DISTINCT user_id)", "COALESCE(SUM(score), 0)").
		From("game_scores").
		ToSql()
	if err != nil {
		return 0, 0, 0, err
	}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&games, &players, &score)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("stats_repo").Error("failed to fetch global totals: %v", err)
	}
	return games, players, score, err
}

func (r *statsRepository) GamesByDifficulty(ctx context.Context) ([]models.DifficultyCount, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	query, args, err := r.db.Builder().Select("difficulty", "COUNT(*)").
		From("game_scores").
		GroupBy("difficulty").
		OrderBy("difficulty").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query games by difficulty: %v", err)
		return nil, err
	}
	defer rows.Close()

	counts := []models.DifficultyCount{}
	for rows.Next() {
		var c models.DifficultyCount
		var difficulty string
		if err := rows.Scan(&difficulty, &c.Count); err != nil {
			return nil, err
		}
		c.Difficulty = models.Difficulty(difficulty)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Recomputed aggregate expressions, correlated on the outer users row.
const (
	recomputedTotalScore     = "(SELECT COALESCE(SUM(score), 0) FROM game_scores WHERE game_scores.user_id = users.id)"
	recomputedGamesPlayed    = "(SELECT COUNT(*) FROM game_scores WHERE game_scores.user_id = users.id)"
	recomputedCorrectAnswers = "(SELECT COALESCE(SUM(correct_answers), 0) FROM game_scores WHERE game_scores.user_id = users.id)"
)

var aggregateDrift = squirrel.Or{
	squirrel.Expr("total_score <> " + recomputedTotalScore),
	squirrel.Expr("games_played <> " + recomputedGamesPlayed),
	squirrel.Expr("correct_answers <> " + recomputedCorrectAnswers),
}

func (r *statsRepository) RecomputeUserAggregates(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	var drifted []string
	err := r.db.Tx(ctx, func(tx *sql.Tx) error {
		query, args, err := r.db.Builder().Select("id").
			From("users").
			Where(aggregateDrift).
			OrderBy("id").
			ToSql()
		if err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to find drifted aggregates: %v", err)
			return err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			drifted = append(drifted, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
		if len(drifted) == 0 {
			return nil
		}

		query, args, err = r.db.Builder().Update("users").
			Set("total_score", squirrel.Expr(recomputedTotalScore)).
			Set("games_played", squirrel.Expr(recomputedGamesPlayed)).
			Set("correct_answers", squirrel.Expr(recomputedCorrectAnswers)).
			Where(squirrel.Eq{"id": drifted}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Error("failed to rewrite aggregates: %v", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug("recomputed aggregates for %d users", len(drifted))
	return drifted, nil
}
