// Query functions for events, episodes, and embeddings. Every query is
// parameterized; user-controlled text never reaches the query string.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/recall-sh/recall/internal/metrics"
	"github.com/recall-sh/recall/internal/models"
)

// eventRow mirrors the event table.
type eventRow struct {
	ID            surrealmodels.RecordID `json:"id,omitempty"`
	SessionID     string                 `json:"session_id"`
	Timestamp     time.Time              `json:"timestamp"`
	CWD           string                 `json:"cwd"`
	GitBranch     *string                `json:"git_branch,omitempty"`
	Command       string                 `json:"command"`
	ExitCode      *int                   `json:"exit_code,omitempty"`
	StdoutExcerpt *string                `json:"stdout_excerpt,omitempty"`
	StderrExcerpt *string                `json:"stderr_excerpt,omitempty"`
	ProjectHash   string                 `json:"project_hash"`
	Grouped       bool                   `json:"grouped"`
}

// episodeRow mirrors the episode table.
type episodeRow struct {
	ID          surrealmodels.RecordID `json:"id,omitempty"`
	ProjectHash string                 `json:"project_hash"`
	Summary     string                 `json:"summary"`
	Problem     *string                `json:"problem,omitempty"`
	Environment *string                `json:"environment,omitempty"`
	Fix         *string                `json:"fix,omitempty"`
	Keywords    []string               `json:"keywords"`
	EmbeddingID *string                `json:"embedding_id,omitempty"`
	Created     time.Time              `json:"created"`
}

// embeddingRow mirrors the embedding table.
type embeddingRow struct {
	ID        surrealmodels.RecordID `json:"id,omitempty"`
	EpisodeID string                 `json:"episode_id"`
	Vector    []float32              `json:"vector"`
	Model     string                 `json:"model"`
}

func (r episodeRow) toModel() models.Episode {
	ep := models.Episode{
		ProjectHash: r.ProjectHash,
		Summary:     r.Summary,
		Keywords:    r.Keywords,
		EmbeddingID: r.EmbeddingID,
		CreatedAt:   r.Created,
	}
	if id, err := models.RecordIDString(r.ID); err == nil {
		ep.ID = id
	}
	if r.Problem != nil {
		ep.Problem = *r.Problem
	}
	if r.Environment != nil {
		ep.Environment = *r.Environment
	}
	if r.Fix != nil {
		ep.Fix = *r.Fix
	}
	return ep
}

func (r eventRow) toModel() models.RawEvent {
	ev := models.RawEvent{
		SessionID:   r.SessionID,
		Timestamp:   r.Timestamp,
		CWD:         r.CWD,
		Command:     r.Command,
		ExitCode:    r.ExitCode,
		ProjectHash: r.ProjectHash,
	}
	if id, err := models.RecordIDString(r.ID); err == nil {
		ev.ID = id
	}
	if r.GitBranch != nil {
		ev.GitBranch = *r.GitBranch
	}
	if r.StdoutExcerpt != nil {
		ev.StdoutExcerpt = *r.StdoutExcerpt
	}
	if r.StderrExcerpt != nil {
		ev.StderrExcerpt = *r.StderrExcerpt
	}
	return ev
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// InsertEvent stores one raw event.
func (c *Client) InsertEvent(ctx context.Context, event models.RawEvent) error {
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("event", $id) CONTENT {
			session_id: $session_id,
			timestamp: <datetime>$timestamp,
			cwd: $cwd,
			git_branch: $git_branch,
			command: $command,
			exit_code: $exit_code,
			stdout_excerpt: $stdout_excerpt,
			stderr_excerpt: $stderr_excerpt,
			project_hash: $project_hash,
			grouped: false
		}
	`, map[string]any{
		"id":             event.ID,
		"session_id":     event.SessionID,
		"timestamp":      event.Timestamp.UTC().Format(time.RFC3339Nano),
		"cwd":            event.CWD,
		"git_branch":     optString(event.GitBranch),
		"command":        event.Command,
		"exit_code":      event.ExitCode,
		"stdout_excerpt": optString(event.StdoutExcerpt),
		"stderr_excerpt": optString(event.StderrExcerpt),
		"project_hash":   event.ProjectHash,
	})
	if err != nil {
		return fmt.Errorf("insert event: %w", wrapQueryError(err))
	}
	return nil
}

// UngroupedEvents returns events not yet folded into a sequence
// episode, oldest first, bounded by since and limit.
func (c *Client) UngroupedEvents(ctx context.Context, since time.Time, limit int) ([]models.RawEvent, error) {
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	results, err := surrealdb.Query[[]eventRow](ctx, c.db, `
		SELECT * FROM event
		WHERE grouped = false AND timestamp > <datetime>$since
		ORDER BY timestamp ASC
		LIMIT $limit
	`, map[string]any{
		"since": since.UTC().Format(time.RFC3339Nano),
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("ungrouped events: %w", wrapQueryError(err))
	}

	rows := firstResult(results)
	events := make([]models.RawEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toModel())
	}
	return events, nil
}

// RecentEvents returns one session's events within the window, oldest
// first. Used to rebuild session context across CLI invocations.
func (c *Client) RecentEvents(ctx context.Context, sessionID string, since time.Time, limit int) ([]models.RawEvent, error) {
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	results, err := surrealdb.Query[[]eventRow](ctx, c.db, `
		SELECT * FROM event
		WHERE session_id = $session_id AND timestamp > <datetime>$since
		ORDER BY timestamp ASC
		LIMIT $limit
	`, map[string]any{
		"session_id": sessionID,
		"since":      since.UTC().Format(time.RFC3339Nano),
		"limit":      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", wrapQueryError(err))
	}

	rows := firstResult(results)
	events := make([]models.RawEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toModel())
	}
	return events, nil
}

// MarkEventsGrouped flags events as consumed by a sequence episode.
func (c *Client) MarkEventsGrouped(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE event SET grouped = true WHERE record::id(id) IN $ids
	`, map[string]any{"ids": ids})
	if err != nil {
		return fmt.Errorf("mark events grouped: %w", wrapQueryError(err))
	}
	return nil
}

// InsertEpisode stores one synthesized episode.
func (c *Client) InsertEpisode(ctx context.Context, episode models.Episode) error {
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("episode", $id) CONTENT {
			project_hash: $project_hash,
			summary: $summary,
			problem: $problem,
			environment: $environment,
			fix: $fix,
			keywords: $keywords,
			embedding_id: NONE,
			created: <datetime>$created
		}
	`, map[string]any{
		"id":           episode.ID,
		"project_hash": episode.ProjectHash,
		"summary":      episode.Summary,
		"problem":      optString(episode.Problem),
		"environment":  optString(episode.Environment),
		"fix":          optString(episode.Fix),
		"keywords":     keywordsOrEmpty(episode.Keywords),
		"created":      episode.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("insert episode: %w", wrapQueryError(err))
	}
	return nil
}

// GetEpisode retrieves an episode by ID. Returns ErrNotFound if absent.
func (c *Client) GetEpisode(ctx context.Context, id string) (models.Episode, error) {
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	results, err := surrealdb.Query[[]episodeRow](ctx, c.db, `
		SELECT * FROM type::record("episode", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return models.Episode{}, fmt.Errorf("get episode: %w", wrapQueryError(err))
	}

	rows := firstResult(results)
	if len(rows) == 0 {
		return models.Episode{}, fmt.Errorf("get episode %s: %w", id, ErrNotFound)
	}
	return rows[0].toModel(), nil
}

// RecentEpisodes returns the newest episodes for a project, most recent
// first. An empty projectHash returns episodes across all projects.
func (c *Client) RecentEpisodes(ctx context.Context, projectHash string, limit int) ([]models.Episode, error) {
	defer c.recordOp(metrics.OpDBSearch, time.Now())

	projectClause := ""
	vars := map[string]any{"limit": limit}
	if projectHash != "" {
		projectClause = "WHERE project_hash = $project_hash"
		vars["project_hash"] = projectHash
	}

	sql := fmt.Sprintf(`
		SELECT * FROM episode %s
		ORDER BY created DESC
		LIMIT $limit
	`, projectClause)

	results, err := surrealdb.Query[[]episodeRow](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("recent episodes: %w", wrapQueryError(err))
	}

	rows := firstResult(results)
	episodes := make([]models.Episode, 0, len(rows))
	for _, r := range rows {
		episodes = append(episodes, r.toModel())
	}
	return episodes, nil
}

// SearchEpisodes finds episodes whose summary, problem, or keywords
// contain any of the given terms (case-insensitive), most recent first.
func (c *Client) SearchEpisodes(ctx context.Context, terms []string, limit int) ([]models.Episode, error) {
	defer c.recordOp(metrics.OpDBSearch, time.Now())

	clauses := make([]string, 0, len(terms))
	vars := map[string]any{"limit": limit}
	for i, term := range terms {
		name := fmt.Sprintf("term%d", i)
		clauses = append(clauses, fmt.Sprintf(
			"string::lowercase(summary) CONTAINS $%s OR string::lowercase(problem ?? '') CONTAINS $%s OR $%s IN keywords",
			name, name, name))
		vars[name] = strings.ToLower(term)
	}
	if len(clauses) == 0 {
		return []models.Episode{}, nil
	}

	sql := fmt.Sprintf(`
		SELECT * FROM episode
		WHERE %s
		ORDER BY created DESC
		LIMIT $limit
	`, strings.Join(clauses, " OR "))

	results, err := surrealdb.Query[[]episodeRow](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("search episodes: %w", wrapQueryError(err))
	}

	rows := firstResult(results)
	episodes := make([]models.Episode, 0, len(rows))
	for _, r := range rows {
		episodes = append(episodes, r.toModel())
	}
	return episodes, nil
}

// AttachEmbedding stores an episode's vector and links it via
// embedding_id. The episode row is the only record ever updated.
func (c *Client) AttachEmbedding(ctx context.Context, episodeID string, vector []float32, model string) error {
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	embeddingID := "emb_" + episodeID

	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("embedding", $embedding_id) CONTENT {
			episode_id: $episode_id,
			vector: $vector,
			model: $model
		};
		UPDATE type::record("episode", $episode_id) SET embedding_id = $embedding_id;
	`, map[string]any{
		"embedding_id": embeddingID,
		"episode_id":   episodeID,
		"vector":       vector,
		"model":        model,
	})
	if err != nil {
		return fmt.Errorf("attach embedding: %w", wrapQueryError(err))
	}
	return nil
}

// GetEmbedding returns the vector for an episode, or nil when the
// episode has no embedding yet.
func (c *Client) GetEmbedding(ctx context.Context, episodeID string) ([]float32, error) {
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	results, err := surrealdb.Query[[]embeddingRow](ctx, c.db, `
		SELECT * FROM embedding WHERE episode_id = $episode_id LIMIT 1
	`, map[string]any{"episode_id": episodeID})
	if err != nil {
		return nil, fmt.Errorf("get embedding: %w", wrapQueryError(err))
	}

	rows := firstResult(results)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].Vector, nil
}

// EpisodesWithoutEmbedding returns episodes still waiting for a vector,
// oldest first so backfill preserves insertion order.
func (c *Client) EpisodesWithoutEmbedding(ctx context.Context, limit int) ([]models.Episode, error) {
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	results, err := surrealdb.Query[[]episodeRow](ctx, c.db, `
		SELECT * FROM episode
		WHERE embedding_id = NONE
		ORDER BY created ASC
		LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("episodes without embedding: %w", wrapQueryError(err))
	}

	rows := firstResult(results)
	episodes := make([]models.Episode, 0, len(rows))
	for _, r := range rows {
		episodes = append(episodes, r.toModel())
	}
	return episodes, nil
}

// TouchSession upserts shell session bookkeeping.
func (c *Client) TouchSession(ctx context.Context, sessionID, cwd, branch string) error {
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("session", $id) SET
			last_seen = time::now(),
			last_cwd = $cwd,
			last_branch = $branch,
			event_count += 1
	`, map[string]any{
		"id":     sessionID,
		"cwd":    optString(cwd),
		"branch": optString(branch),
	})
	if err != nil {
		return fmt.Errorf("touch session: %w", wrapQueryError(err))
	}
	return nil
}

// Counts returns total event and episode counts, for stats output.
func (c *Client) Counts(ctx context.Context) (events, episodes int, err error) {
	defer c.recordOp(metrics.OpDBQuery, time.Now())

	type countRow struct {
		Count int `json:"count"`
	}
	results, err := surrealdb.Query[[]countRow](ctx, c.db, `
		SELECT count() AS count FROM event GROUP ALL;
		SELECT count() AS count FROM episode GROUP ALL;
	`, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("counts: %w", wrapQueryError(err))
	}
	if results != nil && len(*results) >= 2 {
		if rows := (*results)[0].Result; len(rows) > 0 {
			events = rows[0].Count
		}
		if rows := (*results)[1].Result; len(rows) > 0 {
			episodes = rows[0].Count
		}
	}
	return events, episodes, nil
}

// firstResult extracts the first statement's rows from a query result.
func firstResult[T any](results *[]surrealdb.QueryResult[[]T]) []T {
	if results == nil || len(*results) == 0 {
		return nil
	}
	return (*results)[0].Result
}

func keywordsOrEmpty(keywords []string) []string {
	if keywords == nil {
		return []string{}
	}
	return keywords
}
