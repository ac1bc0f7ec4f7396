package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openbarrio/automod/internal/model"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

const timeFormat = "2006-01-02 15:04:05.000"

// SQLiteStore implements Store backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens a SQLite database at the given path and runs migrations.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename to ensure order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("execute migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

// --- Users ---

func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.CreatedAt.UTC().Format(timeFormat))
	return err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &createdAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// --- Communities ---

func (s *SQLiteStore) CreateCommunity(ctx context.Context, c *model.Community) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO communities (id, name, slug, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.OwnerID, c.CreatedAt.UTC().Format(timeFormat))
	return err
}

func (s *SQLiteStore) GetCommunity(ctx context.Context, id string) (*model.Community, error) {
	var c model.Community
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, owner_id, created_at FROM communities WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.OwnerID, &createdAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// --- Memberships ---

func (s *SQLiteStore) CreateMember(ctx context.Context, m *model.CommunityMember) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO community_members (id, community_id, user_id, role, can_moderate, is_banned, is_muted, joined_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CommunityID, m.UserID, string(m.Role),
		boolToInt(m.CanModerate), boolToInt(m.IsBanned), boolToInt(m.IsMuted),
		m.JoinedAt.UTC().Format(timeFormat))
	return err
}

func (s *SQLiteStore) GetMember(ctx context.Context, communityID, userID string) (*model.CommunityMember, error) {
	var m model.CommunityMember
	var role, joinedAt string
	var canModerate, isBanned, isMuted int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, community_id, user_id, role, can_moderate, is_banned, is_muted, joined_at
		 FROM community_members WHERE community_id = ? AND user_id = ?`, communityID, userID).
		Scan(&m.ID, &m.CommunityID, &m.UserID, &role, &canModerate, &isBanned, &isMuted, &joinedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	m.Role = model.MemberRole(role)
	m.CanModerate = canModerate != 0
	m.IsBanned = isBanned != 0
	m.IsMuted = isMuted != 0
	if m.JoinedAt, err = parseTime(joinedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) SetMemberBanned(ctx context.Context, communityID, userID string, banned bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE community_members SET is_banned = ? WHERE community_id = ? AND user_id = ?`,
		boolToInt(banned), communityID, userID)
	return err
}

// --- Posts ---

func (s *SQLiteStore) CreatePost(ctx context.Context, p *model.Post) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, community_id, author_id, title, content, score, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CommunityID, p.AuthorID, p.Title, p.Content, p.Score,
		string(p.Status), p.CreatedAt.UTC().Format(timeFormat))
	return err
}

func (s *SQLiteStore) GetPost(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	var status, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, community_id, author_id, title, content, score, status, created_at
		 FROM posts WHERE id = ?`, id).
		Scan(&p.ID, &p.CommunityID, &p.AuthorID, &p.Title, &p.Content, &p.Score, &status, &createdAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	p.Status = model.PostStatus(status)
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) SetPostStatus(ctx context.Context, id string, status model.PostStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE posts SET status = ? WHERE id = ?`, string(status), id)
	return err
}

func (s *SQLiteStore) SumPostScoresByAuthor(ctx context.Context, authorID string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(score), 0) FROM posts WHERE author_id = ?`, authorID).
		Scan(&total)
	return total, err
}

// --- Comments ---

func (s *SQLiteStore) CreateComment(ctx context.Context, c *model.Comment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.AuthorID, c.Content, c.CreatedAt.UTC().Format(timeFormat))
	return err
}

func (s *SQLiteStore) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, post_id, author_id, content, created_at FROM comments WHERE id = ?`, id).
		Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &createdAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) DeleteComment(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	return err
}

// --- AutoMod rules ---

const ruleColumns = `id, community_id, name, description, type, config, action, apply_to, is_active, triggered_count, created_at, updated_at`

func (s *SQLiteStore) CreateRule(ctx context.Context, r *model.Rule) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO automod_rules (`+ruleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CommunityID, r.Name, r.Description, string(r.Type), string(r.Config),
		string(r.Action), string(r.ApplyTo), boolToInt(r.IsActive), r.TriggeredCount,
		r.CreatedAt.UTC().Format(timeFormat), r.UpdatedAt.UTC().Format(timeFormat))
	return err
}

func (s *SQLiteStore) GetRule(ctx context.Context, id string) (*model.Rule, error) {
	return s.scanRule(s.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM automod_rules WHERE id = ?`, id))
}

func (s *SQLiteStore) UpdateRule(ctx context.Context, r *model.Rule) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE automod_rules SET name = ?, description = ?, config = ?, action = ?, apply_to = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		r.Name, r.Description, string(r.Config), string(r.Action), string(r.ApplyTo),
		boolToInt(r.IsActive), time.Now().UTC().Format(timeFormat), r.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM automod_rules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListRulesByCommunity(ctx context.Context, communityID string) ([]*model.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM automod_rules WHERE community_id = ? ORDER BY created_at DESC`,
		communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanRules(rows)
}

func (s *SQLiteStore) ListActiveRules(ctx context.Context, communityID string, contentType model.ContentType) ([]*model.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM automod_rules
		 WHERE community_id = ? AND is_active = 1 AND apply_to IN (?, 'both')
		 ORDER BY created_at`,
		communityID, string(contentType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanRules(rows)
}

func (s *SQLiteStore) IncrementRuleTriggered(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE automod_rules SET triggered_count = triggered_count + 1 WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) scanRule(row scannable) (*model.Rule, error) {
	var r model.Rule
	var typ, config, action, applyTo, createdAt, updatedAt string
	var isActive int
	err := row.Scan(&r.ID, &r.CommunityID, &r.Name, &r.Description, &typ, &config,
		&action, &applyTo, &isActive, &r.TriggeredCount, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	r.Type = model.RuleType(typ)
	r.Config = []byte(config)
	r.Action = model.RuleAction(action)
	r.ApplyTo = model.ApplyTo(applyTo)
	r.IsActive = isActive != 0
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) scanRules(rows *sql.Rows) ([]*model.Rule, error) {
	var rules []*model.Rule
	for rows.Next() {
		r, err := s.scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// --- Post reports ---

const postReportColumns = `id, post_id, reporter_id, reason, description, status, reviewed_by, reviewed_at, action, community_id, author_id, title_snapshot, content_snapshot, created_at`

func (s *SQLiteStore) CreatePostReport(ctx context.Context, r *model.Report) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO post_reports (`+postReportColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TargetID, r.ReporterID, r.Reason, r.Description, string(r.Status),
		nullString(r.ReviewedBy), nullTime(r.ReviewedAt), nullString(string(r.Action)),
		r.CommunityID, r.AuthorID, r.TitleSnapshot, r.ContentSnapshot,
		r.CreatedAt.UTC().Format(timeFormat))
	return mapConstraint(err)
}

func (s *SQLiteStore) GetPostReport(ctx context.Context, id string) (*model.Report, error) {
	rpt, err := s.scanPostReport(s.db.QueryRowContext(ctx,
		`SELECT `+postReportColumns+` FROM post_reports WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	return rpt, nil
}

func (s *SQLiteStore) HasPostReport(ctx context.Context, postID, reporterID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM post_reports WHERE post_id = ? AND reporter_id = ?`,
		postID, reporterID).Scan(&n)
	return n > 0, err
}

func (s *SQLiteStore) ListPostReports(ctx context.Context, communityID string, f ReportFilter) ([]*model.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postReportColumns+` FROM post_reports
		 WHERE community_id = ? AND status = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		communityID, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*model.Report
	for rows.Next() {
		r, err := s.scanPostReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *SQLiteStore) MarkPostReportReviewed(ctx context.Context, id, reviewerID string, status model.ReportStatus, action model.ReviewAction, at time.Time) error {
	return s.markReviewed(ctx, "post_reports", id, reviewerID, status, action, at)
}

func (s *SQLiteStore) CountPostReports(ctx context.Context, communityID string, status model.ReportStatus) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM post_reports WHERE community_id = ? AND status = ?`,
		communityID, string(status)).Scan(&n)
	return n, err
}

func (s *SQLiteStore) scanPostReport(row scannable) (*model.Report, error) {
	var r model.Report
	var status, createdAt string
	var reviewedBy, reviewedAt, action sql.NullString
	err := row.Scan(&r.ID, &r.TargetID, &r.ReporterID, &r.Reason, &r.Description, &status,
		&reviewedBy, &reviewedAt, &action, &r.CommunityID, &r.AuthorID,
		&r.TitleSnapshot, &r.ContentSnapshot, &createdAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	r.TargetKind = model.ContentPost
	r.Status = model.ReportStatus(status)
	r.ReviewedBy = reviewedBy.String
	if r.ReviewedAt, err = parseNullTime(reviewedAt); err != nil {
		return nil, err
	}
	r.Action = model.ReviewAction(action.String)
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// --- Comment reports ---

const commentReportColumns = `id, comment_id, reporter_id, reason, description, status, reviewed_by, reviewed_at, action, community_id, author_id, content_snapshot, created_at`

func (s *SQLiteStore) CreateCommentReport(ctx context.Context, r *model.Report) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comment_reports (`+commentReportColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TargetID, r.ReporterID, r.Reason, r.Description, string(r.Status),
		nullString(r.ReviewedBy), nullTime(r.ReviewedAt), nullString(string(r.Action)),
		r.CommunityID, r.AuthorID, r.ContentSnapshot,
		r.CreatedAt.UTC().Format(timeFormat))
	return mapConstraint(err)
}

func (s *SQLiteStore) GetCommentReport(ctx context.Context, id string) (*model.Report, error) {
	rpt, err := s.scanCommentReport(s.db.QueryRowContext(ctx,
		`SELECT `+commentReportColumns+` FROM comment_reports WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	return rpt, nil
}

func (s *SQLiteStore) HasCommentReport(ctx context.Context, commentID, reporterID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM comment_reports WHERE comment_id = ? AND reporter_id = ?`,
		commentID, reporterID).Scan(&n)
	return n > 0, err
}

func (s *SQLiteStore) ListCommentReports(ctx context.Context, communityID string, f ReportFilter) ([]*model.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentReportColumns+` FROM comment_reports
		 WHERE community_id = ? AND status = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		communityID, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*model.Report
	for rows.Next() {
		r, err := s.scanCommentReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *SQLiteStore) MarkCommentReportReviewed(ctx context.Context, id, reviewerID string, status model.ReportStatus, action model.ReviewAction, at time.Time) error {
	return s.markReviewed(ctx, "comment_reports", id, reviewerID, status, action, at)
}

func (s *SQLiteStore) CountCommentReports(ctx context.Context, communityID string, status model.ReportStatus) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM comment_reports WHERE community_id = ? AND status = ?`,
		communityID, string(status)).Scan(&n)
	return n, err
}

func (s *SQLiteStore) scanCommentReport(row scannable) (*model.Report, error) {
	var r model.Report
	var status, createdAt string
	var reviewedBy, reviewedAt, action sql.NullString
	err := row.Scan(&r.ID, &r.TargetID, &r.ReporterID, &r.Reason, &r.Description, &status,
		&reviewedBy, &reviewedAt, &action, &r.CommunityID, &r.AuthorID,
		&r.ContentSnapshot, &createdAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	r.TargetKind = model.ContentComment
	r.Status = model.ReportStatus(status)
	r.ReviewedBy = reviewedBy.String
	if r.ReviewedAt, err = parseNullTime(reviewedAt); err != nil {
		return nil, err
	}
	r.Action = model.ReviewAction(action.String)
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// markReviewed is the conditional status transition shared by both report
// tables. The WHERE status = 'pending' guard makes the write race-safe: of
// two concurrent reviewers, exactly one sees RowsAffected = 1.
func (s *SQLiteStore) markReviewed(ctx context.Context, table, id, reviewerID string, status model.ReportStatus, action model.ReviewAction, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET status = ?, reviewed_by = ?, reviewed_at = ?, action = ?
		 WHERE id = ? AND status = 'pending'`,
		string(status), reviewerID, at.UTC().Format(timeFormat), string(action), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a lost race from a bad id.
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM `+table+` WHERE id = ?`, id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrAlreadyResolved
	}
	return nil
}

// --- Cross-table report queries ---

func (s *SQLiteStore) CountReportsResolvedSince(ctx context.Context, communityID string, since time.Time) (int, error) {
	ts := since.UTC().Format(timeFormat)
	var posts, comments int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM post_reports
		 WHERE community_id = ? AND status IN ('dismissed', 'action_taken') AND reviewed_at >= ?`,
		communityID, ts).Scan(&posts)
	if err != nil {
		return 0, err
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM comment_reports
		 WHERE community_id = ? AND status IN ('dismissed', 'action_taken') AND reviewed_at >= ?`,
		communityID, ts).Scan(&comments)
	if err != nil {
		return 0, err
	}
	return posts + comments, nil
}

func (s *SQLiteStore) OldestPendingReport(ctx context.Context, now time.Time) (map[string]time.Duration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT community_id, MIN(created_at) FROM (
			SELECT community_id, created_at FROM post_reports WHERE status = 'pending'
			UNION ALL
			SELECT community_id, created_at FROM comment_reports WHERE status = 'pending'
		 ) GROUP BY community_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ages := make(map[string]time.Duration)
	for rows.Next() {
		var communityID, oldest string
		if err := rows.Scan(&communityID, &oldest); err != nil {
			return nil, err
		}
		t, err := parseTime(oldest)
		if err != nil {
			return nil, err
		}
		ages[communityID] = now.UTC().Sub(t)
	}
	return ages, rows.Err()
}

// --- Helpers ---

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeFormat), Valid: true}
}

// parseTime reads a timestamp written by this store. A row whose timestamp
// no longer parses is corrupted and surfaces as an error rather than a zero
// time, which would otherwise pass account-age checks for free.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// mapConstraint translates a unique-index violation on a report insert into
// ErrDuplicateReport. The index is the authoritative duplicate guard; the
// service-level existence check only narrows the window.
func mapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateReport
	}
	return err
}
