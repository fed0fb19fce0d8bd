package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/utils"
)

const tokenColumns = `t.id, t.user_id, t.access_token, t.refresh_token, t.token_type, t.expires_at, t.scope, t.mixcloud_username, t.created_at, t.updated_at`

// MixcloudTokenRepository stores one Mixcloud credential per profile.
type MixcloudTokenRepository struct{ db *sql.DB }

func NewMixcloudTokenRepository(db *sql.DB) *MixcloudTokenRepository {
	return &MixcloudTokenRepository{db: db}
}

func (r *MixcloudTokenRepository) UpsertToken(ctx context.Context, t *model.OAuthToken) error {
	now := utils.GetCurrentTime()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	q := `INSERT INTO mixcloud_oauth_tokens (user_id, access_token, refresh_token, token_type, expires_at, scope, mixcloud_username, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		  ON CONFLICT (user_id) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			token_type=EXCLUDED.token_type,
			expires_at=EXCLUDED.expires_at,
			scope=EXCLUDED.scope,
			mixcloud_username=EXCLUDED.mixcloud_username,
			updated_at=EXCLUDED.updated_at
		  RETURNING id`
	return r.db.QueryRowContext(ctx, q, t.UserID, t.AccessToken, t.RefreshToken, t.TokenType, t.ExpiresAt, t.Scope, t.MixcloudUsername, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
}

// GetToken looks the credential up by the owner's external identity.
func (r *MixcloudTokenRepository) GetToken(ctx context.Context, ownerID string) (*model.OAuthToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tokenColumns+`
		FROM mixcloud_oauth_tokens t
		JOIN profiles p ON p.id = t.user_id
		WHERE p.external_id=$1`, ownerID)
	tok, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return tok, err
}

// UpdateRefreshedToken writes the fields a refresh grant may change.
func (r *MixcloudTokenRepository) UpdateRefreshedToken(ctx context.Context, t *model.OAuthToken) error {
	t.UpdatedAt = utils.GetCurrentTime()
	res, err := r.db.ExecContext(ctx, `UPDATE mixcloud_oauth_tokens SET access_token=$1, refresh_token=$2, expires_at=$3, scope=$4, updated_at=$5 WHERE id=$6`,
		t.AccessToken, t.RefreshToken, t.ExpiresAt, t.Scope, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MixcloudTokenRepository) DeleteToken(ctx context.Context, ownerID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mixcloud_oauth_tokens WHERE user_id IN (SELECT id FROM profiles WHERE external_id=$1)`, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListExpiring returns refreshable tokens whose expiry is at or before the given time.
func (r *MixcloudTokenRepository) ListExpiring(ctx context.Context, before time.Time) ([]model.OAuthToken, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tokenColumns+`
		FROM mixcloud_oauth_tokens t
		WHERE t.expires_at IS NOT NULL AND t.expires_at <= $1 AND t.refresh_token IS NOT NULL
		ORDER BY t.expires_at ASC`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []model.OAuthToken
	for rows.Next() {
		tok, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *tok)
	}
	return tokens, rows.Err()
}

func scanToken(row rowScanner) (*model.OAuthToken, error) {
	tok := &model.OAuthToken{}
	var refresh, tokenType, scope, username sql.NullString
	var exp sql.NullTime
	if err := row.Scan(&tok.ID, &tok.UserID, &tok.AccessToken, &refresh, &tokenType, &exp, &scope, &username, &tok.CreatedAt, &tok.UpdatedAt); err != nil {
		return nil, err
	}
	if refresh.Valid {
		v := refresh.String
		tok.RefreshToken = &v
	}
	if exp.Valid {
		v := exp.Time
		tok.ExpiresAt = &v
	}
	tok.TokenType = tokenType.String
	tok.Scope = scope.String
	tok.MixcloudUsername = username.String
	return tok, nil
}

var _ repository.IMixcloudToken = (*MixcloudTokenRepository)(nil)
