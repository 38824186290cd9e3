package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/vfg2006/prism-reports-api/infrastructure/database/postgres"
	"github.com/vfg2006/prism-reports-api/internal/domain"
)

const connectedAccountsTable = "connected_accounts"

type AccountRepository interface {
	GetAccountByID(accountID string) (*domain.ConnectedAccount, error)
	ListActiveAccountsByClient(clientID string) ([]*domain.ConnectedAccount, error)
	SaveOrUpdate(accounts []*domain.ConnectedAccount) error
	UpdateTokens(accountID string, tokens *domain.TokenSet) error
	ListAccountsExpiringWithin(window time.Duration) ([]*domain.ConnectedAccount, error)
}

type accountRepository struct {
	conn *postgres.Connection
}

func NewAccountRepository(conn *postgres.Connection) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

func (r *accountRepository) GetAccountByID(accountID string) (*domain.ConnectedAccount, error) {
	accountSQL, accountArgs, err := squirrel.
		Select("id, client_id, platform, platform_id, name, tokens").
		From(connectedAccountsTable).
		Where(squirrel.Eq{"id": accountID, "active": true}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	account, err := deserializeAccount(r.conn.DB.QueryRow(accountSQL, accountArgs...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) ListActiveAccountsByClient(clientID string) ([]*domain.ConnectedAccount, error) {
	accountsSQL, accountsArgs, err := squirrel.
		Select("id, client_id, platform, platform_id, name, tokens").
		From(connectedAccountsTable).
		Where(squirrel.Eq{"client_id": clientID, "active": true}).
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.DB.Query(accountsSQL, accountsArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.ConnectedAccount, 0)
	for rows.Next() {
		account, err := deserializeAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

// SaveOrUpdate insere as contas conectadas em lote; o conflito na chave
// natural (client_id, platform, platform_id) atualiza nome e tokens
func (r *accountRepository) SaveOrUpdate(accounts []*domain.ConnectedAccount) error {
	if len(accounts) == 0 {
		return nil
	}

	query := squirrel.StatementBuilder.
		Insert(connectedAccountsTable).
		Columns("id", "client_id", "platform", "platform_id", "name", "tokens", "active").
		PlaceholderFormat(squirrel.Dollar)

	for _, account := range accounts {
		tokens, err := serializeTokens(account.Tokens)
		if err != nil {
			return fmt.Errorf("failed to serialize tokens: %w", err)
		}

		query = query.Values(
			account.ID,
			account.ClientID,
			account.Platform,
			account.PlatformID,
			account.Name,
			tokens,
			true,
		)
	}

	query = query.Suffix(`
			ON CONFLICT (client_id, platform, platform_id) DO UPDATE SET
				name = EXCLUDED.name,
				tokens = EXCLUDED.tokens,
				active = true,
				updated_at = NOW()
		`)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	_, err = r.conn.DB.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

func (r *accountRepository) UpdateTokens(accountID string, tokens *domain.TokenSet) error {
	serialized, err := serializeTokens(tokens)
	if err != nil {
		return fmt.Errorf("failed to serialize tokens: %w", err)
	}

	sqlQuery, args, err := squirrel.
		Update(connectedAccountsTable).
		Set("tokens", serialized).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.conn.DB.Exec(sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account %s not found", accountID)
	}

	return nil
}

// ListAccountsExpiringWithin retorna contas ativas cujos tokens expiram dentro
// da janela; tokens offline (sem expires_at no JSON) ficam de fora
func (r *accountRepository) ListAccountsExpiringWithin(window time.Duration) ([]*domain.ConnectedAccount, error) {
	deadline := time.Now().Add(window)

	accountsSQL, accountsArgs, err := squirrel.
		Select("id, client_id, platform, platform_id, name, tokens").
		From(connectedAccountsTable).
		Where(squirrel.Eq{"active": true}).
		Where("tokens ->> 'expires_at' IS NOT NULL").
		Where(squirrel.LtOrEq{"(tokens ->> 'expires_at')::timestamptz": deadline}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.DB.Query(accountsSQL, accountsArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.ConnectedAccount, 0)
	for rows.Next() {
		account, err := deserializeAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func deserializeAccount(row rowScanner) (*domain.ConnectedAccount, error) {
	account := &domain.ConnectedAccount{}
	var rawTokens []byte

	if err := row.Scan(
		&account.ID,
		&account.ClientID,
		&account.Platform,
		&account.PlatformID,
		&account.Name,
		&rawTokens,
	); err != nil {
		return nil, err
	}

	if len(rawTokens) > 0 {
		tokens := &domain.TokenSet{}
		if err := json.Unmarshal(rawTokens, tokens); err != nil {
			return nil, fmt.Errorf("failed to deserialize tokens: %w", err)
		}
		account.Tokens = tokens
	}

	return account, nil
}

func serializeTokens(tokens *domain.TokenSet) ([]byte, error) {
	if tokens == nil {
		return nil, nil
	}
	return json.Marshal(tokens)
}
