package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/vfg2006/prism-reports-api/infrastructure/database/postgres"
	"github.com/vfg2006/prism-reports-api/internal/domain"
)

const decksTable = "decks"

type DeckRepository interface {
	SaveDeck(deck *domain.Deck) error
	GetDeckByID(deckID string) (*domain.Deck, error)
	ListDecksByClient(clientID string, limit int) ([]*domain.Deck, error)
}

type deckRepository struct {
	conn *postgres.Connection
}

func NewDeckRepository(conn *postgres.Connection) DeckRepository {
	return &deckRepository{
		conn: conn,
	}
}

func (r *deckRepository) SaveDeck(deck *domain.Deck) error {
	slides, err := domain.MarshalSlides(deck.Slides)
	if err != nil {
		return fmt.Errorf("failed to serialize slides: %w", err)
	}

	sqlQuery, args, err := squirrel.
		Insert(decksTable).
		Columns("id", "client_id", "title", "date_start", "date_end", "slides", "created_at").
		Values(deck.ID, deck.ClientID, deck.Title, deck.Range.Start, deck.Range.End, slides, deck.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.conn.DB.Exec(sqlQuery, args...); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

func (r *deckRepository) GetDeckByID(deckID string) (*domain.Deck, error) {
	deckSQL, deckArgs, err := squirrel.
		Select("id, client_id, title, date_start, date_end, slides, created_at").
		From(decksTable).
		Where(squirrel.Eq{"id": deckID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	deck, err := deserializeDeck(r.conn.DB.QueryRow(deckSQL, deckArgs...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return deck, nil
}

func (r *deckRepository) ListDecksByClient(clientID string, limit int) ([]*domain.Deck, error) {
	queryBuilder := squirrel.
		Select("id, client_id, title, date_start, date_end, slides, created_at").
		From(decksTable).
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	}

	decksSQL, decksArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.DB.Query(decksSQL, decksArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	decks := make([]*domain.Deck, 0)
	for rows.Next() {
		deck, err := deserializeDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return decks, nil
}

func deserializeDeck(row rowScanner) (*domain.Deck, error) {
	deck := &domain.Deck{}
	var rawSlides []byte
	var start, end time.Time

	if err := row.Scan(
		&deck.ID,
		&deck.ClientID,
		&deck.Title,
		&start,
		&end,
		&rawSlides,
		&deck.CreatedAt,
	); err != nil {
		return nil, err
	}

	deck.Range = domain.DateRange{Start: start, End: end}

	if len(rawSlides) > 0 {
		slides, err := domain.UnmarshalSlides(rawSlides)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize slides: %w", err)
		}
		deck.Slides = slides
	}

	return deck, nil
}
