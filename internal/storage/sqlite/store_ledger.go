package sqlite

import (
	"context"
	"fmt"

	"github.com/emberforge/armory/internal/core/filter"
	"github.com/emberforge/armory/internal/ledger"
	apperrors "github.com/emberforge/armory/internal/platform/errors"
	"github.com/emberforge/armory/internal/platform/pagination"
	"github.com/emberforge/armory/internal/storage"
	"github.com/emberforge/armory/internal/storage/cursor"
)

func (s *Store) AppendLedgerEvent(ctx context.Context, evt ledger.Event) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO ledger_events
		 (event_type, hero_id, weapon_id, name, description, image_ref, power, recipient, minted_by, creator, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(evt.Type), evt.HeroID, evt.WeaponID, evt.Name, evt.Description,
		evt.ImageRef, evt.Power, evt.Recipient, evt.MintedBy, evt.Creator,
		toMillis(evt.Timestamp))
	if err != nil {
		return fmt.Errorf("append ledger event: %w", err)
	}
	return nil
}

func (s *Store) ListLedgerEvents(ctx context.Context, query storage.ListQuery) (storage.LedgerPage, error) {
	cond, err := filter.LedgerEvents().Parse(query.Filter)
	if err != nil {
		return storage.LedgerPage{}, apperrors.Wrap(apperrors.CodeInvalidFilter, "invalid ledger filter", err)
	}

	pageSize := pagination.ClampPageSize(query.PageSize, listPageSizes)
	where := "1=1"
	params := []any{}
	if cond.Clause != "" {
		where = cond.Clause
		params = append(params, cond.Params...)
	}

	if query.PageToken != "" {
		cur, err := cursor.Decode(query.PageToken)
		if err != nil {
			return storage.LedgerPage{}, apperrors.Wrap(apperrors.CodeInvalidPageToken, "invalid page token", err)
		}
		if err := cursor.ValidateFilterHash(cur, query.Filter); err != nil {
			return storage.LedgerPage{}, apperrors.Wrap(apperrors.CodeInvalidPageToken, "page token filter mismatch", err)
		}
		where += " AND seq > ?"
		params = append(params, cur.Seq)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT seq, event_type, hero_id, weapon_id, name, description, image_ref, power, recipient, minted_by, creator, ts
		 FROM ledger_events WHERE `+where+" ORDER BY seq LIMIT ?",
		append(params, pageSize+1)...)
	if err != nil {
		return storage.LedgerPage{}, fmt.Errorf("list ledger events: %w", err)
	}
	defer rows.Close()

	var events []ledger.Event
	for rows.Next() {
		var evt ledger.Event
		var eventType string
		var ts int64
		err := rows.Scan(&evt.Seq, &eventType, &evt.HeroID, &evt.WeaponID,
			&evt.Name, &evt.Description, &evt.ImageRef, &evt.Power,
			&evt.Recipient, &evt.MintedBy, &evt.Creator, &ts)
		if err != nil {
			return storage.LedgerPage{}, fmt.Errorf("scan ledger row: %w", err)
		}
		evt.Type = ledger.Type(eventType)
		evt.Timestamp = fromMillis(ts)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return storage.LedgerPage{}, fmt.Errorf("iterate ledger events: %w", err)
	}

	page := storage.LedgerPage{Events: events}
	if len(events) > pageSize {
		page.Events = events[:pageSize]
		last := page.Events[pageSize-1]
		token, err := cursor.Encode(cursor.Cursor{
			Seq:        last.Seq,
			FilterHash: cursor.HashFilter(query.Filter),
		})
		if err != nil {
			return storage.LedgerPage{}, fmt.Errorf("encode page token: %w", err)
		}
		page.NextPageToken = token
	}
	return page, nil
}
