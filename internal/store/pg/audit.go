package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"teamwerk.io/internal/audit"
)

var _ audit.Store = (*Store)(nil)

func (s *Store) Append(ctx context.Context, e audit.Entry) error {
	reqJSON, err := marshalPayload(e.Request)
	if err != nil {
		return fmt.Errorf("marshal request payload: %w", err)
	}
	respJSON, err := marshalPayload(e.Response)
	if err != nil {
		return fmt.Errorf("marshal response payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into audit_log
			(id, actor_id, action, tenant_id, target_user_id, request, response,
			 status, error_message, ip, user_agent, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.ActorID, e.Action, nullIfEmpty(e.TenantID), nullIfEmpty(e.TargetUserID),
		reqJSON, respJSON, e.Status, nullIfEmpty(e.ErrorMessage),
		nullIfEmpty(e.IP), nullIfEmpty(e.UserAgent), e.CreatedAt)
	return err
}

func (s *Store) List(ctx context.Context, f audit.Filter) ([]audit.Entry, int, error) {
	var (
		conditions []string
		args       []any
		idx        = 1
	)
	if f.TenantID != "" {
		conditions = append(conditions, fmt.Sprintf("tenant_id = $%d", idx))
		args = append(args, f.TenantID)
		idx++
	}
	if f.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", idx))
		args = append(args, f.Action)
		idx++
	}
	where := ""
	if len(conditions) > 0 {
		where = "where " + strings.Join(conditions, " and ")
	}

	var total int
	countQuery := fmt.Sprintf(`select count(*) from audit_log %s`, where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		select id, actor_id, action, coalesce(tenant_id, ''), coalesce(target_user_id, ''),
			request, response, status, coalesce(error_message, ''),
			coalesce(ip, ''), coalesce(user_agent, ''), created_at
		from audit_log
		%s
		order by created_at desc
		limit $%d offset $%d
	`, where, idx, idx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e        audit.Entry
			rawReq   []byte
			rawResp  []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TenantID, &e.TargetUserID,
			&rawReq, &rawResp, &e.Status, &e.ErrorMessage,
			&e.IP, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if err := unmarshalPayload(rawReq, &e.Request); err != nil {
			return nil, 0, err
		}
		if err := unmarshalPayload(rawResp, &e.Response); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func marshalPayload(payload map[string]any) ([]byte, error) {
	if len(payload) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(payload)
}

func unmarshalPayload(raw []byte, dst *map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if len(payload) > 0 {
		*dst = payload
	}
	return nil
}
