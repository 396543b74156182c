package mutation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-content/internal/domain"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
)

var messageRoles = map[string]bool{"user": true, "assistant": true, "tool": true}

func (s *service) requireRecord(dbc dbctx.Context, kind Kind, id uuid.UUID) (RecordStore, error) {
	st, err := s.storeFor(kind)
	if err != nil {
		return nil, err
	}
	rec, err := st.Get(dbc, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound(kind, id)
	}
	return st, nil
}

func (s *service) ListConversation(dbc dbctx.Context, kind Kind, id uuid.UUID, limit int) ([]*types.ContentMessage, error) {
	if _, err := s.requireRecord(dbc, kind, id); err != nil {
		return nil, err
	}
	return s.repos.Messages.ListByRecord(dbc, string(kind), id, limit)
}

func (s *service) AppendMessage(dbc dbctx.Context, kind Kind, id uuid.UUID, role, content string) (*types.ContentMessage, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !messageRoles[role] {
		return nil, fmt.Errorf("%w: unknown message role %q", ErrValidation, role)
	}
	if _, err := s.requireRecord(dbc, kind, id); err != nil {
		return nil, err
	}
	created, err := s.repos.Messages.Create(dbc, []*types.ContentMessage{{
		RecordKind: string(kind),
		RecordID:   id,
		Role:       role,
		Content:    content,
	}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *service) ClearConversation(dbc dbctx.Context, kind Kind, id uuid.UUID) (int64, error) {
	var deleted int64
	err := s.inTx(dbc, func(inner dbctx.Context) error {
		st, err := s.requireRecord(inner, kind, id)
		if err != nil {
			return err
		}
		deleted, err = s.repos.Messages.DeleteByRecord(inner, string(kind), id)
		if err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		return st.ResetStamps(inner, id)
	})
	if err != nil {
		return 0, err
	}
	s.log.Debug("conversation cleared", "kind", kind, "id", id, "deleted", deleted)
	s.notify.ConversationCleared(dbc.Ctx, kind, id)
	return deleted, nil
}
