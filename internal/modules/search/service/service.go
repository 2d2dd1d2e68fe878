package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"anoa.com/boardinghouse/internal/entity"
	"anoa.com/boardinghouse/pkg/logger"
	"anoa.com/boardinghouse/pkg/sanitize"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const membersIndex = "members"

// MemberIndex keeps the member directory searchable.
type MemberIndex interface {
	IndexMember(ctx context.Context, member *entity.Member) error
	DeleteMember(ctx context.Context, id uint) error
	// SearchMembers returns matching member ids, best match first.
	SearchMembers(ctx context.Context, query string, limit int64) ([]uint, error)
}

type meiliMemberIndex struct {
	client meilisearch.ServiceManager
}

func NewMeiliMemberIndex(client meilisearch.ServiceManager) MemberIndex {
	s := &meiliMemberIndex{client: client}
	s.initIndex()
	return s
}

func (s *meiliMemberIndex) initIndex() {
	log := logger.GetLogger()

	filterable := []any{"status"}
	if _, err := s.client.Index(membersIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Warn("failed to update members filterable attributes", zap.Error(err))
	}

	searchable := []string{"name", "email", "room_number"}
	if _, err := s.client.Index(membersIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Warn("failed to update members searchable attributes", zap.Error(err))
	}
}

type meiliMemberDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	RoomNumber  string `json:"room_number"`
	Status      string `json:"status"`
	HomeAddress string `json:"home_address"`
}

func (s *meiliMemberIndex) IndexMember(ctx context.Context, member *entity.Member) error {
	doc := meiliMemberDoc{
		ID:          strconv.FormatUint(uint64(member.ID), 10),
		Name:        member.Name,
		Email:       member.Email,
		RoomNumber:  member.RoomNumber,
		Status:      string(member.Status),
		HomeAddress: sanitize.Text(member.HomeAddress),
	}

	task, err := s.client.Index(membersIndex).AddDocuments([]meiliMemberDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index member %d: %w", member.ID, err)
	}
	logger.FromContext(ctx).Debug("member indexed",
		zap.Uint("member_id", member.ID),
		zap.Any("task_uid", task.TaskUID),
	)
	return nil
}

func (s *meiliMemberIndex) DeleteMember(_ context.Context, id uint) error {
	_, err := s.client.Index(membersIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *meiliMemberIndex) SearchMembers(_ context.Context, query string, limit int64) ([]uint, error) {
	raw, err := s.client.Index(membersIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                limit,
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &resp); err != nil {
		return nil, fmt.Errorf("decode member hits: %w", err)
	}

	ids := make([]uint, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
