package consent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/tests/mocks"
)

// ConsentServiceTestSuite is the test suite for the consent Service
type ConsentServiceTestSuite struct {
	suite.Suite
	ctx                context.Context
	service            *Service
	mockConsentRepo    *mocks.MockConsentRepository
	mockMessageRepo    *mocks.MockMessageRepository
	mockAttachmentRepo *mocks.MockAttachmentRepository
}

func (s *ConsentServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mockConsentRepo = new(mocks.MockConsentRepository)
	s.mockMessageRepo = new(mocks.MockMessageRepository)
	s.mockAttachmentRepo = new(mocks.MockAttachmentRepository)
	s.service = NewService(s.mockConsentRepo, s.mockMessageRepo, s.mockAttachmentRepo, nil, nil, true)
}

func (s *ConsentServiceTestSuite) TearDownTest() {
	s.mockConsentRepo.AssertExpectations(s.T())
	s.mockMessageRepo.AssertExpectations(s.T())
	s.mockAttachmentRepo.AssertExpectations(s.T())
}

func TestConsentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConsentServiceTestSuite))
}

// ==================== EffectiveLevel Tests ====================

func (s *ConsentServiceTestSuite) TestEffectiveLevel_DefaultsToFull() {
	s.mockConsentRepo.On("Get", s.ctx, int64(100), int64(500)).
		Return(nil, repository.ErrNotFound)

	level := s.service.EffectiveLevel(s.ctx, 100, 500, false)
	s.Equal(models.ConsentFull, level)
}

func (s *ConsentServiceTestSuite) TestEffectiveLevel_BotsAlwaysFull() {
	// no repository lookup happens for bots
	level := s.service.EffectiveLevel(s.ctx, 100, 500, true)
	s.Equal(models.ConsentFull, level)
}

func (s *ConsentServiceTestSuite) TestEffectiveLevel_RevokedMeansNone() {
	s.mockConsentRepo.On("Get", s.ctx, int64(100), int64(500)).
		Return(&models.ConsentRecord{GuildID: 100, UserID: 500, Level: models.ConsentFull, Active: false}, nil)

	level := s.service.EffectiveLevel(s.ctx, 100, 500, false)
	s.Equal(models.ConsentNone, level)
}

func (s *ConsentServiceTestSuite) TestEffectiveLevel_ActiveRecordLevel() {
	s.mockConsentRepo.On("Get", s.ctx, int64(100), int64(500)).
		Return(&models.ConsentRecord{GuildID: 100, UserID: 500, Level: models.ConsentMetadata, Active: true}, nil)

	level := s.service.EffectiveLevel(s.ctx, 100, 500, false)
	s.Equal(models.ConsentMetadata, level)
}

func (s *ConsentServiceTestSuite) TestEffectiveLevel_LookupErrorFallsBackToFull() {
	s.mockConsentRepo.On("Get", s.ctx, int64(100), int64(500)).
		Return(nil, errors.New("db gone"))

	level := s.service.EffectiveLevel(s.ctx, 100, 500, false)
	s.Equal(models.ConsentFull, level)
}

// ==================== Level Predicate Tests ====================

func (s *ConsentServiceTestSuite) TestLevelPredicates() {
	s.False(ShouldLog(models.ConsentNone))
	s.True(ShouldLog(models.ConsentMetadata))

	s.False(AllowContent(models.ConsentMetadata))
	s.True(AllowContent(models.ConsentContent))

	s.False(AllowAttachments(models.ConsentContent))
	s.True(AllowAttachments(models.ConsentFull))
}

func (s *ConsentServiceTestSuite) TestApplyToContent_RedactsBelowContentLevel() {
	s.Equal("hello", ApplyToContent(models.ConsentFull, "hello"))
	s.Equal(RedactedContent, ApplyToContent(models.ConsentMetadata, "hello"))
}

// ==================== Grant Tests ====================

func (s *ConsentServiceTestSuite) TestGrant_Success() {
	s.mockConsentRepo.On("Upsert", s.ctx, mock.MatchedBy(func(r *models.ConsentRecord) bool {
		return r.GuildID == 100 && r.UserID == 500 && r.Level == models.ConsentContent && r.Active
	})).Return(nil)

	record, err := s.service.Grant(s.ctx, 100, 500, "alice", 2, "AB", false)
	s.NoError(err)
	s.True(record.Active)
	s.Equal(models.ConsentContent, record.Level)
}

func (s *ConsentServiceTestSuite) TestGrant_LevelZeroIsInactive() {
	s.mockConsentRepo.On("Upsert", s.ctx, mock.MatchedBy(func(r *models.ConsentRecord) bool {
		return !r.Active && r.Level == models.ConsentNone
	})).Return(nil)

	record, err := s.service.Grant(s.ctx, 100, 500, "alice", 0, "", false)
	s.NoError(err)
	s.False(record.Active)
}

func (s *ConsentServiceTestSuite) TestGrant_InvalidLevel() {
	_, err := s.service.Grant(s.ctx, 100, 500, "alice", 7, "", false)
	s.Error(err)
}

// ==================== Revoke Tests ====================

func (s *ConsentServiceTestSuite) TestRevoke_ExistingRecord() {
	s.mockConsentRepo.On("Revoke", s.ctx, int64(100), int64(500)).Return(nil)

	s.NoError(s.service.Revoke(s.ctx, 100, 500))
}

func (s *ConsentServiceTestSuite) TestRevoke_NoRecordCreatesRevokedOne() {
	s.mockConsentRepo.On("Revoke", s.ctx, int64(100), int64(500)).
		Return(repository.ErrNotFound)
	s.mockConsentRepo.On("Upsert", s.ctx, mock.MatchedBy(func(r *models.ConsentRecord) bool {
		return r.GuildID == 100 && r.UserID == 500 && !r.Active && r.Level == models.ConsentNone
	})).Return(nil)

	s.NoError(s.service.Revoke(s.ctx, 100, 500))
}

// ==================== Erasure Tests ====================

func (s *ConsentServiceTestSuite) TestEraseUserData_DeletesFilesMessagesAndRevokes() {
	s.mockAttachmentRepo.On("DeleteFilesByAuthor", s.ctx, int64(100), int64(500)).
		Return(int64(3), nil)
	s.mockMessageRepo.On("DeleteByAuthor", s.ctx, int64(100), int64(500)).
		Return(int64(12), nil)
	s.mockConsentRepo.On("Revoke", s.ctx, int64(100), int64(500)).Return(nil)

	result, err := s.service.EraseUserData(s.ctx, 100, 500)
	s.NoError(err)
	s.EqualValues(12, result.MessagesDeleted)
	s.EqualValues(3, result.FilesDeleted)
}

func (s *ConsentServiceTestSuite) TestEraseUserData_FileDeletionFailureAborts() {
	s.mockAttachmentRepo.On("DeleteFilesByAuthor", s.ctx, int64(100), int64(500)).
		Return(int64(0), errors.New("disk error"))

	_, err := s.service.EraseUserData(s.ctx, 100, 500)
	s.Error(err)
}

// ==================== AutoGrant Tests ====================

func (s *ConsentServiceTestSuite) TestAutoGrant_SkipsBotsAndExisting() {
	members := []Member{
		{UserID: 1, UserName: "bot", Bot: true},
		{UserID: 2, UserName: "existing"},
		{UserID: 3, UserName: "new"},
	}

	s.mockConsentRepo.On("Get", s.ctx, int64(100), int64(2)).
		Return(&models.ConsentRecord{GuildID: 100, UserID: 2, Active: true}, nil)
	s.mockConsentRepo.On("Get", s.ctx, int64(100), int64(3)).
		Return(nil, repository.ErrNotFound)
	s.mockConsentRepo.On("Upsert", s.ctx, mock.MatchedBy(func(r *models.ConsentRecord) bool {
		return r.UserID == 3 && r.AutoGranted && r.Level == models.ConsentFull && r.Active
	})).Return(nil)

	granted, err := s.service.AutoGrantForMembers(s.ctx, 100, members)
	s.NoError(err)
	s.Equal(1, granted)
}

func (s *ConsentServiceTestSuite) TestAutoGrant_DisabledDoesNothing() {
	service := NewService(s.mockConsentRepo, s.mockMessageRepo, s.mockAttachmentRepo, nil, nil, false)

	granted, err := service.AutoGrantForMembers(s.ctx, 100, []Member{{UserID: 3, UserName: "new"}})
	s.NoError(err)
	s.Zero(granted)
}
