package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guildlog/guildlog-backend/internal/consent"
	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/tests/mocks"
)

type historyCall struct {
	channelID string
	after     string
}

// scriptedHistory serves pre-built pages per channel, newest first as
// the Discord API does
type scriptedHistory struct {
	pages map[string][][]*discordgo.Message
	errs  map[string]error
	calls []historyCall
}

func newScriptedHistory() *scriptedHistory {
	return &scriptedHistory{
		pages: make(map[string][][]*discordgo.Message),
		errs:  make(map[string]error),
	}
}

func (f *scriptedHistory) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.calls = append(f.calls, historyCall{channelID: channelID, after: afterID})
	if err := f.errs[channelID]; err != nil {
		return nil, err
	}
	remaining := f.pages[channelID]
	if len(remaining) == 0 {
		return nil, nil
	}
	f.pages[channelID] = remaining[1:]
	return remaining[0], nil
}

type catchupMocks struct {
	messages *mocks.MockMessageRepository
	guilds   *mocks.MockGuildRepository
	channels *mocks.MockChannelRepository
	consents *mocks.MockConsentRepository
}

// newCatchupGateway builds a Gateway wired to scripted history and
// mocked repositories, without a live Discord session
func newCatchupGateway(bootMarkPath string) (*Gateway, *scriptedHistory, *catchupMocks) {
	m := &catchupMocks{
		messages: new(mocks.MockMessageRepository),
		guilds:   new(mocks.MockGuildRepository),
		channels: new(mocks.MockChannelRepository),
		consents: new(mocks.MockConsentRepository),
	}
	consents := consent.NewService(m.consents, m.messages, nil, nil, nil, true)
	service := NewService(m.messages, m.guilds, m.channels, consents, nil, nil, nil, 0)
	history := newScriptedHistory()

	g := &Gateway{
		history:      history,
		service:      service,
		bootMarkPath: bootMarkPath,
	}
	return g, history, m
}

// expectCatchupLogging lets every replayed message through the
// monitored and consent checks
func (m *catchupMocks) expectCatchupLogging() {
	m.guilds.On("GetByID", mock.Anything, int64(100)).
		Return(&models.Guild{ID: 100, Name: "guild", Monitored: true}, nil)
	m.channels.On("GetOrCreate", mock.Anything, mock.Anything, int64(100), "").
		Return(&models.Channel{ID: 200, GuildID: 100, Monitored: true}, false, nil)
	m.consents.On("Get", mock.Anything, int64(100), mock.Anything).
		Return(nil, repository.ErrNotFound)
	m.messages.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	m.channels.On("TouchLastMessage", mock.Anything, mock.Anything).Return(nil)
}

func catchupMessage(id int64) *discordgo.Message {
	return &discordgo.Message{
		ID:        strconv.FormatInt(id, 10),
		ChannelID: "200",
		GuildID:   "100",
		Content:   "hello",
		Timestamp: time.Now().UTC(),
		Author:    &discordgo.User{ID: "500", Username: "alice"},
	}
}

// catchupPage builds one newest-first page of count messages
func catchupPage(newestID int64, count int) []*discordgo.Message {
	page := make([]*discordgo.Message, 0, count)
	for i := 0; i < count; i++ {
		page = append(page, catchupMessage(newestID-int64(i)))
	}
	return page
}

// ==================== Channel Paging Tests ====================

func TestCatchUpChannel_PagesForwardFromCursor(t *testing.T) {
	g, history, m := newCatchupGateway(filepath.Join(t.TempDir(), "previous_boot.json"))
	m.expectCatchupLogging()

	// A full page then a short one
	history.pages["200"] = [][]*discordgo.Message{
		catchupPage(1000200, 100),
		catchupPage(1000203, 3),
	}

	logged, err := g.catchUpChannel(context.Background(), 200, 1000050)
	require.NoError(t, err)
	assert.Equal(t, 103, logged)

	// The cursor starts at the boot marker and then tracks the newest
	// message of each page
	require.Len(t, history.calls, 2)
	assert.Equal(t, "1000050", history.calls[0].after)
	assert.Equal(t, "1000200", history.calls[1].after)
}

func TestCatchUpChannel_ShortBatchStops(t *testing.T) {
	g, history, m := newCatchupGateway(filepath.Join(t.TempDir(), "previous_boot.json"))
	m.expectCatchupLogging()

	history.pages["200"] = [][]*discordgo.Message{catchupPage(1000002, 2)}

	logged, err := g.catchUpChannel(context.Background(), 200, 1000000)
	require.NoError(t, err)
	assert.Equal(t, 2, logged)
	assert.Len(t, history.calls, 1)
}

func TestCatchUpChannel_FetchErrorReturned(t *testing.T) {
	g, history, _ := newCatchupGateway(filepath.Join(t.TempDir(), "previous_boot.json"))
	history.errs["200"] = errors.New("HTTP 403 Forbidden")

	logged, err := g.catchUpChannel(context.Background(), 200, 1000000)
	assert.Error(t, err)
	assert.Zero(t, logged)
}

// ==================== Run Tests ====================

func TestRunCatchUp_NoMarkerSkipsScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous_boot.json")
	g, _, m := newCatchupGateway(path)

	g.runCatchUp(context.Background())

	m.guilds.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRunCatchUp_WalksMonitoredChannelsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous_boot.json")
	shutdownAt := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, WriteBootMark(path, &BootMark{ShutdownAt: shutdownAt}))

	g, history, m := newCatchupGateway(path)
	m.expectCatchupLogging()
	m.guilds.On("List", mock.Anything, true).
		Return([]models.Guild{{ID: 100, Monitored: true}}, nil)
	m.channels.On("ListByGuild", mock.Anything, int64(100), 500, 0).
		Return([]models.ChannelWithMessageCount{
			{Channel: models.Channel{ID: 200, GuildID: 100, Monitored: true}},
			{Channel: models.Channel{ID: 202, GuildID: 100, Monitored: false}},
		}, int64(2), nil)

	history.pages["200"] = [][]*discordgo.Message{catchupPage(1000002, 2)}

	g.runCatchUp(context.Background())

	require.Len(t, history.calls, 1)
	assert.Equal(t, "200", history.calls[0].channelID)
	assert.Equal(t, strconv.FormatInt(SnowflakeFromTime(shutdownAt), 10), history.calls[0].after)
	m.messages.AssertNumberOfCalls(t, "Upsert", 2)
}

func TestRunCatchUp_AdvancesBootMarkAfterScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous_boot.json")
	shutdownAt := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, WriteBootMark(path, &BootMark{ShutdownAt: shutdownAt}))

	g, _, m := newCatchupGateway(path)
	m.guilds.On("List", mock.Anything, true).Return([]models.Guild{}, nil)

	g.runCatchUp(context.Background())

	mark, err := ReadBootMark(path, nil)
	require.NoError(t, err)
	require.NotNil(t, mark)
	assert.True(t, mark.ShutdownAt.After(shutdownAt),
		"marker should move forward once the window is covered")
}
