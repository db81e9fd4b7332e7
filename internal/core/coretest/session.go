// Package coretest provides an in-memory core.Session for command tests.
package coretest

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

var ErrNotFound = errors.New("not found")

// Reply is a text reply sent through the session.
type Reply struct {
	ChannelID string
	Content   string
}

// Session records everything commands send and serves members and
// permissions from maps.
type Session struct {
	mu sync.Mutex

	// Permissions by user id.
	Permissions map[string]int64
	// Members by guild id then user id.
	Members map[string]map[string]*discordgo.Member
	// RoleAddErr fails GuildMemberRoleAdd when set.
	RoleAddErr error

	Replies    []Reply
	Sent       []*discordgo.MessageSend
	Responses  []*discordgo.InteractionResponse
	RolesAdded []string
}

func New() *Session {
	return &Session{
		Permissions: map[string]int64{},
		Members:     map[string]map[string]*discordgo.Member{},
	}
}

func (s *Session) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, data)
	return &discordgo.Message{ChannelID: channelID, Content: data.Content}, nil
}

func (s *Session) ChannelMessageSendReply(channelID, content string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Replies = append(s.Replies, Reply{ChannelID: channelID, Content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (s *Session) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses = append(s.Responses, resp)
	return nil
}

func (s *Session) UserChannelPermissions(userID, _ string, _ ...discordgo.RequestOption) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Permissions[userID], nil
}

func (s *Session) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.Members[guildID][userID]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *Session) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RoleAddErr != nil {
		return s.RoleAddErr
	}
	s.RolesAdded = append(s.RolesAdded, guildID+"/"+userID+"/"+roleID)
	return nil
}

// LastResponse returns the most recent interaction response, or nil.
func (s *Session) LastResponse() *discordgo.InteractionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Responses) == 0 {
		return nil
	}
	return s.Responses[len(s.Responses)-1]
}

// LastReply returns the content of the most recent text reply.
func (s *Session) LastReply() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Replies) == 0 {
		return ""
	}
	return s.Replies[len(s.Replies)-1].Content
}
